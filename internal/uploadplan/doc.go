// Package uploadplan defines the upload plan wire format and converts
// between plans and mappings trees.
//
// A plan describes how one spreadsheet row becomes records: column and
// static values per table, nested to-one tables, repeated to-many records,
// and tree rank records.
package uploadplan
