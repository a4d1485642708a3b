// Package automapper suggests mapping paths for spreadsheet headers.
//
// Suggestions come from static rule tables loaded from YAML (table
// synonyms, shortcuts, field synonyms, and exclusions), from literal
// comparison with schema names, and in the Suggestion scope from fuzzy
// similarity. Only paths the navigator can reach from the base table are
// ever suggested.
package automapper
