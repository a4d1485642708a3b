// Package plan provides the planning session that turns spreadsheet
// headers into an upload plan.
//
// Session lifecycle:
//  1. NewSession (or Resume from an existing plan)
//  2. AutoMap headers, then adjust lines with SetMapping / MergeTree
//  3. Validate → diagnostics per line
//  4. Commit → duplicate checks, then an UploadPlan
//  5. Close → persist durable cache buckets, drop session buckets
package plan
