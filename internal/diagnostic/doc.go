// Package diagnostic provides structured warnings, errors, and infos
// collected while validating rule tables, mapping lines, and upload plans.
//
// Key capabilities:
//   - Unknown table/field reports for rule configuration
//   - Per-line path validation failures
//   - Duplicate and ambiguous mapping reports
package diagnostic
