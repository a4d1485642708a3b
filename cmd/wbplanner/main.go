// Package main provides the wbplanner CLI.
//
// wbplanner maps spreadsheet column headers onto paths through a schema
// graph:
//   - Enumerates the mapping paths reachable from a base table
//   - Suggests paths for the headers of a CSV file
//   - Commits the mapping to an upload plan (JSON or YAML)
//   - Re-validates an existing plan against the schema
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
