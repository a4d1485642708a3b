package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readHeaders returns the column headers of a CSV file. With noHeader the
// first record is data, and the columns are named "Column 1", "Column 2"...
func readHeaders(path string, noHeader bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return parseHeaders(f, noHeader)
}

func parseHeaders(r io.Reader, noHeader bool) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no header row")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	headers := make([]string, len(record))
	for i, h := range record {
		if noHeader {
			headers[i] = fmt.Sprintf("Column %d", i+1)
			continue
		}

		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	return headers, nil
}
