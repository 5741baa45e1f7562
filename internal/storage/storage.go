// Package storage keeps the evaluation history in a CSV file.
package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// Entry is one evaluated input.
type Entry struct {
	Time     time.Time `json:"time"`
	Expr     string    `json:"expr"`
	Result   string    `json:"result"`
	Estimate string    `json:"estimate,omitempty"`
}

var header = []string{"time", "expr", "result", "estimate"}

// SaveCSV writes entries to filename, replacing its contents.
func SaveCSV(filename string, entries []Entry) error {
	out := make([][]string, 0, len(entries)+1)
	out = append(out, header)
	for _, e := range entries {
		out = append(out, []string{e.Time.UTC().Format(time.RFC3339Nano), e.Expr, e.Result, e.Estimate})
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(out); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return f.Close()
}

// LoadCSV reads a history file written by SaveCSV. The header row is
// optional.
func LoadCSV(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	entries := make([]Entry, 0, len(records))
	for i, row := range records {
		if i == 0 && len(row) > 0 && row[0] == header[0] {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("line %d: want at least 3 fields, got %d", i+1, len(row))
		}
		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		e := Entry{Time: ts, Expr: row[1], Result: row[2]}
		if len(row) > 3 {
			e.Estimate = row[3]
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Trim keeps the newest limit entries. A limit of zero or less keeps all.
func Trim(entries []Entry, limit int) []Entry {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}
