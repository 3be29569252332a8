// Package exclude decides which rows and columns are left out of a pull.
package exclude

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Set holds excluded row and column names. It is read-only after creation.
type Set struct {
	rows    map[string]struct{}
	columns map[string]struct{}
}

// New builds a Set from explicit names.
func New(rows, columns []string) *Set {
	return &Set{
		rows:    toSet(rows),
		columns: toSet(columns),
	}
}

// Load reads the row and column exclusion files. Names are separated by
// whitespace, normally one per line. An empty path or a missing file gives
// an empty set.
func Load(rowsPath, columnsPath string) (*Set, error) {
	rows, err := readList(rowsPath)
	if err != nil {
		return nil, err
	}
	columns, err := readList(columnsPath)
	if err != nil {
		return nil, err
	}
	return New(rows, columns), nil
}

// SkipRow reports whether the row is excluded.
func (s *Set) SkipRow(name string) bool {
	_, ok := s.rows[name]
	return ok
}

// SkipColumn reports whether the column is excluded.
func (s *Set) SkipColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// Len returns the number of excluded rows and columns.
func (s *Set) Len() (rows, columns int) {
	return len(s.rows), len(s.columns)
}

func readList(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("exclude: read %s: %w", path, err)
	}
	return strings.Fields(string(data)), nil
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}
