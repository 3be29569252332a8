package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrBadHeader is returned when a TSV export has no usable header row.
var ErrBadHeader = errors.New("table: bad TSV header")

// ReadTSV loads a table exported from a workspace data tab.
//
// The first header cell names the table as "entity:{name}_id" (or
// "{name}_id"); the first column holds row names. Cells starting with '['
// that parse as a JSON array become lists. Empty cells become Null.
func ReadTSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty input", ErrBadHeader)
		}
		return nil, fmt.Errorf("table: read header: %w", err)
	}
	if len(header) == 0 || header[0] == "" {
		return nil, ErrBadHeader
	}

	name := strings.TrimPrefix(header[0], "entity:")
	name = strings.TrimSuffix(name, "_id")
	t := New(name, nil, header[1:])

	seen := make(map[string]bool)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: read row: %w", err)
		}
		row := record[0]
		if row == "" {
			return nil, fmt.Errorf("table: row %d has no name", len(t.Rows)+1)
		}
		if seen[row] {
			return nil, fmt.Errorf("table: duplicate row %q", row)
		}
		seen[row] = true
		t.Rows = append(t.Rows, row)

		for i, column := range t.Columns {
			t.Set(row, column, parseTSVCell(record[i+1]))
		}
	}

	return t, nil
}

// ReadTSVFile is ReadTSV on a file path.
func ReadTSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTSV(f)
}

func parseTSVCell(s string) Value {
	if s == "" {
		return Null()
	}
	if strings.HasPrefix(s, "[") {
		dec := json.NewDecoder(bytes.NewReader([]byte(s)))
		dec.UseNumber()
		var items []any
		if err := dec.Decode(&items); err == nil {
			return ValueOf(items)
		}
	}
	return ValueOf(s)
}
