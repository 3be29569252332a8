package plan

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mobinasri/terra-scripts/internal/locator"
	"github.com/mobinasri/terra-scripts/internal/table"
)

// Status is what the builder did with a cell or list element.
type Status string

const (
	StatusExcluded    Status = "skipped-excluded"
	StatusEmpty       Status = "skipped-empty"
	StatusExternal    Status = "skipped-external"
	StatusNotFound    Status = "skipped-nonexistent"
	StatusInvalid     Status = "skipped-invalid"
	StatusAdded       Status = "added"
	StatusWrittenText Status = "written-text"
	StatusWriteFailed Status = "write-failed"
)

// Task is one object to fetch into Dir. Index is -1 for a single-locator
// cell and the list position otherwise.
type Task struct {
	Row     string
	Column  string
	Index   int
	Locator locator.Locator
	Dir     string
	Size    int64
}

// Path is where the object will be written.
func (t Task) Path() string {
	return filepath.Join(t.Dir, t.Locator.ObjectName())
}

// Disposition records the outcome of planning one cell or list element.
type Disposition struct {
	Row     string
	Column  string
	Index   int
	Kind    table.Kind
	Locator string
	Status  Status
	Size    int64
	Err     error
}

func (d Disposition) String() string {
	var sb strings.Builder
	sb.WriteString(d.Row)
	sb.WriteByte(':')
	sb.WriteString(d.Column)
	if d.Index >= 0 {
		sb.WriteString("[" + strconv.Itoa(d.Index) + "]")
	}
	sb.WriteByte(' ')
	sb.WriteString(string(d.Status))
	if d.Locator != "" {
		sb.WriteByte(' ')
		sb.WriteString(d.Locator)
	}
	if d.Status == StatusAdded {
		fmt.Fprintf(&sb, " (%s)", humanize.Bytes(uint64(d.Size)))
	}
	if d.Err != nil && d.Status != StatusNotFound {
		fmt.Fprintf(&sb, ": %v", d.Err)
	}
	return sb.String()
}

// Plan is the ordered work list for a pull. It is not modified after Build.
type Plan struct {
	Tasks     []Task
	TotalSize int64
	Cells     []Disposition
	TextFiles []string
}

// Count returns the number of tasks.
func (p *Plan) Count() int {
	return len(p.Tasks)
}

// Tally counts dispositions by status.
func (p *Plan) Tally() map[Status]int {
	m := make(map[Status]int)
	for _, d := range p.Cells {
		m[d.Status]++
	}
	return m
}

// CellDir is the destination of a single-locator cell.
func CellDir(base, row, column string) string {
	return filepath.Join(base, row, column)
}

// ElementDir is the destination of element i of a locator list.
func ElementDir(base, row, column string, i int) string {
	return filepath.Join(base, row, column, strconv.Itoa(i))
}

// TextPath is the file a non-locator cell is written to.
func TextPath(base, row, column string) string {
	return filepath.Join(base, row, column, column+".txt")
}
