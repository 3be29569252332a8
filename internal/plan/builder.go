package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mobinasri/terra-scripts/internal/exclude"
	"github.com/mobinasri/terra-scripts/internal/locator"
	"github.com/mobinasri/terra-scripts/internal/storage"
	"github.com/mobinasri/terra-scripts/internal/table"
)

// Options configures a Builder.
type Options struct {
	// Dir is the base output directory.
	Dir string

	// Scheme is the locator scheme, without "://".
	// Default: "gs"
	Scheme string

	// WorkspaceBucket is the caller's own bucket. Locators in any other
	// bucket are external.
	WorkspaceBucket string

	// DownloadExternal includes external locators in the plan.
	DownloadExternal bool

	// DryRun records text cells without writing them.
	DryRun bool

	// Output receives one progress line per disposition. Nil discards.
	Output io.Writer

	// Logger receives diagnostics for failed size queries and writes.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Builder walks a table and produces a Plan.
type Builder struct {
	backend    storage.Backend
	exclusions *exclude.Set
	opts       Options
}

// NewBuilder creates a Builder. A nil exclusion set excludes nothing.
func NewBuilder(backend storage.Backend, exclusions *exclude.Set, opts Options) *Builder {
	if opts.Scheme == "" {
		opts.Scheme = locator.DefaultScheme
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if exclusions == nil {
		exclusions = exclude.New(nil, nil)
	}
	return &Builder{
		backend:    backend,
		exclusions: exclusions,
		opts:       opts,
	}
}

// Build visits every cell row-major in table order. Size queries run one at
// a time so the total is known before anything is fetched. A failed query
// skips that locator only; Build returns an error only if ctx is done.
func (b *Builder) Build(ctx context.Context, t *table.Table) (*Plan, error) {
	p := &Plan{}

	for _, row := range t.Rows {
		for _, column := range t.Columns {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			if b.exclusions.SkipRow(row) || b.exclusions.SkipColumn(column) {
				b.record(p, Disposition{Row: row, Column: column, Index: -1, Status: StatusExcluded})
				continue
			}

			cell := table.Classify(t.Cell(row, column), b.opts.Scheme)
			switch cell.Kind {
			case table.KindEmpty:
				b.record(p, Disposition{Row: row, Column: column, Index: -1, Kind: cell.Kind, Status: StatusEmpty})
			case table.KindLocator:
				b.addLocator(ctx, p, row, column, -1, cell, cell.Locators[0])
			case table.KindLocatorList:
				for i, s := range cell.Locators {
					b.addLocator(ctx, p, row, column, i, cell, s)
				}
			case table.KindScalar, table.KindScalarList:
				b.writeText(p, row, column, cell)
			default:
				panic(fmt.Sprintf("plan: unhandled cell kind %v", cell.Kind))
			}
		}
	}

	return p, nil
}

func (b *Builder) addLocator(ctx context.Context, p *Plan, row, column string, index int, cell table.Cell, s string) {
	d := Disposition{Row: row, Column: column, Index: index, Kind: cell.Kind, Locator: s}

	loc, err := locator.Parse(s, b.opts.Scheme)
	if err != nil {
		d.Status = StatusInvalid
		d.Err = err
		b.opts.Logger.Warn("invalid locator", "row", row, "column", column, "index", index, "locator", s)
		b.record(p, d)
		return
	}

	if loc.IsExternal(b.opts.WorkspaceBucket) && !b.opts.DownloadExternal {
		d.Status = StatusExternal
		b.record(p, d)
		return
	}

	size, err := b.backend.Size(ctx, loc)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			b.opts.Logger.Warn("size query failed", "locator", s, "error", err)
		}
		d.Status = StatusNotFound
		d.Err = err
		b.record(p, d)
		return
	}

	dir := CellDir(b.opts.Dir, row, column)
	if index >= 0 {
		dir = ElementDir(b.opts.Dir, row, column, index)
	}
	p.Tasks = append(p.Tasks, Task{
		Row:     row,
		Column:  column,
		Index:   index,
		Locator: loc,
		Dir:     dir,
		Size:    size,
	})
	p.TotalSize += size

	d.Status = StatusAdded
	d.Size = size
	b.record(p, d)
}

// writeText writes every value of a scalar cell as one line of
// {dir}/{row}/{column}/{column}.txt.
func (b *Builder) writeText(p *Plan, row, column string, cell table.Cell) {
	d := Disposition{Row: row, Column: column, Index: -1, Kind: cell.Kind, Status: StatusWrittenText}
	path := TextPath(b.opts.Dir, row, column)

	if !b.opts.DryRun {
		if err := writeLines(path, cell.Scalars); err != nil {
			b.opts.Logger.Error("write text cell", "row", row, "column", column, "path", path, "error", err)
			d.Status = StatusWriteFailed
			d.Err = err
			b.record(p, d)
			return
		}
		p.TextFiles = append(p.TextFiles, path)
	}
	b.record(p, d)
}

func (b *Builder) record(p *Plan, d Disposition) {
	p.Cells = append(p.Cells, d)
	if b.opts.Output != nil {
		fmt.Fprintf(b.opts.Output, "[pull] %s\n", d)
	}
}

func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
