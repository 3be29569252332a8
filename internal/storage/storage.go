package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mobinasri/terra-scripts/internal/locator"
)

// ErrNotFound is returned when the referenced object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Backend is the object store the planner and fetcher talk to.
type Backend interface {
	// Size returns the object's size in bytes, or an error wrapping
	// ErrNotFound if it does not exist.
	Size(ctx context.Context, loc locator.Locator) (int64, error)

	// Fetch writes the object to dir/{object name} and returns the name.
	Fetch(ctx context.Context, loc locator.Locator, dir string) (string, error)
}

// Error describes a failed backend operation on one object.
type Error struct {
	Op  string
	Loc locator.Locator
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage.%s %s: %v", e.Op, e.Loc, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// writeObject streams r into path. The data lands in a temporary file in
// the same directory and is renamed into place only after a full copy, so
// an interrupted fetch never leaves a truncated file under the final name.
func writeObject(path string, r io.Reader) (int64, error) {
	dir, name := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return n, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return n, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return n, fmt.Errorf("rename: %w", err)
	}
	return n, nil
}
