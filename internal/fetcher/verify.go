package fetcher

import (
	"errors"
	"fmt"
	"os"

	"github.com/mobinasri/terra-scripts/internal/plan"
)

var (
	// ErrMissing is reported when a planned object is not on disk.
	ErrMissing = errors.New("fetcher: object missing")

	// ErrSizeMismatch is reported when a local file differs in size from the plan.
	ErrSizeMismatch = errors.New("fetcher: size mismatch")
)

// Mismatch is a planned object whose local copy is missing or wrong.
type Mismatch struct {
	Task plan.Task
	Err  error
}

// Verify checks that every task's object exists at its destination with the
// planned size. It reads only file metadata.
func Verify(tasks []plan.Task) []Mismatch {
	var mismatches []Mismatch
	for _, task := range tasks {
		info, err := os.Stat(task.Path())
		switch {
		case errors.Is(err, os.ErrNotExist):
			mismatches = append(mismatches, Mismatch{Task: task, Err: ErrMissing})
		case err != nil:
			mismatches = append(mismatches, Mismatch{Task: task, Err: err})
		case info.Size() != task.Size:
			mismatches = append(mismatches, Mismatch{
				Task: task,
				Err:  fmt.Errorf("%w: expected %d, got %d", ErrSizeMismatch, task.Size, info.Size()),
			})
		}
	}
	return mismatches
}
