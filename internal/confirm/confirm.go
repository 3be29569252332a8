// Package confirm asks the operator to approve a pull before any transfer.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultCostPerGB is the approximate egress price in USD per 10^9 bytes.
const DefaultCostPerGB = 0.12

const bytesPerGB = 1e9

// Gate prompts on Out and reads answers from In.
type Gate struct {
	In  io.Reader
	Out io.Writer

	// CostPerGB converts the total size into an approximate cost.
	CostPerGB float64

	// Skip approves without prompting.
	Skip bool
}

// Summary formats the size, cost and count shown to the operator.
func (g *Gate) Summary(totalBytes int64, count int) string {
	gb := float64(totalBytes) / bytesPerGB
	return fmt.Sprintf("%d objects, %.2f GB (~$%.2f at $%.2f/GB)", count, gb, gb*g.CostPerGB, g.CostPerGB)
}

// Confirm shows the summary and blocks until the operator answers yes or
// no, asking again on any other input. End of input counts as no.
func (g *Gate) Confirm(totalBytes int64, count int) (bool, error) {
	if g.Skip {
		return true, nil
	}

	sc := bufio.NewScanner(g.In)
	for {
		fmt.Fprintf(g.Out, "[pull] About to download %s. Continue? [y/n]: ", g.Summary(totalBytes, count))
		if !sc.Scan() {
			fmt.Fprintln(g.Out)
			if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
				return false, fmt.Errorf("confirm: read answer: %w", err)
			}
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(g.Out, "[pull] Please answer y or n.")
	}
}
