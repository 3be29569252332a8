package main

import (
	"fmt"

	"github.com/mobinasri/terra-scripts/internal/confirm"
	"github.com/mobinasri/terra-scripts/internal/fetcher"
	"github.com/mobinasri/terra-scripts/internal/progress"
)

func runPull(args []string) int {
	flags := newCommandFlags("pull", `Usage: pull-terra-table pull [options]

Download every object referenced by a data table into
{dir}/{row}/{column}/. List cells go to {dir}/{row}/{column}/{index}/ and
non-locator cells are written to {dir}/{row}/{column}/{column}.txt.
Asks for confirmation with the total size and estimated cost first.`)

	cfg, ok, code := flags.parse(args)
	if !ok {
		return code
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger(flags.verbose)

	pl, code := buildPlan(ctx, cfg, logger, false)
	if pl == nil {
		return code
	}
	p := pl.plan
	printTally(p)

	if p.Count() == 0 {
		fmt.Fprintln(stdout, "[pull] Nothing to download")
		return ExitSuccess
	}

	gate := &confirm.Gate{
		In:        stdin,
		Out:       stdout,
		CostPerGB: cfg.CostPerGB,
		Skip:      cfg.NoPrompt,
	}
	approved, err := gate.Confirm(p.TotalSize, p.Count())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if !approved {
		fmt.Fprintln(stdout, "[pull] Download cancelled")
		return ExitDeclined
	}

	reporter := progress.NewReporter(progress.Options{
		TotalObjects: p.Count(),
		TotalSize:    p.TotalSize,
		Workers:      cfg.Workers,
		Output:       stdout,
	})
	reporter.Start()
	result := fetcher.Fetch(ctx, pl.backend, p.Tasks, fetcher.Options{
		Workers:  cfg.Workers,
		Progress: reporter,
		Logger:   logger,
	})
	reporter.Stop()

	if result.Failed > 0 {
		fmt.Fprintf(stdout, "[pull] %d of %d objects failed; rerun with 'verify' to list what is missing\n",
			result.Failed, result.Submitted)
	}
	return ExitSuccess
}
