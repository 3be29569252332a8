package main

import (
	"fmt"

	"github.com/mobinasri/terra-scripts/internal/confirm"
)

func runPlan(args []string) int {
	flags := newCommandFlags("plan", `Usage: pull-terra-table plan [options]

Classify every cell and query object sizes like pull does, then print
the total size and estimated cost. Nothing is written to -dir.`)

	cfg, ok, code := flags.parse(args)
	if !ok {
		return code
	}

	ctx, cancel := signalContext()
	defer cancel()

	pl, code := buildPlan(ctx, cfg, newLogger(flags.verbose), true)
	if pl == nil {
		return code
	}
	printTally(pl.plan)

	gate := &confirm.Gate{CostPerGB: cfg.CostPerGB}
	fmt.Fprintf(stdout, "[pull] Would download %s\n", gate.Summary(pl.plan.TotalSize, pl.plan.Count()))
	return ExitSuccess
}
