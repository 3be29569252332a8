package main

import (
	"fmt"

	"github.com/mobinasri/terra-scripts/internal/fetcher"
)

func runVerify(args []string) int {
	flags := newCommandFlags("verify", `Usage: pull-terra-table verify [options]

Rebuild the plan for a table and check that every object exists under
-dir with the expected size. Exits non-zero if anything is missing.`)

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

	mismatches := fetcher.Verify(pl.plan.Tasks)
	for _, m := range mismatches {
		fmt.Fprintf(stdout, "[pull] %s -> %s: %v\n", m.Task.Locator, m.Task.Path(), m.Err)
	}

	if len(mismatches) > 0 {
		fmt.Fprintf(stdout, "[pull] Verify failed: %d of %d objects missing or wrong size\n",
			len(mismatches), pl.plan.Count())
		return ExitVerifyFailed
	}
	fmt.Fprintf(stdout, "[pull] Verified %d objects in %s\n", pl.plan.Count(), cfg.Dir)
	return ExitSuccess
}
