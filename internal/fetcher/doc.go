// Package fetcher executes a plan's tasks against a storage backend.
//
// # Usage
//
//	result := fetcher.Fetch(ctx, backend, p.Tasks, fetcher.Options{
//	    Workers:  4,
//	    Progress: reporter,
//	})
//	fmt.Printf("%d/%d fetched\n", result.Succeeded, result.Submitted)
//
// # Worker Pool
//
// Workers receive tasks from a channel, create the destination directory,
// fetch the object and send an [Outcome] on a result channel. Outcomes are
// collected in completion order. There is no retry: each task is attempted
// once and failures are reported, never propagated.
//
// # Verification
//
// [Verify] compares the files on disk with a plan, which lets a rerun into
// the same directory report what is missing.
package fetcher
