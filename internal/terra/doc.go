// Package terra is a small client for the workspace API.
//
// It provides the two lookups a pull needs:
//   - [Client.WorkspaceBucket] resolves the workspace's own bucket name
//   - [Client.FetchTable] pages through a data table and returns a [table.Table]
//
// Requests are rate limited, and network errors, 429 and 5xx responses are
// retried with exponential backoff.
//
// # Usage
//
//	client := terra.NewClient(terra.DefaultAPIURL, terra.Options{
//	    RetryAttempts: 5,
//	    Token:         tokenFunc,
//	})
//
//	bucket, err := client.WorkspaceBucket(ctx, "my-billing", "my-workspace")
//	tbl, err := client.FetchTable(ctx, "my-billing", "my-workspace", "sample")
package terra
