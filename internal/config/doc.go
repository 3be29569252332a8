// Package config defines configuration structures for the pull-terra-table CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (PULL_ prefix)
//   - YAML configuration file
//
// Later sources override earlier ones: defaults, then the file, then the
// environment, then flags.
//
// # Example
//
//	namespace: my-billing
//	workspace: my-workspace
//	table: sample
//	dir: ./data
//	workers: 8
//	backend: blob
//	api:
//	  retry:
//	    attempts: 3
//	    backoff: 2s
package config
