package main

import (
	"fmt"
	"io"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitTableError   = 3
	ExitStorageError = 4
	ExitDeclined     = 5
	ExitVerifyFailed = 6
)

// Replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "pull":
		return runPull(cmdArgs)
	case "plan":
		return runPlan(cmdArgs)
	case "verify":
		return runVerify(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(stderr, `Usage: pull-terra-table <command> [options]

Commands:
  pull    Download every object referenced by a data table into -dir
  plan    Show what pull would download, without writing anything
  verify  Check a previous pull's files against the table

Run 'pull-terra-table <command> -h' for command-specific help.`)
}
