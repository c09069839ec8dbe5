// Package cli implements the ecsf command line: run, validate, test and
// trace. Commands return *ExitError to select the process exit code.
package cli
