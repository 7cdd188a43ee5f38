// Package cli turns positional arguments into a settled receipt, prints the
// result line and reports the process exit status through ExitError.
package cli
