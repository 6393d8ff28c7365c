// Package cmdutil provides shared utilities for dbssctl commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/dbss/internal/cli/output"
	"github.com/marmos91/dbss/internal/cli/prompt"
	"github.com/marmos91/dbss/pkg/dbssclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Output    string
}

// GetClient returns an admin API client for the configured server.
func GetClient() *dbssclient.Client {
	return dbssclient.New(Flags.ServerURL)
}

// PrintOutput prints data in the configured format (json or table). For
// table format it shows emptyMsg if data is empty, otherwise renders
// tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	if Flags.Output == "json" {
		return output.PrintJSON(w, data)
	}
	if isEmpty {
		_, _ = fmt.Fprintln(w, emptyMsg)
		return nil
	}
	return output.PrintTable(w, tableRenderer)
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	if Flags.Output == "json" {
		return
	}
	fmt.Fprintln(os.Stdout, msg)
}

// BoolToYesNo converts a boolean to "yes" or "no" for table display.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// HandleAbort checks if err is a user-aborted prompt and prints a
// message, returning nil so the command exits cleanly. Any other error
// is returned unchanged.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
