// Package config implements the "dbss config" command group.
package config

import "github.com/spf13/cobra"

// Cmd is the "dbss config" command group, grouping subcommands that
// operate on the on-disk configuration file rather than a running server.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
}

func init() {
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
	Cmd.AddCommand(editCmd)
}
