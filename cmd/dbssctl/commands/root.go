// Package commands implements the CLI commands for dbssctl.
package commands

import (
	"os"

	"github.com/marmos91/dbss/cmd/dbssctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dbssctl",
	Short: "Database State Server control client",
	Long: `dbssctl is the operator CLI for a running database state server.

It reaches the server's admin introspection API (plain HTTP, no auth) to
list active objects, list in-flight fetches, and force-evict a DOID's
in-memory record.

Use "dbssctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:9091", "Admin API URL")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(activeCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(evictCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
