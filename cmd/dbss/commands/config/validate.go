package config

import (
	"fmt"

	"github.com/marmos91/dbss/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the dbss configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  dbss config validate
  dbss config validate --config /etc/dbss/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if len(cfg.DCFilePaths) == 0 {
		warnings = append(warnings, "no DC schema files configured")
	}
	if !cfg.Admin.Enabled {
		warnings = append(warnings, "admin introspection API disabled — operators have no way to inspect in-memory state")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Range:            [%d, %d]\n", cfg.Range.Min, cfg.Range.Max)
	fmt.Printf("  Bus address:      %s\n", cfg.BusAddress)
	fmt.Printf("  Bus channel:      %d\n", cfg.BusChannel)
	fmt.Printf("  Database channel: %d\n", cfg.DatabaseChannel)
	fmt.Printf("  DC files:         %v\n", cfg.DCFilePaths)
	fmt.Printf("  Log level:        %s\n", cfg.Logging.Level)

	return nil
}
