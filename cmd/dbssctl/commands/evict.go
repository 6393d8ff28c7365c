package commands

import (
	"fmt"
	"strconv"

	"github.com/marmos91/dbss/cmd/dbssctl/cmdutil"
	"github.com/marmos91/dbss/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var evictForce bool

var evictCmd = &cobra.Command{
	Use:   "evict <doid>",
	Short: "Force-evict an active object record",
	Long: `Tear down a DOID's in-memory active object record as if a
DELETE_RAM had been received for it, broadcasting to its last known
location first.

Examples:
  # Evict with confirmation prompt
  dbssctl evict 4001

  # Evict without confirmation
  dbssctl evict 4001 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runEvict,
}

func init() {
	evictCmd.Flags().BoolVarP(&evictForce, "force", "f", false, "Skip confirmation prompt")
}

func runEvict(cmd *cobra.Command, args []string) error {
	doid, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("doid must be a 32-bit unsigned integer: %w", err)
	}

	confirmed, err := prompt.ConfirmWithForce(
		fmt.Sprintf("Evict DOID %d? This discards its in-memory record.", doid),
		evictForce,
	)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	result, err := cmdutil.GetClient().ForceEvict(uint32(doid))
	if err != nil {
		return fmt.Errorf("failed to evict doid %d: %w", doid, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("DOID %d evicted: %t", result.DOID, result.Evicted))
	return nil
}
