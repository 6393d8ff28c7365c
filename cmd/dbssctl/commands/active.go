package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/marmos91/dbss/cmd/dbssctl/cmdutil"
	"github.com/marmos91/dbss/pkg/dbssclient"
	"github.com/spf13/cobra"
)

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "List active object records held in memory",
	Long: `List the database state server's in-memory active object table.

Examples:
  # List as table
  dbssctl active

  # List as JSON
  dbssctl active -o json`,
	RunE: runActive,
}

// activeList renders []dbssclient.ActiveObject as a table.
type activeList []dbssclient.ActiveObject

func (a activeList) Headers() []string {
	return []string{"DOID", "CLASS", "PARENT", "ZONE", "LOCATED", "FIELDS", "LAST_MUTATOR"}
}

func (a activeList) Rows() [][]string {
	rows := make([][]string, 0, len(a))
	for _, o := range a {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.DOID), 10),
			strconv.FormatUint(uint64(o.Class), 10),
			strconv.FormatUint(uint64(o.Parent), 10),
			strconv.FormatUint(uint64(o.Zone), 10),
			cmdutil.BoolToYesNo(o.Located),
			strconv.Itoa(o.FieldCount),
			strconv.FormatUint(o.LastMutator, 10),
		})
	}
	return rows
}

func runActive(cmd *cobra.Command, args []string) error {
	objects, err := cmdutil.GetClient().ListActive()
	if err != nil {
		return fmt.Errorf("failed to list active objects: %w", err)
	}
	return cmdutil.PrintOutput(os.Stdout, objects, len(objects) == 0, "No active objects.", activeList(objects))
}
