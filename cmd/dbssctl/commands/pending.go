package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/marmos91/dbss/cmd/dbssctl/cmdutil"
	"github.com/marmos91/dbss/pkg/dbssclient"
	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List in-flight database fetches",
	Long: `List the database state server's pending-fetch waiter table: DOIDs
currently awaiting a GET_ALL response from the database backend.

Examples:
  dbssctl pending
  dbssctl pending -o json`,
	RunE: runPending,
}

type pendingList []dbssclient.PendingFetch

func (p pendingList) Headers() []string {
	return []string{"DOID", "CONTEXT", "WAITERS"}
}

func (p pendingList) Rows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, e := range p {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.DOID), 10),
			strconv.FormatUint(uint64(e.Context), 10),
			strconv.Itoa(e.WaiterCount),
		})
	}
	return rows
}

func runPending(cmd *cobra.Command, args []string) error {
	entries, err := cmdutil.GetClient().ListPending()
	if err != nil {
		return fmt.Errorf("failed to list pending fetches: %w", err)
	}
	return cmdutil.PrintOutput(os.Stdout, entries, len(entries) == 0, "No pending fetches.", pendingList(entries))
}
