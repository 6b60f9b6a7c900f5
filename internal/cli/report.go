package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"repodoctor/internal/pipeline"
	"repodoctor/internal/summarize"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show a stored run report (latest when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := pipeline.DefaultStore()
		if err != nil {
			return err
		}

		id := ""
		if len(args) == 1 {
			id = args[0]
		} else {
			id, err = store.Latest()
			if err != nil {
				return err
			}
		}

		res, err := store.Load(id)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		if res.Failed() {
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s failed at stage %s: %s\n", id, res.FailedStage, res.Detail)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Run %s\n\n", id)
		fmt.Fprint(cmd.OutOrStdout(), summarize.Rollup(res.State.Report))
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("json", false, "emit the stored result as JSON")
}
