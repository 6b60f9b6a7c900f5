package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		cfgPath, _ := cmd.Flags().GetString("config")

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		d, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		runs, err := d.ListRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tREPO\tBRANCH\tSTATUS\tSCORE\tVERDICT\tFILES\tFIXES")
		for _, r := range runs {
			status := r.Status
			if r.Status != "ok" {
				status = fmt.Sprintf("error (%s)", r.FailedStage)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
				r.RunID, r.Repo, r.Branch, status, r.Score, r.Verdict, r.FilesScanned, r.Fixes)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().String("config", "", "path to a repodoctor config file")
}
