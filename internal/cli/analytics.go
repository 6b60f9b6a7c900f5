package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"repodoctor/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show score and stage-duration stats over recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
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

		summary, err := analytics.QuerySummary(d, repo)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Runs: %d (failed: %d)\n", summary.Runs, summary.Failed)
		if summary.Runs > summary.Failed {
			fmt.Fprintf(out, "Score: avg %.1f, best %d, worst %d\n", summary.AvgScore, summary.BestScore, summary.WorstScore)
		}
		for _, verdict := range []string{"Healthy", "Fair", "Needs Work"} {
			if n := summary.Verdicts[verdict]; n > 0 {
				fmt.Fprintf(out, "  %-10s %d\n", verdict, n)
			}
		}

		durations, err := analytics.QueryStageDurations(d)
		if err != nil {
			return err
		}
		if len(durations) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tCOUNT\tAVG(ms)\tP50(ms)\tP95(ms)")
		for _, sd := range durations {
			fmt.Fprintf(w, "%s\t%d\t%.0f\t%.0f\t%.0f\n", sd.Stage, sd.Count, sd.AvgMs, sd.P50Ms, sd.P95Ms)
		}
		return w.Flush()
	},
}

func init() {
	analyticsCmd.Flags().String("repo", "", "restrict stats to one repository (owner/project)")
	analyticsCmd.Flags().String("config", "", "path to a repodoctor config file")
}
