package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion overrides the build version reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "repodoctor",
	Short: "repodoctor runs repository health checks with LLM-proposed fixes",
	Long: `repodoctor runs a health-check pipeline over a GitHub repository:
it discovers text files, fetches their content, validates Python sources
(syntax, flake8, pylint), asks a local LLM for minimal corrective diffs,
and produces a health score with an executive summary.

Reports are stored under ~/.repodoctor/runs/ and run history in a local
SQLite database.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(configCmd)
}
