package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repodoctor/internal/assess"
	"repodoctor/internal/config"
	"repodoctor/internal/db"
	"repodoctor/internal/discover"
	"repodoctor/internal/hosting"
	"repodoctor/internal/llm"
	"repodoctor/internal/pipeline"
	"repodoctor/internal/remedy"
	"repodoctor/internal/retrieve"
	"repodoctor/internal/summarize"
)

var runCmd = &cobra.Command{
	Use:   "run <owner/repo | url>",
	Short: "Run the health-check pipeline against a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		token, _ := cmd.Flags().GetString("token")
		model, _ := cmd.Flags().GetString("model")
		cfgPath, _ := cmd.Flags().GetString("config")
		asJSON, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		noHistory, _ := cmd.Flags().GetBool("no-history")

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if model != "" {
			cfg.LLM.Model = model
		}

		logger := zap.NewNop()
		if verbose {
			logger, err = zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()
		}

		host := hosting.NewGitHub(token)
		gen, err := buildGenerator(cfg.LLM)
		if err != nil {
			return err
		}

		runner, err := buildRunner(cfg, host, gen, logger)
		if err != nil {
			return err
		}

		runID := pipeline.NewRunID(time.Now())

		var history *db.DB
		if !noHistory {
			history, err = openHistory(cfg)
			if err != nil {
				// History is an auxiliary concern; the run proceeds.
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: run history disabled: %v\n", err)
			} else {
				defer history.Close()
				runner.OnStage = func(stage, status, detail string, d time.Duration) {
					_ = history.LogStageEvent(runID, stage, status, detail, int(d.Milliseconds()))
				}
			}
		}

		res := runner.Run(cmd.Context(), pipeline.State{
			Reference:  args[0],
			Credential: token,
			Model:      cfg.LLM.Model,
			Branch:     branch,
		})

		if store, serr := pipeline.DefaultStore(); serr == nil {
			if serr = store.Save(runID, res); serr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: save run artifacts: %v\n", serr)
			}
		}
		if history != nil {
			_ = history.InsertRun(runRow(runID, args[0], res))
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			if res.Failed() {
				return fmt.Errorf("run %s failed at stage %s", runID, res.FailedStage)
			}
			return nil
		}

		if res.Failed() {
			return fmt.Errorf("failed at stage %s: %s", res.FailedStage, res.Detail)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Run %s finished.\n\n", runID)
		fmt.Fprint(cmd.OutOrStdout(), summarize.Rollup(res.State.Report))
		return nil
	},
}

func init() {
	runCmd.Flags().String("branch", "", "branch to analyze (default: repository default branch)")
	runCmd.Flags().String("token", "", "GitHub access token (default: $GITHUB_TOKEN)")
	runCmd.Flags().String("model", "", "override the configured LLM model")
	runCmd.Flags().String("config", "", "path to a repodoctor config file")
	runCmd.Flags().Bool("json", false, "emit the full run result as JSON")
	runCmd.Flags().Bool("verbose", false, "log stage progress")
	runCmd.Flags().Bool("no-history", false, "skip recording the run in the history database")
}

// buildRunner wires the five pipeline stages from config.
func buildRunner(cfg *config.Config, host hosting.Client, gen llm.Generator, logger *zap.Logger) (*pipeline.Runner, error) {
	flake8, pylint, err := analyzerConfigs(cfg)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(logger,
		discover.New(host, cfg.Scan.Extensions, cfg.Scan.MaxListFiles),
		retrieve.New(host, cfg.Scan.BinaryExtensions, cfg.Scan.MaxFetchFiles, cfg.Scan.MaxBlobBytes),
		assess.New(assess.NewRunner(&assess.ExecRunner{}), flake8, pylint),
		remedy.New(gen, cfg.Remediation.MaxAttempts, remedy.PromptConfig{
			SnippetThreshold:  cfg.Remediation.SnippetThreshold,
			HeadTailThreshold: cfg.Remediation.HeadTailThreshold,
			HeadTailBytes:     cfg.Remediation.HeadTailBytes,
		}),
		summarize.New(gen),
	), nil
}

// analyzerConfigs resolves the two analyzer passes from the config map
// by parser kind.
func analyzerConfigs(cfg *config.Config) (flake8, pylint assess.AnalyzerConfig, err error) {
	found := map[string]bool{}
	for name, a := range cfg.Analyzers {
		ac := assess.AnalyzerConfig{
			Name:    name,
			Command: a.Command,
			Parser:  a.Parser,
			Timeout: config.ParseTimeout(a.Timeout, time.Minute),
		}
		switch a.Parser {
		case config.ParserFlake8:
			flake8 = ac
			found[config.ParserFlake8] = true
		case config.ParserPylint:
			pylint = ac
			found[config.ParserPylint] = true
		}
	}
	if !found[config.ParserFlake8] || !found[config.ParserPylint] {
		return flake8, pylint, fmt.Errorf("config must define one analyzer with parser %q and one with parser %q",
			config.ParserFlake8, config.ParserPylint)
	}
	return flake8, pylint, nil
}

func buildGenerator(cfg config.LLM) (llm.Generator, error) {
	timeout := config.ParseTimeout(cfg.Timeout, 2*time.Minute)
	switch cfg.Transport {
	case "cli":
		return llm.NewCLI(cfg.Model, timeout), nil
	case "api", "":
		return llm.NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm transport %q", cfg.Transport)
	}
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openHistory(cfg *config.Config) (*db.DB, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	d, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// runRow projects a run result onto its history row.
func runRow(runID, reference string, res pipeline.RunResult) db.Run {
	row := db.Run{
		RunID:        runID,
		Reference:    reference,
		Repo:         res.State.RepoFullName(),
		Branch:       res.State.Branch,
		Status:       res.Status,
		FailedStage:  res.FailedStage,
		Detail:       res.Detail,
		FilesScanned: len(res.State.Findings),
	}
	if rep := res.State.Report; rep != nil {
		row.Score = rep.Score
		row.Verdict = rep.Verdict
		row.Fixes = rep.Stats.FixesProposed
	}
	return row
}
