// Package summarize aggregates findings and remediation outcomes into a
// numeric health score, a tiered verdict, and an LLM-written narrative.
package summarize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"repodoctor/internal/llm"
	"repodoctor/internal/pipeline"
)

// Per-file score penalties. Each file starts at 100 and is floored at 0.
const (
	penaltySyntax    = 50
	penaltyAnalyzer  = 15
	penaltyNonSource = 2
	penaltyFix       = 5
)

// Verdict tiers.
const (
	VerdictHealthy   = "Healthy"
	VerdictFair      = "Fair"
	VerdictNeedsWork = "Needs Work"

	healthyFloor = 85
	fairFloor    = 65
)

const maxExamplePaths = 8

const narrativePrompt = `You are an expert repository reviewer. Given the repo name, a numeric health score, counts and example files with issues, produce:
1) A 4-line executive summary.
2) A bullet list of 8 prioritized improvements. For each improvement mark [Auto] if it can be automated, else [Human].
3) A one-line verdict: Healthy / Fair / Needs Work

INPUT:
REPO: %s
BRANCH: %s
HEALTH_SCORE: %d
FILES_ANALYZED: %d
SYNTAX_ERRORS: %d
FLAKE8_WARN_FILES: %d
PYLINT_WARN_FILES: %d
EXAMPLE_ISSUE_FILES: %s

Provide concise output.`

// Stage synthesizes the final report.
type Stage struct {
	gen llm.Generator
}

// New creates the summarize stage.
func New(gen llm.Generator) *Stage {
	return &Stage{gen: gen}
}

// Name implements pipeline.Stage.
func (st *Stage) Name() string { return "summarize" }

// Run implements pipeline.Stage. A backend failure degrades to an inline
// error string in the narrative; score and verdict always come from the
// findings alone, so synthesis never aborts the run.
func (st *Stage) Run(ctx context.Context, s pipeline.State) pipeline.StageResult {
	score := Score(s.Findings, s.Remediations)
	stats := computeStats(s.Findings, s.Remediations)
	examples := examplePaths(s.Findings)

	prompt := fmt.Sprintf(narrativePrompt,
		s.RepoFullName(), s.Branch, score,
		stats.FilesAnalyzed, stats.SyntaxErrors,
		stats.Flake8WarnFiles, stats.PylintWarnFiles,
		strings.Join(examples, ", "))

	narrative, err := st.gen.Generate(ctx, prompt)
	if err != nil {
		narrative = fmt.Sprintf("LLM error: %v", err)
	}

	s.Report = &pipeline.Report{
		Repo:      s.RepoFullName(),
		Branch:    s.Branch,
		Score:     score,
		Verdict:   Verdict(score),
		Stats:     stats,
		Narrative: narrative,
	}
	return pipeline.Continue(s)
}

// Score computes the aggregate health score: the truncated mean of
// per-file scores, each clamped at 0. An empty findings map scores a
// perfect 100 by convention.
func Score(findings map[string]pipeline.Finding, remediations map[string]pipeline.Remediation) int {
	if len(findings) == 0 {
		return 100
	}

	total := 0
	for path, f := range findings {
		score := 100
		if f.Source {
			if !f.SyntaxOK {
				score -= penaltySyntax
			}
			if analyzerFlagged(f.Flake8) {
				score -= penaltyAnalyzer
			}
			if analyzerFlagged(f.Pylint) {
				score -= penaltyAnalyzer
			}
		} else {
			score -= penaltyNonSource
		}
		if remediations[path].Action == pipeline.ActionSuggestFix {
			score -= penaltyFix
		}
		if score < 0 {
			score = 0
		}
		total += score
	}
	return total / len(findings)
}

// Verdict maps a score onto its tier.
func Verdict(score int) string {
	switch {
	case score >= healthyFloor:
		return VerdictHealthy
	case score >= fairFloor:
		return VerdictFair
	default:
		return VerdictNeedsWork
	}
}

func analyzerFlagged(a pipeline.AnalyzerResult) bool {
	return a.ExitCode != 0 && len(a.Issues) > 0
}

func hasIssues(f pipeline.Finding) bool {
	return !f.SyntaxOK || len(f.Flake8.Issues) > 0 || len(f.Pylint.Issues) > 0
}

func computeStats(findings map[string]pipeline.Finding, remediations map[string]pipeline.Remediation) pipeline.ReportStats {
	stats := pipeline.ReportStats{FilesAnalyzed: len(findings)}
	for _, f := range findings {
		if f.Source && !f.SyntaxOK {
			stats.SyntaxErrors++
		}
		if analyzerFlagged(f.Flake8) {
			stats.Flake8WarnFiles++
		}
		if analyzerFlagged(f.Pylint) {
			stats.PylintWarnFiles++
		}
	}
	for _, r := range remediations {
		if r.Action == pipeline.ActionSuggestFix {
			stats.FixesProposed++
		}
	}
	return stats
}

// examplePaths returns up to maxExamplePaths paths exhibiting issues, in
// stable order.
func examplePaths(findings map[string]pipeline.Finding) []string {
	var paths []string
	for path, f := range findings {
		if f.Source && hasIssues(f) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	if len(paths) > maxExamplePaths {
		paths = paths[:maxExamplePaths]
	}
	return paths
}

// Rollup renders the human-readable report block printed after a run.
func Rollup(rep *pipeline.Report) string {
	if rep == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Repository:  %s (%s)\n", rep.Repo, rep.Branch)
	fmt.Fprintf(&b, "Health:      %d/100 (%s)\n", rep.Score, rep.Verdict)
	fmt.Fprintf(&b, "Files analyzed: %d | Syntax errors: %d | flake8 warnings: %d | pylint warnings: %d | Fixes proposed: %d\n",
		rep.Stats.FilesAnalyzed, rep.Stats.SyntaxErrors,
		rep.Stats.Flake8WarnFiles, rep.Stats.PylintWarnFiles, rep.Stats.FixesProposed)
	if rep.Narrative != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(rep.Narrative))
		b.WriteString("\n")
	}
	return b.String()
}
