// Package remedy asks the text-generation backend for minimal corrective
// diffs for files whose assessment flagged problems, under a per-run
// attempt cap.
package remedy

import (
	"context"
	"sort"
	"strings"

	"repodoctor/internal/llm"
	"repodoctor/internal/pipeline"
)

// Output truncation limits.
const (
	previewLimit = 2000
	notesLimit   = 1000
	rawLimit     = 1000
)

// Stage produces one remediation outcome per finding.
type Stage struct {
	gen         llm.Generator
	maxAttempts int
	prompt      PromptConfig
}

// New creates the remediate stage.
func New(gen llm.Generator, maxAttempts int, prompt PromptConfig) *Stage {
	return &Stage{gen: gen, maxAttempts: maxAttempts, prompt: prompt}
}

// Name implements pipeline.Stage.
func (st *Stage) Name() string { return "remediate" }

// candidate reports whether a finding qualifies for a model call: source
// file with invalid syntax, or either analyzer reporting issues alongside
// a nonzero exit status.
func candidate(f pipeline.Finding) bool {
	if !f.SyntaxOK {
		return true
	}
	if f.Flake8.ExitCode != 0 && len(f.Flake8.Issues) > 0 {
		return true
	}
	if f.Pylint.ExitCode != 0 && len(f.Pylint.Issues) > 0 {
		return true
	}
	return false
}

// Run implements pipeline.Stage. Model failures are per-file and never
// abort the stage. Iteration is in path order, which decides which
// candidates receive the attempt budget.
func (st *Stage) Run(ctx context.Context, s pipeline.State) pipeline.StageResult {
	outcomes := make(map[string]pipeline.Remediation, len(s.Findings))
	fixed := 0

	paths := make([]string, 0, len(s.Findings))
	for p := range s.Findings {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		f := s.Findings[path]

		if !f.Source {
			outcomes[path] = pipeline.Remediation{Action: pipeline.ActionSkipNonSource}
			continue
		}
		if !candidate(f) {
			outcomes[path] = pipeline.Remediation{Action: pipeline.ActionNoChange}
			continue
		}
		if fixed >= st.maxAttempts {
			outcomes[path] = pipeline.Remediation{Action: pipeline.ActionSkippedLimit}
			continue
		}

		content := s.Contents[path]
		out, err := st.gen.Generate(ctx, BuildPrompt(path, content, f, st.prompt))
		if err != nil {
			outcomes[path] = pipeline.Remediation{
				Action: pipeline.ActionLLMError,
				Error:  err.Error(),
			}
			continue
		}

		oc := ParseResponse(out)
		switch oc.Kind {
		case KindNoChange:
			outcomes[path] = pipeline.Remediation{Action: pipeline.ActionNoChange}

		case KindCorrected, KindGuessed:
			notes := oc.Notes
			if oc.Kind == KindGuessed {
				notes = strings.TrimSpace("recovered from unmarked output (best effort)\n" + notes)
			}
			outcomes[path] = pipeline.Remediation{
				Action:           pipeline.ActionSuggestFix,
				Diff:             Unified(path, content, oc.Corrected),
				CorrectedPreview: truncate(oc.Corrected, previewLimit),
				Notes:            truncate(notes, notesLimit),
			}
			fixed++

		default:
			outcomes[path] = pipeline.Remediation{
				Action:     pipeline.ActionExtractFailed,
				RawPreview: truncate(out, rawLimit),
			}
		}
	}

	s.Remediations = outcomes
	return pipeline.Continue(s)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
