// Package assess runs language-specific checks over fetched file
// contents: a full-document syntax parse plus two independent external
// analyzer passes for Python sources, size metrics for everything else.
package assess

import (
	"context"
	"sort"
	"strings"

	"repodoctor/internal/pipeline"
)

// sourceExt marks files that receive full analysis.
const sourceExt = ".py"

// Stage produces exactly one Finding per fetched file.
type Stage struct {
	runner *Runner
	flake8 AnalyzerConfig
	pylint AnalyzerConfig
}

// New creates the assess stage with its two analyzer passes.
func New(runner *Runner, flake8, pylint AnalyzerConfig) *Stage {
	return &Stage{runner: runner, flake8: flake8, pylint: pylint}
}

// Name implements pipeline.Stage.
func (st *Stage) Name() string { return "assess" }

// Run implements pipeline.Stage. Assessment never aborts the run:
// analyzer problems degrade per file and are recorded in the Finding.
func (st *Stage) Run(ctx context.Context, s pipeline.State) pipeline.StageResult {
	findings := make(map[string]pipeline.Finding, len(s.Contents))

	for _, path := range sortedKeys(s.Contents) {
		content := s.Contents[path]
		f := pipeline.Finding{
			Lines: countLines(content),
			Chars: len(content),
		}

		if strings.HasSuffix(strings.ToLower(path), sourceExt) {
			f.Source = true
			f.SyntaxOK, f.SyntaxError = CheckSyntax(ctx, content)
			f.Flake8 = st.runner.Run(ctx, content, path, st.flake8)
			f.Pylint = st.runner.Run(ctx, content, path, st.pylint)
		} else {
			f.SyntaxOK = true
			f.Note = "non-source file; basic metadata only"
		}

		findings[path] = f
	}

	s.Findings = findings
	return pipeline.Continue(s)
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
