package remedy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"repodoctor/internal/pipeline"
)

type mockGen struct {
	response string
	err      error
	calls    []string
}

func (m *mockGen) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls = append(m.calls, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func brokenFinding() pipeline.Finding {
	return pipeline.Finding{
		Source:      true,
		SyntaxOK:    false,
		SyntaxError: "invalid syntax at line 1:6",
	}
}

func cleanFinding() pipeline.Finding {
	return pipeline.Finding{Source: true, SyntaxOK: true}
}

func TestStageRun_ProposesFixForBrokenFile(t *testing.T) {
	gen := &mockGen{response: "<START_FILE>\ndef f():\n    pass\n<END_FILE>\nSUGGESTIONS:\n- add tests"}
	st := New(gen, 6, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{"bad.py": "def f(:\n  pass\n"},
		Findings: map[string]pipeline.Finding{"bad.py": brokenFinding()},
	}
	out, abort, detail := st.Run(context.Background(), s).Unpack()
	if abort {
		t.Fatalf("unexpected abort: %s", detail)
	}

	r := out.Remediations["bad.py"]
	if r.Action != pipeline.ActionSuggestFix {
		t.Fatalf("action = %q, want %q", r.Action, pipeline.ActionSuggestFix)
	}
	if !strings.Contains(r.Diff, "-def f(:") || !strings.Contains(r.Diff, "+def f():") {
		t.Errorf("diff = %q", r.Diff)
	}
	if !strings.Contains(r.CorrectedPreview, "def f():") {
		t.Errorf("preview = %q", r.CorrectedPreview)
	}
	if !strings.Contains(r.Notes, "SUGGESTIONS") {
		t.Errorf("notes = %q", r.Notes)
	}
}

func TestStageRun_CleanFileNeedsNoModelCall(t *testing.T) {
	gen := &mockGen{response: "NO_CHANGE"}
	st := New(gen, 6, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{"ok.py": "x = 1\n"},
		Findings: map[string]pipeline.Finding{"ok.py": cleanFinding()},
	}
	out, _, _ := st.Run(context.Background(), s).Unpack()

	if r := out.Remediations["ok.py"]; r.Action != pipeline.ActionNoChange {
		t.Errorf("action = %q, want %q", r.Action, pipeline.ActionNoChange)
	}
	if len(gen.calls) != 0 {
		t.Errorf("clean file should not reach the model, got %d calls", len(gen.calls))
	}
}

func TestStageRun_NonSourceSkipped(t *testing.T) {
	gen := &mockGen{}
	st := New(gen, 6, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{"README.md": "# hi\n"},
		Findings: map[string]pipeline.Finding{"README.md": {SyntaxOK: true}},
	}
	out, _, _ := st.Run(context.Background(), s).Unpack()

	if r := out.Remediations["README.md"]; r.Action != pipeline.ActionSkipNonSource {
		t.Errorf("action = %q, want %q", r.Action, pipeline.ActionSkipNonSource)
	}
	if len(gen.calls) != 0 {
		t.Errorf("non-source file should not reach the model")
	}
}

func TestStageRun_AttemptBudgetCapsFixes(t *testing.T) {
	gen := &mockGen{response: "<START_FILE>\nfixed = True\n<END_FILE>"}
	st := New(gen, 2, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{},
		Findings: map[string]pipeline.Finding{},
	}
	for _, path := range []string{"a.py", "b.py", "c.py", "d.py"} {
		s.Contents[path] = "broken(\n"
		s.Findings[path] = brokenFinding()
	}
	out, _, _ := st.Run(context.Background(), s).Unpack()

	fixes, skipped := 0, 0
	for _, r := range out.Remediations {
		switch r.Action {
		case pipeline.ActionSuggestFix:
			fixes++
		case pipeline.ActionSkippedLimit:
			skipped++
		}
	}
	if fixes != 2 {
		t.Errorf("fixes = %d, want exactly 2", fixes)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(gen.calls) != 2 {
		t.Errorf("model calls = %d, want 2", len(gen.calls))
	}
	// Path order decides who gets the budget.
	for _, path := range []string{"a.py", "b.py"} {
		if out.Remediations[path].Action != pipeline.ActionSuggestFix {
			t.Errorf("%s action = %q, want suggest_fix", path, out.Remediations[path].Action)
		}
	}
}

func TestStageRun_ModelErrorIsSoft(t *testing.T) {
	gen := &mockGen{err: errors.New("connection refused")}
	st := New(gen, 6, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{"bad.py": "broken(\n", "ok.py": "x = 1\n"},
		Findings: map[string]pipeline.Finding{
			"bad.py": brokenFinding(),
			"ok.py":  cleanFinding(),
		},
	}
	out, abort, _ := st.Run(context.Background(), s).Unpack()
	if abort {
		t.Fatal("model errors must not abort the stage")
	}

	r := out.Remediations["bad.py"]
	if r.Action != pipeline.ActionLLMError || r.Error == "" {
		t.Errorf("remediation = %+v, want llm_error with detail", r)
	}
	if out.Remediations["ok.py"].Action != pipeline.ActionNoChange {
		t.Error("remaining files must still be processed")
	}
}

func TestStageRun_UnparseableResponse(t *testing.T) {
	gen := &mockGen{response: "The file seems broken but I cannot say more."}
	st := New(gen, 6, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{"bad.py": "broken(\n"},
		Findings: map[string]pipeline.Finding{"bad.py": brokenFinding()},
	}
	out, _, _ := st.Run(context.Background(), s).Unpack()

	r := out.Remediations["bad.py"]
	if r.Action != pipeline.ActionExtractFailed {
		t.Fatalf("action = %q, want %q", r.Action, pipeline.ActionExtractFailed)
	}
	if r.RawPreview == "" || r.Diff != "" {
		t.Errorf("remediation = %+v, want raw preview and no diff", r)
	}
}

func TestStageRun_GuessedRecoveryNoted(t *testing.T) {
	gen := &mockGen{response: "```python\nfixed = True\n```"}
	st := New(gen, 6, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{"bad.py": "broken(\n"},
		Findings: map[string]pipeline.Finding{"bad.py": brokenFinding()},
	}
	out, _, _ := st.Run(context.Background(), s).Unpack()

	r := out.Remediations["bad.py"]
	if r.Action != pipeline.ActionSuggestFix {
		t.Fatalf("action = %q, want suggest_fix", r.Action)
	}
	if !strings.Contains(r.Notes, "recovered from unmarked output") {
		t.Errorf("notes = %q, want best-effort note", r.Notes)
	}
}

func TestStageRun_FailedAttemptsDoNotConsumeBudget(t *testing.T) {
	gen := &mockGen{err: errors.New("boom")}
	st := New(gen, 1, testPromptConfig())

	s := pipeline.State{
		Contents: map[string]string{"a.py": "broken(\n", "b.py": "broken(\n"},
		Findings: map[string]pipeline.Finding{
			"a.py": brokenFinding(),
			"b.py": brokenFinding(),
		},
	}
	out, _, _ := st.Run(context.Background(), s).Unpack()

	// Neither call produced a fix, so the second candidate still got its
	// model call instead of being cut off.
	if len(gen.calls) != 2 {
		t.Errorf("model calls = %d, want 2", len(gen.calls))
	}
	for path, r := range out.Remediations {
		if r.Action != pipeline.ActionLLMError {
			t.Errorf("%s action = %q, want llm_error", path, r.Action)
		}
	}
}
