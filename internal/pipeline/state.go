package pipeline

// State is the run state threaded through the pipeline stages. It is
// created once per run, extended by each stage, and never shared across
// concurrent runs. Stages treat the incoming value as read-only and
// return an extended copy.
type State struct {
	// Inputs, immutable after creation.
	Reference  string `json:"reference"`
	Credential string `json:"-"`
	Model      string `json:"model,omitempty"`

	// Resolved repository identity, populated by the discover stage.
	Owner   string `json:"owner,omitempty"`
	Project string `json:"project,omitempty"`
	Branch  string `json:"branch,omitempty"`

	// FilePaths is the ordered list of candidate paths from discovery.
	FilePaths []string `json:"file_paths,omitempty"`

	// Contents maps path to decoded text for fetched files. Keys are a
	// subset of FilePaths. Excluded from artifacts to keep them small.
	Contents map[string]string `json:"-"`

	// Dispositions records the fate of every input path during retrieval.
	Dispositions map[string]Disposition `json:"dispositions,omitempty"`

	// FetchTruncated is set when the fetch cap cut off remaining paths.
	FetchTruncated bool `json:"skipped_by_limit,omitempty"`

	// Findings holds one assessment record per fetched file.
	Findings map[string]Finding `json:"findings,omitempty"`

	// Remediations holds per-file remediation outcomes. Keys are a
	// subset of Findings keys.
	Remediations map[string]Remediation `json:"remediations,omitempty"`

	// Report is the final synthesis output.
	Report *Report `json:"report,omitempty"`
}

// RepoFullName returns "owner/project" once discovery has resolved it.
func (s State) RepoFullName() string {
	if s.Owner == "" && s.Project == "" {
		return ""
	}
	return s.Owner + "/" + s.Project
}

// Disposition describes what retrieval did with a single path.
type Disposition struct {
	Fetched   bool   `json:"fetched,omitempty"`
	Skipped   string `json:"skipped,omitempty"` // "binary" or "too_large"
	SizeBytes int    `json:"size_bytes,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Finding is the per-file assessment record.
type Finding struct {
	Lines  int  `json:"lines"`
	Chars  int  `json:"chars"`
	Source bool `json:"source"`

	SyntaxOK    bool   `json:"syntax_ok"`
	SyntaxError string `json:"syntax_error,omitempty"`

	Flake8 AnalyzerResult `json:"flake8,omitempty"`
	Pylint AnalyzerResult `json:"pylint,omitempty"`

	// Note marks files that received only basic metadata treatment.
	Note string `json:"note,omitempty"`
}

// AnalyzerResult is the normalized output of one static-analysis pass.
type AnalyzerResult struct {
	ExitCode int     `json:"exit_code"`
	Issues   []Issue `json:"issues,omitempty"`
	Stderr   string  `json:"stderr,omitempty"`
}

// Issue is a single analyzer finding.
type Issue struct {
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	// Raw preserves the analyzer's original line-oriented form when the
	// tool emits one (flake8 "row:col:code:text").
	Raw string `json:"raw,omitempty"`
}

// Remediation actions.
const (
	ActionSuggestFix    = "suggest_fix"
	ActionNoChange      = "no_change_needed"
	ActionSkipNonSource = "skip_non_source"
	ActionSkippedLimit  = "skipped_limit"
	ActionLLMError      = "llm_error"
	ActionExtractFailed = "extract_failed"
)

// Remediation is the per-file outcome of the remediation stage.
type Remediation struct {
	Action           string `json:"action"`
	Diff             string `json:"diff,omitempty"`
	CorrectedPreview string `json:"corrected_preview,omitempty"`
	Notes            string `json:"notes,omitempty"`
	Error            string `json:"error,omitempty"`
	RawPreview       string `json:"raw_preview,omitempty"`
}

// Report is the synthesized run summary.
type Report struct {
	Repo      string      `json:"repo"`
	Branch    string      `json:"branch"`
	Score     int         `json:"health_score"`
	Verdict   string      `json:"verdict"`
	Stats     ReportStats `json:"stats"`
	Narrative string      `json:"narrative"`
}

// ReportStats holds the per-category counts behind the score.
type ReportStats struct {
	FilesAnalyzed   int `json:"files_analyzed"`
	SyntaxErrors    int `json:"syntax_errors"`
	Flake8WarnFiles int `json:"flake8_warn_files"`
	PylintWarnFiles int `json:"pylint_warn_files"`
	FixesProposed   int `json:"fixes_proposed"`
}
