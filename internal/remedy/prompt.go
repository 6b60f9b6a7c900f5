package remedy

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"repodoctor/internal/pipeline"
)

// Response protocol shared with the model.
const (
	StartMarker   = "<START_FILE>"
	EndMarker     = "<END_FILE>"
	NoChangeToken = "NO_CHANGE"
)

const basePrompt = `You are a careful senior Python engineer. For the provided file:
- Fix syntax errors and clear lint issues.
- Make minimal changes and preserve intent and style.
- Do NOT add new external dependencies.
If no changes are needed, return exactly: NO_CHANGE

Return the corrected file only between markers:
<START_FILE>
...corrected file content...
<END_FILE>

After the markers, optionally include a short "SUGGESTIONS:" bullet list (3 max) describing repo-level improvements relevant to this file (testing, types, docs).`

// PromptConfig bounds the size of the content embedded in the prompt.
type PromptConfig struct {
	SnippetThreshold  int // above this, prefer issue-line snippets
	HeadTailThreshold int // above this, fall back to head+tail slices
	HeadTailBytes     int // byte budget for each of head and tail
}

// BuildPrompt assembles the instructional prompt for one file. Large
// content is reduced to windows around reported issue lines when any can
// be extracted, otherwise to a head and tail slice.
func BuildPrompt(path, content string, f pipeline.Finding, cfg PromptConfig) string {
	payload := content

	lines := issueLines(f)
	switch {
	case len(lines) > 0 && len(content) > cfg.SnippetThreshold:
		payload = snippetPayload(content, lines)
	case len(content) > cfg.HeadTailThreshold:
		payload = headTailPayload(content, cfg.HeadTailBytes)
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nFILE_PATH: ")
	b.WriteString(path)
	b.WriteString("\n\nISSUES:\n")
	b.WriteString(issuesSummary(f))
	b.WriteString("\n\nCURRENT_CONTENT:\n<START_ORIGINAL>\n")
	b.WriteString(payload)
	b.WriteString("\n<END_ORIGINAL>\n\nProduce the corrected file between ")
	b.WriteString(StartMarker)
	b.WriteString(" and ")
	b.WriteString(EndMarker)
	b.WriteString(".")
	return b.String()
}

var syntaxLineRe = regexp.MustCompile(`line (\d+)`)

// issueLines collects distinct one-based line numbers from the finding:
// structured analyzer issues, flake8-style raw "row:col:code:text"
// entries, and a "line N" pattern in the syntax-error message.
func issueLines(f pipeline.Finding) []int {
	seen := make(map[int]bool)

	collect := func(issues []pipeline.Issue) {
		for _, is := range issues {
			if is.Line > 0 {
				seen[is.Line] = true
				continue
			}
			if is.Raw == "" {
				continue
			}
			head, _, ok := strings.Cut(is.Raw, ":")
			if !ok {
				continue
			}
			if n, err := strconv.Atoi(head); err == nil && n > 0 {
				seen[n] = true
			}
		}
	}
	collect(f.Flake8.Issues)
	collect(f.Pylint.Issues)

	if m := syntaxLineRe.FindStringSubmatch(f.SyntaxError); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			seen[n] = true
		}
	}

	lines := make([]int, 0, len(seen))
	for n := range seen {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	return lines
}

// snippetPayload joins ±3-4 line windows around each issue line.
func snippetPayload(content string, issueLines []int) string {
	lines := strings.Split(content, "\n")
	var snippets []string
	for _, ln := range issueLines {
		start := ln - 4
		if start < 0 {
			start = 0
		}
		end := ln + 3
		if end > len(lines) {
			end = len(lines)
		}
		if start >= end {
			continue
		}
		snippet := strings.Join(lines[start:end], "\n")
		snippets = append(snippets, fmt.Sprintf("# --- context for line %d ---\n%s\n", ln, snippet))
	}
	return "# NOTE: sending only context snippets because file is large\n" +
		strings.Join(snippets, "\n\n")
}

func headTailPayload(content string, budget int) string {
	head := content
	if len(head) > budget {
		head = head[:budget]
	}
	tail := content
	if len(tail) > budget {
		tail = tail[len(tail)-budget:]
	}
	return fmt.Sprintf("# NOTE: head...\n%s\n\n# NOTE: tail...\n%s", head, tail)
}

// issuesSummary renders the finding's issue context for the prompt.
func issuesSummary(f pipeline.Finding) string {
	summary := struct {
		SyntaxOK     bool             `json:"syntax_ok"`
		SyntaxError  string           `json:"syntax_error,omitempty"`
		Flake8Issues []pipeline.Issue `json:"flake8_issues,omitempty"`
		PylintIssues []pipeline.Issue `json:"pylint_issues,omitempty"`
	}{
		SyntaxOK:     f.SyntaxOK,
		SyntaxError:  f.SyntaxError,
		Flake8Issues: f.Flake8.Issues,
		PylintIssues: f.Pylint.Issues,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf("syntax_ok: %v, syntax_error: %s", f.SyntaxOK, f.SyntaxError)
	}
	return string(data)
}
