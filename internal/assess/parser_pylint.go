package assess

import (
	"encoding/json"
	"strings"

	"repodoctor/internal/pipeline"
)

// PylintParser parses pylint's --output-format=json report.
type PylintParser struct{}

type pylintMessage struct {
	Type      string `json:"type"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Symbol    string `json:"symbol"`
	Message   string `json:"message"`
	MessageID string `json:"message-id"`
}

const pylintRawLimit = 500

// Parse implements Parser. Unparseable output collapses into a single
// raw issue so the information is not lost.
func (p *PylintParser) Parse(stdout string, stderr string, exitCode int) []pipeline.Issue {
	out := strings.TrimSpace(stdout)
	if out == "" {
		return nil
	}

	var messages []pylintMessage
	if err := json.Unmarshal([]byte(out), &messages); err != nil {
		raw := out
		if len(raw) > pylintRawLimit {
			raw = raw[:pylintRawLimit]
		}
		return []pipeline.Issue{{Message: raw, Raw: raw}}
	}

	issues := make([]pipeline.Issue, 0, len(messages))
	for _, m := range messages {
		code := m.Symbol
		if code == "" {
			code = m.MessageID
		}
		issues = append(issues, pipeline.Issue{
			Line:    m.Line,
			Column:  m.Column,
			Code:    code,
			Message: m.Message,
		})
	}
	return issues
}
