package assess

import (
	"strconv"
	"strings"

	"repodoctor/internal/pipeline"
)

// Flake8Parser parses flake8 output produced with
// --format="%(row)d:%(col)d:%(code)s:%(text)s".
type Flake8Parser struct{}

// Parse implements Parser. Lines that do not match the expected shape
// are kept verbatim rather than dropped.
func (p *Flake8Parser) Parse(stdout string, stderr string, exitCode int) []pipeline.Issue {
	var issues []pipeline.Issue
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 4)
		if len(parts) != 4 {
			issues = append(issues, pipeline.Issue{Message: line, Raw: line})
			continue
		}

		row, rowErr := strconv.Atoi(parts[0])
		col, colErr := strconv.Atoi(parts[1])
		if rowErr != nil || colErr != nil {
			issues = append(issues, pipeline.Issue{Message: line, Raw: line})
			continue
		}

		issues = append(issues, pipeline.Issue{
			Line:    row,
			Column:  col,
			Code:    parts[2],
			Message: parts[3],
			Raw:     line,
		})
	}
	return issues
}
