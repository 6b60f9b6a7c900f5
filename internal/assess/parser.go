package assess

import "repodoctor/internal/pipeline"

// Parser converts raw analyzer output into normalized issues.
type Parser interface {
	Parse(stdout string, stderr string, exitCode int) []pipeline.Issue
}
