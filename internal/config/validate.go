package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the config for values the pipeline cannot run with.
func Validate(cfg *Config) error {
	var problems []string

	if len(cfg.Scan.Extensions) == 0 {
		problems = append(problems, "scan.extensions must not be empty")
	}
	for _, ext := range cfg.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("scan.extensions entry %q must start with a dot", ext))
		}
	}
	if cfg.Scan.MaxListFiles <= 0 {
		problems = append(problems, "scan.max_list_files must be positive")
	}
	if cfg.Scan.MaxFetchFiles <= 0 {
		problems = append(problems, "scan.max_fetch_files must be positive")
	}
	if cfg.Scan.MaxBlobBytes <= 0 {
		problems = append(problems, "scan.max_blob_bytes must be positive")
	}

	for name, a := range cfg.Analyzers {
		if a.Command == "" {
			problems = append(problems, fmt.Sprintf("analyzers.%s.command must not be empty", name))
		} else if !strings.Contains(a.Command, "{file}") {
			problems = append(problems, fmt.Sprintf("analyzers.%s.command must contain the {file} placeholder", name))
		}
		if a.Parser != ParserFlake8 && a.Parser != ParserPylint {
			problems = append(problems, fmt.Sprintf("analyzers.%s.parser %q is not a known parser", name, a.Parser))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("analyzers.%s.timeout %q: %v", name, a.Timeout, err))
			}
		}
	}

	if cfg.Remediation.MaxAttempts < 0 {
		problems = append(problems, "remediation.max_attempts must not be negative")
	}
	if cfg.Remediation.HeadTailThreshold < cfg.Remediation.SnippetThreshold {
		problems = append(problems, "remediation.headtail_threshold must be >= snippet_threshold")
	}

	if cfg.LLM.Model == "" {
		problems = append(problems, "llm.model must not be empty")
	}
	switch cfg.LLM.Transport {
	case "api", "cli":
	default:
		problems = append(problems, fmt.Sprintf("llm.transport %q must be \"api\" or \"cli\"", cfg.LLM.Transport))
	}
	if cfg.LLM.Timeout != "" {
		if _, err := time.ParseDuration(cfg.LLM.Timeout); err != nil {
			problems = append(problems, fmt.Sprintf("llm.timeout %q: %v", cfg.LLM.Timeout, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
