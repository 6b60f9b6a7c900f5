package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Scan.MaxListFiles != 400 || cfg.Scan.MaxFetchFiles != 200 {
		t.Errorf("scan caps = %d/%d", cfg.Scan.MaxListFiles, cfg.Scan.MaxFetchFiles)
	}
	if cfg.Scan.MaxBlobBytes != 250_000 {
		t.Errorf("max blob bytes = %d", cfg.Scan.MaxBlobBytes)
	}
	if cfg.Remediation.MaxAttempts != 6 {
		t.Errorf("max attempts = %d", cfg.Remediation.MaxAttempts)
	}
	if len(cfg.Analyzers) != 2 {
		t.Fatalf("analyzers = %v", cfg.Analyzers)
	}
	for name, a := range cfg.Analyzers {
		if !strings.Contains(a.Command, "{file}") {
			t.Errorf("analyzer %s command lacks placeholder: %s", name, a.Command)
		}
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repodoctor.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_OverridesAndBackfills(t *testing.T) {
	path := writeConfig(t, `
scan:
  max_list_files: 50
llm:
  model: codellama
  transport: cli
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.MaxListFiles != 50 {
		t.Errorf("max_list_files = %d, want override 50", cfg.Scan.MaxListFiles)
	}
	if cfg.Scan.MaxFetchFiles != 200 {
		t.Errorf("max_fetch_files = %d, want default 200", cfg.Scan.MaxFetchFiles)
	}
	if cfg.LLM.Model != "codellama" || cfg.LLM.Transport != "cli" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if len(cfg.Analyzers) != 2 {
		t.Errorf("analyzers should backfill, got %v", cfg.Analyzers)
	}
}

func TestLoad_AnalyzerDefaults(t *testing.T) {
	path := writeConfig(t, `
analyzers:
  flake8:
    command: "flake8 {file}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a := cfg.Analyzers["flake8"]
	if a.Parser != ParserFlake8 {
		t.Errorf("parser = %q, want backfilled from the analyzer name", a.Parser)
	}
	if a.Timeout != "60s" {
		t.Errorf("timeout = %q, want 60s", a.Timeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "scan: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		frag   string
	}{
		{
			name:   "extension without dot",
			mutate: func(c *Config) { c.Scan.Extensions = []string{"py"} },
			frag:   "must start with a dot",
		},
		{
			name:   "zero list cap",
			mutate: func(c *Config) { c.Scan.MaxListFiles = -1 },
			frag:   "max_list_files",
		},
		{
			name: "command without placeholder",
			mutate: func(c *Config) {
				c.Analyzers = map[string]Analyzer{"flake8": {Command: "flake8", Parser: ParserFlake8}}
			},
			frag: "{file}",
		},
		{
			name: "unknown parser",
			mutate: func(c *Config) {
				c.Analyzers = map[string]Analyzer{"mypy": {Command: "mypy {file}", Parser: "mypy"}}
			},
			frag: "not a known parser",
		},
		{
			name:   "bad timeout",
			mutate: func(c *Config) { c.LLM.Timeout = "soon" },
			frag:   "llm.timeout",
		},
		{
			name:   "unknown transport",
			mutate: func(c *Config) { c.LLM.Transport = "carrier-pigeon" },
			frag:   "llm.transport",
		},
		{
			name: "inverted thresholds",
			mutate: func(c *Config) {
				c.Remediation.SnippetThreshold = 20_000
				c.Remediation.HeadTailThreshold = 10_000
			},
			frag: "headtail_threshold",
		},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		err := Validate(cfg)
		if err == nil {
			t.Errorf("%s: expected validation error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.frag) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.frag)
		}
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Scan.MaxListFiles = 0
	cfg.LLM.Model = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, frag := range []string{"max_list_files", "llm.model"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("error should report %q:\n%v", frag, err)
		}
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"", time.Minute},
		{"nonsense", time.Minute},
		{"-5s", time.Minute},
	}
	for _, tt := range tests {
		if got := ParseTimeout(tt.in, time.Minute); got != tt.want {
			t.Errorf("ParseTimeout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
