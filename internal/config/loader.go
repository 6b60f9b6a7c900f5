package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Analyzer parser names with built-in defaults.
const (
	ParserFlake8 = "flake8"
	ParserPylint = "pylint"
)

// Default returns the built-in configuration: the stricter of the
// original tool's divergent thresholds, targeting Python sources with
// flake8 and pylint and a local ollama backend.
func Default() *Config {
	return &Config{
		Scan: Scan{
			Extensions: []string{
				".py", ".md", ".txt", ".json", ".yaml", ".yml", ".toml", ".ini", ".cfg",
				".js", ".ts", ".java", ".cpp", ".c", ".h", ".html", ".css",
			},
			BinaryExtensions: []string{
				".png", ".jpg", ".jpeg", ".gif", ".zip", ".tar.gz", ".gz",
				".ico", ".pdf", ".exe", ".dll",
			},
			MaxListFiles:  400,
			MaxFetchFiles: 200,
			MaxBlobBytes:  250_000,
		},
		Analyzers: map[string]Analyzer{
			"flake8": {
				Command: `python -m flake8 {file} --format="%(row)d:%(col)d:%(code)s:%(text)s"`,
				Parser:  ParserFlake8,
				Timeout: "60s",
			},
			"pylint": {
				Command: "python -m pylint {file} --output-format=json --score=n",
				Parser:  ParserPylint,
				Timeout: "60s",
			},
		},
		Remediation: Remediation{
			MaxAttempts:       6,
			SnippetThreshold:  10_000,
			HeadTailThreshold: 15_000,
			HeadTailBytes:     8_000,
		},
		LLM: LLM{
			Model:     "deepseek-coder",
			Transport: "api",
			BaseURL:   "http://localhost:11434/v1",
			Timeout:   "120s",
		},
	}
}

// Load reads and parses a config from the given YAML file path, then
// fills unset fields from the built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches standard locations and loads the first config
// found. Search order: ./repodoctor.yaml, ~/.repodoctor/config.yaml.
// When none exists the built-in defaults are returned.
func LoadDefault() (*Config, error) {
	candidates := []string{"repodoctor.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".repodoctor", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return Default(), nil
}

// applyDefaults fills zero-valued fields from the built-in defaults.
// Analyzer entries replace the default set wholesale when present.
func applyDefaults(cfg *Config) {
	def := Default()

	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = def.Scan.Extensions
	}
	if len(cfg.Scan.BinaryExtensions) == 0 {
		cfg.Scan.BinaryExtensions = def.Scan.BinaryExtensions
	}
	if cfg.Scan.MaxListFiles == 0 {
		cfg.Scan.MaxListFiles = def.Scan.MaxListFiles
	}
	if cfg.Scan.MaxFetchFiles == 0 {
		cfg.Scan.MaxFetchFiles = def.Scan.MaxFetchFiles
	}
	if cfg.Scan.MaxBlobBytes == 0 {
		cfg.Scan.MaxBlobBytes = def.Scan.MaxBlobBytes
	}

	if len(cfg.Analyzers) == 0 {
		cfg.Analyzers = def.Analyzers
	}
	for name, a := range cfg.Analyzers {
		if a.Timeout == "" {
			a.Timeout = "60s"
		}
		if a.Parser == "" {
			a.Parser = name
		}
		cfg.Analyzers[name] = a
	}

	if cfg.Remediation.MaxAttempts == 0 {
		cfg.Remediation.MaxAttempts = def.Remediation.MaxAttempts
	}
	if cfg.Remediation.SnippetThreshold == 0 {
		cfg.Remediation.SnippetThreshold = def.Remediation.SnippetThreshold
	}
	if cfg.Remediation.HeadTailThreshold == 0 {
		cfg.Remediation.HeadTailThreshold = def.Remediation.HeadTailThreshold
	}
	if cfg.Remediation.HeadTailBytes == 0 {
		cfg.Remediation.HeadTailBytes = def.Remediation.HeadTailBytes
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.Transport == "" {
		cfg.LLM.Transport = def.LLM.Transport
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = def.LLM.BaseURL
	}
	if cfg.LLM.Timeout == "" {
		cfg.LLM.Timeout = def.LLM.Timeout
	}
}

// ParseTimeout parses a duration string, falling back when empty or invalid.
func ParseTimeout(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
