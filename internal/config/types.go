package config

// Config is the top-level structure parsed from repodoctor YAML.
type Config struct {
	Scan        Scan                `yaml:"scan"`
	Analyzers   map[string]Analyzer `yaml:"analyzers"`
	Remediation Remediation         `yaml:"remediation"`
	LLM         LLM                 `yaml:"llm"`
	History     History             `yaml:"history"`
}

// Scan controls discovery and retrieval limits.
type Scan struct {
	Extensions       []string `yaml:"extensions"`
	BinaryExtensions []string `yaml:"binary_extensions"`
	MaxListFiles     int      `yaml:"max_list_files"`
	MaxFetchFiles    int      `yaml:"max_fetch_files"`
	MaxBlobBytes     int      `yaml:"max_blob_bytes"`
}

// Analyzer defines one external static-analysis pass. Command is a shell
// command with a {file} placeholder for the candidate file path.
type Analyzer struct {
	Command string `yaml:"command"`
	Parser  string `yaml:"parser"`
	Timeout string `yaml:"timeout"`
}

// Remediation bounds the fix stage and its prompt construction.
type Remediation struct {
	MaxAttempts       int `yaml:"max_attempts"`
	SnippetThreshold  int `yaml:"snippet_threshold"`
	HeadTailThreshold int `yaml:"headtail_threshold"`
	HeadTailBytes     int `yaml:"headtail_bytes"`
}

// LLM configures the text-generation backend. Transport is "api" for an
// OpenAI-compatible endpoint or "cli" for shelling out to ollama.
type LLM struct {
	Model     string `yaml:"model"`
	Transport string `yaml:"transport"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Timeout   string `yaml:"timeout"`
}

// History configures the run-history database.
type History struct {
	Path string `yaml:"path"`
}
