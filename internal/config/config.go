// Package config provides configuration management for ccrecall.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the recall pipeline. These bound unbounded input (huge
// transcripts, huge corpora) under fixed ceilings.
const (
	// DefaultMaxSessionBytes is the size ceiling above which a transcript
	// is truncated before being loaded into the backend.
	DefaultMaxSessionBytes = 500_000
	// DefaultMaxSessionLines is the number of leading lines kept when a
	// transcript exceeds the size ceiling.
	DefaultMaxSessionLines = 500
	// DefaultMaxCandidates is the maximum sessions loaded into the backend
	// for one recall query.
	DefaultMaxCandidates = 10
	// DefaultMaxResults is the maximum results returned from one query.
	DefaultMaxResults = 5
	// DefaultChunkSize is the line count per backend chunk.
	DefaultChunkSize = 100
	// DefaultMaxChunks bounds how many chunks of a session are queried.
	DefaultMaxChunks = 5
	// DefaultConcurrency is the fan-out hint passed to the backend batch call.
	DefaultConcurrency = 2

	// DefaultProvider and DefaultModel select the backend inference model.
	DefaultProvider = "claude-sdk"
	DefaultModel    = "claude-haiku-4-5-20251101"

	// DefaultExcerptLength caps excerpt strings in result entries.
	DefaultExcerptLength = 500

	// DefaultConnectAttempts bounds the backend connect retry loop.
	DefaultConnectAttempts = 3
)

// ErrMissingServerPath reports absent required backend configuration. It is
// a startup-time misconfiguration, distinct from runtime connection failures.
var ErrMissingServerPath = errors.New(
	"RLM_SERVER_PATH environment variable not set; set it to the path of your RLM installation")

// Config holds all ccrecall settings.
type Config struct {
	// ProjectsDir is the corpus root (one encoded directory per project).
	ProjectsDir string `yaml:"projects_dir"`

	// RLMServerPath is the working directory of the RLM backend (required).
	RLMServerPath string `yaml:"rlm_server_path"`
	// RLMCommand and RLMArgs spawn the backend process.
	RLMCommand string   `yaml:"rlm_command"`
	RLMArgs    []string `yaml:"rlm_args"`

	// ConnectAttempts bounds connect retries; backoff starts at one second
	// and doubles per attempt.
	ConnectAttempts int `yaml:"connect_attempts"`
	// CallTimeout bounds each backend round-trip. Zero disables the deadline.
	CallTimeout time.Duration `yaml:"call_timeout"`

	MaxSessionBytes int64 `yaml:"max_session_bytes"`
	MaxSessionLines int   `yaml:"max_session_lines"`
	MaxCandidates   int   `yaml:"max_candidates"`
	MaxResults      int   `yaml:"max_results"`
	ChunkSize       int   `yaml:"chunk_size"`
	MaxChunks       int   `yaml:"max_chunks"`
	Concurrency     int   `yaml:"concurrency"`
	ExcerptLength   int   `yaml:"excerpt_length"`

	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	// HTTPAddr enables the local status endpoint when non-empty.
	HTTPAddr string `yaml:"http_addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ProjectsDir:     DefaultProjectsDir(),
		RLMCommand:      "uv",
		RLMArgs:         []string{"run", "rlm-server"},
		ConnectAttempts: DefaultConnectAttempts,
		CallTimeout:     2 * time.Minute,
		MaxSessionBytes: DefaultMaxSessionBytes,
		MaxSessionLines: DefaultMaxSessionLines,
		MaxCandidates:   DefaultMaxCandidates,
		MaxResults:      DefaultMaxResults,
		ChunkSize:       DefaultChunkSize,
		MaxChunks:       DefaultMaxChunks,
		Concurrency:     DefaultConcurrency,
		ExcerptLength:   DefaultExcerptLength,
		Provider:        DefaultProvider,
		Model:           DefaultModel,
	}
}

// DataDir returns the ccrecall data directory (~/.ccrecall).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ccrecall")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.yaml")
}

// DefaultProjectsDir returns the Claude Code projects directory.
func DefaultProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".claude", "projects")
}

// EnsureDataDir creates the data directory if missing.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0o755)
}

// Load reads the settings file (if present) over defaults, then applies
// environment overrides. A missing settings file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", SettingsPath(), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("RLM_SERVER_PATH"); v != "" {
		cfg.RLMServerPath = v
	}
	if v := os.Getenv("CCRECALL_PROJECTS_DIR"); v != "" {
		cfg.ProjectsDir = v
	}
	if v := os.Getenv("CCRECALL_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CCRECALL_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("CCRECALL_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CallTimeout = d
		}
	}
}

// ValidateBackend checks the settings required to reach the RLM backend.
// Called at startup so misconfiguration is reported before any connection
// attempt.
func (c *Config) ValidateBackend() error {
	if c.RLMServerPath == "" {
		return ErrMissingServerPath
	}
	if c.RLMCommand == "" {
		return errors.New("rlm_command must not be empty")
	}
	return nil
}
