package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader reads configuration. Tests can override Lookup and ReadFile to
// inject deterministic environments and files.
type Loader struct {
	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
}

// Load resolves defaults, then the YAML file at path (or COURSEGEN_CONFIG,
// or ./coursegen.yaml when present), then environment overrides, and
// validates the result. An explicitly named file must exist.
func (l Loader) Load(path string) (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}

	var cfg Config

	explicit := true
	if path == "" {
		if v, ok := l.Lookup("COURSEGEN_CONFIG"); ok && strings.TrimSpace(v) != "" {
			path = strings.TrimSpace(v)
		} else {
			path = DefaultFileName
			explicit = false
		}
	}

	if err := l.applyFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(l.Lookup, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l Loader) applyFile(path string, cfg *Config) error {
	data, err := l.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

func applyEnv(lookup func(string) (string, bool), cfg *Config) error {
	overrideString(lookup, "DEFAULT_LLM_HOST", &cfg.Host)
	overrideString(lookup, "DEFAULT_LLM_MODEL", &cfg.Model)
	overrideString(lookup, "LLM_BASE_URL", &cfg.BaseURL)
	overrideString(lookup, "DEFAULT_TRANSCRIBER", &cfg.Transcriber)
	overrideString(lookup, "DEFAULT_WHISPER_MODEL", &cfg.WhisperModel)
	overrideString(lookup, "OUTPUT_DIR", &cfg.OutputDir)
	overrideString(lookup, "TEMP_DIR", &cfg.TempDir)
	overrideString(lookup, "LOG_LEVEL", &cfg.LogLevel)
	overrideString(lookup, "OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	overrideString(lookup, "ANTHROPIC_API_KEY", &cfg.AnthropicAPIKey)
	overrideString(lookup, "GEMINI_API_KEY", &cfg.GeminiAPIKey)

	if v, ok := lookupTrimmed(lookup, "DEFAULT_EXPORT_FORMAT"); ok {
		cfg.ExportFormats = strings.Split(v, ",")
	}
	if v, ok := lookupTrimmed(lookup, "COURSEGEN_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: COURSEGEN_CONCURRENCY: %w", err)
		}
		cfg.Concurrency = n
	}
	if v, ok := lookupTrimmed(lookup, "COURSEGEN_CALL_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: COURSEGEN_CALL_TIMEOUT: %w", err)
		}
		cfg.CallTimeout = d
	}
	return nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if v, ok := lookupTrimmed(lookup, key); ok {
		*target = v
	}
}
