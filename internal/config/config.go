// Package config resolves coursegen settings from defaults, an optional YAML
// file and the environment. Command line flags are applied on top by the
// cli package.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/coursegen/internal/llm"
)

const (
	DefaultHost         = string(llm.HostOllama)
	DefaultModel        = "mistral"
	DefaultTranscriber  = "openai"
	DefaultWhisperModel = "whisper-1"
	DefaultOutputDir    = "output"
	DefaultExportFormat = "pdf"
	DefaultLogLevel     = "info"
	DefaultConcurrency  = 1
	DefaultBatchSize    = 2
	DefaultCallTimeout  = 5 * time.Minute
	DefaultFileName     = "coursegen.yaml"
)

type Config struct {
	Host          string        `yaml:"host"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	Transcriber   string        `yaml:"transcriber"`
	WhisperModel  string        `yaml:"whisper_model"`
	OutputDir     string        `yaml:"output_dir"`
	TempDir       string        `yaml:"temp_dir"`
	ExportFormats []string      `yaml:"export_formats"`
	LogLevel      string        `yaml:"log_level"`
	Concurrency   int           `yaml:"concurrency"`
	BatchSize     int           `yaml:"batch_size"`
	CallTimeout   time.Duration `yaml:"call_timeout"`

	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
}

// Validate applies defaults and rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	host, err := llm.ParseHost(c.Host)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Host = string(host)

	if c.Model == "" && host.Local() {
		c.Model = DefaultModel
	}
	if c.Transcriber == "" {
		c.Transcriber = DefaultTranscriber
	}
	if c.WhisperModel == "" {
		c.WhisperModel = DefaultWhisperModel
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	formats := make([]string, 0, len(c.ExportFormats))
	for _, f := range c.ExportFormats {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		formats = []string{DefaultExportFormat}
	}
	c.ExportFormats = formats

	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config: concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("config: batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("config: call_timeout must be positive, got %s", c.CallTimeout)
	}
	return nil
}

// APIKey returns the configured key for a hosted generation backend.
func (c Config) APIKey(host llm.Host) string {
	switch host {
	case llm.HostOpenAI:
		return c.OpenAIAPIKey
	case llm.HostAnthropic:
		return c.AnthropicAPIKey
	case llm.HostGemini:
		return c.GeminiAPIKey
	default:
		return ""
	}
}
