package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Generator sends a prompt to a text-generation backend and returns the raw
// reply text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrBackendUnavailable covers transport failures, timeouts and non-2xx
	// replies.
	ErrBackendUnavailable = errors.New("generation backend unavailable")
	// ErrMalformedResponse is returned when the backend replied but the
	// envelope lacks the expected field.
	ErrMalformedResponse = errors.New("malformed generation backend response")
)

// generation backend host
type Host string

const (
	HostOllama    Host = "ollama"
	HostLMStudio  Host = "lmstudio"
	HostOpenAI    Host = "openai"
	HostAnthropic Host = "anthropic"
	HostGemini    Host = "gemini"
)

const (
	DefaultOllamaBaseURL   = "http://localhost:11434/api"
	DefaultLMStudioBaseURL = "http://localhost:1234/v1"

	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 2048
)

// Hosts lists every supported host in display order.
func Hosts() []Host {
	return []Host{HostOllama, HostLMStudio, HostOpenAI, HostAnthropic, HostGemini}
}

// ParseHost accepts host names case-insensitively and ignores spaces, so
// "LM Studio" selects HostLMStudio.
func ParseHost(s string) (Host, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, h := range Hosts() {
		if string(h) == name {
			return h, nil
		}
	}
	return "", fmt.Errorf("unsupported generation host %q", s)
}

// Local reports whether the host is a locally served model runner.
func (h Host) Local() bool {
	return h == HostOllama || h == HostLMStudio
}

type Options struct {
	Model   string
	BaseURL string // empty selects the host default
	APIKey  string // hosted providers only

	HTTPClient *http.Client
}

// creates Generator based on host
func Factory(ctx context.Context, host Host, opts Options) (Generator, error) {
	switch host {
	case HostOllama:
		return NewOllamaGenerator(opts)
	case HostLMStudio:
		return NewLMStudioGenerator(opts)
	case HostOpenAI:
		return NewOpenAIGenerator(opts)
	case HostAnthropic:
		return NewAnthropicGenerator(opts)
	case HostGemini:
		return NewGeminiGenerator(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported generation host: %s", host)
	}
}

// unavailable keeps err in the chain so callers can still match
// context.DeadlineExceeded.
func unavailable(backend string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, backend, err)
}

func malformed(backend, detail string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, backend, detail)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
