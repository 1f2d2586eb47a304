package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaGenerator talks to the single-prompt completion endpoint of an
// Ollama server.
type OllamaGenerator struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// ollamaGenerateResponse keeps response a pointer so an absent field is
// told apart from an empty reply; api.GenerateResponse cannot.
type ollamaGenerateResponse struct {
	Response *string `json:"response"`
}

func NewOllamaGenerator(opts Options) (*OllamaGenerator, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &OllamaGenerator{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      opts.Model,
	}, nil
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	body, err := json.Marshal(&api.GenerateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: ollamaSamplingOptions(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/generate",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", unavailable("ollama", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", unavailable(
			"ollama",
			fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b))),
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("ollama", err)
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", malformed("ollama", fmt.Sprintf(
			"undecodable body: %v (body: %s)",
			err,
			truncateString(string(raw), 200),
		))
	}
	if out.Response == nil {
		return "", malformed("ollama", "reply has no response field")
	}

	return *out.Response, nil
}

func ollamaSamplingOptions() map[string]any {
	return map[string]any{
		"temperature": DefaultTemperature,
		"top_p":       DefaultTopP,
		"max_tokens":  DefaultMaxTokens,
	}
}

// ollamaClient returns the official client rooted at the server address.
// The client adds the /api prefix itself, so a configured ".../api" base is
// trimmed back to the host.
func ollamaClient(baseURL string, httpClient *http.Client) (*api.Client, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	root := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return api.NewClient(u, httpClient), nil
}
