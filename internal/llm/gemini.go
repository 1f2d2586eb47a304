package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements Generator using Google Gemini
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, opts Options) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		contents,
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](DefaultTemperature),
			TopP:            genai.Ptr[float32](DefaultTopP),
			MaxOutputTokens: DefaultMaxTokens,
		},
	)
	if err != nil {
		return "", unavailable("gemini", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", malformed("gemini", "reply has no candidates")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	return responseText, nil
}

func (g *GeminiGenerator) Close() error {
	return nil
}
