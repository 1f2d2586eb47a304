package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Generator using Anthropic Claude
type AnthropicGenerator struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicGenerator(opts Options) (*AnthropicGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(withTrailingSlash(opts.BaseURL)))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicGenerator{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := g.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:       g.model,
			MaxTokens:   DefaultMaxTokens,
			Temperature: anthropic.Float(DefaultTemperature),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", unavailable("anthropic", fmt.Errorf("http %d", apiErr.StatusCode))
		}
		if isDecodeError(err) {
			return "", malformed("anthropic", fmt.Sprintf("undecodable body: %v", err))
		}
		return "", unavailable("anthropic", err)
	}

	if message == nil || len(message.Content) == 0 {
		return "", malformed("anthropic", "reply has no content blocks")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	return responseText, nil
}

func (g *AnthropicGenerator) Close() error {
	return nil
}
