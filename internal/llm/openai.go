package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatGenerator implements Generator on the OpenAI-style chat completions
// wire format. It serves both LM Studio and the hosted OpenAI API.
type ChatGenerator struct {
	client openai.Client
	model  string
	name   string
	hosted bool
}

// LM Studio ignores the key but the SDK refuses to send an empty one.
const lmStudioAPIKey = "lm-studio"

func NewLMStudioGenerator(opts Options) (*ChatGenerator, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultLMStudioBaseURL
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = lmStudioAPIKey
	}

	return &ChatGenerator{
		client: openai.NewClient(chatClientOptions(baseURL, apiKey, opts)...),
		model:  opts.Model,
		name:   string(HostLMStudio),
	}, nil
}

func NewOpenAIGenerator(opts Options) (*ChatGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &ChatGenerator{
		client: openai.NewClient(chatClientOptions(opts.BaseURL, opts.APIKey, opts)...),
		model:  model,
		name:   string(HostOpenAI),
		hosted: true,
	}, nil
}

func chatClientOptions(baseURL, apiKey string, opts Options) []option.RequestOption {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(withTrailingSlash(baseURL)))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return reqOpts
}

func withTrailingSlash(u string) string {
	return strings.TrimRight(u, "/") + "/"
}

func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: g.model,
	}

	if g.hosted {
		// current hosted models reject max_tokens and custom temperature
		params.MaxCompletionTokens = openai.Int(DefaultMaxTokens)
	} else {
		params.Temperature = openai.Float(DefaultTemperature)
		params.MaxTokens = openai.Int(DefaultMaxTokens)
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", unavailable(g.name, fmt.Errorf("http %d", apiErr.StatusCode))
		}
		if isDecodeError(err) {
			return "", malformed(g.name, fmt.Sprintf("undecodable body: %v", err))
		}
		return "", unavailable(g.name, err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", malformed(g.name, "reply has no choices")
	}

	msg := completion.Choices[0].Message
	if !msg.JSON.Content.Valid() {
		return "", malformed(g.name, "reply has no message content")
	}

	return msg.Content, nil
}

// isDecodeError reports whether a 2xx reply failed to parse as JSON.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (g *ChatGenerator) Close() error {
	return nil
}
