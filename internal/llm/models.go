package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go"
)

// ListModels returns the model identifiers a host currently serves, sorted.
func ListModels(ctx context.Context, host Host, opts Options) ([]string, error) {
	var (
		names []string
		err   error
	)

	switch host {
	case HostOllama:
		names, err = listOllamaModels(ctx, opts)
	case HostLMStudio, HostOpenAI:
		names, err = listChatModels(ctx, host, opts)
	case HostAnthropic:
		names, err = listAnthropicModels(ctx, opts)
	default:
		return nil, fmt.Errorf("listing models is not supported for host %s", host)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

func listOllamaModels(ctx context.Context, opts Options) ([]string, error) {
	client, err := ollamaClient(opts.BaseURL, opts.HTTPClient)
	if err != nil {
		return nil, err
	}

	resp, err := client.List(ctx)
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return nil, unavailable("ollama", fmt.Errorf("http %d: %s", statusErr.StatusCode, statusErr.ErrorMessage))
		}
		if isDecodeError(err) {
			return nil, malformed("ollama", err.Error())
		}
		return nil, unavailable("ollama", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

func listChatModels(ctx context.Context, host Host, opts Options) ([]string, error) {
	baseURL := opts.BaseURL
	apiKey := opts.APIKey
	if host == HostLMStudio {
		if baseURL == "" {
			baseURL = DefaultLMStudioBaseURL
		}
		if apiKey == "" {
			apiKey = lmStudioAPIKey
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(chatClientOptions(baseURL, apiKey, opts)...)
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, unavailable(string(host), err)
	}

	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}

func listAnthropicModels(ctx context.Context, opts Options) ([]string, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(opts.APIKey),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, anthropicoption.WithBaseURL(withTrailingSlash(opts.BaseURL)))
	}

	client := anthropic.NewClient(reqOpts...)
	page, err := client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, unavailable("anthropic", err)
	}

	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}
