package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
)

func TestParseHost(t *testing.T) {
	tests := []struct {
		input   string
		want    Host
		wantErr bool
	}{
		{"ollama", HostOllama, false},
		{"Ollama", HostOllama, false},
		{"lmstudio", HostLMStudio, false},
		{"LM Studio", HostLMStudio, false},
		{" openai ", HostOpenAI, false},
		{"anthropic", HostAnthropic, false},
		{"gemini", HostGemini, false},
		{"vllm", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHost(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHost(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHost(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHost(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFactoryReturnsOllamaGenerator(t *testing.T) {
	g, err := Factory(context.Background(), HostOllama, Options{Model: "mistral"})
	if err != nil {
		t.Fatalf("Factory(HostOllama) returned error: %v", err)
	}
	if _, ok := g.(*OllamaGenerator); !ok {
		t.Errorf("expected *OllamaGenerator, got %T", g)
	}
}

func TestFactoryReturnsLMStudioGenerator(t *testing.T) {
	g, err := Factory(context.Background(), HostLMStudio, Options{Model: "qwen"})
	if err != nil {
		t.Fatalf("Factory(HostLMStudio) returned error: %v", err)
	}
	if _, ok := g.(*ChatGenerator); !ok {
		t.Errorf("expected *ChatGenerator, got %T", g)
	}
}

func TestFactoryRequiresModelForLocalHosts(t *testing.T) {
	for _, host := range []Host{HostOllama, HostLMStudio} {
		if _, err := Factory(context.Background(), host, Options{}); err == nil {
			t.Errorf("expected error for %s without model", host)
		}
	}
}

func TestFactoryRequiresAPIKeyForHostedProviders(t *testing.T) {
	for _, host := range []Host{HostOpenAI, HostAnthropic, HostGemini} {
		if _, err := Factory(context.Background(), host, Options{}); err == nil {
			t.Errorf("expected error for %s without API key", host)
		}
	}
}

func TestFactoryRejectsUnknownHost(t *testing.T) {
	if _, err := Factory(context.Background(), Host("unknown"), Options{Model: "m"}); err == nil {
		t.Error("expected error for unknown host")
	}
}

func TestOllamaGenerate(t *testing.T) {
	var got api.GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"model":"mistral","response":"hello there","done":true}`))
	}))
	defer srv.Close()

	g, err := NewOllamaGenerator(Options{Model: "mistral", BaseURL: srv.URL + "/api/"})
	if err != nil {
		t.Fatalf("NewOllamaGenerator error: %v", err)
	}

	text, err := g.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != "hello there" {
		t.Errorf("Generate() = %q, want %q", text, "hello there")
	}

	if got.Model != "mistral" || got.Prompt != "say hello" {
		t.Errorf("unexpected request body: %+v", got)
	}
	if got.Stream == nil || *got.Stream {
		t.Errorf("stream = %v, want explicit false", got.Stream)
	}
	wantOptions := map[string]float64{"temperature": 0.7, "top_p": 0.9, "max_tokens": 2048}
	for key, want := range wantOptions {
		if got.Options[key] != want {
			t.Errorf("options[%q] = %v, want %v", key, got.Options[key], want)
		}
	}
}

func TestOllamaGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, ErrBackendUnavailable},
		{"model not found", http.StatusNotFound, `{"error":"model not found"}`, ErrBackendUnavailable},
		{"missing response field", http.StatusOK, `{"done":true}`, ErrMalformedResponse},
		{"not json", http.StatusOK, `<html>oops</html>`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewOllamaGenerator(Options{Model: "mistral", BaseURL: srv.URL + "/api"})
			if err != nil {
				t.Fatalf("NewOllamaGenerator error: %v", err)
			}

			_, err = g.Generate(context.Background(), "prompt")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOllamaGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g, err := NewOllamaGenerator(Options{Model: "mistral", BaseURL: url + "/api"})
	if err != nil {
		t.Fatalf("NewOllamaGenerator error: %v", err)
	}
	if _, err := g.Generate(context.Background(), "prompt"); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestOllamaGenerateHonoursContextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g, err := NewOllamaGenerator(Options{Model: "mistral", BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatalf("NewOllamaGenerator error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = g.Generate(ctx, "prompt")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
	}
}

func TestLMStudioGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "qwen",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"title\": \"Go\"}"}
			}]
		}`))
	}))
	defer srv.Close()

	g, err := NewLMStudioGenerator(Options{Model: "qwen", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewLMStudioGenerator error: %v", err)
	}

	text, err := g.Generate(context.Background(), "make a course")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != `{"title": "Go"}` {
		t.Errorf("Generate() = %q", text)
	}

	if got["model"] != "qwen" {
		t.Errorf("model = %v, want qwen", got["model"])
	}
	if got["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", got["temperature"])
	}
	if got["max_tokens"] != float64(2048) {
		t.Errorf("max_tokens = %v, want 2048", got["max_tokens"])
	}
	messages, ok := got["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("messages = %v, want one message", got["messages"])
	}
	msg, _ := messages[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "make a course" {
		t.Errorf("unexpected message: %v", msg)
	}
}

func TestLMStudioGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, ErrBackendUnavailable},
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, ErrMalformedResponse},
		{
			"missing content",
			http.StatusOK,
			`{"id":"x","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant"}}]}`,
			ErrMalformedResponse,
		},
		{
			"null content",
			http.StatusOK,
			`{"id":"x","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":null}}]}`,
			ErrMalformedResponse,
		},
		{"not json", http.StatusOK, `<html>oops</html>`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewLMStudioGenerator(Options{Model: "qwen", BaseURL: srv.URL + "/v1"})
			if err != nil {
				t.Fatalf("NewLMStudioGenerator error: %v", err)
			}

			_, err = g.Generate(context.Background(), "prompt")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListOllamaModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"},{"name":"llama3:8b"}]}`))
	}))
	defer srv.Close()

	names, err := ListModels(context.Background(), HostOllama, Options{BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatalf("ListModels error: %v", err)
	}
	if len(names) != 2 || names[0] != "llama3:8b" || names[1] != "mistral:latest" {
		t.Errorf("ListModels() = %v", names)
	}
}

func TestListOllamaModelsBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"}]}`))
	}))
	defer srv.Close()

	for _, base := range []string{srv.URL, srv.URL + "/", srv.URL + "/api", srv.URL + "/api/"} {
		names, err := ListModels(context.Background(), HostOllama, Options{BaseURL: base})
		if err != nil {
			t.Fatalf("ListModels(%q) error: %v", base, err)
		}
		if len(names) != 1 || names[0] != "mistral:latest" {
			t.Errorf("ListModels(%q) = %v", base, names)
		}
	}
}

func TestListOllamaModelsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, ErrBackendUnavailable},
		{"not json", http.StatusOK, `<html>oops</html>`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := ListModels(context.Background(), HostOllama, Options{BaseURL: srv.URL + "/api"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ListModels() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListLMStudioModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"qwen2.5-7b","object":"model","created":0,"owned_by":"me"}]}`))
	}))
	defer srv.Close()

	names, err := ListModels(context.Background(), HostLMStudio, Options{BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("ListModels error: %v", err)
	}
	if len(names) != 1 || names[0] != "qwen2.5-7b" {
		t.Errorf("ListModels() = %v", names)
	}
}

// Integration test: only runs if a local Ollama server is named
func TestOllamaIntegration(t *testing.T) {
	base := os.Getenv("COURSEGEN_OLLAMA_URL")
	model := os.Getenv("COURSEGEN_OLLAMA_MODEL")
	if base == "" || model == "" {
		t.Skip("COURSEGEN_OLLAMA_URL/COURSEGEN_OLLAMA_MODEL not set; skipping integration test")
	}

	g, err := NewOllamaGenerator(Options{Model: model, BaseURL: base})
	if err != nil {
		t.Fatalf("NewOllamaGenerator error: %v", err)
	}
	text, err := g.Generate(context.Background(), "Reply with the single word: ok")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text == "" {
		t.Error("expected non-empty reply")
	}
}
