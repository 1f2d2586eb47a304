// Package transcribe turns an audio track into timestamped fragments.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/coursegen/internal/audio"
	"github.com/mgpai22/coursegen/internal/segment"
)

// Result of one transcription.
type Result struct {
	Fragments []segment.Fragment
	Language  string
	Duration  time.Duration
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// ConcurrentTranscriber can work through a chunked recording.
type ConcurrentTranscriber interface {
	Transcriber
	TranscribeWithChunks(
		ctx context.Context,
		chunks []audio.ChunkInfo,
		concurrency int,
	) (*Result, error)
}

// Provider names a speech-to-text backend.
type Provider string

const (
	// ProviderWhisper is a self-hosted OpenAI-compatible whisper server.
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

const DefaultWhisperBaseURL = "http://localhost:8000/v1"

func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderWhisper, ProviderGemini}
}

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported transcriber: %q", s)
}

type Options struct {
	Language string // source language hint, empty for auto-detect
	// TranscriptLanguage selects the output language; "english"/"en"
	// translates, "native" or empty keeps the spoken language.
	TranscriptLanguage string
	Model              string
	Prompt             string
	BaseURL            string
}

// Factory creates the transcriber for provider.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (ConcurrentTranscriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderWhisper:
		if opts.BaseURL == "" {
			opts.BaseURL = DefaultWhisperBaseURL
		}
		if apiKey == "" {
			apiKey = "whisper"
		}
		return NewOpenAITranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
