package transcribe

import (
	"context"
	"testing"
	"time"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	tests := []struct {
		name             string
		rawJSON          string
		fallbackDuration time.Duration
		wantCount        int
		wantErr          bool
	}{
		{
			name: "segments",
			rawJSON: `{
				"text": "Hello world. How are you today?",
				"segments": [
					{"start": 0.0, "end": 1.5, "text": "Hello world."},
					{"start": 1.5, "end": 3.0, "text": "How are you today?"}
				],
				"language": "en",
				"duration": 3.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        2,
		},
		{
			name:             "no segments but text",
			rawJSON:          `{"text": "Only text.", "segments": [], "duration": 2.5}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name:             "null segments",
			rawJSON:          `{"text": "Only text.", "segments": null, "duration": 1.0}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "blank segments dropped",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				]
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name:             "empty response",
			rawJSON:          "",
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name:             "invalid JSON",
			rawJSON:          `{"text": "incomplete`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name:             "no segments and no text",
			rawJSON:          `{"text": "", "segments": [], "duration": 0}`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name: "whisper server reply with extra fields",
			rawJSON: `{
				"task": "transcribe",
				"language": "english",
				"duration": 8.470000267028809,
				"text": "The stale smell of old beer lingers. It takes heat to bring out the odor.",
				"segments": [
					{"id": 0, "seek": 0, "start": 0.0, "end": 3.319999933242798,
					 "text": "The stale smell of old beer lingers.", "tokens": [50364, 440],
					 "temperature": 0.0, "avg_logprob": -0.28, "no_speech_prob": 0.009},
					{"id": 1, "seek": 0, "start": 3.319999933242798, "end": 6.190000057220459,
					 "text": "It takes heat to bring out the odor.", "tokens": [50530, 467],
					 "temperature": 0.0, "avg_logprob": -0.28, "no_speech_prob": 0.009}
				]
			}`,
			fallbackDuration: 10 * time.Second,
			wantCount:        2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragments, err := parseVerboseJSONResponse(tt.rawJSON, tt.fallbackDuration)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(fragments) != tt.wantCount {
				t.Errorf("got %d fragments, want %d", len(fragments), tt.wantCount)
			}
			for i, f := range fragments {
				if f.Text == "" {
					t.Errorf("fragment %d has empty text", i)
				}
			}
		})
	}
}

func TestParseVerboseJSONResponseTimestamps(t *testing.T) {
	rawJSON := `{
		"text": "Hello world. Goodbye.",
		"segments": [
			{"start": 1.5, "end": 3.0, "text": " Hello world. "},
			{"start": 3.0, "end": 5.5, "text": "Goodbye."}
		],
		"duration": 5.5
	}`

	fragments, err := parseVerboseJSONResponse(rawJSON, 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}

	if f := fragments[0]; f.Start != 1.5 || f.End != 3.0 || f.Text != "Hello world." {
		t.Errorf("fragment 0 = %+v", f)
	}
	if f := fragments[1]; f.Start != 3.0 || f.End != 5.5 || f.Text != "Goodbye." {
		t.Errorf("fragment 1 = %+v", f)
	}
}

func TestTextOnlyReplyBecomesOneFragment(t *testing.T) {
	fragments, err := parseVerboseJSONResponse(`{"text": "No timestamps here.", "duration": 10.5}`, 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	// reported duration wins over the probed one
	if f := fragments[0]; f.Start != 0 || f.End != 10.5 || f.Text != "No timestamps here." {
		t.Errorf("fragment = %+v", f)
	}

	fragments, err = parseVerboseJSONResponse(`{"text": "No duration."}`, 15*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fragments[0].End != 15 {
		t.Errorf("fallback duration not used: %+v", fragments[0])
	}
}

func TestShouldUseTranslation(t *testing.T) {
	tests := []struct {
		transcriptLang string
		want           bool
	}{
		{"english", true},
		{"English", true},
		{"en", true},
		{" english ", true},
		{"native", false},
		{"", false},
		{"spanish", false},
	}

	for _, tt := range tests {
		t.Run(tt.transcriptLang, func(t *testing.T) {
			tr := &OpenAITranscriber{options: Options{TranscriptLanguage: tt.transcriptLang}}
			if got := tr.shouldUseTranslation(); got != tt.want {
				t.Errorf("shouldUseTranslation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	if _, err := Factory(ctx, ProviderOpenAI, "", Options{}); err == nil {
		t.Error("openai without a key should fail")
	}

	tr, err := Factory(ctx, ProviderWhisper, "", Options{})
	if err != nil {
		t.Fatalf("whisper needs no key: %v", err)
	}
	ot, ok := tr.(*OpenAITranscriber)
	if !ok {
		t.Fatalf("whisper should use the OpenAI-compatible client, got %T", tr)
	}
	if ot.options.BaseURL != DefaultWhisperBaseURL || ot.model != "whisper-1" {
		t.Errorf("unexpected whisper setup: %+v model=%s", ot.options, ot.model)
	}

	if _, err := Factory(ctx, Provider("vosk"), "k", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestParseProvider(t *testing.T) {
	for in, want := range map[string]Provider{
		"openai":    ProviderOpenAI,
		" Whisper ": ProviderWhisper,
		"GEMINI":    ProviderGemini,
	} {
		got, err := ParseProvider(in)
		if err != nil || got != want {
			t.Errorf("ParseProvider(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseProvider("deepgram"); err == nil {
		t.Error("expected error for unknown provider")
	}
}
