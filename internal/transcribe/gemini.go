package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/mgpai22/coursegen/internal/audio"
	"github.com/mgpai22/coursegen/internal/segment"
)

// GeminiTranscriber uploads the audio and asks the model for a JSON
// transcript.
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// wrapper keys tried first when the model nests its array in an object
var preferredKeys = []string{"segments", "transcript", "data"}

var jsonFence = regexp.MustCompile("(?i)```(?:json)?\\s*")

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" || strings.HasPrefix(model, "whisper") {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploaded, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploaded.Name, nil)
	}()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(t.buildTranscriptionPrompt()),
			genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	segments, err := extractTranscriptSegments(cleanJSONResponse(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	duration, _ := audio.GetDuration(ctx, audioPath)

	return &Result{
		Fragments: toFragments(segments),
		Language:  t.options.Language,
		Duration:  duration,
	}, nil
}

func (t *GeminiTranscriber) TranscribeWithChunks(
	ctx context.Context,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	return transcribeChunks(ctx, chunks, concurrency, t.options.Language, t.Transcribe)
}

func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if t.options.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", t.options.Language)
	}
	if lang := t.options.TranscriptLanguage; lang != "" && lang != "native" {
		fmt.Fprintf(&sb, "Output the transcript in %s. ", lang)
	}
	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}

// cleanJSONResponse strips markdown code fences.
func cleanJSONResponse(s string) string {
	s = jsonFence.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractTranscriptSegments finds the first JSON value in s that is, or
// wraps, a usable segment array. Models like to add prose around the payload
// and sometimes nest it under an arbitrary key, so every '[' and '{' is tried
// as a starting point.
func extractTranscriptSegments(s string) ([]transcriptSegment, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&raw); err != nil {
			continue
		}
		if segments, ok := segmentsFrom(raw, 0); ok {
			return segments, nil
		}
	}
	return nil, fmt.Errorf("no transcript segments found in response")
}

func segmentsFrom(raw json.RawMessage, depth int) ([]transcriptSegment, bool) {
	if depth > 4 {
		return nil, false
	}

	var segments []transcriptSegment
	if err := json.Unmarshal(raw, &segments); err == nil {
		return segments, validateSegments(segments)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := keyRank(keys[i]), keyRank(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		if segments, ok := segmentsFrom(obj[k], depth+1); ok {
			return segments, true
		}
	}
	return nil, false
}

func keyRank(k string) int {
	for i, p := range preferredKeys {
		if k == p {
			return i
		}
	}
	return len(preferredKeys)
}

// validateSegments reports whether at least one segment carries a timestamp
// or text.
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Start != 0 || s.End != 0 || strings.TrimSpace(s.Text) != "" {
			return true
		}
	}
	return false
}

func toFragments(segments []transcriptSegment) []segment.Fragment {
	fragments := make([]segment.Fragment, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		fragments = append(fragments, segment.Fragment{Start: s.Start, End: s.End, Text: text})
	}
	return fragments
}

func (t *GeminiTranscriber) Close() error {
	return nil
}
