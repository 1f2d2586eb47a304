package subtitle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mgpai22/coursegen/internal/segment"
)

type jsonTranscript struct {
	Text     string             `json:"text,omitempty"`
	Language string             `json:"language,omitempty"`
	Segments []segment.Fragment `json:"segments"`
}

// parseJSON accepts a Whisper verbose_json body or a bare array of
// {start, end, text} objects.
func parseJSON(data []byte) ([]segment.Fragment, error) {
	trimmed := strings.TrimSpace(string(data))

	var raw []segment.Fragment
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse transcript JSON: %w", err)
		}
	} else {
		var doc jsonTranscript
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse transcript JSON: %w", err)
		}
		raw = doc.Segments
	}

	fragments := make([]segment.Fragment, 0, len(raw))
	for _, f := range raw {
		f.Text = strings.TrimSpace(f.Text)
		if f.Text == "" {
			continue
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}
