package subtitle

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/coursegen/internal/segment"
)

// Write saves fragments in the format implied by path's extension.
func Write(path string, fragments []segment.Fragment) error {
	format, err := FormatFromExtension(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatVTT:
		return WriteVTT(path, fragments)
	case FormatJSON:
		return WriteJSON(path, fragments)
	default:
		return WriteSRT(path, fragments)
	}
}

func WriteSRT(path string, fragments []segment.Fragment) error {
	var sb strings.Builder
	for i, f := range fragments {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1, formatTimestamp(f.Start, ','), formatTimestamp(f.End, ','), f.Text)
	}
	return writeFile(path, []byte(sb.String()))
}

func WriteVTT(path string, fragments []segment.Fragment) error {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, f := range fragments {
		fmt.Fprintf(&sb, "%s --> %s\n%s\n\n",
			formatTimestamp(f.Start, '.'), formatTimestamp(f.End, '.'), f.Text)
	}
	return writeFile(path, []byte(sb.String()))
}

func WriteJSON(path string, fragments []segment.Fragment) error {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	if fragments == nil {
		fragments = []segment.Fragment{}
	}
	data, err := json.MarshalIndent(jsonTranscript{
		Text:     strings.Join(texts, " "),
		Segments: fragments,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	return writeFile(path, data)
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm.
func formatTimestamp(sec float64, sep byte) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
