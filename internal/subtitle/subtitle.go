// Package subtitle reads and writes timestamped transcripts as SRT, WebVTT
// or Whisper-style JSON.
package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/coursegen/internal/segment"
)

type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatJSON Format = "json"
)

// FormatFromExtension maps a file name to its transcript format.
func FormatFromExtension(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatSRT, FormatVTT, FormatJSON:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("unsupported transcript format: %q", filepath.Ext(path))
	}
}

// Open reads a transcript file into fragments. Cues with no text are
// dropped.
func Open(path string) ([]segment.Fragment, error) {
	format, err := FormatFromExtension(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	switch format {
	case FormatJSON:
		return parseJSON(data)
	default:
		return parseCues(string(data))
	}
}
