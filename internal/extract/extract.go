// Package extract recovers a JSON object embedded in free-form model output.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExtraction is returned when no usable object could be recovered.
	ErrExtraction = errors.New("extraction failed")
	// ErrNoObject is returned when the text holds no brace-delimited span.
	ErrNoObject = fmt.Errorf("%w: no JSON object found", ErrExtraction)
)

// Span returns the text from the first '{' to the last '}' inclusive.
// Prose before and after the payload is dropped. Braces are not balanced, so
// output holding several independent objects yields a span that will not
// parse.
func Span(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return "", ErrNoObject
	}
	return raw[start : end+1], nil
}

// Object parses the span located by Span into a generic record.
func Object(raw string) (map[string]any, error) {
	var record map[string]any
	if err := Into(raw, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Into decodes the span located by Span into v.
func Into(raw string, v any) error {
	span, err := Span(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf(
			"%w: %v (response: %s)",
			ErrExtraction,
			err,
			truncateString(span, 200),
		)
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
