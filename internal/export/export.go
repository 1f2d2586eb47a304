// Package export renders a generated course to document files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mgpai22/coursegen/internal/course"
)

type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

func Formats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatMarkdown, FormatJSON}
}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Exporter writes one course to one file.
type Exporter interface {
	Export(content *course.Content, path string) error
}

// creates Exporter for format
func Factory(format Format) (Exporter, error) {
	switch format {
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatDOCX:
		return &DOCXExporter{}, nil
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

var (
	reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a course title into a file name stem.
func SanitizeFilename(title string) string {
	name := reservedChars.ReplaceAllString(title, "")
	name = strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
	if name == "" {
		return "course"
	}
	return name
}

// ExportAll writes content once per format into dir as
// <sanitized title>.<format> and returns the written paths in format order.
func ExportAll(content *course.Content, dir string, formats []Format) ([]string, error) {
	if content == nil {
		return nil, fmt.Errorf("no course content to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stem := SanitizeFilename(content.Title)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		exporter, err := Factory(format)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, stem+"."+string(format))
		if err := exporter.Export(content, path); err != nil {
			return paths, fmt.Errorf("failed to export %s: %w", format, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func optionLetter(i int) string {
	return string(rune('A' + i))
}
