package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/coursegen/internal/course"
)

type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(content *course.Content, path string) error {
	return os.WriteFile(path, []byte(RenderMarkdown(content)), 0o644)
}

func RenderMarkdown(content *course.Content) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", content.Title)
	if content.Description != "" {
		fmt.Fprintf(&b, "> %s\n\n", content.Description)
	}

	b.WriteString("## Learning Objectives\n\n")
	for _, obj := range content.Objectives {
		fmt.Fprintf(&b, "- %s\n", obj)
	}
	b.WriteString("\n---\n\n")

	for _, s := range content.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(s.Content))

		b.WriteString("### Summary\n\n")
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(s.Summary))

		b.WriteString("### Quiz\n\n")
		for i, q := range s.Quiz {
			fmt.Fprintf(&b, "**Question %d:** %s\n\n", i+1, q.Question)
			for j, opt := range q.Options {
				fmt.Fprintf(&b, "%s. %s\n", optionLetter(j), opt)
			}
			fmt.Fprintf(&b, "\n*Correct Answer: %s*\n\n", q.CorrectAnswer)
		}
	}

	b.WriteString("---\n\n## Generation Metrics\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	for _, row := range content.Metrics.Rows() {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
	}
	return b.String()
}
