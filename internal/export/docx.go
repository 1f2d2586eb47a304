package export

import (
	"fmt"
	"os"

	"github.com/fumiama/go-docx"

	"github.com/mgpai22/coursegen/internal/course"
)

// implements Exporter on top of go-docx
type DOCXExporter struct{}

// run sizes are in half-points
const (
	docxTitleSize    = "48"
	docxHeading1Size = "32"
	docxHeading2Size = "26"
	docxBodySize     = "22"

	docxHeading1Color = "2C3E50"
	docxHeading2Color = "34495E"
)

type docxText struct {
	size   string
	color  string
	bold   bool
	italic bool
}

var (
	docxTitle    = docxText{size: docxTitleSize, bold: true}
	docxHeading1 = docxText{size: docxHeading1Size, color: docxHeading1Color, bold: true}
	docxHeading2 = docxText{size: docxHeading2Size, color: docxHeading2Color, bold: true}
	docxBody     = docxText{size: docxBodySize}
	docxStrong   = docxText{size: docxBodySize, bold: true}
	docxEmphasis = docxText{size: docxBodySize, italic: true}
)

func addDOCXParagraph(doc *docx.Docx, style docxText, text string) {
	run := doc.AddParagraph().AddText(text).Size(style.size)
	if style.color != "" {
		run.Color(style.color)
	}
	if style.bold {
		run.Bold()
	}
	if style.italic {
		run.Italic()
	}
}

func (e *DOCXExporter) Export(content *course.Content, path string) error {
	doc := docx.New().WithDefaultTheme()

	addDOCXParagraph(doc, docxTitle, content.Title)
	if content.Description != "" {
		addDOCXParagraph(doc, docxEmphasis, content.Description)
	}

	addDOCXParagraph(doc, docxHeading1, "Learning Objectives")
	for _, obj := range content.Objectives {
		addDOCXParagraph(doc, docxBody, "• "+obj)
	}

	for _, s := range content.Sections {
		addDOCXParagraph(doc, docxHeading1, s.Title)
		addDOCXParagraph(doc, docxBody, s.Content)

		addDOCXParagraph(doc, docxHeading2, "Summary")
		addDOCXParagraph(doc, docxBody, s.Summary)

		addDOCXParagraph(doc, docxHeading2, "Quiz")
		for i, q := range s.Quiz {
			addDOCXParagraph(doc, docxStrong, fmt.Sprintf("Question %d: %s", i+1, q.Question))
			for j, opt := range q.Options {
				addDOCXParagraph(doc, docxBody, "    "+optionLetter(j)+". "+opt)
			}
			addDOCXParagraph(doc, docxEmphasis, "Correct Answer: "+q.CorrectAnswer)
		}
	}

	addDOCXParagraph(doc, docxHeading1, "Generation Metrics")
	for _, row := range content.Metrics.Rows() {
		addDOCXParagraph(doc, docxBody, row[0]+": "+row[1])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create DOCX: %w", err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write DOCX: %w", err)
	}
	return f.Close()
}
