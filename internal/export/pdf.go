package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/mgpai22/coursegen/internal/course"
)

// PDFExporter implements Exporter with fpdf. Text is drawn with a UTF-8
// TrueType font when one can be found; otherwise it falls back to the core
// Helvetica font and is mapped to cp1252.
type PDFExporter struct {
	// FontPath names a regular-weight TTF. Empty searches
	// $COURSEGEN_PDF_FONT and common system locations.
	FontPath string
}

const (
	pdfCoreFont   = "Helvetica"
	pdfUTF8Font   = "coursegen"
	pdfLineHeight = 6.0
)

var utf8FontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/noto/NotoSans-Regular.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

func findUTF8Font() string {
	if p := os.Getenv("COURSEGEN_PDF_FONT"); p != "" && fileExists(p) {
		return p
	}
	for _, p := range utf8FontCandidates {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// fontStyles maps fpdf style letters to font files. Bold and italic use the
// regular file unless a sibling like DejaVuSans-Bold.ttf exists.
func fontStyles(regular string) map[string]string {
	styles := map[string]string{"": regular, "B": regular, "I": regular}

	ext := filepath.Ext(regular)
	stem := strings.TrimSuffix(strings.TrimSuffix(regular, ext), "-Regular")
	for style, suffixes := range map[string][]string{
		"B": {"-Bold"},
		"I": {"-Oblique", "-Italic"},
	} {
		for _, suffix := range suffixes {
			if p := stem + suffix + ext; fileExists(p) {
				styles[style] = p
				break
			}
		}
	}
	return styles
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// setupFont registers the UTF-8 font when available and returns the family
// to use plus the text translator that goes with it.
func (e *PDFExporter) setupFont(pdf *fpdf.Fpdf) (string, func(string) string, error) {
	fontPath := e.FontPath
	if fontPath == "" || !fileExists(fontPath) {
		fontPath = findUTF8Font()
	}
	if fontPath == "" {
		return pdfCoreFont, pdf.UnicodeTranslatorFromDescriptor(""), nil
	}

	for style, file := range fontStyles(fontPath) {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read font %s: %w", file, err)
		}
		pdf.AddUTF8FontFromBytes(pdfUTF8Font, style, data)
	}
	return pdfUTF8Font, func(s string) string { return s }, nil
}

func (e *PDFExporter) Export(content *course.Content, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdfFont, tr, err := e.setupFont(pdf)
	if err != nil {
		return err
	}

	pdf.SetTitle(content.Title, true)
	pdf.SetCreator("coursegen", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	heading := func(text string, size float64) {
		pdf.SetFont(pdfFont, "B", size)
		pdf.SetTextColor(44, 62, 80)
		pdf.MultiCell(0, size*0.5, tr(text), "", "L", false)
		pdf.Ln(2)
	}
	paragraph := func(style, text string) {
		pdf.SetFont(pdfFont, style, 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, pdfLineHeight, tr(text), "", "L", false)
	}

	pdf.AddPage()
	heading(content.Title, 22)
	if content.Description != "" {
		paragraph("I", content.Description)
		pdf.Ln(4)
	}

	heading("Learning Objectives", 16)
	for _, obj := range content.Objectives {
		paragraph("", "- "+obj)
	}

	for _, s := range content.Sections {
		pdf.Ln(6)
		heading(s.Title, 16)
		paragraph("", s.Content)
		pdf.Ln(3)

		heading("Summary", 13)
		paragraph("", s.Summary)
		pdf.Ln(3)

		heading("Quiz", 13)
		for i, q := range s.Quiz {
			paragraph("B", fmt.Sprintf("Question %d: %s", i+1, q.Question))
			for j, opt := range q.Options {
				paragraph("", fmt.Sprintf("   %s. %s", optionLetter(j), opt))
			}
			paragraph("I", "Correct Answer: "+q.CorrectAnswer)
			pdf.Ln(2)
		}
	}

	pdf.Ln(6)
	heading("Generation Metrics", 13)
	for _, row := range content.Metrics.Rows() {
		paragraph("", fmt.Sprintf("%s: %s", row[0], row[1]))
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
