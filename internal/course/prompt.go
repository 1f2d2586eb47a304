package course

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mgpai22/coursegen/internal/segment"
)

// number of leading characters of the first section sent with the overview
// request
const overviewExcerptLen = 500

// BuildOverviewPrompt asks for a course title, description and objectives
// based on the opening of the first section.
func BuildOverviewPrompt(first segment.Section) string {
	var sb strings.Builder

	sb.WriteString("Based on this content: ")
	sb.WriteString(excerpt(first.Text, overviewExcerptLen))
	sb.WriteString("\n\nGenerate:\n")
	sb.WriteString("1. A concise, engaging title\n")
	sb.WriteString("2. A brief description\n")
	sb.WriteString("3. 3-5 learning objectives\n\n")
	sb.WriteString("Format the response as JSON:\n")
	sb.WriteString(`{
    "title": "Course Title",
    "description": "Course Description",
    "objectives": ["Objective 1", "Objective 2", "Objective 3"]
}`)

	return sb.String()
}

type promptSection struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// BuildWindowPrompt asks for content, a summary and three quiz questions for
// every section of one window.
func BuildWindowPrompt(window []segment.Section) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"Generate course content for %d sections.\n",
		len(window),
	))
	sb.WriteString("For each section, provide:\n")
	sb.WriteString("1. Structured learning content\n")
	sb.WriteString("2. A concise summary\n")
	sb.WriteString("3. 3 multiple choice questions\n\n")
	sb.WriteString("Return exactly one entry in \"sections\" per input section, in the same order.\n\n")
	sb.WriteString("Format the response as JSON:\n")
	sb.WriteString(`{
    "sections": [
        {
            "content": "Structured content here",
            "summary": "Summary here",
            "quiz": [
                {
                    "question": "Question text",
                    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
                    "correct_answer": "Option 1"
                }
            ]
        }
    ]
}`)

	input := make([]promptSection, len(window))
	for i, s := range window {
		input[i] = promptSection{Title: s.Title, Text: s.Text}
	}
	inputJSON, _ := json.Marshal(input)

	sb.WriteString("\n\nSection contents:\n")
	sb.Write(inputJSON)

	return sb.String()
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
