package course

import "github.com/mgpai22/coursegen/internal/segment"

const (
	FallbackTitle       = "Course Generated from Video"
	FallbackDescription = "A comprehensive course generated from video content"
	FallbackSummary     = "Summary not available"
	FallbackQuestion    = "Error generating quiz questions"
)

func fallbackObjectives() []string {
	return []string{
		"Understand the main concepts",
		"Apply the knowledge",
		"Master the skills",
	}
}

func fallbackQuiz() []QuizItem {
	options := []string{
		"Please try again",
		"Contact support",
		"Check the content",
		"Review the section",
	}
	return []QuizItem{{
		Question:      FallbackQuestion,
		Options:       options,
		CorrectAnswer: options[0],
	}}
}

func fallbackOverview() overview {
	return overview{
		title:       FallbackTitle,
		description: FallbackDescription,
		objectives:  fallbackObjectives(),
	}
}

// fallbackSections keeps each section's title and raw transcript text.
func fallbackSections(window []segment.Section) []Section {
	out := make([]Section, len(window))
	for i, s := range window {
		out[i] = Section{
			Title:   s.Title,
			Content: s.Text,
			Summary: FallbackSummary,
			Quiz:    fallbackQuiz(),
		}
	}
	return out
}
