package course

// QuizItem is one multiple choice question. Options normally holds four
// entries but is passed through as the backend produced it.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Section is the generated teaching material for one transcript section.
type Section struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Summary string     `json:"summary"`
	Quiz    []QuizItem `json:"quiz"`
}

// Content is a complete course. It is built once by Pipeline.Generate and is
// read-only afterwards.
type Content struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Objectives  []string  `json:"objectives"`
	Sections    []Section `json:"sections"`
	Metrics     Metrics   `json:"generation_metrics"`
}
