package segment

import "fmt"

// Fragment is one timestamped unit of text as emitted by a transcription
// engine. Times are in seconds.
type Fragment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Section is a merged run of consecutive fragments.
type Section struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Title string  `json:"title"`
}

const (
	DefaultMaxGap      = 2.0
	DefaultMaxDuration = 30.0
)

// Segmenter carves fragments into sections. A new section starts when the
// pause since the open section exceeds MaxGap, or when merging the fragment
// would stretch the open section past MaxDuration.
type Segmenter struct {
	MaxGap      float64
	MaxDuration float64
}

func DefaultSegmenter() Segmenter {
	return Segmenter{
		MaxGap:      DefaultMaxGap,
		MaxDuration: DefaultMaxDuration,
	}
}

// Segment splits fragments using the default 2s gap and 30s duration rules.
func Segment(fragments []Fragment) []Section {
	return DefaultSegmenter().Segment(fragments)
}

func (s Segmenter) Segment(fragments []Fragment) []Section {
	var sections []Section
	current := Section{}

	for _, f := range fragments {
		// both rules are measured against the open section, not the
		// previous fragment
		gap := f.Start - current.End
		span := f.End - current.Start

		// an empty accumulator is always reseeded so the first section
		// starts at its first fragment instead of at zero
		if current.Text == "" || gap > s.MaxGap || span > s.MaxDuration {
			if current.Text != "" {
				sections = append(sections, current)
			}
			current = Section{
				Start: f.Start,
				End:   f.End,
				Text:  f.Text,
				Title: sectionTitle(len(sections) + 1),
			}
			continue
		}

		current.End = f.End
		current.Text += " " + f.Text
	}

	if current.Text != "" {
		sections = append(sections, current)
	}

	return sections
}

func sectionTitle(n int) string {
	return fmt.Sprintf("Section %d", n)
}
