package segment

import (
	"strings"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name      string
		fragments []Fragment
		want      []Section
	}{
		{
			name:      "empty input",
			fragments: nil,
			want:      nil,
		},
		{
			name: "gap over threshold splits",
			fragments: []Fragment{
				{Start: 0, End: 5, Text: "a"},
				{Start: 8, End: 10, Text: "b"},
			},
			want: []Section{
				{Start: 0, End: 5, Text: "a", Title: "Section 1"},
				{Start: 8, End: 10, Text: "b", Title: "Section 2"},
			},
		},
		{
			name: "small gap merges",
			fragments: []Fragment{
				{Start: 0, End: 5, Text: "a"},
				{Start: 6, End: 10, Text: "b"},
			},
			want: []Section{
				{Start: 0, End: 10, Text: "a b", Title: "Section 1"},
			},
		},
		{
			name: "duration cap splits despite small gap",
			fragments: []Fragment{
				{Start: 0, End: 5, Text: "a"},
				{Start: 6, End: 40, Text: "b"},
			},
			want: []Section{
				{Start: 0, End: 5, Text: "a", Title: "Section 1"},
				{Start: 6, End: 40, Text: "b", Title: "Section 2"},
			},
		},
		{
			name: "gap of exactly two seconds merges",
			fragments: []Fragment{
				{Start: 0, End: 5, Text: "a"},
				{Start: 7, End: 9, Text: "b"},
			},
			want: []Section{
				{Start: 0, End: 9, Text: "a b", Title: "Section 1"},
			},
		},
		{
			name: "first fragment late in the recording",
			fragments: []Fragment{
				{Start: 12.5, End: 14, Text: "late"},
				{Start: 14.2, End: 16, Text: "start"},
			},
			want: []Section{
				{Start: 12.5, End: 16, Text: "late start", Title: "Section 1"},
			},
		},
		{
			name: "gap measured against open section end",
			fragments: []Fragment{
				{Start: 0, End: 10, Text: "a"},
				{Start: 11, End: 12, Text: "b"},
				{Start: 13.5, End: 14, Text: "c"},
				{Start: 17, End: 18, Text: "d"},
			},
			want: []Section{
				{Start: 0, End: 14, Text: "a b c", Title: "Section 1"},
				{Start: 17, End: 18, Text: "d", Title: "Section 2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.fragments)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sections, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("section %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSegmentPreservesContent(t *testing.T) {
	fragments := []Fragment{
		{Start: 0, End: 3, Text: "one"},
		{Start: 3.5, End: 12, Text: "two"},
		{Start: 12, End: 29, Text: "three"},
		{Start: 29.5, End: 35, Text: "four"},
		{Start: 40, End: 41, Text: "five"},
		{Start: 41, End: 80, Text: "six"},
		{Start: 80.5, End: 81, Text: "seven"},
	}

	sections := Segment(fragments)
	if len(sections) == 0 {
		t.Fatal("expected sections")
	}

	var words []string
	for i, s := range sections {
		if s.Text == "" {
			t.Errorf("section %d has empty text", i)
		}
		if s.End < s.Start {
			t.Errorf("section %d ends before it starts: %+v", i, s)
		}
		words = append(words, strings.Fields(s.Text)...)
	}

	var want []string
	for _, f := range fragments {
		want = append(want, f.Text)
	}
	if strings.Join(words, " ") != strings.Join(want, " ") {
		t.Errorf("content changed: got %q, want %q", words, want)
	}

	if sections[0].Start != fragments[0].Start {
		t.Errorf("first section start = %v, want %v", sections[0].Start, fragments[0].Start)
	}
}

func TestSegmentTitlesAreOrdinal(t *testing.T) {
	var fragments []Fragment
	for i := 0; i < 5; i++ {
		start := float64(i) * 10
		fragments = append(fragments, Fragment{Start: start, End: start + 1, Text: "x"})
	}

	sections := Segment(fragments)
	if len(sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(sections))
	}
	for i, s := range sections {
		want := sectionTitle(i + 1)
		if s.Title != want {
			t.Errorf("section %d title = %q, want %q", i, s.Title, want)
		}
	}
}

func TestSegmenterCustomThresholds(t *testing.T) {
	s := Segmenter{MaxGap: 0.5, MaxDuration: 100}
	fragments := []Fragment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1.4, End: 2, Text: "b"},
		{Start: 3, End: 4, Text: "c"},
	}

	got := s.Segment(fragments)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].Text != "a b" || got[1].Text != "c" {
		t.Errorf("unexpected split: %+v", got)
	}
}
