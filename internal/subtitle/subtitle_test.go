package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/coursegen/internal/segment"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestOpenSRT(t *testing.T) {
	path := writeTemp(t, "talk.srt", "\ufeff1\n"+
		"00:00:01,000 --> 00:00:04,000\n"+
		"Hello, world!\n\n"+
		"2\n"+
		"00:00:05,500 --> 00:00:08,200\n"+
		"This is a test.\n"+
		"With multiple lines.\n\n"+
		"3\n"+
		"01:00:10,000 --> 01:00:12,500\n"+
		"Final line.\n")

	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	want := []segment.Fragment{
		{Start: 1, End: 4, Text: "Hello, world!"},
		{Start: 5.5, End: 8.2, Text: "This is a test. With multiple lines."},
		{Start: 3610, End: 3612.5, Text: "Final line."},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d fragments, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestOpenVTT(t *testing.T) {
	path := writeTemp(t, "talk.vtt", `WEBVTT
Kind: captions

NOTE this block is ignored
00:00:00.000 --> 00:00:01.000
not a cue

STYLE
::cue { color: yellow }

intro
00:00:01.000 --> 00:00:04.000 align:start
<v Speaker>Hello</v> <c.loud>there</c>

00:05.500 --> 00:08.000
Short timing form.
`)

	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d fragments, want 2: %+v", len(got), got)
	}
	if got[0] != (segment.Fragment{Start: 1, End: 4, Text: "Hello there"}) {
		t.Errorf("fragment 0 = %+v", got[0])
	}
	if got[1].Start != 5.5 || got[1].End != 8 {
		t.Errorf("fragment 1 = %+v", got[1])
	}
}

func TestOpenJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "whisper verbose json",
			content: `{"text":"a b","segments":[{"id":0,"start":0,"end":1.5,"text":" a "},{"id":1,"start":1.5,"end":3,"text":"b"}]}`,
			want:    2,
		},
		{
			name:    "bare array",
			content: `[{"start":0,"end":1,"text":"a"},{"start":1,"end":2,"text":"  "}]`,
			want:    1,
		},
		{
			name:    "malformed",
			content: `{"segments": [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(writeTemp(t, "t.json", tt.content))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d fragments, want %d", len(got), tt.want)
			}
			for _, f := range got {
				if f.Text != strings.TrimSpace(f.Text) || f.Text == "" {
					t.Errorf("fragment text not trimmed: %q", f.Text)
				}
			}
		})
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	if _, err := Open(writeTemp(t, "talk.ass", "[Script Info]")); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.srt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:01,000", 1, false},
		{"00:01:02.500", 62.5, false},
		{"02:00:00.000", 7200, false},
		{"01:05.250", 65.25, false},
		{"bogus", 0, true},
		{"aa:00.000", 0, true},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		sec  float64
		sep  byte
		want string
	}{
		{0, ',', "00:00:00,000"},
		{1.5, ',', "00:00:01,500"},
		{3661.001, '.', "01:01:01.001"},
		{-2, '.', "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := formatTimestamp(tt.sec, tt.sep); got != tt.want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}

func TestWriteThenOpen(t *testing.T) {
	fragments := []segment.Fragment{
		{Start: 0.25, End: 2, Text: "first"},
		{Start: 2.5, End: 61.75, Text: "second"},
	}

	for _, name := range []string{"out.srt", "out.vtt", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			if err := Write(path, fragments); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			got, err := Open(path)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if len(got) != len(fragments) {
				t.Fatalf("got %d fragments, want %d", len(got), len(fragments))
			}
			for i := range fragments {
				if got[i] != fragments[i] {
					t.Errorf("fragment %d = %+v, want %+v", i, got[i], fragments[i])
				}
			}
		})
	}
}
