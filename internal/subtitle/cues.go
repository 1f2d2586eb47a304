package subtitle

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/coursegen/internal/segment"
)

// matches both SRT (00:00:01,000) and WebVTT (00:00:01.000 or 00:01.000)
// cue timings
var (
	timingRegex = regexp.MustCompile(
		`((?:\d+:)?\d{2}:\d{2}[,.]\d{3})\s*-->\s*((?:\d+:)?\d{2}:\d{2}[,.]\d{3})`,
	)
	tagRegex = regexp.MustCompile(`<[^>]+>`)
)

// parseCues reads SRT or WebVTT text. Cue numbers, the WEBVTT header and
// NOTE/STYLE/REGION blocks are skipped; multi-line cue text is joined with
// spaces and inline tags are removed.
func parseCues(content string) ([]segment.Fragment, error) {
	var (
		fragments []segment.Fragment
		current   *segment.Fragment
		lines     []string
		skipBlock bool
		lineNum   int
	)

	flush := func() {
		if current != nil {
			text := strings.Join(strings.Fields(tagRegex.ReplaceAllString(strings.Join(lines, " "), "")), " ")
			if text != "" {
				current.Text = text
				fragments = append(fragments, *current)
			}
		}
		current = nil
		lines = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" {
			flush()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}
		if current == nil && (strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "NOTE") ||
			strings.HasPrefix(line, "STYLE") ||
			strings.HasPrefix(line, "REGION")) {
			skipBlock = true
			continue
		}

		if m := timingRegex.FindStringSubmatch(line); m != nil {
			flush()
			start, err := parseTimestamp(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseTimestamp(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &segment.Fragment{Start: start, End: end}
			continue
		}

		// cue identifiers precede the timing line
		if current == nil {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading transcript: %w", err)
	}
	flush()

	return fragments, nil
}

// parseTimestamp converts [HH:]MM:SS(,|.)mmm to seconds.
func parseTimestamp(ts string) (float64, error) {
	ts = strings.Replace(ts, ",", ".", 1)
	parts := strings.Split(ts, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	var total float64
	for _, p := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
		}
		total = total*60 + float64(n)
	}
	sec, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	return total*60 + sec, nil
}
