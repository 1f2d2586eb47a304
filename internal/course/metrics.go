package course

import (
	"encoding/json"
	"fmt"
	"time"
)

// Metrics summarises one Generate call. Durations are wall clock, except
// SectionGeneration which is the sum of the per-window call times.
type Metrics struct {
	TotalTime         time.Duration
	InitialGeneration time.Duration
	SectionGeneration time.Duration
	APICalls          int
	SectionsProcessed int
	Fallbacks         int
}

func (m Metrics) AveragePerSection() time.Duration {
	if m.SectionsProcessed == 0 {
		return 0
	}
	return m.SectionGeneration / time.Duration(m.SectionsProcessed)
}

// FormatDuration renders d as H:MM:SS, truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

type metricsJSON struct {
	TotalTime         string `json:"total_time"`
	InitialGeneration string `json:"initial_generation"`
	SectionGeneration string `json:"section_generation"`
	APICalls          int    `json:"total_api_calls"`
	SectionsProcessed int    `json:"sections_processed"`
	AveragePerSection string `json:"average_time_per_section"`
	Fallbacks         int    `json:"fallbacks"`
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		TotalTime:         FormatDuration(m.TotalTime),
		InitialGeneration: FormatDuration(m.InitialGeneration),
		SectionGeneration: FormatDuration(m.SectionGeneration),
		APICalls:          m.APICalls,
		SectionsProcessed: m.SectionsProcessed,
		AveragePerSection: FormatDuration(m.AveragePerSection()),
		Fallbacks:         m.Fallbacks,
	})
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw metricsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	parsed := Metrics{
		APICalls:          raw.APICalls,
		SectionsProcessed: raw.SectionsProcessed,
		Fallbacks:         raw.Fallbacks,
	}
	if parsed.TotalTime, err = parseDuration(raw.TotalTime); err != nil {
		return err
	}
	if parsed.InitialGeneration, err = parseDuration(raw.InitialGeneration); err != nil {
		return err
	}
	if parsed.SectionGeneration, err = parseDuration(raw.SectionGeneration); err != nil {
		return err
	}
	*m = parsed
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	var h, m, sec int64
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(h*3600+m*60+sec) * time.Second, nil
}

// Rows returns the metrics as ordered label/value pairs for display.
func (m Metrics) Rows() [][2]string {
	return [][2]string{
		{"Total time", FormatDuration(m.TotalTime)},
		{"Initial generation", FormatDuration(m.InitialGeneration)},
		{"Section generation", FormatDuration(m.SectionGeneration)},
		{"Total API calls", fmt.Sprint(m.APICalls)},
		{"Sections processed", fmt.Sprint(m.SectionsProcessed)},
		{"Average time per section", FormatDuration(m.AveragePerSection())},
		{"Fallbacks", fmt.Sprint(m.Fallbacks)},
	}
}
