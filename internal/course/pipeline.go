// Package course turns transcript sections into a course: one overview
// request for the whole recording, then one request per window of sections.
// Every failed or unparseable request degrades to placeholder content, so a
// non-empty input always yields a complete course.
package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/coursegen/internal/extract"
	"github.com/mgpai22/coursegen/internal/llm"
	"github.com/mgpai22/coursegen/internal/logging"
	"github.com/mgpai22/coursegen/internal/segment"
)

var (
	ErrEmptyInput = errors.New("no sections to generate a course from")
	// ErrSectionCount is recorded when a window reply holds a different
	// number of sections than were requested.
	ErrSectionCount = fmt.Errorf("%w: section count mismatch", extract.ErrExtraction)
)

const (
	DefaultBatchSize   = 2
	DefaultConcurrency = 1
	DefaultCallTimeout = 5 * time.Minute
)

// Stage names a generation step for observers and logs.
type Stage string

const (
	StageOverview Stage = "overview"
	StageSections Stage = "sections"
)

// Observer receives per-call events. Implementations must be safe for
// concurrent use when Concurrency > 1.
type Observer interface {
	ObserveCall(stage Stage, elapsed time.Duration, err error)
	ObserveFallback(stage Stage, reason error)
	ObserveSections(n int)
}

type Options struct {
	BatchSize   int           // sections per window request (default 2)
	Concurrency int           // windows in flight (default 1, sequential)
	CallTimeout time.Duration // per request (default 5m)
	Logger      *logging.Logger
	Observer    Observer
}

type Pipeline struct {
	generator llm.Generator
	opts      Options
	logger    *logging.Logger
}

func NewPipeline(generator llm.Generator, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

type overview struct {
	title       string
	description string
	objectives  []string
}

// overviewOutcome and windowOutcome carry either a parsed result or the
// reason it could not be produced. Callers branch on err to build fallbacks.
type overviewOutcome struct {
	overview overview
	elapsed  time.Duration
	err      error
}

type windowOutcome struct {
	sections []Section
	elapsed  time.Duration
	err      error
}

// Generate builds a course from sections. Only an empty input is an error;
// backend and parse failures are replaced by placeholder content.
func (p *Pipeline) Generate(
	ctx context.Context,
	sections []segment.Section,
) (*Content, error) {
	if len(sections) == 0 {
		return nil, ErrEmptyInput
	}

	started := time.Now()
	var metrics Metrics

	p.logger.Infow("Generating course overview", "sections", len(sections))
	ov := p.runOverview(ctx, sections[0])
	metrics.APICalls++
	metrics.InitialGeneration = ov.elapsed

	content := &Content{}
	if ov.err != nil {
		metrics.Fallbacks++
		p.fallback(StageOverview, -1, ov.err)
		ov.overview = fallbackOverview()
	}
	content.Title = ov.overview.title
	content.Description = ov.overview.description
	content.Objectives = ov.overview.objectives

	windows := p.windows(sections)
	p.logger.Infow("Generating section content",
		"windows", len(windows),
		"batch_size", p.opts.BatchSize,
		"concurrency", p.opts.Concurrency,
	)

	outcomes := p.runWindows(ctx, windows)

	content.Sections = make([]Section, 0, len(sections))
	for i, o := range outcomes {
		metrics.APICalls++
		metrics.SectionGeneration += o.elapsed
		if o.err != nil {
			metrics.Fallbacks++
			p.fallback(StageSections, i, o.err)
			content.Sections = append(content.Sections, fallbackSections(windows[i])...)
			continue
		}
		content.Sections = append(content.Sections, o.sections...)
	}

	metrics.SectionsProcessed = len(sections)
	metrics.TotalTime = time.Since(started)
	content.Metrics = metrics

	if p.opts.Observer != nil {
		p.opts.Observer.ObserveSections(len(sections))
	}

	p.logger.Infow("Course generated",
		"title", content.Title,
		"api_calls", metrics.APICalls,
		"fallbacks", metrics.Fallbacks,
		"total_time", FormatDuration(metrics.TotalTime),
	)

	return content, nil
}

func (p *Pipeline) windows(sections []segment.Section) [][]segment.Section {
	var windows [][]segment.Section
	for i := 0; i < len(sections); i += p.opts.BatchSize {
		end := i + p.opts.BatchSize
		if end > len(sections) {
			end = len(sections)
		}
		windows = append(windows, sections[i:end])
	}
	return windows
}

// runWindows generates every window with at most Concurrency requests in
// flight. Outcomes are stored by window index so the result order matches
// the input order whatever the completion order.
func (p *Pipeline) runWindows(
	ctx context.Context,
	windows [][]segment.Section,
) []windowOutcome {
	outcomes := make([]windowOutcome, len(windows))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, window := range windows {
		g.Go(func() error {
			outcomes[i] = p.runWindow(ctx, i, window)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (p *Pipeline) runOverview(
	ctx context.Context,
	first segment.Section,
) overviewOutcome {
	raw, elapsed, err := p.call(ctx, StageOverview, BuildOverviewPrompt(first))
	if err != nil {
		return overviewOutcome{elapsed: elapsed, err: err}
	}
	ov, err := parseOverview(raw)
	return overviewOutcome{overview: ov, elapsed: elapsed, err: err}
}

func (p *Pipeline) runWindow(
	ctx context.Context,
	index int,
	window []segment.Section,
) windowOutcome {
	p.logger.Debugw("Generating window", "window", index, "sections", len(window))

	raw, elapsed, err := p.call(ctx, StageSections, BuildWindowPrompt(window))
	if err != nil {
		return windowOutcome{elapsed: elapsed, err: err}
	}
	sections, err := parseWindow(raw, window)
	return windowOutcome{sections: sections, elapsed: elapsed, err: err}
}

// call issues one bounded request. A timeout surfaces as an error like any
// other backend failure.
func (p *Pipeline) call(
	ctx context.Context,
	stage Stage,
	prompt string,
) (string, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancel()

	began := time.Now()
	raw, err := p.generator.Generate(callCtx, prompt)
	elapsed := time.Since(began)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}

	if p.opts.Observer != nil {
		p.opts.Observer.ObserveCall(stage, elapsed, err)
	}
	return raw, elapsed, err
}

func (p *Pipeline) fallback(stage Stage, window int, reason error) {
	if window >= 0 {
		p.logger.Warnw("Using placeholder content",
			"stage", stage, "window", window, "error", reason)
	} else {
		p.logger.Warnw("Using placeholder content", "stage", stage, "error", reason)
	}
	if p.opts.Observer != nil {
		p.opts.Observer.ObserveFallback(stage, reason)
	}
}

// pointer fields distinguish a missing key from an empty value
type overviewReply struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Objectives  *[]string `json:"objectives"`
}

func parseOverview(raw string) (overview, error) {
	var reply overviewReply
	if err := extract.Into(raw, &reply); err != nil {
		return overview{}, err
	}
	switch {
	case reply.Title == nil:
		return overview{}, missingField("title")
	case reply.Description == nil:
		return overview{}, missingField("description")
	case reply.Objectives == nil:
		return overview{}, missingField("objectives")
	}
	return overview{
		title:       *reply.Title,
		description: *reply.Description,
		objectives:  *reply.Objectives,
	}, nil
}

type sectionReply struct {
	Content *string     `json:"content"`
	Summary *string     `json:"summary"`
	Quiz    *[]QuizItem `json:"quiz"`
}

type windowReply struct {
	Sections *[]sectionReply `json:"sections"`
}

// parseWindow pairs reply entries with window sections by position. The
// whole window is rejected unless every entry is complete and the counts
// match.
func parseWindow(raw string, window []segment.Section) ([]Section, error) {
	var reply windowReply
	if err := extract.Into(raw, &reply); err != nil {
		return nil, err
	}
	if reply.Sections == nil {
		return nil, missingField("sections")
	}
	entries := *reply.Sections
	if len(entries) != len(window) {
		return nil, fmt.Errorf("%w: got %d, want %d",
			ErrSectionCount, len(entries), len(window))
	}

	out := make([]Section, len(window))
	for j, entry := range entries {
		switch {
		case entry.Content == nil:
			return nil, missingField(fmt.Sprintf("sections[%d].content", j))
		case entry.Summary == nil:
			return nil, missingField(fmt.Sprintf("sections[%d].summary", j))
		case entry.Quiz == nil:
			return nil, missingField(fmt.Sprintf("sections[%d].quiz", j))
		}
		out[j] = Section{
			Title:   window[j].Title,
			Content: *entry.Content,
			Summary: *entry.Summary,
			Quiz:    *entry.Quiz,
		}
	}
	return out, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", extract.ErrExtraction, name)
}
