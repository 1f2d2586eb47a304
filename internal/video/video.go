// Package video acquires a recording and turns it into an audio track ready
// for transcription. All intermediate files live in a Stage directory that
// is removed on Close.
package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/coursegen/internal/audio"
	"github.com/mgpai22/coursegen/internal/logging"
)

// Processor converts media files to audio.
type Processor interface {
	ExtractAudio(
		ctx context.Context,
		mediaPath, outputPath string,
		opts audio.CompressionOptions,
	) error
}

// DefaultProcessor encodes with ffmpeg.
type DefaultProcessor struct{}

func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{}
}

// ExtractAudio writes the audio track of mediaPath to outputPath. Audio-only
// inputs are re-encoded with the same options.
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	mediaPath, outputPath string,
	opts audio.CompressionOptions,
) error {
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}
	if err := audio.CompressAudio(ctx, mediaPath, outputPath, opts); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}
	return nil
}

// Downloader fetches a remote recording into dir and returns its path.
type Downloader interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

// Stage is a scoped working directory for one run.
type Stage struct {
	Dir string

	Downloader Downloader
	Processor  Processor
	logger     *logging.Logger
}

// NewStage creates a fresh directory under parent (the system temp dir when
// empty). Callers must Close it.
func NewStage(parent string, logger *logging.Logger) (*Stage, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create temp root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "coursegen-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		Dir:        dir,
		Downloader: &YTDLP{},
		Processor:  NewProcessor(),
		logger:     logger,
	}, nil
}

func (s *Stage) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Close removes the stage directory and everything in it.
func (s *Stage) Close() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		s.logger.Warnw("Failed to remove temp directory", "dir", s.Dir, "error", err)
		return err
	}
	return nil
}

func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch returns a local path for source, downloading remote URLs into the
// stage.
func (s *Stage) Fetch(ctx context.Context, source string) (string, error) {
	if IsRemote(source) {
		s.logger.Infow("Downloading recording", "url", source)
		path, err := s.Downloader.Download(ctx, source, s.Dir)
		if err != nil {
			return "", fmt.Errorf("failed to download %s: %w", source, err)
		}
		s.logger.Infow("Downloaded recording", "path", path)
		return path, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", source)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", source)
	}
	return source, nil
}

// PrepareAudio fetches source and encodes it to a transcription-ready
// track inside the stage.
func (s *Stage) PrepareAudio(
	ctx context.Context,
	source string,
	opts audio.CompressionOptions,
) (string, error) {
	mediaPath, err := s.Fetch(ctx, source)
	if err != nil {
		return "", err
	}

	out := s.Path("audio" + opts.Extension())
	s.logger.Infow("Extracting audio", "input", mediaPath, "output", out)
	if err := s.Processor.ExtractAudio(ctx, mediaPath, out, opts); err != nil {
		return "", err
	}
	return out, nil
}
