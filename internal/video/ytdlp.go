package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgpai22/coursegen/internal/audio"
)

// YTDLP downloads with the yt-dlp executable.
type YTDLP struct {
	Binary string // defaults to "yt-dlp" on PATH
	Format string // defaults to "best"
}

func (y *YTDLP) args(url, dir string) []string {
	format := y.Format
	if format == "" {
		format = "best"
	}
	return []string{
		"--format", format,
		"--output", filepath.Join(dir, "%(title)s.%(ext)s"),
		"--no-playlist",
		"--no-check-certificates",
		"--no-warnings",
		"--quiet",
		"--print", "after_move:filepath",
		url,
	}
}

func (y *YTDLP) Download(ctx context.Context, url, dir string) (string, error) {
	binary := y.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return "", fmt.Errorf("yt-dlp not found: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, y.args(url, dir)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	if path := downloadedPath(stdout.String()); path != "" {
		return path, nil
	}
	return findMedia(dir)
}

// downloadedPath returns the last non-empty printed line naming an existing
// file.
func downloadedPath(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		p := strings.TrimSpace(lines[i])
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func findMedia(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && audio.IsMediaFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", errors.New("no media file was downloaded")
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}
