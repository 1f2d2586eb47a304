// Package ffmpeg locates the ffmpeg and ffprobe executables. Lookup order:
// COURSEGEN_FFMPEG_PATH / COURSEGEN_FFPROBE_PATH, then PATH, then a per-user
// cache populated from the embedded bundle (ffmpeg_embedded builds) or a
// one-time download.
package ffmpeg

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	EnvFFmpegPath  = "COURSEGEN_FFMPEG_PATH"
	EnvFFprobePath = "COURSEGEN_FFPROBE_PATH"
)

var ErrUnsupportedPlatform = errors.New("no prebuilt ffmpeg for this platform")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Resolver finds or installs the binaries. The zero value uses the process
// environment, PATH and the user cache directory.
type Resolver struct {
	Lookup   func(string) (string, bool)
	LookPath func(string) (string, error)
	CacheDir string
	BaseURL  string

	HTTPClient *http.Client
}

var (
	defaultOnce  sync.Once
	defaultPaths BinaryPaths
	defaultErr   error
)

// Ensure resolves the binaries once per process.
func Ensure() (BinaryPaths, error) {
	defaultOnce.Do(func() {
		defaultPaths, defaultErr = Resolver{}.Resolve(context.Background())
	})
	return defaultPaths, defaultErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	return paths.FFmpeg, err
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	return paths.FFprobe, err
}

func (r Resolver) Resolve(ctx context.Context) (BinaryPaths, error) {
	if r.Lookup == nil {
		r.Lookup = os.LookupEnv
	}
	if r.LookPath == nil {
		r.LookPath = exec.LookPath
	}

	var paths BinaryPaths
	if v, ok := r.Lookup(EnvFFmpegPath); ok {
		paths.FFmpeg = strings.TrimSpace(v)
	}
	if v, ok := r.Lookup(EnvFFprobePath); ok {
		paths.FFprobe = strings.TrimSpace(v)
	}
	if paths.FFmpeg == "" {
		paths.FFmpeg, _ = r.LookPath("ffmpeg")
	}
	if paths.FFprobe == "" {
		paths.FFprobe, _ = r.LookPath("ffprobe")
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	return r.install(ctx)
}

func (r Resolver) installDir() string {
	cacheDir := r.CacheDir
	if cacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil && dir != "" {
			cacheDir = dir
		} else {
			cacheDir = os.TempDir()
		}
	}
	return filepath.Join(cacheDir, "coursegen", "ffmpeg", releaseVersion,
		runtime.GOOS, runtime.GOARCH)
}

func (r Resolver) install(ctx context.Context) (BinaryPaths, error) {
	asset, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}

	dir := r.installDir()
	paths := BinaryPaths{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(dir, "ffprobe"+executableSuffix()),
	}
	if fileExists(paths.FFmpeg) && fileExists(paths.FFprobe) {
		return paths, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	src, embedded, err := openEmbeddedAsset(asset)
	if err != nil {
		return BinaryPaths{}, err
	}
	if !embedded {
		if src, err = r.download(ctx, asset); err != nil {
			return BinaryPaths{}, err
		}
	}
	defer func() { _ = src.Close() }()

	if err := extractFromReader(asset, src, dir); err != nil {
		return BinaryPaths{}, err
	}
	if err := makeExecutable(paths); err != nil {
		return BinaryPaths{}, err
	}
	return paths, nil
}

func (r Resolver) download(ctx context.Context, asset string) (io.ReadCloser, error) {
	base := r.BaseURL
	if base == "" {
		base = releaseBaseURL
	}
	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	url := fmt.Sprintf("%s/v%s/%s", strings.TrimRight(base, "/"), releaseVersion, asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	var suffix string
	switch goos + "/" + goarch {
	case "linux/amd64":
		suffix = "linux-64"
	case "linux/arm64":
		suffix = "linux-arm-64"
	case "darwin/amd64":
		suffix = "macos-64"
	case "windows/amd64":
		suffix = "win-64"
	default:
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return "ffmpeg-" + releaseVersion + "-" + suffix + ".zip", nil
}

// extractFromReader spools the archive to disk because zip needs random
// access.
func extractFromReader(asset string, src io.Reader, dir string) error {
	tmp, err := os.CreateTemp("", "coursegen-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, copyErr := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	if err := extractArchive(tmp.Name(), dir); err != nil {
		return fmt.Errorf("extract %s: %w", asset, err)
	}
	return nil
}

// extractArchive copies the ffmpeg and ffprobe entries of a zip into dir,
// ignoring the archive's directory layout.
func extractArchive(archivePath, dir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	found := map[string]bool{}
	for _, file := range zr.File {
		name := strings.TrimSuffix(strings.ToLower(filepath.Base(file.Name)), ".exe")
		if name != "ffmpeg" && name != "ffprobe" {
			continue
		}
		if err := extractZipFile(file, filepath.Join(dir, name+executableSuffix())); err != nil {
			return err
		}
		found[name] = true
	}

	if !found["ffmpeg"] || !found["ffprobe"] {
		return errors.New("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	return nil
}

func makeExecutable(paths BinaryPaths) error {
	if !fileExists(paths.FFmpeg) || !fileExists(paths.FFprobe) {
		return errors.New("ffmpeg binaries not found after extraction")
	}
	if runtime.GOOS == "windows" {
		return nil
	}
	for _, p := range []string{paths.FFmpeg, paths.FFprobe} {
		if err := os.Chmod(p, 0o755); err != nil {
			return fmt.Errorf("chmod %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
