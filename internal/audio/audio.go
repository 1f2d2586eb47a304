// Package audio prepares recordings for speech-to-text: probing, re-encoding
// to a small mono track, and splitting long tracks into chunks.
package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	ffmpegbin "github.com/mgpai22/coursegen/internal/ffmpeg"
)

// ChunkInfo describes one slice of a longer recording.
type ChunkInfo struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// CompressionOptions controls re-encoding. The defaults suit speech-to-text
// uploads (16 kHz mono MP3), which keeps an hour of audio well under typical
// API upload limits.
type CompressionOptions struct {
	Format     string // mp3, aac, wav or flac
	SampleRate int
	Channels   int
	Bitrate    string // lossy formats only, e.g. "64k"
}

func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// Extension returns the file extension, with dot, for the output format.
func (o CompressionOptions) Extension() string {
	switch o.Format {
	case "aac":
		return ".m4a"
	case "wav", "flac":
		return "." + o.Format
	default:
		return ".mp3"
	}
}

// EncoderArgs returns the ffmpeg output arguments for the options.
func (o CompressionOptions) EncoderArgs() ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": o.SampleRate,
		"ac": o.Channels,
	}

	switch o.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if o.Bitrate != "" && (o.Format == "mp3" || o.Format == "aac" || o.Format == "") {
		kwargs["b:a"] = o.Bitrate
	}
	return kwargs
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetDuration probes a media file with ffprobe.
func GetDuration(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("file not found: %s", path)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeDuration(out.Bytes())
}

func parseProbeDuration(data []byte) (time.Duration, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// CompressAudio re-encodes any audio or video input to an audio-only file.
func CompressAudio(
	ctx context.Context,
	inputPath, outputPath string,
	opts CompressionOptions,
) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(inputPath).
		Output(outputPath, opts.EncoderArgs()).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	return nil
}

// PlanChunks divides total into consecutive windows of at most size. The last
// window may be shorter.
func PlanChunks(audioPath string, total, size time.Duration, outputDir string) []ChunkInfo {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	ext := filepath.Ext(audioPath)

	var chunks []ChunkInfo
	for i := 0; time.Duration(i)*size < total; i++ {
		start := time.Duration(i) * size
		end := start + size
		if end > total {
			end = total
		}
		chunks = append(chunks, ChunkInfo{
			Path:      filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", base, i, ext)),
			Index:     i,
			StartTime: start,
			EndTime:   end,
		})
	}
	return chunks
}

// ChunkAudio splits audioPath into chunkDuration pieces inside outputDir,
// cutting up to concurrency pieces at a time (default 4). Chunks are
// returned in order.
func ChunkAudio(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	total, err := GetDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	chunks := PlanChunks(audioPath, total, chunkDuration, outputDir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := ffmpeg.Input(audioPath).
				Output(chunk.Path, ffmpeg.KwArgs{
					"ss": chunk.StartTime.Seconds(),
					"t":  (chunk.EndTime - chunk.StartTime).Seconds(),
					"c":  "copy",
				}).
				OverWriteOutput().
				SetFfmpegPath(ffmpegPath).
				Run()
			if err != nil {
				return fmt.Errorf("failed to create chunk %d: %w", chunk.Index, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = CleanupChunks(chunks)
		return nil, err
	}

	return chunks, nil
}

var (
	videoExts = map[string]bool{
		".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true,
		".flv": true, ".webm": true, ".m4v": true, ".mpeg": true, ".mpg": true,
		".3gp": true,
	}
	audioExts = map[string]bool{
		".mp3": true, ".wav": true, ".aac": true, ".flac": true, ".ogg": true,
		".m4a": true, ".wma": true, ".aiff": true, ".opus": true,
	}
)

func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// CleanupChunks removes chunk files, ignoring ones already gone.
func CleanupChunks(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
