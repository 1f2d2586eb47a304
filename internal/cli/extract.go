package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/coursegen/internal/audio"
	"github.com/mgpai22/coursegen/internal/video"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file_or_url]",
	Short: "Extract the audio track of a recording",
	Long: `Extract the audio track of a recording and save it as a separate file,
the same way generate prepares audio for speech-to-text.

Supported output formats: wav, mp3, aac, flac.

Examples:
  coursegen extract lecture.mp4
  coursegen extract lecture.mp4 -o audio.mp3 -f mp3
  coursegen extract https://example.com/talk.mp4 --format wav --sample-rate 44100 --channels 2`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("output", "o", "", "Output file path")
	extractCmd.Flags().
		StringP("format", "f", "wav", "Output audio format (wav, mp3, aac, flac)")
	extractCmd.Flags().
		IntP("sample-rate", "r", 16000, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	extractCmd.Flags().
		IntP("channels", "c", 1, "Number of audio channels (1=mono, 2=stereo)")
	extractCmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
}

var validAudioFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"aac":  true,
	"flac": true,
}

// defaultExtractPath names the output after the input, in the current
// directory for remote sources.
func defaultExtractPath(source string, opts audio.CompressionOptions) string {
	if video.IsRemote(source) {
		return "audio" + opts.Extension()
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + opts.Extension()
}

func runExtract(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	outputPath, _ := cmd.Flags().GetString("output")

	format = strings.ToLower(format)
	if !validAudioFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are wav, mp3, aac, flac",
			format,
		)
	}

	opts := audio.CompressionOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}
	if outputPath == "" {
		outputPath = defaultExtractPath(source, opts)
	}

	stage, err := video.NewStage(cfg.TempDir, logger)
	if err != nil {
		return err
	}
	defer stage.Close()

	mediaPath, err := stage.Fetch(ctx, source)
	if err != nil {
		return err
	}

	logger.Infow("Extracting audio",
		"input", mediaPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	if err := stage.Processor.ExtractAudio(ctx, mediaPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Audio extracted successfully: %s\n", absOutput)
	return nil
}
