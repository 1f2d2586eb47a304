package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mgpai22/coursegen/internal/audio"
	"github.com/mgpai22/coursegen/internal/config"
	"github.com/mgpai22/coursegen/internal/course"
	"github.com/mgpai22/coursegen/internal/export"
	"github.com/mgpai22/coursegen/internal/llm"
	"github.com/mgpai22/coursegen/internal/metrics"
	"github.com/mgpai22/coursegen/internal/segment"
	"github.com/mgpai22/coursegen/internal/subtitle"
	"github.com/mgpai22/coursegen/internal/transcribe"
	"github.com/mgpai22/coursegen/internal/video"
)

var generateCmd = &cobra.Command{
	Use:   "generate [video_file_or_url]",
	Short: "Generate a course from a recording",
	Long: `Generate a course from a recorded lecture.

The source may be a local audio or video file, an http(s) URL (downloaded with
yt-dlp), or a transcript (.srt, .vtt or Whisper .json), in which case the
download and speech-to-text steps are skipped.

Examples:
  coursegen generate lecture.mp4
  coursegen generate https://www.youtube.com/watch?v=... --format pdf --format docx
  coursegen generate --transcript lecture.srt --host lmstudio --model mistral-7b
  coursegen generate talk.mp3 --host openai --model gpt-4o-mini --batch-concurrency 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(f *pflag.FlagSet) {
	f.String("host", config.DefaultHost, "Generation host (ollama, lmstudio, openai, anthropic, gemini)")
	f.String("model", "", "Generation model (default mistral for local hosts)")
	f.String("base-url", "", "Override the generation host base URL")
	f.StringP("api-key", "k", "", "API key for hosted generation backends")
	f.String("transcriber", config.DefaultTranscriber, "Speech-to-text provider (openai, whisper, gemini)")
	f.String("whisper-model", config.DefaultWhisperModel, "Speech-to-text model")
	f.String("whisper-url", "", "Base URL of a local OpenAI-compatible whisper server")
	f.StringP("language", "l", "", "Spoken language hint (e.g., en, es, fr)")
	f.String("transcript-language", "native", "Transcript language ('native' or 'english')")
	f.IntP("chunk-duration", "d", 10, "Chunk length in minutes for speech-to-text (0 disables chunking)")
	f.Int("concurrency", 3, "Parallel speech-to-text workers")
	f.Int("batch-concurrency", config.DefaultConcurrency, "Section windows generated in parallel")
	f.Duration("call-timeout", config.DefaultCallTimeout, "Timeout for each generation request")
	f.StringSliceP("format", "f", nil, "Export format (pdf, docx, md, json); repeatable")
	f.StringP("output-dir", "o", config.DefaultOutputDir, "Directory for exported files")
	f.String("transcript", "", "Use an existing transcript instead of a recording")
	f.Bool("save-transcript", false, "Also save the transcript as SRT next to the exports")
	f.String("metrics-file", "", "Write generation metrics in Prometheus textfile format")
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	str := func(name string, target *string) {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}

	prevHost := c.Host
	str("host", &c.Host)
	if c.Host != prevHost {
		// model and endpoint chosen for another host do not carry over
		if !flags.Changed("model") {
			c.Model = ""
		}
		if !flags.Changed("base-url") {
			c.BaseURL = ""
		}
	}
	str("model", &c.Model)
	str("base-url", &c.BaseURL)
	str("transcriber", &c.Transcriber)
	str("whisper-model", &c.WhisperModel)
	str("output-dir", &c.OutputDir)

	if flags.Changed("format") {
		c.ExportFormats, _ = flags.GetStringSlice("format")
	}
	if flags.Changed("batch-concurrency") {
		c.Concurrency, _ = flags.GetInt("batch-concurrency")
		if c.Concurrency < 1 {
			return fmt.Errorf("--batch-concurrency must be >= 1")
		}
	}
	if flags.Changed("call-timeout") {
		c.CallTimeout, _ = flags.GetDuration("call-timeout")
		if c.CallTimeout <= 0 {
			return fmt.Errorf("--call-timeout must be positive")
		}
	}
	if flags.Changed("api-key") {
		key, _ := flags.GetString("api-key")
		host, err := llm.ParseHost(c.Host)
		if err != nil {
			return err
		}
		switch host {
		case llm.HostOpenAI:
			c.OpenAIAPIKey = key
		case llm.HostAnthropic:
			c.AnthropicAPIKey = key
		case llm.HostGemini:
			c.GeminiAPIKey = key
		}
	}
	return c.Validate()
}

// isValidOpenAITranscriptLanguage reports whether the OpenAI audio API can
// produce the requested transcript language: it only transcribes as spoken
// or translates to English.
func isValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	default:
		return false
	}
}

func resolveFormats(names []string) ([]export.Format, error) {
	formats := make([]export.Format, 0, len(names))
	seen := make(map[export.Format]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := export.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no export format selected")
	}
	return formats, nil
}

func isTranscriptFile(path string) bool {
	if video.IsRemote(path) {
		return false
	}
	_, err := subtitle.FormatFromExtension(path)
	return err == nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run := cfg
	if err := applyGenerateFlags(cmd, &run); err != nil {
		return err
	}

	transcriptPath, _ := cmd.Flags().GetString("transcript")
	if transcriptPath == "" && len(args) == 1 && isTranscriptFile(args[0]) {
		transcriptPath = args[0]
	}
	if transcriptPath == "" && len(args) == 0 {
		return fmt.Errorf("a recording or --transcript is required")
	}

	formats, err := resolveFormats(run.ExportFormats)
	if err != nil {
		return err
	}
	host, err := llm.ParseHost(run.Host)
	if err != nil {
		return err
	}

	// build the generator before any expensive acquisition work
	generator, err := llm.Factory(ctx, host, llm.Options{
		Model:   run.Model,
		BaseURL: run.BaseURL,
		APIKey:  run.APIKey(host),
	})
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	var fragments []segment.Fragment
	if transcriptPath != "" {
		logger.Infow("Reading transcript", "path", transcriptPath)
		fragments, err = subtitle.Open(transcriptPath)
	} else {
		fragments, err = transcribeSource(ctx, cmd, run, args[0])
	}
	if err != nil {
		return err
	}

	sections := segment.Segment(fragments)
	logger.Infow("Transcript segmented",
		"fragments", len(fragments),
		"sections", len(sections),
	)

	recorder := metrics.NewRecorder()
	pipeline := course.NewPipeline(generator, course.Options{
		BatchSize:   run.BatchSize,
		Concurrency: run.Concurrency,
		CallTimeout: run.CallTimeout,
		Logger:      logger,
		Observer:    recorder,
	})

	logger.Infow("Generating course",
		"host", host,
		"model", run.Model,
		"batch_concurrency", run.Concurrency,
	)
	content, err := pipeline.Generate(ctx, sections)
	if err != nil {
		return fmt.Errorf("course generation failed: %w", err)
	}

	paths, err := export.ExportAll(content, run.OutputDir, formats)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if save, _ := cmd.Flags().GetBool("save-transcript"); save {
		p := filepath.Join(run.OutputDir, export.SanitizeFilename(content.Title)+".srt")
		if err := subtitle.WriteSRT(p, fragments); err != nil {
			return fmt.Errorf("failed to save transcript: %w", err)
		}
		paths = append(paths, p)
	}

	if metricsFile, _ := cmd.Flags().GetString("metrics-file"); metricsFile != "" {
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Course generated: %s\n", content.Title)
	for _, p := range paths {
		abs, _ := filepath.Abs(p)
		fmt.Fprintf(out, "  %s\n", abs)
	}
	fmt.Fprintln(out)
	printMetrics(out, content.Metrics)
	return nil
}

// transcribeSource fetches the recording, prepares its audio and runs
// speech-to-text. The staging directory is removed before returning.
func transcribeSource(
	ctx context.Context,
	cmd *cobra.Command,
	run config.Config,
	source string,
) ([]segment.Fragment, error) {
	flags := cmd.Flags()
	language, _ := flags.GetString("language")
	transcriptLang, _ := flags.GetString("transcript-language")
	whisperURL, _ := flags.GetString("whisper-url")
	chunkMinutes, _ := flags.GetInt("chunk-duration")
	concurrency, _ := flags.GetInt("concurrency")

	provider, err := transcribe.ParseProvider(run.Transcriber)
	if err != nil {
		return nil, err
	}
	if provider != transcribe.ProviderGemini && !isValidOpenAITranscriptLanguage(transcriptLang) {
		return nil, fmt.Errorf(
			"%s can only transcribe in the spoken language or translate to English, got %q",
			provider, transcriptLang,
		)
	}

	var apiKey string
	switch provider {
	case transcribe.ProviderOpenAI:
		apiKey = run.OpenAIAPIKey
	case transcribe.ProviderGemini:
		apiKey = run.GeminiAPIKey
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language:           language,
		TranscriptLanguage: transcriptLang,
		Model:              run.WhisperModel,
		BaseURL:            whisperURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	stage, err := video.NewStage(run.TempDir, logger)
	if err != nil {
		return nil, err
	}
	defer stage.Close()

	audioPath, err := stage.PrepareAudio(ctx, source, audio.DefaultCompressionOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare audio: %w", err)
	}

	var result *transcribe.Result
	if chunkMinutes > 0 {
		chunks, err := audio.ChunkAudio(
			ctx,
			audioPath,
			time.Duration(chunkMinutes)*time.Minute,
			stage.Path("chunks"),
			concurrency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to split audio: %w", err)
		}
		logger.Infow("Transcribing audio",
			"provider", provider,
			"chunks", len(chunks),
			"concurrency", concurrency,
		)
		result, err = transcriber.TranscribeWithChunks(ctx, chunks, concurrency)
		if err != nil {
			return nil, fmt.Errorf("transcription failed: %w", err)
		}
	} else {
		logger.Infow("Transcribing audio", "provider", provider)
		result, err = transcriber.Transcribe(ctx, audioPath)
		if err != nil {
			return nil, fmt.Errorf("transcription failed: %w", err)
		}
	}

	logger.Infow("Transcription complete",
		"fragments", len(result.Fragments),
		"duration", result.Duration.String(),
	)
	return result.Fragments, nil
}

func printMetrics(w io.Writer, m course.Metrics) {
	fmt.Fprintln(w, "Generation metrics:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range m.Rows() {
		fmt.Fprintf(tw, "  %s\t%s\n", row[0], row[1])
	}
	_ = tw.Flush()
}
