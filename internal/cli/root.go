package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/coursegen/internal/config"
	"github.com/mgpai22/coursegen/internal/logging"
)

var (
	verbose    bool
	configPath string
	cfg        config.Config
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "coursegen",
	Short: "Turn recorded lectures into structured courses",
	Long: `coursegen transcribes a long-form recording (a local video or audio file,
a video URL, or an existing transcript), splits the transcript into sections
and asks a language model to write course material for them: a title,
learning objectives, per-section content, summaries and quizzes.

The course is exported as PDF, DOCX, Markdown or JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Loader{}.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logger = newLogger(cfg).With("run_id", uuid.NewString())
		return nil
	},
}

var newLogger = func(c config.Config) *logging.Logger {
	if verbose {
		return logging.NewLogger(true)
	}
	return logging.NewLevelLogger(c.LogLevel)
}

// Execute runs the root command. Interrupts cancel the command context so
// temporary files are still removed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := executeContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// executeContext flushes the logger on every exit path. cobra skips
// PersistentPostRun when RunE fails.
func executeContext(ctx context.Context) error {
	defer func() {
		if logger != nil {
			logger.Sync()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ./coursegen.yaml or $COURSEGEN_CONFIG)")
}
