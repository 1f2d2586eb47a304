package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/coursegen/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on a generation host",
	Long: `List the models a generation host can serve. For ollama and lmstudio this
queries the local server; hosted providers need their API key.

Examples:
  coursegen models
  coursegen models --host lmstudio
  coursegen models --host ollama --base-url http://gpu-box:11434/api`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().String("host", "", "Generation host (default from config)")
	modelsCmd.Flags().String("base-url", "", "Override the host base URL")
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	hostName := cfg.Host
	baseURL := cfg.BaseURL
	if cmd.Flags().Changed("host") {
		hostName, _ = cmd.Flags().GetString("host")
		baseURL = ""
	}
	if cmd.Flags().Changed("base-url") {
		baseURL, _ = cmd.Flags().GetString("base-url")
	}

	host, err := llm.ParseHost(hostName)
	if err != nil {
		return err
	}

	models, err := llm.ListModels(ctx, host, llm.Options{
		BaseURL: baseURL,
		APIKey:  cfg.APIKey(host),
	})
	if err != nil {
		return fmt.Errorf("failed to list models on %s: %w", host, err)
	}

	out := cmd.OutOrStdout()
	if len(models) == 0 {
		fmt.Fprintf(out, "No models found on %s\n", host)
		return nil
	}
	for _, m := range models {
		fmt.Fprintln(out, m)
	}
	return nil
}
