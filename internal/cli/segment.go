package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/coursegen/internal/segment"
	"github.com/mgpai22/coursegen/internal/subtitle"
)

var segmentCmd = &cobra.Command{
	Use:   "segment [transcript]",
	Short: "Show how a transcript is split into course sections",
	Long: `Split an SRT, VTT or Whisper JSON transcript into sections using the same
rules as generate: a new section starts after a pause longer than --max-gap
seconds or when a section would run past --max-duration seconds.

Examples:
  coursegen segment lecture.srt
  coursegen segment lecture.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSegment,
}

func init() {
	rootCmd.AddCommand(segmentCmd)

	segmentCmd.Flags().Float64("max-gap", segment.DefaultMaxGap, "Pause in seconds that starts a new section")
	segmentCmd.Flags().Float64("max-duration", segment.DefaultMaxDuration, "Longest section in seconds")
	segmentCmd.Flags().Bool("json", false, "Print sections as JSON")
}

func runSegment(cmd *cobra.Command, args []string) error {
	maxGap, _ := cmd.Flags().GetFloat64("max-gap")
	maxDuration, _ := cmd.Flags().GetFloat64("max-duration")
	asJSON, _ := cmd.Flags().GetBool("json")

	if maxGap < 0 || maxDuration <= 0 {
		return fmt.Errorf("--max-gap must be >= 0 and --max-duration > 0")
	}

	fragments, err := subtitle.Open(args[0])
	if err != nil {
		return err
	}

	sections := segment.Segmenter{MaxGap: maxGap, MaxDuration: maxDuration}.Segment(fragments)
	logger.Debugw("Transcript segmented", "fragments", len(fragments), "sections", len(sections))

	out := cmd.OutOrStdout()
	if asJSON {
		if sections == nil {
			sections = []segment.Section{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sections)
	}

	for _, s := range sections {
		fmt.Fprintf(out, "%s [%.2fs - %.2fs]\n  %s\n\n", s.Title, s.Start, s.End, s.Text)
	}
	fmt.Fprintf(out, "%d sections from %d fragments\n", len(sections), len(fragments))
	return nil
}
