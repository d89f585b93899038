package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/spf13/cobra"
)

func newCuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cues [srt_file]",
		Short: "List the cues of an SRT file",
		Long: `Parse an SRT file and print its cues as a table. Malformed blocks are
skipped the same way the player skips them.

With --at, print only the cue active at that playback time in seconds.

Examples:
  subplay cues video.srt
  subplay cues video.srt --at 12.5`,
		Args: cobra.ExactArgs(1),
		RunE: runCues,
	}

	cmd.Flags().String("at", "", "Playback time in seconds to resolve")
	return cmd
}

func runCues(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read subtitles: %w", err)
	}

	track := subtitle.NewTrack()
	cues := track.Load(string(data))
	out := cmd.OutOrStdout()

	atStr, _ := cmd.Flags().GetString("at")
	if atStr == "" {
		fmt.Fprintln(out, renderCueTable(cues))
		fmt.Fprintf(out, "%d cues, last ends at %s\n", len(cues), subtitle.FormatTimestamp(cues.Span()))
		return nil
	}

	at, err := strconv.ParseFloat(strings.TrimSpace(atStr), 64)
	if err != nil {
		return fmt.Errorf("invalid --at value %q: expected seconds", atStr)
	}
	i, cue := track.Resolve(at)
	if cue == nil {
		fmt.Fprintf(out, "%s  no active cue\n", subtitle.FormatTimestamp(at))
		return nil
	}
	fmt.Fprintf(out, "%s  #%d  %s\n", subtitle.FormatTimestamp(at), i+1, oneLine(cue.Text))
	return nil
}

func renderCueTable(cues subtitle.Sequence) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Duration", "Text"})

	for i, cue := range cues {
		tw.AppendRow(table.Row{
			i + 1,
			subtitle.FormatTimestamp(cue.Start),
			subtitle.FormatTimestamp(cue.End),
			cue.Duration().String(),
			oneLine(cue.Text),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 60},
	})
	return tw.Render()
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " / ")
}
