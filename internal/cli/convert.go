package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [srt_file]",
		Short: "Convert an SRT file to another subtitle format",
		Long: `Parse an SRT file and write it as SRT, VTT or ASS. Converting to SRT
renumbers the cues and drops malformed blocks.

Examples:
  subplay convert video.srt -f vtt
  subplay convert video.srt -f ass -o styled.ass`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}

	cmd.Flags().StringP("format", "f", "vtt", "Output subtitle format (srt, vtt, ass)")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, format)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read subtitles: %w", err)
	}
	cues := subtitle.Parse(string(data))
	if len(cues) == 0 {
		return fmt.Errorf("no cues found in %s", inputPath)
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(cues, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	logger.Infow("Converted subtitles", "input", inputPath, "output", outputPath, "format", format)
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d cues: %s\n", len(cues), absOutput)
	return nil
}
