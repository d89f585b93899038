package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/subplay/internal/media"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/mgpai22/subplay/internal/transcribe"
	"github.com/spf13/cobra"
)

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe [media_file]",
		Short: "Upload a video to the transcription server and save its subtitles",
		Long: `Upload an audio or video file to the transcription server and write the
SRT it returns next to the media file.

The server address comes from --api-base, SUBPLAY_API_BASE or the config
file. Use --format to convert the result to VTT or ASS.

Examples:
  subplay transcribe video.mp4
  subplay transcribe video.mp4 --api-base https://subs.example.com
  subplay transcribe talk.mp3 -f vtt -o talk.vtt`,
		Args: cobra.ExactArgs(1),
		RunE: runTranscribe,
	}

	cmd.Flags().String("api-base", "", "Transcription server base URL")
	cmd.Flags().StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	return cmd
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	info, err := checkMediaFile(mediaPath)
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(mediaPath, format)
	}

	client := newClient(cmd)
	logger.Infow("Uploading media",
		"input", mediaPath,
		"size", media.HumanSize(info.Size()),
		"endpoint", client.Endpoint(),
	)

	duration := probeDuration(ctx, mediaPath)

	started := time.Now()
	result, err := client.Transcribe(ctx, mediaPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	cues := subtitle.Parse(result.SRT)
	logger.Infow("Transcription complete",
		"cues", len(cues),
		"elapsed", time.Since(started).Round(time.Millisecond).String(),
	)

	if err := writeSubtitles(result.SRT, cues, format, outputPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles saved: %s\n", absOutput)
	fmt.Fprintf(out, "  Cues: %d\n", len(cues))
	if duration > 0 {
		fmt.Fprintf(out, "  Duration: %s\n", duration.Round(time.Second).String())
	}
	if span := cues.Span(); span > 0 {
		fmt.Fprintf(out, "  Last cue ends: %s\n", subtitle.FormatTimestamp(span))
	}
	return nil
}

func newClient(cmd *cobra.Command) *transcribe.Client {
	apiBase, _ := cmd.Flags().GetString("api-base")
	if strings.TrimSpace(apiBase) == "" {
		apiBase = cfg.Client.APIBase
	}
	timeout := time.Duration(cfg.Client.TimeoutMinutes) * time.Minute
	return transcribe.NewClient(apiBase, transcribe.WithHTTPClient(&http.Client{Timeout: timeout}))
}

func checkMediaFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	if !media.IsMediaFile(path) {
		return nil, fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(path))
	}
	return info, nil
}

// best effort; ffprobe may be missing
func probeDuration(ctx context.Context, path string) time.Duration {
	duration, err := media.GetDuration(ctx, path)
	if err != nil {
		logger.Debugw("Could not read media duration", "error", err)
		return 0
	}
	return duration
}

func defaultOutputPath(inputPath string, format subtitle.Format) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + subtitle.GetExtensionForFormat(format)
}

// SRT is written as received; other formats are rendered from the cues
func writeSubtitles(srt string, cues subtitle.Sequence, format subtitle.Format, path string) error {
	if format == subtitle.FormatSRT {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(srt), 0644); err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}
		return nil
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(cues, path); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}
