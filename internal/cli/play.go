package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subplay/internal/player"
	"github.com/mgpai22/subplay/internal/subtitle"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [media_file]",
		Short: "Play subtitles in sync with a playback clock",
		Long: `Play the subtitle track of a media file in the terminal. The active cue is
looked up on every tick of the playback clock and redrawn only when it changes.

Subtitles come from --srt, from an SRT file next to the media, or with
--transcribe from the transcription server while playback runs.

Keys: k play/pause, j/l slower/faster, i/o -/+0.1s, left/right -/+5s,
s toggle subtitles, +/- font size, q quit.

Examples:
  subplay play video.mp4
  subplay play video.mp4 --srt video.ja.srt
  subplay play video.mp4 --transcribe
  subplay play --srt talk.srt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlay,
	}

	cmd.Flags().String("srt", "", "SRT file to play")
	cmd.Flags().Bool("transcribe", false, "Transcribe the media on the server while playing")
	cmd.Flags().String("api-base", "", "Transcription server base URL")
	cmd.Flags().Int("font-size", 0, "Initial subtitle font size")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	srtPath, _ := cmd.Flags().GetString("srt")
	useServer, _ := cmd.Flags().GetBool("transcribe")
	fontSize, _ := cmd.Flags().GetInt("font-size")

	var mediaPath string
	if len(args) == 1 {
		mediaPath = args[0]
		if _, err := checkMediaFile(mediaPath); err != nil {
			return err
		}
	}

	if srtPath == "" && !useServer {
		if mediaPath == "" {
			return errors.New("nothing to play: pass a media file or --srt")
		}
		sibling := defaultOutputPath(mediaPath, subtitle.FormatSRT)
		if _, err := os.Stat(sibling); err != nil {
			return fmt.Errorf("no subtitles found at %s: pass --srt or --transcribe", sibling)
		}
		srtPath = sibling
	}
	if useServer && mediaPath == "" {
		return errors.New("--transcribe needs a media file")
	}

	track := subtitle.NewTrack()
	if srtPath != "" {
		data, err := os.ReadFile(srtPath)
		if err != nil {
			return fmt.Errorf("failed to read subtitles: %w", err)
		}
		cues := track.Load(string(data))
		logger.Infow("Subtitles loaded", "path", srtPath, "cues", len(cues))
		if !cues.Disjoint() {
			logger.Warnw("Cues overlap or are out of order; the first matching cue is shown")
		}
	}

	duration := 0.0
	if mediaPath != "" {
		duration = probeDuration(ctx, mediaPath).Seconds()
	}
	if duration <= 0 {
		duration = track.Cues().Span()
	}

	session := player.NewSession(player.NewClock(duration, nil), track)
	if fontSize <= 0 {
		fontSize = cfg.Player.FontSize
	}
	session.Overlay.SetFontSize(fontSize)
	session.Overlay.SetEnabled(cfg.Player.Subtitles)

	opts := player.Options{
		Title:  playTitle(mediaPath, srtPath),
		Hz:     cfg.Player.TickHz,
		Out:    cmd.OutOrStdout(),
		Logger: logger,
	}
	if useServer {
		client := newClient(cmd)
		logger.Infow("Transcribing during playback", "endpoint", client.Endpoint())
		opts.Load = func(ctx context.Context) (string, error) {
			result, err := client.Transcribe(ctx, mediaPath)
			if err != nil {
				return "", err
			}
			return result.SRT, nil
		}
	}

	return player.Run(ctx, session, opts)
}

func playTitle(mediaPath, srtPath string) string {
	var parts []string
	if mediaPath != "" {
		parts = append(parts, filepath.Base(mediaPath))
	}
	if srtPath != "" {
		parts = append(parts, filepath.Base(srtPath))
	}
	return strings.Join(parts, " + ")
}
