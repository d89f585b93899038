package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subplay/internal/media"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [video_file]",
		Short: "Extract the audio track the server would transcribe",
		Long: `Extract the audio track from a video file, using the same settings the
transcription server applies with --extract-audio. Useful for uploading a
much smaller file.

Supported output formats: mp3, wav, aac, flac.

Examples:
  subplay extract video.mp4
  subplay extract video.mp4 -o audio.wav -f wav --sample-rate 44100`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	defaults := media.DefaultExtractAudioOptions()
	cmd.Flags().
		StringP("format", "f", defaults.Format, "Output audio format (mp3, wav, aac, flac)")
	cmd.Flags().
		IntP("sample-rate", "r", defaults.SampleRate, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	cmd.Flags().
		IntP("channels", "c", defaults.Channels, "Number of audio channels (1=mono, 2=stereo)")
	cmd.Flags().
		StringP("bitrate", "b", defaults.Bitrate, "Bitrate for lossy formats (e.g., 64k, 128k)")
	return cmd
}

var validAudioFormats = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"aac":  true,
	"flac": true,
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	outputPath, _ := cmd.Flags().GetString("output")

	format = strings.ToLower(format)
	if !validAudioFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are mp3, wav, aac, flac",
			format,
		)
	}
	if !media.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + format
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	opts := media.ExtractAudioOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}
	if err := media.ExtractAudio(cmd.Context(), videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("failed to extract audio: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Audio extracted: %s\n", absOutput)
	return nil
}
