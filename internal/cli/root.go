package cli

import (
	"fmt"

	"github.com/mgpai22/subplay/internal/config"
	"github.com/mgpai22/subplay/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

// NewRootCmd builds the subplay command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subplay",
		Short: "Auto-generated subtitles synchronized with video playback",
		Long: `Subplay uploads a video to a transcription server, receives SubRip (SRT)
subtitles back, and shows the cue that matches the playback position.

It can also run the transcription server itself, inspect SRT files and
convert them to other subtitle formats.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.NewLogger(verbose)

			loaded, resolved, exists, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
			logger.Debugw("Configuration loaded", "path", resolved, "found", exists)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.config/subplay/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, ja)")

	rootCmd.AddCommand(
		newTranscribeCmd(),
		newPlayCmd(),
		newCuesCmd(),
		newConvertCmd(),
		newServeCmd(),
		newExtractCmd(),
	)
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
