package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgpai22/subplay/internal/server"
	"github.com/mgpai22/subplay/internal/transcribe"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the transcription server",
		Long: `Run the HTTP transcription server. It accepts a multipart upload at
POST /transcribe, sends the media to the speech-to-text provider and answers
with the SRT text. GET /health reports liveness.

API keys are read from OPENAI_API_KEY / GEMINI_API_KEY (a .env file in the
working directory is loaded first) or from the config file.

Examples:
  subplay serve
  subplay serve --port 8080 --provider gemini
  subplay serve --extract-audio`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default from PORT or 3000)")
	cmd.Flags().String("provider", "", "Transcription provider (openai, gemini)")
	cmd.Flags().String("model", "", "Provider model override")
	cmd.Flags().Bool("extract-audio", false, "Extract a small mono audio track with ffmpeg before transcribing")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if providerName, _ := cmd.Flags().GetString("provider"); providerName != "" {
		cfg.Server.Provider = providerName
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Server.Model = model
	}
	if extract, _ := cmd.Flags().GetBool("extract-audio"); extract {
		cfg.Server.ExtractAudio = true
	}
	if language, _ := cmd.Flags().GetString("language"); language != "" {
		cfg.Server.Language = language
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := transcribe.ParseProvider(cfg.Server.Provider)
	if err != nil {
		return err
	}

	opts := transcribe.Options{
		Language: cfg.Server.Language,
		Model:    cfg.Server.Model,
		Prompt:   cfg.Server.Prompt,
	}
	transcriber, err := transcribe.Factory(ctx, provider, cfg.APIKey(), opts)
	if err != nil {
		// keep serving so clients get a clear error per request
		logger.Warnw("Transcription provider unavailable", "provider", provider, "error", err)
		transcriber = server.Unavailable(fmt.Errorf("%s provider unavailable: %w", provider, err))
	}

	srv := server.New(transcriber, server.Options{
		UploadDir:       cfg.Server.UploadDir,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		ExtractAudio:    cfg.Server.ExtractAudio,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownSeconds) * time.Second,
	}, logger)

	logger.Infow("Starting transcription server",
		"addr", cfg.Addr(),
		"provider", provider,
		"upload_dir", cfg.Server.UploadDir,
		"extract_audio", cfg.Server.ExtractAudio,
	)
	return srv.ListenAndServe(ctx, cfg.Addr())
}
