package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/media"
	"github.com/mgpai22/subplay/internal/transcribe"
)

const defaultMaxUploadBytes = 512 << 20

// Options configures the transcription proxy.
type Options struct {
	UploadDir       string
	MaxUploadBytes  int64
	ExtractAudio    bool
	ShutdownTimeout time.Duration
}

// ExtractFunc pulls the audio track out of a media file.
type ExtractFunc func(ctx context.Context, inputPath, outputPath string) error

// Server forwards uploaded media to a Transcriber and answers with SRT.
type Server struct {
	transcriber transcribe.Transcriber
	opts        Options
	logger      *logging.Logger
	extract     ExtractFunc
	router      chi.Router
}

// Option customizes the server.
type Option func(*Server)

// WithExtractFunc replaces ffmpeg audio extraction.
func WithExtractFunc(fn ExtractFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.extract = fn
		}
	}
}

func New(t transcribe.Transcriber, opts Options, logger *logging.Logger, extra ...Option) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		transcriber: t,
		opts:        opts,
		logger:      logger.Named("server"),
		extract: func(ctx context.Context, in, out string) error {
			return media.ExtractAudio(ctx, in, out, media.DefaultExtractAudioOptions())
		},
	}
	for _, opt := range extra {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.handleHealth)
	r.Post("/transcribe", s.handleTranscribe)
	s.router = r
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// uploads and transcription of long videos take minutes
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Infow("transcription server listening", "address", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Infow("transcription server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// unavailableTranscriber fails every request with the setup error.
type unavailableTranscriber struct {
	err error
}

// Unavailable returns a Transcriber that always fails with err, so the
// proxy can start and report a missing API key per request.
func Unavailable(err error) transcribe.Transcriber {
	return unavailableTranscriber{err: err}
}

func (u unavailableTranscriber) Transcribe(context.Context, string) (*transcribe.Result, error) {
	return nil, u.err
}
