package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/subtitle"
)

// Options configures a playback run.
type Options struct {
	Title string
	Hz    int
	Load  LoadFunc
	// Out receives the plain-text rendering when stdout is not a terminal.
	Out    io.Writer
	Logger *logging.Logger
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Run plays the session, using the interactive TUI on a terminal and a
// line-per-cue printout otherwise.
func Run(ctx context.Context, session *Session, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if !IsTerminal(os.Stdout) {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		opts.Logger.Debugw("stdout is not a terminal, printing cues")
		return RunPlain(ctx, out, session, opts)
	}

	model := NewModel(ctx, session, opts.Title, opts.Hz, opts.Load)
	session.Clock.Play()
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("player: %w", err)
	}
	return nil
}

// RunPlain plays the session without a UI, writing each cue change as
// "[timestamp] text". It returns when the clock reaches the end or ctx is
// cancelled. A pending Load keeps it running past the end until the
// transcript arrives and is installed in the session.
func RunPlain(ctx context.Context, out io.Writer, session *Session, opts Options) error {
	hz := opts.Hz
	if hz <= 0 {
		hz = 30
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	loaded := make(chan loadedMsg, 1)
	pending := opts.Load != nil
	if pending {
		go func() {
			srt, err := opts.Load(ctx)
			loaded <- loadedMsg{srt: srt, err: err}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	waiting := false
	session.Clock.Play()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-loaded:
			if msg.err != nil {
				return fmt.Errorf("transcription failed: %w", msg.err)
			}
			pending = false
			n := session.Replace(msg.srt)
			logger.Infow("transcript loaded", "cues", n)
			if session.Clock.Ended() {
				return nil
			}
		case <-ticker.C:
			at, text, changed := session.Tick()
			if changed && session.Overlay.Enabled() {
				if text == "" {
					fmt.Fprintf(out, "[%s]\n", subtitle.FormatTimestamp(at))
				} else {
					fmt.Fprintf(out, "[%s] %s\n", subtitle.FormatTimestamp(at), text)
				}
			}
			if session.Clock.Ended() {
				if !pending {
					return nil
				}
				if !waiting {
					waiting = true
					logger.Infow("playback finished, waiting for transcript")
				}
			}
		}
	}
}
