package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgpai22/subplay/internal/subtitle"
)

const seekStep = 5.0

type tickMsg time.Time

// loadedMsg delivers a transcript produced while playing.
type loadedMsg struct {
	srt string
	err error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#93C5FD"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF476F"))
	helpView    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

var cueStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(lipgloss.Color("#111827")).
	Padding(0, 2).
	Align(lipgloss.Center)

// Model is the terminal player: a progress bar driven by the clock and the
// active cue rendered under it.
type Model struct {
	session  *Session
	title    string
	interval time.Duration
	load     LoadFunc
	ctx      context.Context

	progress progress.Model
	width    int
	text     string
	status   string
	err      error
	Quit     bool
}

func NewModel(ctx context.Context, session *Session, title string, hz int, load LoadFunc) *Model {
	if hz <= 0 {
		hz = 30
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60
	return &Model{
		session:  session,
		title:    title,
		interval: time.Second / time.Duration(hz),
		load:     load,
		ctx:      ctx,
		progress: bar,
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	if m.load != nil {
		m.status = "transcribing..."
		load, ctx := m.load, m.ctx
		cmds = append(cmds, func() tea.Msg {
			srt, err := load(ctx)
			return loadedMsg{srt: srt, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, m.tick()
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		n := m.session.Replace(msg.srt)
		m.status = fmt.Sprintf("%d cues loaded", n)
		m.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, msg.Width-4)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	clock := m.session.Clock
	overlay := m.session.Overlay

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.Quit = true
		return m, tea.Quit
	case "k", " ":
		clock.Toggle()
	case "j":
		clock.SlowDown()
	case "l":
		clock.SpeedUp()
	case "i":
		clock.Nudge(-NudgeStep)
	case "o":
		clock.Nudge(NudgeStep)
	case "left":
		clock.Nudge(-seekStep)
	case "right":
		clock.Nudge(seekStep)
	case "s":
		overlay.Toggle()
	case "+", "=":
		overlay.Grow()
	case "-":
		overlay.Shrink()
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m *Model) refresh() {
	_, text, changed := m.session.Tick()
	if changed {
		m.text = text
	}
}

// Text is the cue text currently on screen, empty when hidden.
func (m *Model) Text() string {
	if !m.session.Overlay.Enabled() {
		return ""
	}
	return m.text
}

func (m *Model) View() string {
	clock := m.session.Clock
	overlay := m.session.Overlay
	pos, total := clock.Now(), clock.Duration()

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	percent := 0.0
	if total > 0 {
		percent = pos / total
	}
	sb.WriteString(m.progress.ViewAs(percent))
	sb.WriteString("\n")

	state := "paused"
	if clock.Playing() {
		state = "playing"
	}
	timeLabel := clockLabel(pos)
	if total > 0 {
		timeLabel += " / " + clockLabel(total)
	}
	subs := "subs off"
	if overlay.Enabled() {
		subs = fmt.Sprintf("subs %dpx", overlay.FontSize())
	}
	sb.WriteString(statusStyle.Render(fmt.Sprintf("%s  %s  %.2fx  %s", timeLabel, state, clock.Rate(), subs)))
	sb.WriteString("\n\n")

	if text := m.Text(); text != "" {
		style := cueStyle.Bold(overlay.FontSize() > subtitle.DefaultFontSize)
		if m.width > 0 {
			style = style.Width(m.width - 4)
		}
		sb.WriteString(style.Render(text))
	}
	sb.WriteString("\n\n")

	if m.err != nil {
		sb.WriteString(errorStyle.Render("transcription failed: " + m.err.Error()))
		sb.WriteString("\n")
	} else if m.status != "" {
		sb.WriteString(statusStyle.Render(m.status))
		sb.WriteString("\n")
	}

	sb.WriteString(helpView.Render("  k: Play/Pause • j/l: Slower/Faster • i/o: ∓0.1s • ←/→: ∓5s • s: Subtitles • +/-: Size • q: Quit"))
	sb.WriteString("\n")
	return sb.String()
}
