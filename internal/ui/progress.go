package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/x-nimmt/internal/match"
)

const maxBarWidth = 60

// --- Tea Messages ---

// ProgressMsg carries the state after one finished game.
type ProgressMsg struct {
	Summary *match.Summary
	Last    match.GameResult
}

// DoneMsg ends the program once the match returns.
type DoneMsg struct {
	Summary *match.Summary
	Err     error
}

// SendProgress returns a match.ProgressFunc that forwards snapshots to ch
// until ctx is done.
func SendProgress(ctx context.Context, ch chan<- tea.Msg) match.ProgressFunc {
	return func(s *match.Summary, last match.GameResult) {
		select {
		case ch <- ProgressMsg{Summary: s, Last: last}:
		case <-ctx.Done():
		}
	}
}

// ProgressModel is a bubbletea model showing a running match.
type ProgressModel struct {
	title   string
	games   int
	updates <-chan tea.Msg
	cancel  context.CancelFunc

	bar     progress.Model
	summary *match.Summary
	last    match.GameResult
	done    bool
	err     error
}

// NewProgressModel 创建进度界面；cancel 在用户中断时调用
func NewProgressModel(title string, games int, updates <-chan tea.Msg, cancel context.CancelFunc) *ProgressModel {
	return &ProgressModel{
		title:   title,
		games:   games,
		updates: updates,
		cancel:  cancel,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
	}
}

// Summary is the latest snapshot, or the final summary once done.
func (m *ProgressModel) Summary() *match.Summary { return m.summary }

// Err is the error the match ended with.
func (m *ProgressModel) Err() error { return m.err }

// Done reports whether the match finished.
func (m *ProgressModel) Done() bool { return m.done }

func (m *ProgressModel) listen() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.updates
		if !ok {
			return DoneMsg{Summary: m.summary}
		}
		return msg
	}
}

func (m *ProgressModel) Init() tea.Cmd {
	return m.listen()
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case ProgressMsg:
		m.summary = msg.Summary
		m.last = msg.Last
		cmd := m.bar.SetPercent(float64(msg.Summary.Completed()) / float64(max(1, m.games)))
		return m, tea.Batch(cmd, m.listen())

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		if msg.Summary != nil {
			m.summary = msg.Summary
		}
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *ProgressModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(m.bar.View())

	completed := 0
	if m.summary != nil {
		completed = m.summary.Completed()
	}
	fmt.Fprintf(&sb, "\n%s %d/%d", labelStyle.Render("Games:"), completed, m.games)

	if m.summary != nil && m.summary.Completed() > 0 {
		s := m.summary
		if !m.done {
			fmt.Fprintf(&sb, "   %s %s", labelStyle.Render("Remaining:"), FormatDuration(s.Remaining()))
		}
		var rows []string
		for p := range s.Players {
			rows = append(rows, fmt.Sprintf("%-24s avg %7.2f   wins %4d (%.1f%%)",
				PlayerLabel(s.Players, p), s.Average(p), s.Wins[p], s.WinRate(p)*100))
		}
		rows = append(rows, fmt.Sprintf("%-24s %d", "Draws", s.Draws))
		if n := len(s.Failures); n > 0 {
			rows = append(rows, errorStyle.Render(fmt.Sprintf("%-24s %d", "Abandoned", n)))
		}
		sb.WriteString("\n\n")
		sb.WriteString(boxStyle.Render(strings.Join(rows, "\n")))
	}

	if m.err != nil {
		sb.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	if !m.done {
		sb.WriteString(helpStyle.Render("q: stop"))
	}
	return sb.String() + "\n"
}
