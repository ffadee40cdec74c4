package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/epubpress/internal/press"
	"github.com/billmal071/epubpress/internal/watch"
)

// statusMsg carries one status check result
type statusMsg struct {
	status *press.Status
	err    error
}

// pollMsg fires when it is time for the next check
type pollMsg struct{}

// WatchModel is the Bubble Tea model that follows a build until it finishes
type WatchModel struct {
	ctx      context.Context
	book     *press.Book
	checker  watch.StatusChecker
	schedule watch.Schedule
	spinner  spinner.Model

	attempt  int
	status   *press.Status
	history  []string
	started  time.Time
	err      error
	done     bool
	quitting bool
}

// NewWatchModel creates a watch view. ctx bounds the whole watch.
func NewWatchModel(ctx context.Context, checker watch.StatusChecker, schedule watch.Schedule, book *press.Book) WatchModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle))
	return WatchModel{
		ctx:      ctx,
		book:     book,
		checker:  checker,
		schedule: schedule,
		spinner:  s,
		started:  time.Now(),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.check())
}

func (m WatchModel) check() tea.Cmd {
	return func() tea.Msg {
		status, err := m.checker.CheckStatus(m.ctx, m.book)
		return statusMsg{status: status, err: err}
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case statusMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.status = msg.status
		if n := len(m.history); n == 0 || m.history[n-1] != msg.status.Message {
			m.history = append(m.history, msg.status.Message)
		}
		if msg.status.Complete {
			m.done = true
			return m, tea.Quit
		}
		wait := m.schedule.Next(m.attempt)
		m.attempt++
		return m, tea.Tick(wait, func(time.Time) tea.Msg { return pollMsg{} })
	case pollMsg:
		if err := m.ctx.Err(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, m.check()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder
	title := m.book.Title()
	if title == "" {
		title = "book " + m.book.ID()
	}
	b.WriteString("\n" + TitleStyle.Render("Building "+title) + "\n")

	for i, line := range m.history {
		if i == len(m.history)-1 && !m.done {
			break
		}
		b.WriteString(DimStyle.Render("  ✓ "+line) + "\n")
	}

	elapsed := time.Since(m.started).Round(time.Second)
	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("  ✗ %s", m.err)) + "\n")
	case m.done && m.status.Error:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("  ✗ Build failed: %s", m.status.Message)) + "\n")
	case m.done:
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("  ✓ Ready after %s", elapsed)) + "\n")
	case m.quitting:
		b.WriteString(WarningStyle.Render("  Stopped watching; the build continues on the server.") + "\n")
	default:
		msg := "Waiting for the server"
		if m.status != nil {
			msg = m.status.Message
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", m.spinner.View(), msg, DimStyle.Render("("+elapsed.String()+")")))
		b.WriteString(HelpStyle.Render("  q: stop watching"))
	}
	return b.String()
}

// Result reports how the watch ended, using the same errors as watch.Watcher
func (m WatchModel) Result() (*press.Status, error) {
	switch {
	case m.err != nil:
		if errors.Is(m.err, context.DeadlineExceeded) {
			return nil, watch.ErrTimeout
		}
		return nil, m.err
	case m.done && m.status.Error:
		return m.status, fmt.Errorf("%w: %s", watch.ErrBuildFailed, m.status.Message)
	case m.done:
		return m.status, nil
	default:
		return m.status, context.Canceled
	}
}

// RunWatch follows the build in an interactive view
func RunWatch(ctx context.Context, checker watch.StatusChecker, schedule watch.Schedule, book *press.Book) (*press.Status, error) {
	finalModel, err := tea.NewProgram(NewWatchModel(ctx, checker, schedule, book)).Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(WatchModel).Result()
}
