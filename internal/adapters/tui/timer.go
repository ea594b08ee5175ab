package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"github.com/xvierd/pomodoro-pro/internal/config"
	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// View implements ports.TimerView using Bubbletea.
type View struct {
	timer      ports.TimerControl
	fetchState func() *domain.CurrentState
	theme      *config.ThemeConfig
	options    []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
}

// Ensure View implements ports.TimerView.
var _ ports.TimerView = (*View)(nil)

// NewView creates the full-screen timer view over timer.
func NewView(timer ports.TimerControl, fetchState func() *domain.CurrentState, theme *config.ThemeConfig) *View {
	return &View{
		timer:      timer,
		fetchState: fetchState,
		theme:      theme,
		options:    []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// SetProgramOptions replaces the options the program is started with.
func (v *View) SetProgramOptions(opts ...tea.ProgramOption) {
	v.options = opts
}

// Run starts the timer interface and blocks until the user quits or ctx
// is cancelled.
func (v *View) Run(ctx context.Context) error {
	model := NewModel(v.timer, v.fetchState, v.theme).WithEvents(v.timer.Subscribe(16))

	v.mu.Lock()
	v.program = tea.NewProgram(model, v.options...)
	program := v.program
	v.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		program.Quit()
	}()

	_, err := program.Run()
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Stop quits a running view.
func (v *View) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.program != nil {
		v.program.Quit()
	}
}

// TerminalWidth returns the width of stdout, or fallback when stdout is
// not a terminal.
func TerminalWidth(fallback int) int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w < minBigWidth {
		return fallback
	}
	return w
}

// ShowStatus prints the current state without starting interactive mode.
func ShowStatus(w io.Writer, state *domain.CurrentState) {
	timer := state.Timer
	fmt.Fprintf(w, "🍅 %s (%s)\n", domain.GetModeLabel(timer.Mode), domain.GetStatusLabel(timer.IsRunning))
	fmt.Fprintf(w, "   Remaining: %s\n", formatDuration(time.Duration(timer.TimeRemaining)*time.Second))
	fmt.Fprintf(w, "   Progress: %.0f%%\n", state.Progress)
	fmt.Fprintf(w, "   Session: %d, %d pomodoros completed\n", timer.CurrentSession, timer.CompletedPomodoros)

	if state.ActiveTask != nil {
		task := state.ActiveTask
		fmt.Fprintf(w, "\n📋 Active Task: %s\n", task.Title)
		if task.Description != "" {
			fmt.Fprintf(w, "   Description: %s\n", task.Description)
		}
		fmt.Fprintf(w, "   Pomodoros: %d/%d\n", task.CompletedPomodoros, task.EstimatedPomodoros)
		if len(task.Tags) > 0 {
			fmt.Fprintf(w, "   Tags: %v\n", task.Tags)
		}
	}

	fmt.Fprintf(w, "\n📊 Today's Stats:\n")
	fmt.Fprintf(w, "   Pomodoros: %d\n", state.Today.CompletedPomodoros)
	fmt.Fprintf(w, "   Focus Time: %s\n", formatMinutes(state.Today.FocusMinutes))
	fmt.Fprintf(w, "   Break Time: %s\n", formatMinutes(state.Today.BreakMinutes))
	fmt.Fprintf(w, "   Tasks Completed: %d\n", state.Today.TasksCompleted)
	fmt.Fprintf(w, "   Streak: %d days (longest %d)\n", state.Summary.CurrentStreak, state.Summary.LongestStreak)
}
