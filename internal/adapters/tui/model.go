// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"fmt"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xvierd/pomodoro-pro/internal/config"
	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// tickMsg is sent on every redraw tick.
type tickMsg time.Time

// stateMsg wraps an updated state fetched asynchronously.
type stateMsg struct {
	state *domain.CurrentState
}

// timerEventMsg carries one event from the controller subscription.
type timerEventMsg domain.TimerEvent

// eventsClosedMsg is sent once the controller closed its subscription.
type eventsClosedMsg struct{}

// Model represents the TUI state.
type Model struct {
	timer      ports.TimerControl
	fetchState func() *domain.CurrentState
	events     <-chan domain.TimerEvent
	state      *domain.CurrentState
	keys       keyMap
	help       help.Model
	theme      config.ThemeConfig
	width      int
	height     int
	banner     string
}

// NewModel creates a new TUI model. fetchState supplies the surrounding
// state (task, stats, settings) and may be nil.
func NewModel(timer ports.TimerControl, fetchState func() *domain.CurrentState, theme *config.ThemeConfig) Model {
	m := Model{
		timer:      timer,
		fetchState: fetchState,
		keys:       defaultKeyMap(),
		help:       help.New(),
		theme:      resolveTheme(theme),
		state:      &domain.CurrentState{Settings: domain.DefaultSettings()},
	}
	if fetchState != nil {
		if s := fetchState(); s != nil {
			m.state = s
		}
	}
	m.syncTimer()
	return m
}

// WithEvents attaches a controller subscription. Completion and skip
// events then show up as a banner without waiting for the next tick.
func (m Model) WithEvents(events <-chan domain.TimerEvent) Model {
	m.events = events
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForEvent(m.events))
}

// fetchStateCmd returns a tea.Cmd that fetches state asynchronously.
func fetchStateCmd(fetch func() *domain.CurrentState) tea.Cmd {
	if fetch == nil {
		return nil
	}
	return func() tea.Msg {
		s := fetch()
		return stateMsg{state: s}
	}
}

func waitForEvent(events <-chan domain.TimerEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return timerEventMsg(evt)
	}
}

// syncTimer copies the live controller state into the displayed state.
func (m *Model) syncTimer() {
	if m.timer == nil {
		return
	}
	st := *m.state
	st.Timer = m.timer.Snapshot()
	st.Progress = m.timer.Progress()
	m.state = &st
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.syncTimer()
		return m, tea.Batch(tickCmd(), fetchStateCmd(m.fetchState))

	case stateMsg:
		if msg.state != nil {
			m.state = msg.state
		}
		m.syncTimer()
		return m, nil

	case timerEventMsg:
		if text := bannerFor(domain.TimerEvent(msg)); text != "" {
			m.banner = text
		}
		m.syncTimer()
		return m, tea.Batch(waitForEvent(m.events), fetchStateCmd(m.fetchState))

	case eventsClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.timer == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.timer.Toggle()
		m.banner = ""
	case key.Matches(msg, m.keys.Reset):
		m.timer.Reset()
		m.banner = ""
	case key.Matches(msg, m.keys.Skip):
		m.timer.Skip()
	default:
		return m, nil
	}
	m.syncTimer()
	return m, fetchStateCmd(m.fetchState)
}

func bannerFor(evt domain.TimerEvent) string {
	switch evt.Type {
	case domain.EventWorkComplete:
		if evt.State.Mode == domain.ModeLongBreak {
			return "Pomodoro complete! Enjoy a long break."
		}
		return "Pomodoro complete! Time for a break."
	case domain.EventBreakComplete:
		return "Break over. Back to focus."
	case domain.EventSessionSkipped:
		return fmt.Sprintf("%s skipped", domain.GetModeLabel(evt.Mode))
	}
	return ""
}

// modeColor returns the color for the current mode.
func (m Model) modeColor() lipgloss.Color {
	switch m.state.Timer.Mode {
	case domain.ModeBreak:
		return lipgloss.Color(m.theme.ColorBreak)
	case domain.ModeLongBreak:
		return lipgloss.Color(m.theme.ColorLongBreak)
	default:
		return lipgloss.Color(m.theme.ColorWork)
	}
}

// timerColor returns the color for the timer, accounting for pause state.
func (m Model) timerColor() lipgloss.Color {
	if !m.state.Timer.IsRunning {
		return lipgloss.Color(m.theme.ColorPaused)
	}
	return m.modeColor()
}

func (m Model) progressBar() progress.Model {
	var pbar progress.Model
	switch {
	case !m.state.Timer.IsRunning:
		pbar = progress.New(progress.WithGradient(m.theme.PausedGradientStart, m.theme.PausedGradientEnd))
	case m.state.Timer.Mode.IsBreak():
		pbar = progress.New(progress.WithGradient(m.theme.BreakGradientStart, m.theme.BreakGradientEnd))
	default:
		pbar = progress.New(progress.WithGradient(m.theme.WorkGradientStart, m.theme.WorkGradientEnd))
	}
	pbar.Width = m.width - 4
	if pbar.Width > 60 {
		pbar.Width = 60
	}
	return pbar
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	timer := m.state.Timer
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle)).MarginBottom(1)
	modeStyle := lipgloss.NewStyle().Bold(true).Foreground(m.modeColor())
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("%s Pomodoro", m.theme.IconApp)))
	sections = append(sections, modeStyle.Render(fmt.Sprintf("%s · Session %d", domain.GetModeLabel(timer.Mode), timer.CurrentSession)))

	if m.state.ActiveTask != nil {
		task := m.state.ActiveTask
		taskText := fmt.Sprintf("%s %s", m.theme.IconTask, task.Title)
		if task.EstimatedPomodoros > 0 {
			taskText += fmt.Sprintf(" (%d/%d)", task.CompletedPomodoros, task.EstimatedPomodoros)
		}
		taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTask))
		sections = append(sections, taskStyle.Render(taskText))
	}

	remaining := time.Duration(timer.TimeRemaining) * time.Second
	sections = append(sections, "")
	sections = append(sections, renderBigTime(formatDuration(remaining), m.timerColor(), m.width))

	if !timer.IsRunning {
		pauseBadge := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(m.theme.ColorPaused)).
			Padding(0, 1).
			Render(fmt.Sprintf("%s PAUSED", m.theme.IconPaused))
		sections = append(sections, "")
		sections = append(sections, pauseBadge)
	}

	sections = append(sections, "")
	sections = append(sections, m.progressBar().ViewAs(m.state.Progress/100))

	sections = append(sections, helpStyle.Render(m.cycleLine()))

	if m.banner != "" {
		sections = append(sections, "")
		sections = append(sections, modeStyle.Render(m.banner))
	}

	today := m.state.Today
	statsText := fmt.Sprintf("Today: %d pomodoros, %s focused", today.CompletedPomodoros, formatMinutes(today.FocusMinutes))
	if m.state.Summary.CurrentStreak > 0 {
		statsText += fmt.Sprintf(" · %dd streak", m.state.Summary.CurrentStreak)
	}
	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(statsText))

	sections = append(sections, "")
	sections = append(sections, m.help.View(m.keys))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// cycleLine describes where the timer is in the long break cycle.
func (m Model) cycleLine() string {
	completed := m.state.Timer.CompletedPomodoros
	until := m.state.Settings.PomodorosUntilLongBreak
	if until < domain.MinUntilLongBreak {
		until = domain.MinUntilLongBreak
	}
	left := until - completed%until
	return fmt.Sprintf("%d completed · long break in %d", completed, left)
}

// tickCmd creates a command that sends a tick message.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// formatMinutes formats a minute count as 1h05m or 25m.
func formatMinutes(total int) string {
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh%02dm", total/60, total%60)
}
