package ports

import (
	"context"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

// TimerControl is the set of operations the user can dispatch to the
// session timer. This is a driving port (called by the presentation layer).
type TimerControl interface {
	Start()
	Pause()
	Toggle()
	Reset()
	Skip()

	// Snapshot returns a copy of the current timer state.
	Snapshot() domain.TimerState

	// Progress returns the elapsed share of the current interval, 0-100.
	Progress() float64

	// Subscribe registers a channel that receives every timer event.
	Subscribe(buffer int) <-chan domain.TimerEvent
}

// TimerView runs an interactive timer screen.
// This is a driving port (implemented by the TUI adapter).
type TimerView interface {
	// Run blocks until the user quits or ctx is cancelled.
	Run(ctx context.Context) error
}
