package domain

import "time"

// EventType identifies what happened inside the session timer.
type EventType string

const (
	// EventSessionStart fires when the timer goes from paused to running.
	EventSessionStart EventType = "session_start"

	// EventWorkComplete fires when a work interval counts down to zero.
	EventWorkComplete EventType = "work_complete"

	// EventBreakComplete fires when a short or long break counts down to zero.
	EventBreakComplete EventType = "break_complete"

	// EventSessionSkipped fires when the user skips the current interval.
	EventSessionSkipped EventType = "session_skipped"

	// EventStateChanged fires after every mutation of the timer state.
	EventStateChanged EventType = "state_changed"
)

// TimerEvent is published by the session timer. Minutes is the configured
// length of the finished interval for completion events; Mode is the mode
// the event concerns (the finished one for completions and skips).
type TimerEvent struct {
	Type    EventType
	Mode    TimerMode
	Minutes int
	State   TimerState
	At      time.Time
}
