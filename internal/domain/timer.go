package domain

// TimerMode is the kind of interval the timer is counting down.
type TimerMode string

const (
	ModeWork      TimerMode = "work"
	ModeBreak     TimerMode = "break"
	ModeLongBreak TimerMode = "long_break"
)

// IsBreak reports whether m is a short or long break.
func (m TimerMode) IsBreak() bool {
	return m == ModeBreak || m == ModeLongBreak
}

// Valid reports whether m is one of the known modes.
func (m TimerMode) Valid() bool {
	switch m {
	case ModeWork, ModeBreak, ModeLongBreak:
		return true
	}
	return false
}

// GetModeLabel returns a human-readable label for the timer mode.
func GetModeLabel(m TimerMode) string {
	switch m {
	case ModeWork:
		return "Focus"
	case ModeBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

// TimerState is the observable state of the session timer.
type TimerState struct {
	Mode               TimerMode `json:"mode"`
	TimeRemaining      int       `json:"timeRemaining"`
	IsRunning          bool      `json:"isRunning"`
	CompletedPomodoros int       `json:"completedPomodoros"`
	CurrentSession     int       `json:"currentSession"`
}

// NewTimerState returns the initial state: a paused, full work session.
func NewTimerState(s Settings) TimerState {
	return TimerState{
		Mode:           ModeWork,
		TimeRemaining:  s.SecondsFor(ModeWork),
		CurrentSession: 1,
	}
}

// Sanitize repairs a state loaded from storage so it satisfies the timer's
// invariants. A restored timer never resumes running on its own.
func (t TimerState) Sanitize(s Settings) TimerState {
	if !t.Mode.Valid() {
		return NewTimerState(s)
	}
	out := t
	out.IsRunning = false
	full := s.SecondsFor(out.Mode)
	if out.TimeRemaining < 0 || out.TimeRemaining > full {
		out.TimeRemaining = full
	}
	if out.TimeRemaining == 0 {
		out.TimeRemaining = full
	}
	if out.CompletedPomodoros < 0 {
		out.CompletedPomodoros = 0
	}
	if out.CurrentSession < 1 {
		out.CurrentSession = 1
	}
	return out
}

// Progress returns how much of the current interval has elapsed, 0-100.
func (t TimerState) Progress(s Settings) float64 {
	total := s.SecondsFor(t.Mode)
	if total <= 0 {
		return 0
	}
	p := float64(total-t.TimeRemaining) / float64(total) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Transition describes the interval that follows a finished one.
type Transition struct {
	From               TimerMode
	To                 TimerMode
	Seconds            int
	AutoStart          bool
	CompletedPomodoros int
}

// NextTransition computes what follows the current interval of t. Finishing
// a work interval bumps the completed counter and picks a long break every
// PomodorosUntilLongBreak pomodoros; any break is followed by work.
func NextTransition(t TimerState, s Settings) Transition {
	tr := Transition{From: t.Mode, CompletedPomodoros: t.CompletedPomodoros}

	if t.Mode == ModeWork {
		tr.CompletedPomodoros++
		until := s.PomodorosUntilLongBreak
		if until < MinUntilLongBreak {
			until = MinUntilLongBreak
		}
		if tr.CompletedPomodoros%until == 0 {
			tr.To = ModeLongBreak
		} else {
			tr.To = ModeBreak
		}
		tr.AutoStart = s.AutoStartBreaks
	} else {
		tr.To = ModeWork
		tr.AutoStart = s.AutoStartPomodoros
	}

	tr.Seconds = s.SecondsFor(tr.To)
	return tr
}

// Apply returns the state after tr with the running flag set to running.
func (t TimerState) Apply(tr Transition, running bool) TimerState {
	return TimerState{
		Mode:               tr.To,
		TimeRemaining:      tr.Seconds,
		IsRunning:          running,
		CompletedPomodoros: tr.CompletedPomodoros,
		CurrentSession:     t.CurrentSession + 1,
	}
}
