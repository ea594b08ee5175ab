package domain

// CurrentState is the snapshot shown by status output and the MCP server.
type CurrentState struct {
	Timer      TimerState
	Progress   float64
	Settings   Settings
	ActiveTask *Task
	Today      DailyStat
	Summary    StatsSummary
}

// IsBreak returns true if the timer is in a short or long break.
func (cs *CurrentState) IsBreak() bool {
	return cs.Timer.Mode.IsBreak()
}

// GetStatusLabel returns a human-readable label for the running flag.
func GetStatusLabel(running bool) string {
	if running {
		return "Running"
	}
	return "Paused"
}
