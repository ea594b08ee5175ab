package domain

import "time"

// SessionRecord is the history entry written for every interval that ends,
// whether it ran out or was skipped.
type SessionRecord struct {
	ID         string
	Mode       TimerMode
	Duration   time.Duration
	TaskID     *string
	Skipped    bool
	GitBranch  string
	FinishedAt time.Time
}

// NewSessionRecord creates a history entry for an interval of mode that
// lasted minutes and ended at finishedAt.
func NewSessionRecord(mode TimerMode, minutes int, skipped bool, finishedAt time.Time) *SessionRecord {
	return &SessionRecord{
		ID:         generateID(),
		Mode:       mode,
		Duration:   time.Duration(minutes) * time.Minute,
		Skipped:    skipped,
		FinishedAt: finishedAt,
	}
}
