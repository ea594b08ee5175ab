package domain

import (
	"fmt"
	"time"
)

// MaxXPHistory is how many XP gains are kept, newest first.
const MaxXPHistory = 50

// XPForLevel returns the XP needed to advance past level.
func XPForLevel(level int) int {
	return level*100 + (level-1)*50
}

var levelTitles = []struct {
	level int
	title string
}{
	{1, "Beginner"},
	{5, "Apprentice"},
	{10, "Student"},
	{15, "Practitioner"},
	{20, "Professional"},
	{25, "Specialist"},
	{30, "Master"},
	{35, "Grandmaster"},
	{40, "Legend"},
	{45, "Myth"},
	{50, "Pomodoro Deity"},
}

// TitleForLevel returns the title of the highest threshold not above level.
func TitleForLevel(level int) string {
	title := levelTitles[0].title
	for _, lt := range levelTitles {
		if level >= lt.level {
			title = lt.title
		}
	}
	return title
}

// PlayerProfile is the XP and level state of the user.
type PlayerProfile struct {
	Level           int       `json:"level"`
	CurrentXP       int       `json:"currentXP"`
	XPToNextLevel   int       `json:"xpToNextLevel"`
	TotalXP         int       `json:"totalXP"`
	Title           string    `json:"title"`
	JoinedAt        time.Time `json:"joinedAt"`
	UnskippedStreak int       `json:"unskippedStreak"`
}

// NewPlayerProfile returns a level 1 profile.
func NewPlayerProfile(now time.Time) PlayerProfile {
	return PlayerProfile{
		Level:         1,
		XPToNextLevel: XPForLevel(1),
		Title:         TitleForLevel(1),
		JoinedAt:      now,
	}
}

// AddXP credits amount and levels up as many times as the XP allows.
// It reports whether at least one level was gained.
func (p *PlayerProfile) AddXP(amount int) bool {
	if amount <= 0 {
		return false
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XPToNextLevel <= 0 {
		p.XPToNextLevel = XPForLevel(p.Level)
	}

	p.CurrentXP += amount
	p.TotalXP += amount

	leveled := false
	for p.CurrentXP >= p.XPToNextLevel {
		p.CurrentXP -= p.XPToNextLevel
		p.Level++
		p.XPToNextLevel = XPForLevel(p.Level)
		leveled = true
	}
	p.Title = TitleForLevel(p.Level)
	return leveled
}

// XPGain is one entry of the XP history.
type XPGain struct {
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// PrependXPGain adds g to the front of history and trims it to MaxXPHistory.
func PrependXPGain(history []XPGain, g XPGain) []XPGain {
	out := make([]XPGain, 0, MaxXPHistory)
	out = append(out, g)
	for _, h := range history {
		if len(out) == MaxXPHistory {
			break
		}
		out = append(out, h)
	}
	return out
}

// AchievementCategory groups achievements for display.
type AchievementCategory string

const (
	AchievementPomodoro AchievementCategory = "pomodoro"
	AchievementStreak   AchievementCategory = "streak"
	AchievementTask     AchievementCategory = "task"
	AchievementSpecial  AchievementCategory = "special"
)

// Achievement is a one-time reward unlocked when Progress reaches MaxProgress.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	XPReward    int                 `json:"xpReward"`
	Progress    int                 `json:"progress"`
	MaxProgress int                 `json:"maxProgress"`
	Category    AchievementCategory `json:"category"`
	UnlockedAt  *time.Time          `json:"unlockedAt,omitempty"`
}

// Unlocked reports whether the achievement has been earned.
func (a Achievement) Unlocked() bool {
	return a.UnlockedAt != nil
}

// DefaultAchievements returns the full catalog with zero progress.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{ID: "first-pomodoro", Name: "First Step", Description: "Complete your first pomodoro", Icon: "🥉", XPReward: 10, MaxProgress: 1, Category: AchievementPomodoro},
		{ID: "pomodoro-10", Name: "Focused", Description: "Complete 10 pomodoros", Icon: "🎯", XPReward: 50, MaxProgress: 10, Category: AchievementPomodoro},
		{ID: "pomodoro-50", Name: "Determined", Description: "Complete 50 pomodoros", Icon: "💪", XPReward: 150, MaxProgress: 50, Category: AchievementPomodoro},
		{ID: "pomodoro-100", Name: "Centurion", Description: "Complete 100 pomodoros", Icon: "💯", XPReward: 300, MaxProgress: 100, Category: AchievementPomodoro},
		{ID: "pomodoro-500", Name: "Legendary", Description: "Complete 500 pomodoros", Icon: "👑", XPReward: 1000, MaxProgress: 500, Category: AchievementPomodoro},
		{ID: "streak-3", Name: "Consistent", Description: "Keep a 3 day streak", Icon: "🔥", XPReward: 25, MaxProgress: 3, Category: AchievementStreak},
		{ID: "streak-7", Name: "Dedicated", Description: "Keep a 7 day streak", Icon: "⚡", XPReward: 100, MaxProgress: 7, Category: AchievementStreak},
		{ID: "streak-30", Name: "Unshakeable", Description: "Keep a 30 day streak", Icon: "🏆", XPReward: 500, MaxProgress: 30, Category: AchievementStreak},
		{ID: "marathon", Name: "Marathoner", Description: "Complete 10 pomodoros in one day", Icon: "🏃", XPReward: 200, MaxProgress: 10, Category: AchievementPomodoro},
		{ID: "perfect-5", Name: "Perfectionist", Description: "Complete 5 sessions in a row without skipping", Icon: "✨", XPReward: 75, MaxProgress: 5, Category: AchievementPomodoro},
		{ID: "night-owl", Name: "Night Owl", Description: "Complete a pomodoro after 22:00", Icon: "🦉", XPReward: 50, MaxProgress: 1, Category: AchievementSpecial},
		{ID: "early-bird", Name: "Early Bird", Description: "Complete a pomodoro before 06:00", Icon: "🌅", XPReward: 50, MaxProgress: 1, Category: AchievementSpecial},
		{ID: "task-master", Name: "Organizer", Description: "Complete 10 tasks", Icon: "📋", XPReward: 100, MaxProgress: 10, Category: AchievementTask},
		{ID: "task-champion", Name: "Task Champion", Description: "Complete 50 tasks", Icon: "🏅", XPReward: 300, MaxProgress: 50, Category: AchievementTask},
	}
}

// MergeAchievements overlays stored progress onto the catalog so catalog
// additions appear and removed ids are dropped.
func MergeAchievements(stored []Achievement) []Achievement {
	byID := make(map[string]Achievement, len(stored))
	for _, a := range stored {
		byID[a.ID] = a
	}
	out := DefaultAchievements()
	for i, a := range out {
		if s, ok := byID[a.ID]; ok {
			out[i].Progress = s.Progress
			out[i].UnlockedAt = s.UnlockedAt
		}
	}
	return out
}

// AchievementInput is what achievement progress is computed from.
type AchievementInput struct {
	Summary         StatsSummary
	Today           DailyStat
	UnskippedStreak int
	Now             time.Time
}

// AchievementProgress returns the progress a for the given input, or the
// current progress if the input says nothing about it.
func AchievementProgress(a Achievement, in AchievementInput) int {
	switch a.ID {
	case "first-pomodoro", "pomodoro-10", "pomodoro-50", "pomodoro-100", "pomodoro-500":
		return in.Summary.TotalPomodoros
	case "streak-3", "streak-7", "streak-30":
		return in.Summary.CurrentStreak
	case "marathon":
		return in.Today.CompletedPomodoros
	case "perfect-5":
		return in.UnskippedStreak
	case "night-owl":
		if in.Now.Hour() >= 22 && in.Summary.TotalPomodoros > 0 {
			return 1
		}
	case "early-bird":
		if in.Now.Hour() < 6 && in.Summary.TotalPomodoros > 0 {
			return 1
		}
	case "task-master", "task-champion":
		return in.Summary.TotalTasksCompleted
	}
	return a.Progress
}

// ChallengeKind is the lifetime class of a challenge.
type ChallengeKind string

const (
	ChallengeDaily  ChallengeKind = "daily"
	ChallengeWeekly ChallengeKind = "weekly"
)

// ChallengeMetric names the daily counter a challenge tracks.
type ChallengeMetric string

const (
	MetricPomodoros ChallengeMetric = "pomodoros"
	MetricTasks     ChallengeMetric = "tasks"
)

// Challenge is a time-limited goal.
type Challenge struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	XPReward    int             `json:"xpReward"`
	Kind        ChallengeKind   `json:"type"`
	Metric      ChallengeMetric `json:"metric"`
	Progress    int             `json:"progress"`
	MaxProgress int             `json:"maxProgress"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Active reports whether the challenge can still be completed at now.
func (c Challenge) Active(now time.Time) bool {
	return !c.Completed && c.ExpiresAt.After(now)
}

// EndOfDay returns 23:59:59.999 of t's local day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// NewDailyChallenges returns the two daily challenges for now's day.
func NewDailyChallenges(now time.Time) []Challenge {
	expires := EndOfDay(now)
	stamp := now.UnixMilli()
	return []Challenge{
		{
			ID:          fmt.Sprintf("daily-pomodoros-%d", stamp),
			Name:        "Daily Pomodoros",
			Description: "Complete 4 pomodoros today",
			Icon:        "🎯",
			XPReward:    50,
			Kind:        ChallengeDaily,
			Metric:      MetricPomodoros,
			MaxProgress: 4,
			ExpiresAt:   expires,
		},
		{
			ID:          fmt.Sprintf("daily-tasks-%d", stamp),
			Name:        "Organizer",
			Description: "Complete 3 tasks today",
			Icon:        "✅",
			XPReward:    40,
			Kind:        ChallengeDaily,
			Metric:      MetricTasks,
			MaxProgress: 3,
			ExpiresAt:   expires,
		},
	}
}

// MetricValue returns the counter of today that m tracks.
func (m ChallengeMetric) MetricValue(today DailyStat) int {
	switch m {
	case MetricPomodoros:
		return today.CompletedPomodoros
	case MetricTasks:
		return today.TasksCompleted
	}
	return 0
}
