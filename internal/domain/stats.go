package domain

import (
	"sort"
	"time"
)

// DayLayout is the key format of a DailyStat.
const DayLayout = "2006-01-02"

// DayKey returns the local calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// DailyStat aggregates activity for one local calendar day.
type DailyStat struct {
	Date               string `json:"date"`
	CompletedPomodoros int    `json:"completedPomodoros"`
	FocusMinutes       int    `json:"focusTime"`
	BreakMinutes       int    `json:"breakTime"`
	TasksCompleted     int    `json:"tasksCompleted"`
	SessionsCompleted  int    `json:"sessionsCompleted"`
}

// IsEmpty reports whether nothing happened on the day.
func (d DailyStat) IsEmpty() bool {
	return d.CompletedPomodoros == 0 && d.FocusMinutes == 0 && d.BreakMinutes == 0 &&
		d.TasksCompleted == 0 && d.SessionsCompleted == 0
}

// StatsSummary holds lifetime totals and streaks.
type StatsSummary struct {
	TotalPomodoros        int       `json:"totalPomodoros"`
	TotalFocusMinutes     int       `json:"totalFocusTime"`
	CurrentStreak         int       `json:"currentStreak"`
	LongestStreak         int       `json:"longestStreak"`
	TotalTasksCompleted   int       `json:"totalTasksCompleted"`
	AverageSessionsPerDay float64   `json:"averageSessionsPerDay"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// CurrentStreak counts consecutive days ending today that have a record.
// A day without a record breaks the streak; today without a record means 0.
func CurrentStreak(days []string, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	present := make(map[string]struct{}, len(days))
	for _, d := range days {
		present[d] = struct{}{}
	}

	streak := 0
	day := today
	for {
		if _, ok := present[DayKey(day)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// LongestRun returns the longest run of consecutive calendar days in days.
func LongestRun(days []string) int {
	sorted := append([]string(nil), days...)
	sort.Strings(sorted)

	best, run := 0, 0
	prev := ""
	for _, d := range sorted {
		if d == prev {
			continue
		}
		t, err := time.ParseInLocation(DayLayout, d, time.Local)
		if err != nil {
			continue
		}
		if prev != "" && DayKey(t.AddDate(0, 0, -1)) == prev {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = d
	}
	return best
}

// AverageSessions returns the mean sessions per recorded day.
func AverageSessions(days []DailyStat) float64 {
	if len(days) == 0 {
		return 0
	}
	total := 0
	for _, d := range days {
		total += d.SessionsCompleted
	}
	return float64(total) / float64(len(days))
}

// FillDays returns one entry per day of the n days ending today, oldest
// first, with zero records for days that have no stat.
func FillDays(stats []DailyStat, today time.Time, n int) []DailyStat {
	if n <= 0 {
		return nil
	}
	byDate := make(map[string]DailyStat, len(stats))
	for _, s := range stats {
		byDate[s.Date] = s
	}

	out := make([]DailyStat, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := DayKey(today.AddDate(0, 0, -i))
		if s, ok := byDate[key]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, DailyStat{Date: key})
	}
	return out
}
