package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)}
}

func TestStatsService_RecordWorkComplete(t *testing.T) {
	store, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	clock := newClock()
	stats := NewStatsService(store)
	stats.SetClock(clock.Now)

	_, err := stats.RecordWorkComplete(ctx, 25)
	require.NoError(t, err)
	sum, err := stats.RecordWorkComplete(ctx, 25)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TotalPomodoros)
	assert.Equal(t, 50, sum.TotalFocusMinutes)
	assert.Equal(t, 1, sum.CurrentStreak)
	assert.Equal(t, 1, sum.LongestStreak)
	assert.InDelta(t, 2.0, sum.AverageSessionsPerDay, 0.001)

	today, err := stats.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DailyStat{
		Date:               "2025-03-10",
		CompletedPomodoros: 2,
		FocusMinutes:       50,
		SessionsCompleted:  2,
	}, today)
}

func TestStatsService_RecordBreakAndTask(t *testing.T) {
	store, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	stats := NewStatsService(store)
	stats.SetClock(newClock().Now)

	_, err := stats.RecordBreakComplete(ctx, 5)
	require.NoError(t, err)
	sum, err := stats.RecordTaskComplete(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.TotalPomodoros)
	assert.Equal(t, 1, sum.TotalTasksCompleted)
	assert.Equal(t, 1, sum.CurrentStreak, "a break alone still counts as an active day")

	today, _ := stats.Today(ctx)
	assert.Equal(t, 5, today.BreakMinutes)
	assert.Equal(t, 1, today.TasksCompleted)
	assert.Equal(t, 0, today.SessionsCompleted)
}

func TestStatsService_Streaks(t *testing.T) {
	store, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	clock := newClock()
	stats := NewStatsService(store)
	stats.SetClock(clock.Now)

	// yesterday and today
	clock.advanceDays(-1)
	_, err := stats.RecordWorkComplete(ctx, 25)
	require.NoError(t, err)
	clock.advanceDays(1)
	sum, err := stats.RecordWorkComplete(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.CurrentStreak)
	assert.Equal(t, 2, sum.LongestStreak)

	// a day without activity breaks the streak
	clock.advanceDays(2)
	sum, err = stats.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.CurrentStreak)
	assert.Equal(t, 2, sum.LongestStreak)

	sum, err = stats.RecordWorkComplete(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CurrentStreak)
	assert.Equal(t, 2, sum.LongestStreak, "longest streak never decreases")
}

func TestStatsService_CorruptSummary(t *testing.T) {
	store, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.KV().Put(ctx, KeyStatsSummary, []byte("{not json")))

	stats := NewStatsService(store)
	stats.SetClock(newClock().Now)

	sum, err := stats.RecordWorkComplete(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalPomodoros)
}

func TestStatsService_LastNDays(t *testing.T) {
	store, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	clock := newClock()
	stats := NewStatsService(store)
	stats.SetClock(clock.Now)

	clock.advanceDays(-2)
	_, err := stats.RecordWorkComplete(ctx, 25)
	require.NoError(t, err)
	clock.advanceDays(2)
	_, err = stats.RecordWorkComplete(ctx, 30)
	require.NoError(t, err)

	days, err := stats.LastNDays(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, "2025-03-04", days[0].Date)
	assert.Equal(t, "2025-03-08", days[4].Date)
	assert.Equal(t, 25, days[4].FocusMinutes)
	assert.True(t, days[5].IsEmpty())
	assert.Equal(t, 30, days[6].FocusMinutes)

	none, err := stats.LastNDays(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	history, err := stats.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
