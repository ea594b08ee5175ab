package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// StatsService records completed intervals and tasks into per-day
// aggregates and keeps the lifetime summary and streaks current.
type StatsService struct {
	storage ports.Storage
	now     func() time.Time

	// mu serialises read-modify-write of today's record and the summary.
	mu sync.Mutex
}

// NewStatsService creates a new stats service.
func NewStatsService(storage ports.Storage) *StatsService {
	return &StatsService{storage: storage, now: time.Now}
}

// SetClock overrides the time source.
func (s *StatsService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordWorkComplete credits one pomodoro of focusMinutes to today.
func (s *StatsService) RecordWorkComplete(ctx context.Context, focusMinutes int) (domain.StatsSummary, error) {
	return s.record(ctx, func(day *domain.DailyStat, sum *domain.StatsSummary) {
		day.CompletedPomodoros++
		day.FocusMinutes += focusMinutes
		day.SessionsCompleted++
		sum.TotalPomodoros++
		sum.TotalFocusMinutes += focusMinutes
	})
}

// RecordBreakComplete adds breakMinutes of rest to today.
func (s *StatsService) RecordBreakComplete(ctx context.Context, breakMinutes int) (domain.StatsSummary, error) {
	return s.record(ctx, func(day *domain.DailyStat, _ *domain.StatsSummary) {
		day.BreakMinutes += breakMinutes
	})
}

// RecordTaskComplete credits one finished task to today.
func (s *StatsService) RecordTaskComplete(ctx context.Context) (domain.StatsSummary, error) {
	return s.record(ctx, func(day *domain.DailyStat, sum *domain.StatsSummary) {
		day.TasksCompleted++
		sum.TotalTasksCompleted++
	})
}

func (s *StatsService) record(ctx context.Context, apply func(*domain.DailyStat, *domain.StatsSummary)) (domain.StatsSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	day, err := s.day(ctx, domain.DayKey(now))
	if err != nil {
		return domain.StatsSummary{}, err
	}
	sum := s.loadSummary(ctx)

	apply(&day, &sum)

	if err := s.storage.Stats().Upsert(ctx, day); err != nil {
		return domain.StatsSummary{}, fmt.Errorf("failed to record stats: %w", err)
	}
	if err := s.refreshDerived(ctx, &sum, now); err != nil {
		return domain.StatsSummary{}, err
	}
	if err := saveRecord(ctx, s.storage.KV(), KeyStatsSummary, sum); err != nil {
		return domain.StatsSummary{}, fmt.Errorf("failed to save stats summary: %w", err)
	}
	return sum, nil
}

// refreshDerived recomputes streaks and the per-day average from the
// stored daily records.
func (s *StatsService) refreshDerived(ctx context.Context, sum *domain.StatsSummary, now time.Time) error {
	all, err := s.storage.Stats().All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load daily stats: %w", err)
	}
	dates := make([]string, len(all))
	for i, d := range all {
		dates[i] = d.Date
	}

	sum.CurrentStreak = domain.CurrentStreak(dates, now)
	if sum.CurrentStreak > sum.LongestStreak {
		sum.LongestStreak = sum.CurrentStreak
	}
	if longest := domain.LongestRun(dates); longest > sum.LongestStreak {
		sum.LongestStreak = longest
	}
	sum.AverageSessionsPerDay = domain.AverageSessions(all)
	sum.LastUpdated = now
	return nil
}

func (s *StatsService) day(ctx context.Context, date string) (domain.DailyStat, error) {
	day, err := s.storage.Stats().GetDay(ctx, date)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.DailyStat{Date: date}, nil
	}
	if err != nil {
		return domain.DailyStat{}, fmt.Errorf("failed to load daily stat: %w", err)
	}
	return *day, nil
}

func (s *StatsService) loadSummary(ctx context.Context) domain.StatsSummary {
	var sum domain.StatsSummary
	err := loadRecord(ctx, s.storage.KV(), KeyStatsSummary, &sum)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		log.Printf("stats: %v; starting from an empty summary", err)
		return domain.StatsSummary{}
	}
	return sum
}

// Summary returns the lifetime totals. The current streak is re-evaluated
// against today so a day without activity shows as a broken streak.
func (s *StatsService) Summary(ctx context.Context) (domain.StatsSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := s.loadSummary(ctx)
	updated := sum.LastUpdated
	if err := s.refreshDerived(ctx, &sum, s.now()); err != nil {
		return domain.StatsSummary{}, err
	}
	sum.LastUpdated = updated
	return sum, nil
}

// Today returns today's record, zero if nothing happened yet.
func (s *StatsService) Today(ctx context.Context) (domain.DailyStat, error) {
	return s.day(ctx, domain.DayKey(s.now()))
}

// LastNDays returns one record per day for the n days ending today, oldest
// first, with zero records filling the gaps.
func (s *StatsService) LastNDays(ctx context.Context, n int) ([]domain.DailyStat, error) {
	if n <= 0 {
		return nil, nil
	}
	now := s.now()
	from := domain.DayKey(now.AddDate(0, 0, -(n - 1)))
	stats, err := s.storage.Stats().FindRange(ctx, from, domain.DayKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	return domain.FillDays(stats, now, n), nil
}

// History returns every recorded day, oldest first.
func (s *StatsService) History(ctx context.Context) ([]domain.DailyStat, error) {
	return s.storage.Stats().All(ctx)
}
