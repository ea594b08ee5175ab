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

// GamificationService keeps the XP profile, achievements and challenges.
type GamificationService struct {
	storage ports.Storage
	now     func() time.Time
	mu      sync.Mutex
}

// NewGamificationService creates a new gamification service.
func NewGamificationService(storage ports.Storage) *GamificationService {
	return &GamificationService{storage: storage, now: time.Now}
}

// SetClock overrides the time source.
func (s *GamificationService) SetClock(now func() time.Time) {
	s.now = now
}

// Profile returns the stored profile, or a fresh level 1 profile.
func (s *GamificationService) Profile(ctx context.Context) (domain.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProfile(ctx), nil
}

// AddXP credits amount for reason and reports whether the user levelled up.
func (s *GamificationService) AddXP(ctx context.Context, amount int, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addXPLocked(ctx, amount, reason)
}

func (s *GamificationService) addXPLocked(ctx context.Context, amount int, reason string) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	profile := s.loadProfile(ctx)
	leveled := profile.AddXP(amount)
	if err := saveRecord(ctx, s.storage.KV(), KeyProfile, profile); err != nil {
		return false, fmt.Errorf("failed to save profile: %w", err)
	}

	history := s.loadHistory(ctx)
	history = domain.PrependXPGain(history, domain.XPGain{Amount: amount, Reason: reason, Timestamp: s.now()})
	if err := saveRecord(ctx, s.storage.KV(), KeyXPHistory, history); err != nil {
		return leveled, fmt.Errorf("failed to save xp history: %w", err)
	}

	if leveled {
		log.Printf("gamification: reached level %d (%s)", profile.Level, profile.Title)
	}
	return leveled, nil
}

// RecordSessionOutcome extends the run of unskipped sessions, or resets it
// when the session was skipped.
func (s *GamificationService) RecordSessionOutcome(ctx context.Context, skipped bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.loadProfile(ctx)
	if skipped {
		profile.UnskippedStreak = 0
	} else {
		profile.UnskippedStreak++
	}
	if err := saveRecord(ctx, s.storage.KV(), KeyProfile, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Achievements returns the full catalog with stored progress.
func (s *GamificationService) Achievements(ctx context.Context) ([]domain.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAchievements(ctx), nil
}

// UnlockedAchievements returns the achievements already earned.
func (s *GamificationService) UnlockedAchievements(ctx context.Context) ([]domain.Achievement, error) {
	all, err := s.Achievements(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Achievement
	for _, a := range all {
		if a.Unlocked() {
			out = append(out, a)
		}
	}
	return out, nil
}

// CheckAchievements updates progress from the given stats, unlocks every
// achievement that reached its goal and awards their XP in one gain.
// It returns the newly unlocked achievements.
func (s *GamificationService) CheckAchievements(ctx context.Context, summary domain.StatsSummary, today domain.DailyStat) ([]domain.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	input := domain.AchievementInput{
		Summary:         summary,
		Today:           today,
		UnskippedStreak: s.loadProfile(ctx).UnskippedStreak,
		Now:             now,
	}

	achievements := s.loadAchievements(ctx)
	var unlocked []domain.Achievement
	reward := 0
	for i, a := range achievements {
		if a.Unlocked() {
			continue
		}
		progress := domain.AchievementProgress(a, input)
		if progress >= a.MaxProgress {
			at := now
			achievements[i].Progress = a.MaxProgress
			achievements[i].UnlockedAt = &at
			unlocked = append(unlocked, achievements[i])
			reward += a.XPReward
			continue
		}
		achievements[i].Progress = progress
	}

	if err := saveRecord(ctx, s.storage.KV(), KeyAchievements, achievements); err != nil {
		return nil, fmt.Errorf("failed to save achievements: %w", err)
	}
	if reward > 0 {
		if _, err := s.addXPLocked(ctx, reward, "Achievements unlocked"); err != nil {
			return unlocked, err
		}
	}
	return unlocked, nil
}

// GenerateDailyChallenges adds today's challenges unless some already
// expire today. It returns the challenges it added.
func (s *GamificationService) GenerateDailyChallenges(ctx context.Context) ([]domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := domain.DayKey(now)
	challenges := s.loadChallenges(ctx)
	for _, c := range challenges {
		if c.Kind == domain.ChallengeDaily && domain.DayKey(c.ExpiresAt) == today {
			return nil, nil
		}
	}

	fresh := domain.NewDailyChallenges(now)
	challenges = append(challenges, fresh...)
	if err := saveRecord(ctx, s.storage.KV(), KeyChallenges, challenges); err != nil {
		return nil, fmt.Errorf("failed to save challenges: %w", err)
	}
	return fresh, nil
}

// UpdateChallengeProgress sets challenge progress from today's stats and
// completes, with their XP, the challenges that reached their goal.
func (s *GamificationService) UpdateChallengeProgress(ctx context.Context, today domain.DailyStat) ([]domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	challenges := s.loadChallenges(ctx)
	var completed []domain.Challenge
	for i, c := range challenges {
		if !c.Active(now) {
			continue
		}
		progress := c.Metric.MetricValue(today)
		if progress >= c.MaxProgress {
			at := now
			challenges[i].Progress = c.MaxProgress
			challenges[i].Completed = true
			challenges[i].CompletedAt = &at
			completed = append(completed, challenges[i])
			continue
		}
		challenges[i].Progress = progress
	}

	if err := saveRecord(ctx, s.storage.KV(), KeyChallenges, challenges); err != nil {
		return nil, fmt.Errorf("failed to save challenges: %w", err)
	}
	for _, c := range completed {
		if _, err := s.addXPLocked(ctx, c.XPReward, "Challenge: "+c.Name); err != nil {
			return completed, err
		}
	}
	return completed, nil
}

// ActiveChallenges returns challenges that are neither completed nor expired.
func (s *GamificationService) ActiveChallenges(ctx context.Context) ([]domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []domain.Challenge
	for _, c := range s.loadChallenges(ctx) {
		if c.Active(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

// XPHistory returns the most recent XP gains, newest first.
func (s *GamificationService) XPHistory(ctx context.Context) ([]domain.XPGain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory(ctx), nil
}

// Refresh runs the daily challenge generation and the achievement and
// challenge checks against fresh stats.
func (s *GamificationService) Refresh(ctx context.Context, summary domain.StatsSummary, today domain.DailyStat) error {
	if _, err := s.GenerateDailyChallenges(ctx); err != nil {
		return err
	}
	if _, err := s.CheckAchievements(ctx, summary, today); err != nil {
		return err
	}
	_, err := s.UpdateChallengeProgress(ctx, today)
	return err
}

func (s *GamificationService) loadProfile(ctx context.Context) domain.PlayerProfile {
	var p domain.PlayerProfile
	if err := loadRecord(ctx, s.storage.KV(), KeyProfile, &p); err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			log.Printf("gamification: %v; starting a new profile", err)
		}
		return domain.NewPlayerProfile(s.now())
	}
	if p.Level < 1 {
		return domain.NewPlayerProfile(s.now())
	}
	return p
}

func (s *GamificationService) loadAchievements(ctx context.Context) []domain.Achievement {
	var stored []domain.Achievement
	if err := loadRecord(ctx, s.storage.KV(), KeyAchievements, &stored); err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			log.Printf("gamification: %v; resetting achievements", err)
		}
		return domain.DefaultAchievements()
	}
	return domain.MergeAchievements(stored)
}

func (s *GamificationService) loadChallenges(ctx context.Context) []domain.Challenge {
	var stored []domain.Challenge
	if err := loadRecord(ctx, s.storage.KV(), KeyChallenges, &stored); err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			log.Printf("gamification: %v; resetting challenges", err)
		}
		return nil
	}
	return stored
}

func (s *GamificationService) loadHistory(ctx context.Context) []domain.XPGain {
	var stored []domain.XPGain
	if err := loadRecord(ctx, s.storage.KV(), KeyXPHistory, &stored); err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			log.Printf("gamification: %v; resetting xp history", err)
		}
		return nil
	}
	return stored
}
