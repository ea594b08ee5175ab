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
	"github.com/xvierd/pomodoro-pro/internal/timer"
)

// readTimeout bounds the record read behind Current.
const readTimeout = 2 * time.Second

// SettingsService owns the persisted user settings and serves the current
// value to the session timer. The record is shared with other pomo
// processes, so Current re-reads it.
type SettingsService struct {
	storage ports.Storage
	seed    domain.Settings

	mu      sync.Mutex
	current domain.Settings
}

// Ensure SettingsService can drive the timer.
var _ timer.SettingsSource = (*SettingsService)(nil)

// NewSettingsService loads the stored settings. seed is used on first run
// and as the fallback for a corrupt record; it is itself normalized against
// the built-in defaults.
func NewSettingsService(ctx context.Context, storage ports.Storage, seed domain.Settings) *SettingsService {
	s := &SettingsService{
		storage: storage,
		seed:    seed.Normalize(domain.DefaultSettings()),
	}
	s.current = s.load(ctx)
	return s
}

func (s *SettingsService) load(ctx context.Context) domain.Settings {
	stored, err := s.read(ctx)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return s.seed
	case err != nil:
		log.Printf("settings: %v; using defaults", err)
		return s.seed
	}
	return stored
}

// read decodes the stored record over the seed, so fields missing from the
// record keep their seed values.
func (s *SettingsService) read(ctx context.Context) (domain.Settings, error) {
	stored := s.seed
	if err := loadRecord(ctx, s.storage.KV(), KeySettings, &stored); err != nil {
		return s.seed, err
	}
	return stored.Normalize(s.seed), nil
}

// Current implements timer.SettingsSource. It returns the stored record,
// or the last good value when the record is missing or unreadable.
func (s *SettingsService) Current() domain.Settings {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	return s.current
}

func (s *SettingsService) refreshLocked(ctx context.Context) {
	if stored, err := s.read(ctx); err == nil {
		s.current = stored
	}
}

// Set parses value into the named setting and persists the result.
// An invalid value leaves the settings unchanged.
func (s *SettingsService) Set(ctx context.Context, key, value string) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)

	next := s.current
	if err := next.Set(key, value); err != nil {
		return s.current, err
	}
	if err := saveRecord(ctx, s.storage.KV(), KeySettings, next); err != nil {
		return s.current, fmt.Errorf("failed to save settings: %w", err)
	}
	s.current = next
	return next, nil
}

// Replace validates and stores a complete settings value.
func (s *SettingsService) Replace(ctx context.Context, next domain.Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := saveRecord(ctx, s.storage.KV(), KeySettings, next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.current = next
	return nil
}

// Reset restores the seed settings.
func (s *SettingsService) Reset(ctx context.Context) error {
	return s.Replace(ctx, s.seed)
}
