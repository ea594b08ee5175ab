package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// Keys of the records kept in the key-value store.
const (
	KeySettings     = "settings"
	KeyTimerState   = "timer_state"
	KeyStatsSummary = "stats_summary"
	KeyProfile      = "profile"
	KeyAchievements = "achievements"
	KeyChallenges   = "challenges"
	KeyXPHistory    = "xp_history"
)

// loadRecord decodes the record at key into v. It returns
// domain.ErrRecordNotFound for a missing key and a wrapped decode error for
// a corrupt one, leaving the fallback decision to the caller.
func loadRecord(ctx context.Context, kv ports.KVStore, key string, v any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// saveRecord encodes v and stores it at key.
func saveRecord(ctx context.Context, kv ports.KVStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return kv.Put(ctx, key, raw)
}
