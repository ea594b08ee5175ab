package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// persistEvery is how often, in countdown seconds, a running timer's state
// is written back. Every pause, reset and transition is written at once.
const persistEvery = 10

// SessionHooks reacts to timer events: it records stats, credits the active
// task, writes session history, updates gamification, plays sounds and
// persists the timer state. Failures are logged and never reach the timer.
type SessionHooks struct {
	storage      ports.Storage
	settings     *SettingsService
	stats        *StatsService
	tasks        *TaskService
	gamification *GamificationService
	notifier     ports.Notifier
	git          ports.GitDetector
	workingDir   string
	timeout      time.Duration
}

// NewSessionHooks wires the services that timer events fan out to.
func NewSessionHooks(storage ports.Storage, settings *SettingsService, stats *StatsService, tasks *TaskService, gamification *GamificationService) *SessionHooks {
	return &SessionHooks{
		storage:      storage,
		settings:     settings,
		stats:        stats,
		tasks:        tasks,
		gamification: gamification,
		timeout:      5 * time.Second,
	}
}

// SetNotifier enables sounds and desktop notifications.
func (h *SessionHooks) SetNotifier(n ports.Notifier) {
	h.notifier = n
}

// SetGitDetector tags session history with the branch checked out in dir.
func (h *SessionHooks) SetGitDetector(d ports.GitDetector, dir string) {
	h.git = d
	h.workingDir = dir
}

// Handle processes one batch of timer events. It has the signature of
// timer.Handler.
func (h *SessionHooks) Handle(events []domain.TimerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	for _, evt := range events {
		switch evt.Type {
		case domain.EventSessionStart:
			h.onStart(evt)
		case domain.EventWorkComplete:
			h.onWorkComplete(ctx, evt)
		case domain.EventBreakComplete:
			h.onBreakComplete(ctx, evt)
		case domain.EventSessionSkipped:
			h.onSkipped(ctx, evt)
		case domain.EventStateChanged:
			h.onStateChanged(ctx, evt)
		}
	}
}

func (h *SessionHooks) onStart(evt domain.TimerEvent) {
	if evt.Mode == domain.ModeWork {
		h.play(ports.SoundWorkStart)
		return
	}
	h.play(ports.SoundBreakStart)
}

func (h *SessionHooks) onWorkComplete(ctx context.Context, evt domain.TimerEvent) {
	h.play(ports.SoundWorkEnd)
	h.notify("Focus session complete! 🎉", "Time for a break.")

	summary, err := h.stats.RecordWorkComplete(ctx, evt.Minutes)
	if err != nil {
		log.Printf("hooks: record work: %v", err)
	}

	var taskID *string
	if task, err := h.tasks.IncrementActive(ctx); err != nil {
		log.Printf("hooks: credit task: %v", err)
	} else if task != nil {
		taskID = &task.ID
	}

	h.saveSession(ctx, evt, false, taskID)
	h.refreshGamification(ctx, summary)
}

func (h *SessionHooks) onBreakComplete(ctx context.Context, evt domain.TimerEvent) {
	h.play(ports.SoundBreakEnd)
	h.notify("Break over! 💪", "Ready to focus again?")

	summary, err := h.stats.RecordBreakComplete(ctx, evt.Minutes)
	if err != nil {
		log.Printf("hooks: record break: %v", err)
	}

	h.saveSession(ctx, evt, false, nil)
	h.refreshGamification(ctx, summary)
}

func (h *SessionHooks) onSkipped(ctx context.Context, evt domain.TimerEvent) {
	h.saveSession(ctx, evt, true, nil)
	if err := h.gamification.RecordSessionOutcome(ctx, true); err != nil {
		log.Printf("hooks: %v", err)
	}
}

func (h *SessionHooks) onStateChanged(ctx context.Context, evt domain.TimerEvent) {
	st := evt.State
	if st.IsRunning && st.TimeRemaining%persistEvery != 0 {
		return
	}
	if err := SaveTimerState(ctx, h.storage, st); err != nil {
		log.Printf("hooks: %v", err)
	}
}

func (h *SessionHooks) refreshGamification(ctx context.Context, summary domain.StatsSummary) {
	if err := h.gamification.RecordSessionOutcome(ctx, false); err != nil {
		log.Printf("hooks: %v", err)
	}
	today, err := h.stats.Today(ctx)
	if err != nil {
		log.Printf("hooks: load today: %v", err)
		return
	}
	if err := h.gamification.Refresh(ctx, summary, today); err != nil {
		log.Printf("hooks: gamification: %v", err)
	}
}

func (h *SessionHooks) saveSession(ctx context.Context, evt domain.TimerEvent, skipped bool, taskID *string) {
	rec := domain.NewSessionRecord(evt.Mode, evt.Minutes, skipped, evt.At)
	rec.TaskID = taskID
	if h.git != nil && h.git.IsAvailable() {
		if info, err := h.git.Detect(ctx, h.workingDir); err == nil {
			rec.GitBranch = info.Branch
		}
	}
	if err := h.storage.Sessions().Save(ctx, rec); err != nil {
		log.Printf("hooks: save session: %v", err)
	}
}

func (h *SessionHooks) play(sound ports.Sound) {
	if h.notifier == nil {
		return
	}
	s := h.settings.Current()
	if !s.SoundEnabled || s.SoundVolume <= 0 {
		return
	}
	if err := h.notifier.Play(sound, s.SoundVolume); err != nil {
		log.Printf("hooks: play %s: %v", sound, err)
	}
}

func (h *SessionHooks) notify(title, message string) {
	if h.notifier == nil || !h.settings.Current().NotificationsEnabled {
		return
	}
	if err := h.notifier.Notify(title, message); err != nil {
		log.Printf("hooks: notify: %v", err)
	}
}

// LoadTimerState restores the persisted timer state, paused. A missing or
// corrupt record yields a fresh work interval.
func LoadTimerState(ctx context.Context, storage ports.Storage, settings domain.Settings) domain.TimerState {
	var st domain.TimerState
	if err := loadRecord(ctx, storage.KV(), KeyTimerState, &st); err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			log.Printf("timer state: %v; starting fresh", err)
		}
		return domain.NewTimerState(settings)
	}
	return st.Sanitize(settings)
}

// SaveTimerState persists st.
func SaveTimerState(ctx context.Context, storage ports.Storage, st domain.TimerState) error {
	return saveRecord(ctx, storage.KV(), KeyTimerState, st)
}
