// Package domain contains the core business entities for pomo.
// These entities represent the fundamental concepts of the timer, task
// and progress tracking and are independent of any storage or UI.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Common domain errors.
var (
	ErrInvalidTaskID     = errors.New("invalid task ID")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidEstimate   = errors.New("estimated pomodoros must be at least 1")
	ErrInvalidCategory   = errors.New("unknown task category")
	ErrTaskNotActive     = errors.New("task is not active")
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidSetting    = errors.New("invalid setting value")
	ErrUnknownSetting    = errors.New("unknown setting")
	ErrUnknownAchievement = errors.New("unknown achievement")
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskCategory groups tasks for filtering and display.
type TaskCategory string

const (
	CategoryWork     TaskCategory = "work"
	CategoryStudy    TaskCategory = "study"
	CategoryPersonal TaskCategory = "personal"
	CategoryHealth   TaskCategory = "health"
	CategoryOther    TaskCategory = "other"
)

// Categories lists the built-in task categories in display order.
var Categories = []TaskCategory{CategoryWork, CategoryStudy, CategoryPersonal, CategoryHealth, CategoryOther}

// ParseCategory resolves a user supplied category name. Empty means work.
func ParseCategory(s string) (TaskCategory, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryWork, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// Task represents a unit of work that pomodoros are spent on.
type Task struct {
	ID                 string
	Title              string
	Description        string
	Category           TaskCategory
	Status             TaskStatus
	Tags               []string
	EstimatedPomodoros int
	CompletedPomodoros int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CompletedAt        *time.Time
}

// NewTask creates a new pending task with the given title.
func NewTask(title string) (*Task, error) {
	if err := validateTaskTitle(title); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Task{
		ID:                 generateID(),
		Title:              title,
		Category:           CategoryWork,
		Status:             StatusPending,
		Tags:               []string{},
		EstimatedPomodoros: 1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// validateTaskTitle ensures the title is not blank.
func validateTaskTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTaskTitle
	}
	return nil
}

// SetEstimate sets the number of pomodoros the task is expected to take.
func (t *Task) SetEstimate(n int) error {
	if n < 1 {
		return ErrInvalidEstimate
	}
	t.EstimatedPomodoros = n
	t.UpdatedAt = time.Now()
	return nil
}

// Start marks the task as the one pomodoros are credited to.
func (t *Task) Start() {
	t.Status = StatusInProgress
	t.UpdatedAt = time.Now()
}

// Pause returns an active task to the pending pool.
func (t *Task) Pause() {
	if t.Status == StatusInProgress {
		t.Status = StatusPending
		t.UpdatedAt = time.Now()
	}
}

// Complete marks the task as completed.
func (t *Task) Complete() {
	now := time.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// Cancel marks the task as cancelled.
func (t *Task) Cancel() {
	t.Status = StatusCancelled
	t.UpdatedAt = time.Now()
}

// IncrementPomodoro credits one finished work session to the task.
func (t *Task) IncrementPomodoro() {
	t.CompletedPomodoros++
	t.UpdatedAt = time.Now()
}

// AddTag adds a tag to the task.
func (t *Task) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for _, existing := range t.Tags {
		if existing == tag {
			return
		}
	}
	t.Tags = append(t.Tags, tag)
	t.UpdatedAt = time.Now()
}

// IsActive returns true if the task is currently being worked on.
func (t *Task) IsActive() bool {
	return t.Status == StatusInProgress
}

// IsOpen returns true if the task is neither completed nor cancelled.
func (t *Task) IsOpen() bool {
	return t.Status == StatusPending || t.Status == StatusInProgress
}

// EstimateProgress returns completed/estimated pomodoros, capped at 1.
func (t *Task) EstimateProgress() float64 {
	if t.EstimatedPomodoros <= 0 {
		return 0
	}
	p := float64(t.CompletedPomodoros) / float64(t.EstimatedPomodoros)
	if p > 1 {
		return 1
	}
	return p
}

// ParseTitleTags splits "#tag" words out of a title.
// "Write report #work #q3" yields ("Write report", ["work", "q3"]).
func ParseTitleTags(input string) (string, []string) {
	var words, tags []string
	for _, w := range strings.Fields(input) {
		if len(w) > 1 && strings.HasPrefix(w, "#") {
			tags = append(tags, strings.TrimPrefix(w, "#"))
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " "), tags
}
