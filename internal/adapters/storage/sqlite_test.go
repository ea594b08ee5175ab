package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

func newTestStorage(t *testing.T) ports.Storage {
	t.Helper()
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestNewMemory(t *testing.T) {
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	defer func() { _ = storage.Close() }()

	if storage == nil {
		t.Error("NewMemory() returned nil storage")
	}
}

func TestNew_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pomo.db")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	task, _ := domain.NewTask("Persisted")
	if err := first.Tasks().Save(ctx, task); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_ = first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer func() { _ = second.Close() }()

	if err := second.Migrate(); err != nil {
		t.Errorf("Migrate() on current schema error = %v", err)
	}
	found, err := second.Tasks().FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID() after reopen error = %v", err)
	}
	if found.Title != "Persisted" {
		t.Errorf("FindByID() title = %q, want %q", found.Title, "Persisted")
	}
}

func TestTaskRepository_SaveAndFind(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	repo := storage.Tasks()

	t.Run("round trip keeps every field", func(t *testing.T) {
		task, _ := domain.NewTask("Write tests")
		task.Description = "cover the repository"
		task.Category = domain.CategoryStudy
		task.AddTag("go")
		task.AddTag("sqlite")
		_ = task.SetEstimate(3)
		task.IncrementPomodoro()

		if err := repo.Save(ctx, task); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		found, err := repo.FindByID(ctx, task.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.Title != task.Title || found.Description != task.Description {
			t.Errorf("FindByID() = %+v", found)
		}
		if found.Category != domain.CategoryStudy {
			t.Errorf("FindByID() category = %v, want %v", found.Category, domain.CategoryStudy)
		}
		if found.EstimatedPomodoros != 3 || found.CompletedPomodoros != 1 {
			t.Errorf("FindByID() pomodoros = %d/%d, want 1/3", found.CompletedPomodoros, found.EstimatedPomodoros)
		}
		if len(found.Tags) != 2 {
			t.Errorf("FindByID() tags = %v, want 2", found.Tags)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		task, _ := domain.NewTask("Once")
		_ = repo.Save(ctx, task)
		if err := repo.Save(ctx, task); !errors.Is(err, domain.ErrInvalidTaskID) {
			t.Errorf("Save() duplicate error = %v, want ErrInvalidTaskID", err)
		}
	})

	t.Run("find non-existent", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "non-existent-id")
		if !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("FindByID() error = %v, want ErrTaskNotFound", err)
		}
	})
}

func TestTaskRepository_FindAllAndPending(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	repo := storage.Tasks()

	task1, _ := domain.NewTask("Task 1")
	task2, _ := domain.NewTask("Task 2")
	task2.Start()
	task3, _ := domain.NewTask("Task 3")
	task3.Complete()

	_ = repo.Save(ctx, task1)
	_ = repo.Save(ctx, task2)
	_ = repo.Save(ctx, task3)

	all, err := repo.FindAll(ctx, nil)
	if err != nil || len(all) != 3 {
		t.Errorf("FindAll() = %d tasks, err %v, want 3", len(all), err)
	}

	completed := domain.StatusCompleted
	done, err := repo.FindAll(ctx, &completed)
	if err != nil || len(done) != 1 {
		t.Errorf("FindAll(completed) = %d tasks, err %v, want 1", len(done), err)
	}

	pending, err := repo.FindPending(ctx)
	if err != nil {
		t.Fatalf("FindPending() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("FindPending() = %d tasks, want 2", len(pending))
	}
	if pending[0].ID != task2.ID {
		t.Errorf("FindPending()[0] = %s, want the active task first", pending[0].Title)
	}

	active, err := repo.FindActive(ctx)
	if err != nil || active == nil || active.ID != task2.ID {
		t.Errorf("FindActive() = %v, err %v, want %s", active, err, task2.ID)
	}
}

func TestTaskRepository_FindActiveNone(t *testing.T) {
	storage := newTestStorage(t)

	active, err := storage.Tasks().FindActive(context.Background())
	if err != nil {
		t.Fatalf("FindActive() error = %v", err)
	}
	if active != nil {
		t.Errorf("FindActive() = %v, want nil", active)
	}
}

func TestTaskRepository_FindByTitle(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	repo := storage.Tasks()

	for _, title := range []string{"Write quarterly report", "Review pull request", "Water plants"} {
		task, _ := domain.NewTask(title)
		_ = repo.Save(ctx, task)
	}

	matches, err := repo.FindByTitle(ctx, "report")
	if err != nil {
		t.Fatalf("FindByTitle() error = %v", err)
	}
	if len(matches) == 0 || matches[0].Title != "Write quarterly report" {
		t.Errorf("FindByTitle(report) = %v", matches)
	}
}

func TestTaskRepository_UpdateAndDelete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	repo := storage.Tasks()

	task, _ := domain.NewTask("Original")
	_ = repo.Save(ctx, task)

	task.Title = "Renamed"
	task.Complete()
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, _ := repo.FindByID(ctx, task.ID)
	if found.Title != "Renamed" || found.Status != domain.StatusCompleted || found.CompletedAt == nil {
		t.Errorf("Update() persisted %+v", found)
	}

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrTaskNotFound", err)
	}

	ghost, _ := domain.NewTask("Ghost")
	if err := repo.Update(ctx, ghost); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("Update() missing error = %v, want ErrTaskNotFound", err)
	}
}

func TestSessionRepository(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	task, _ := domain.NewTask("Linked")
	_ = storage.Tasks().Save(ctx, task)

	now := time.Now()
	old := domain.NewSessionRecord(domain.ModeWork, 25, false, now.Add(-48*time.Hour))
	work := domain.NewSessionRecord(domain.ModeWork, 25, false, now.Add(-time.Hour))
	work.TaskID = &task.ID
	work.GitBranch = "main"
	skipped := domain.NewSessionRecord(domain.ModeBreak, 5, true, now)

	for _, rec := range []*domain.SessionRecord{old, work, skipped} {
		if err := storage.Sessions().Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	recent, err := storage.Sessions().FindRecent(ctx, now.Add(-24*time.Hour), 0)
	if err != nil {
		t.Fatalf("FindRecent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("FindRecent() = %d records, want 2", len(recent))
	}
	if !recent[0].Skipped || recent[0].Mode != domain.ModeBreak {
		t.Errorf("FindRecent()[0] = %+v, want the skipped break", recent[0])
	}
	if recent[1].Duration != 25*time.Minute || recent[1].GitBranch != "main" {
		t.Errorf("FindRecent()[1] = %+v", recent[1])
	}

	limited, _ := storage.Sessions().FindRecent(ctx, time.Time{}, 1)
	if len(limited) != 1 {
		t.Errorf("FindRecent(limit 1) = %d records", len(limited))
	}

	byTask, err := storage.Sessions().FindByTask(ctx, task.ID)
	if err != nil || len(byTask) != 1 || byTask[0].ID != work.ID {
		t.Errorf("FindByTask() = %v, err %v", byTask, err)
	}

	// Deleting the task keeps the history but unlinks it.
	_ = storage.Tasks().Delete(ctx, task.ID)
	all, _ := storage.Sessions().FindRecent(ctx, time.Time{}, 0)
	for _, rec := range all {
		if rec.TaskID != nil {
			t.Errorf("record %s still linked to deleted task", rec.ID)
		}
	}
}

func TestStatsRepository(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	repo := storage.Stats()

	if _, err := repo.GetDay(ctx, "2026-01-01"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("GetDay() missing error = %v, want ErrRecordNotFound", err)
	}

	_ = repo.Upsert(ctx, domain.DailyStat{Date: "2026-01-02", CompletedPomodoros: 1, FocusMinutes: 25, SessionsCompleted: 1})
	_ = repo.Upsert(ctx, domain.DailyStat{Date: "2026-01-01", BreakMinutes: 5})
	if err := repo.Upsert(ctx, domain.DailyStat{Date: "2026-01-02", CompletedPomodoros: 2, FocusMinutes: 50, SessionsCompleted: 2}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	day, err := repo.GetDay(ctx, "2026-01-02")
	if err != nil {
		t.Fatalf("GetDay() error = %v", err)
	}
	if day.CompletedPomodoros != 2 || day.FocusMinutes != 50 {
		t.Errorf("GetDay() = %+v, want the upserted values", day)
	}

	all, _ := repo.All(ctx)
	if len(all) != 2 || all[0].Date != "2026-01-01" {
		t.Errorf("All() = %+v, want two days oldest first", all)
	}

	ranged, _ := repo.FindRange(ctx, "2026-01-02", "2026-01-31")
	if len(ranged) != 1 {
		t.Errorf("FindRange() = %+v, want one day", ranged)
	}
}

func TestKVStore(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	kv := storage.KV()

	if _, err := kv.Get(ctx, "settings"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("Get() missing error = %v, want ErrRecordNotFound", err)
	}

	_ = kv.Put(ctx, "settings", []byte(`{"a":1}`))
	if err := kv.Put(ctx, "settings", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := kv.Get(ctx, "settings")
	if err != nil || string(got) != `{"a":2}` {
		t.Errorf("Get() = %s, err %v", got, err)
	}

	if err := kv.Delete(ctx, "settings"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := kv.Delete(ctx, "settings"); err != nil {
		t.Errorf("Delete() missing key error = %v", err)
	}
}
