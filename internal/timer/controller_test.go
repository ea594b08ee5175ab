package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

// newTestController returns a controller whose interval never fires during
// a test, so ticks are driven by hand.
func newTestController(t *testing.T, s domain.Settings) *Controller {
	t.Helper()
	c := New(StaticSettings(s), domain.NewTimerState(s), Config{TickInterval: time.Hour})
	t.Cleanup(c.Close)
	return c
}

func tickN(c *Controller, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

type recorder struct {
	mu     sync.Mutex
	events []domain.TimerEvent
}

func (r *recorder) handle(events []domain.TimerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) ofType(typ domain.EventType) []domain.TimerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TimerEvent
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func smallSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.WorkDuration = 1
	s.BreakDuration = 1
	s.LongBreakDuration = 2
	return s
}

func TestController_StartPause(t *testing.T) {
	c := newTestController(t, domain.DefaultSettings())

	c.Start()
	assert.True(t, c.Snapshot().IsRunning)

	c.Start()
	assert.True(t, c.Snapshot().IsRunning, "second Start should be a no-op")

	tickN(c, 10)
	assert.Equal(t, 1490, c.Snapshot().TimeRemaining)

	c.Pause()
	c.Pause()
	st := c.Snapshot()
	assert.False(t, st.IsRunning)
	assert.Equal(t, 1490, st.TimeRemaining)

	tickN(c, 5)
	assert.Equal(t, 1490, c.Snapshot().TimeRemaining, "paused timer must not count down")
}

func TestController_Toggle(t *testing.T) {
	c := newTestController(t, domain.DefaultSettings())

	c.Toggle()
	assert.True(t, c.Snapshot().IsRunning)
	c.Toggle()
	assert.False(t, c.Snapshot().IsRunning)
}

func TestController_StartWithNoTimeLeft(t *testing.T) {
	s := domain.DefaultSettings()
	c := New(StaticSettings(s), domain.TimerState{Mode: domain.ModeWork, CurrentSession: 1}, Config{TickInterval: time.Hour})
	defer c.Close()

	c.Start()
	assert.False(t, c.Snapshot().IsRunning)
}

func TestController_Reset(t *testing.T) {
	s := domain.DefaultSettings()

	tests := []struct {
		name  string
		setup func(c *Controller)
		mode  domain.TimerMode
		want  int
	}{
		{
			name:  "work after ticks",
			setup: func(c *Controller) { c.Start(); tickN(c, 42) },
			mode:  domain.ModeWork,
			want:  1500,
		},
		{
			name:  "short break after skip",
			setup: func(c *Controller) { c.Skip(); c.Start(); tickN(c, 7) },
			mode:  domain.ModeBreak,
			want:  300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, s)
			tt.setup(c)
			before := c.Snapshot()

			c.Reset()
			st := c.Snapshot()

			assert.Equal(t, tt.mode, st.Mode)
			assert.Equal(t, tt.want, st.TimeRemaining)
			assert.False(t, st.IsRunning)
			assert.Equal(t, before.CurrentSession, st.CurrentSession)
			assert.Equal(t, before.CompletedPomodoros, st.CompletedPomodoros)
		})
	}
}

func TestController_CompletionCycle(t *testing.T) {
	s := domain.DefaultSettings()
	c := newTestController(t, s)
	rec := &recorder{}
	c.OnEvent(rec.handle)

	c.Start()
	tickN(c, 1500)

	st := c.Snapshot()
	assert.Equal(t, domain.TimerState{Mode: domain.ModeBreak, TimeRemaining: 300, CompletedPomodoros: 1, CurrentSession: 2}, st)

	// three more work sessions with breaks in between
	for i := 0; i < 3; i++ {
		c.Start()
		tickN(c, c.Snapshot().TimeRemaining)
		require.Equal(t, domain.ModeWork, c.Snapshot().Mode)
		c.Start()
		tickN(c, c.Snapshot().TimeRemaining)
	}

	st = c.Snapshot()
	assert.Equal(t, domain.ModeLongBreak, st.Mode)
	assert.Equal(t, 900, st.TimeRemaining)
	assert.Equal(t, 4, st.CompletedPomodoros)
	assert.Equal(t, 8, st.CurrentSession)

	c.Wait()
	work := rec.ofType(domain.EventWorkComplete)
	require.Len(t, work, 4)
	for _, e := range work {
		assert.Equal(t, 25, e.Minutes)
	}
	breaks := rec.ofType(domain.EventBreakComplete)
	require.Len(t, breaks, 3)
	assert.Equal(t, 5, breaks[0].Minutes)
}

func TestController_CompletionFiresOnce(t *testing.T) {
	s := smallSettings()
	c := newTestController(t, s)
	rec := &recorder{}
	c.OnEvent(rec.handle)

	c.Start()
	tickN(c, 60)
	tickN(c, 30)

	c.Wait()
	assert.Len(t, rec.ofType(domain.EventWorkComplete), 1)
	assert.Equal(t, 2, c.Snapshot().CurrentSession)
}

func TestController_AutoStart(t *testing.T) {
	tests := []struct {
		name        string
		breaks      bool
		pomodoros   bool
		wantBreak   bool
		wantWorkRun bool
	}{
		{name: "off", wantBreak: false, wantWorkRun: false},
		{name: "breaks only", breaks: true, wantBreak: true, wantWorkRun: false},
		{name: "pomodoros only", pomodoros: true, wantBreak: false, wantWorkRun: true},
		{name: "both", breaks: true, pomodoros: true, wantBreak: true, wantWorkRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := smallSettings()
			s.AutoStartBreaks = tt.breaks
			s.AutoStartPomodoros = tt.pomodoros
			c := newTestController(t, s)

			c.Start()
			tickN(c, 60)
			st := c.Snapshot()
			require.Equal(t, domain.ModeBreak, st.Mode)
			assert.Equal(t, tt.wantBreak, st.IsRunning)

			c.Start()
			tickN(c, 60)
			st = c.Snapshot()
			require.Equal(t, domain.ModeWork, st.Mode)
			assert.Equal(t, tt.wantWorkRun, st.IsRunning)
		})
	}
}

func TestController_Skip(t *testing.T) {
	s := domain.DefaultSettings()
	s.AutoStartBreaks = true
	s.AutoStartPomodoros = true

	tests := []struct {
		name    string
		running bool
	}{
		{name: "while running", running: true},
		{name: "while paused", running: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, s)
			rec := &recorder{}
			c.OnEvent(rec.handle)
			if tt.running {
				c.Start()
				tickN(c, 3)
			}

			c.Skip()
			st := c.Snapshot()
			assert.False(t, st.IsRunning, "skip must never leave the timer running")
			assert.Equal(t, domain.ModeBreak, st.Mode)
			assert.Equal(t, 300, st.TimeRemaining)
			assert.Equal(t, 2, st.CurrentSession)

			c.Skip()
			st = c.Snapshot()
			assert.False(t, st.IsRunning)
			assert.Equal(t, domain.ModeWork, st.Mode)
			assert.Equal(t, 3, st.CurrentSession)

			c.Wait()
			assert.Empty(t, rec.ofType(domain.EventWorkComplete))
			assert.Empty(t, rec.ofType(domain.EventBreakComplete))
			assert.Len(t, rec.ofType(domain.EventSessionSkipped), 2)
		})
	}
}

func TestController_SkipKeepsLongBreakCadence(t *testing.T) {
	s := domain.DefaultSettings()
	c := newTestController(t, s)

	for i := 0; i < 3; i++ {
		c.Skip() // work
		c.Skip() // break
	}
	c.Skip()

	st := c.Snapshot()
	assert.Equal(t, domain.ModeLongBreak, st.Mode)
	assert.Equal(t, 4, st.CompletedPomodoros)
}

func TestController_SessionCounter(t *testing.T) {
	c := newTestController(t, smallSettings())

	c.Start()
	tickN(c, 10)
	c.Pause()
	c.Reset()
	assert.Equal(t, 1, c.Snapshot().CurrentSession, "pause and reset must not advance the session")

	c.Skip()
	assert.Equal(t, 2, c.Snapshot().CurrentSession)

	c.Start()
	tickN(c, 60)
	assert.Equal(t, 3, c.Snapshot().CurrentSession)
}

func TestController_SettingsReadAtTransition(t *testing.T) {
	var mu sync.Mutex
	s := domain.DefaultSettings()
	source := SettingsFunc(func() domain.Settings {
		mu.Lock()
		defer mu.Unlock()
		return s
	})
	c := New(source, domain.NewTimerState(s), Config{TickInterval: time.Hour})
	defer c.Close()

	c.Start()
	tickN(c, 100)

	mu.Lock()
	s.BreakDuration = 10
	mu.Unlock()

	assert.Equal(t, 1400, c.Snapshot().TimeRemaining, "running interval keeps its length")

	tickN(c, 1400)
	st := c.Snapshot()
	assert.Equal(t, domain.ModeBreak, st.Mode)
	assert.Equal(t, 600, st.TimeRemaining)
}

func TestController_Progress(t *testing.T) {
	c := newTestController(t, domain.DefaultSettings())
	assert.Equal(t, 0.0, c.Progress())

	c.Start()
	tickN(c, 750)
	assert.InDelta(t, 50.0, c.Progress(), 0.001)
}

func TestController_Subscribe(t *testing.T) {
	c := New(StaticSettings(smallSettings()), domain.NewTimerState(smallSettings()), Config{TickInterval: time.Hour})
	events := c.Subscribe(8)

	c.Start()

	first := <-events
	assert.Equal(t, domain.EventSessionStart, first.Type)
	assert.Equal(t, domain.ModeWork, first.Mode)
	second := <-events
	assert.Equal(t, domain.EventStateChanged, second.Type)
	assert.True(t, second.State.IsRunning)

	c.Close()
	for range events {
	}
}

func TestController_IntervalLoop(t *testing.T) {
	c := New(StaticSettings(smallSettings()), domain.NewTimerState(smallSettings()), Config{TickInterval: 5 * time.Millisecond})
	defer c.Close()

	c.Start()
	require.Eventually(t, func() bool {
		return c.Snapshot().TimeRemaining < 60
	}, time.Second, 5*time.Millisecond)

	c.Pause()
	paused := c.Snapshot().TimeRemaining
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, paused, c.Snapshot().TimeRemaining, "no interval may tick after pause")
}

func TestController_RestartDoesNotDoubleTick(t *testing.T) {
	c := New(StaticSettings(domain.DefaultSettings()), domain.NewTimerState(domain.DefaultSettings()), Config{TickInterval: 20 * time.Millisecond})
	defer c.Close()

	for i := 0; i < 20; i++ {
		c.Start()
		c.Pause()
	}
	c.Start()
	time.Sleep(110 * time.Millisecond)
	c.Pause()

	elapsed := 1500 - c.Snapshot().TimeRemaining
	assert.LessOrEqual(t, elapsed, 6, "only one interval loop may drive the timer")
}

func TestController_CloseIsIdempotent(t *testing.T) {
	c := New(StaticSettings(domain.DefaultSettings()), domain.NewTimerState(domain.DefaultSettings()), Config{})
	c.Start()
	c.Close()
	c.Close()

	assert.False(t, c.Snapshot().IsRunning)
	c.Start()
	assert.False(t, c.Snapshot().IsRunning)
}
