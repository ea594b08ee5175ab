// Package timer drives the pomodoro countdown. A Controller owns the timer
// state, the one-second interval and the work/break cycle, and publishes
// events that the rest of the application reacts to.
package timer

import (
	"sync"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

// SettingsSource supplies the settings in effect right now. The controller
// reads it at every transition and reset, so edits made mid-cycle apply to
// the next interval.
type SettingsSource interface {
	Current() domain.Settings
}

// SettingsFunc adapts a function to SettingsSource.
type SettingsFunc func() domain.Settings

// Current implements SettingsSource.
func (f SettingsFunc) Current() domain.Settings { return f() }

// StaticSettings returns a SettingsSource that always yields s.
func StaticSettings(s domain.Settings) SettingsSource {
	return SettingsFunc(func() domain.Settings { return s })
}

// Handler is called with every batch of events a single operation produced.
// Batches are delivered in order on a dispatch goroutine, so a slow handler
// never delays the tick.
type Handler func(events []domain.TimerEvent)

// Config contains runtime options for the Controller.
type Config struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Controller is the session timer state machine.
type Controller struct {
	mu         sync.Mutex
	settings   SettingsSource
	options    Config
	state      domain.TimerState
	completing bool
	generation uint64
	stopCh     chan struct{}
	events     []chan domain.TimerEvent
	handlers   []Handler
	pending    [][]domain.TimerEvent
	notify     chan struct{}
	done       chan struct{}
	inflight   sync.WaitGroup
	closed     bool
}

// New creates a paused controller starting from initial. Use
// domain.NewTimerState for a fresh cycle.
func New(settings SettingsSource, initial domain.TimerState, options Config) *Controller {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	initial.IsRunning = false
	c := &Controller{
		settings: settings,
		options:  options,
		state:    initial,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go c.dispatch()
	return c
}

// Subscribe registers a channel that receives every event. Sends never
// block: a subscriber that falls behind misses events.
func (c *Controller) Subscribe(buffer int) <-chan domain.TimerEvent {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan domain.TimerEvent, buffer)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.events = append(c.events, ch)
	return ch
}

// OnEvent registers a handler for every event batch.
func (c *Controller) OnEvent(h Handler) {
	c.mu.Lock()
	c.handlers = append(c.handlers, h)
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() domain.TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns the elapsed share of the current interval, 0-100,
// measured against the current settings.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	return st.Progress(c.settings.Current())
}

// Start resumes the countdown. It does nothing if the timer is already
// running or has no time left.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.IsRunning || c.state.TimeRemaining <= 0 {
		return
	}
	c.state.IsRunning = true
	c.startLoopLocked()

	now := c.options.Now()
	c.emitLocked(
		domain.TimerEvent{Type: domain.EventSessionStart, Mode: c.state.Mode, State: c.state, At: now},
		c.changedLocked(now),
	)
}

// Pause stops the countdown. Pausing a paused timer is a no-op.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsRunning {
		return
	}
	c.state.IsRunning = false
	c.stopLoopLocked()
	c.emitLocked(c.changedLocked(c.options.Now()))
}

// Toggle pauses a running timer and starts a paused one.
func (c *Controller) Toggle() {
	c.mu.Lock()
	running := c.state.IsRunning
	c.mu.Unlock()

	if running {
		c.Pause()
		return
	}
	c.Start()
}

// Reset rewinds the current interval to its full length and pauses.
// Mode and counters are kept.
func (c *Controller) Reset() {
	s := c.settings.Current()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.TimeRemaining = s.SecondsFor(c.state.Mode)
	c.state.IsRunning = false
	c.stopLoopLocked()
	c.emitLocked(c.changedLocked(c.options.Now()))
}

// Skip abandons the current interval and moves to the next one, paused.
// No completion is recorded for the skipped interval.
func (c *Controller) Skip() {
	s := c.settings.Current()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopLoopLocked()

	skipped := c.state.Mode
	tr := domain.NextTransition(c.state, s)
	c.state = c.state.Apply(tr, false)

	now := c.options.Now()
	c.emitLocked(
		domain.TimerEvent{Type: domain.EventSessionSkipped, Mode: skipped, Minutes: s.DurationFor(skipped), State: c.state, At: now},
		c.changedLocked(now),
	)
}

// Tick advances the countdown by one second. The interval loop calls it
// once per TickInterval while running; it is exported so callers can drive
// the timer by hand.
func (c *Controller) Tick() {
	s := c.settings.Current()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickLocked(s)
}

func (c *Controller) tickGeneration(gen uint64) {
	s := c.settings.Current()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.tickLocked(s)
}

func (c *Controller) tickLocked(s domain.Settings) {
	if c.closed || !c.state.IsRunning {
		return
	}
	if c.state.TimeRemaining > 0 {
		c.state.TimeRemaining--
	}

	now := c.options.Now()
	if c.state.TimeRemaining > 0 || c.completing {
		c.emitLocked(c.changedLocked(now))
		return
	}

	c.completing = true
	c.emitLocked(c.completeLocked(s, now)...)
	c.completing = false
}

// completeLocked applies the transition that follows an interval running
// out and returns the events it produced.
func (c *Controller) completeLocked(s domain.Settings, now time.Time) []domain.TimerEvent {
	finished := c.state.Mode
	c.state.IsRunning = false

	tr := domain.NextTransition(c.state, s)

	var events []domain.TimerEvent
	if finished == domain.ModeWork {
		events = append(events, domain.TimerEvent{
			Type:    domain.EventWorkComplete,
			Mode:    finished,
			Minutes: s.WorkDuration,
			State:   c.state.Apply(tr, tr.AutoStart),
			At:      now,
		})
	} else {
		events = append(events, domain.TimerEvent{
			Type:    domain.EventBreakComplete,
			Mode:    finished,
			Minutes: s.DurationFor(finished),
			State:   c.state.Apply(tr, tr.AutoStart),
			At:      now,
		})
	}

	c.state = c.state.Apply(tr, tr.AutoStart)
	if c.state.IsRunning {
		events = append(events, domain.TimerEvent{Type: domain.EventSessionStart, Mode: c.state.Mode, State: c.state, At: now})
	} else {
		c.stopLoopLocked()
	}
	return append(events, c.changedLocked(now))
}

// Close stops the interval, closes subscriber channels and waits for
// in-flight handlers. The controller is unusable afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.state.IsRunning = false
	c.stopLoopLocked()
	events := c.events
	c.events = nil
	c.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
	c.inflight.Wait()
	close(c.done)
}

// Wait blocks until every handler dispatched so far has returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) startLoopLocked() {
	c.stopLoopLocked()
	c.generation++
	c.stopCh = make(chan struct{})
	go c.run(c.generation, c.stopCh)
}

func (c *Controller) stopLoopLocked() {
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
	c.generation++
}

func (c *Controller) run(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(c.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.tickGeneration(gen)
		}
	}
}

func (c *Controller) changedLocked(now time.Time) domain.TimerEvent {
	return domain.TimerEvent{Type: domain.EventStateChanged, Mode: c.state.Mode, State: c.state, At: now}
}

func (c *Controller) emitLocked(events ...domain.TimerEvent) {
	if len(events) == 0 {
		return
	}
	for _, evt := range events {
		for _, ch := range c.events {
			select {
			case ch <- evt:
			default:
			}
		}
	}
	if c.closed || len(c.handlers) == 0 {
		return
	}
	c.inflight.Add(1)
	c.pending = append(c.pending, events)
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Controller) dispatch() {
	for {
		select {
		case <-c.done:
			return
		case <-c.notify:
		}

		for {
			c.mu.Lock()
			if len(c.pending) == 0 {
				c.mu.Unlock()
				break
			}
			batch := c.pending[0]
			c.pending = c.pending[1:]
			handlers := append([]Handler(nil), c.handlers...)
			c.mu.Unlock()

			for _, h := range handlers {
				h(batch)
			}
			c.inflight.Done()
		}
	}
}
