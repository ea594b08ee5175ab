// Package notification provides sound cues and desktop notifications.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// beepMillis is how long each cue sounds.
const beepMillis = 500

// frequencies maps each cue to its tone in Hz.
var frequencies = map[ports.Sound]float64{
	ports.SoundWorkStart:  800,
	ports.SoundWorkEnd:    600,
	ports.SoundBreakStart: 500,
	ports.SoundBreakEnd:   700,
}

// Notifier plays cues through the system beeper and shows desktop
// notifications.
type Notifier struct {
	beep   func(freq float64, millis int) error
	notify func(title, message string, icon any) error
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)

// New creates a notifier backed by beeep.
func New() *Notifier {
	return &Notifier{beep: beeep.Beep, notify: beeep.Notify}
}

// Play sounds the tone for sound. The system beeper has no volume control,
// so any positive volume plays at full level and zero stays silent.
func (n *Notifier) Play(sound ports.Sound, volume float64) error {
	if volume <= 0 {
		return nil
	}
	freq, ok := frequencies[sound]
	if !ok {
		return fmt.Errorf("unknown sound %q", sound)
	}
	return n.beep(freq, beepMillis)
}

// Notify displays a desktop notification.
func (n *Notifier) Notify(title, message string) error {
	return n.notify(title, message, "")
}

// Frequency returns the tone of sound in Hz, or 0 for an unknown cue.
func Frequency(sound ports.Sound) float64 {
	return frequencies[sound]
}
