package ports

// Sound identifies one of the cues played around interval boundaries.
type Sound string

const (
	SoundWorkStart  Sound = "work-start"
	SoundWorkEnd    Sound = "work-end"
	SoundBreakStart Sound = "break-start"
	SoundBreakEnd   Sound = "break-end"
)

// Notifier delivers audible and desktop alerts.
// This is a driven port (implemented by adapters).
type Notifier interface {
	// Play emits the cue at volume (0-1). Zero volume is silent.
	Play(sound Sound, volume float64) error

	// Notify shows a desktop notification.
	Notify(title, message string) error
}
