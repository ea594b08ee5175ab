package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Settings holds the user preferences the timer reads at every transition.
// Durations are whole minutes.
type Settings struct {
	WorkDuration            int     `json:"workDuration"`
	BreakDuration           int     `json:"breakDuration"`
	LongBreakDuration       int     `json:"longBreakDuration"`
	PomodorosUntilLongBreak int     `json:"pomodorosUntilLongBreak"`
	AutoStartBreaks         bool    `json:"autoStartBreaks"`
	AutoStartPomodoros      bool    `json:"autoStartPomodoros"`
	SoundEnabled            bool    `json:"soundEnabled"`
	SoundVolume             float64 `json:"soundVolume"`
	NotificationsEnabled    bool    `json:"notificationsEnabled"`
}

// Accepted ranges for the numeric settings.
const (
	MinWorkDuration      = 1
	MaxWorkDuration      = 60
	MinBreakDuration     = 1
	MaxBreakDuration     = 30
	MinLongBreakDuration = 1
	MaxLongBreakDuration = 60
	MinUntilLongBreak    = 2
	MaxUntilLongBreak    = 10
)

// DefaultSettings returns the classic 25/5/15 cycle with a long break every
// fourth pomodoro.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:            25,
		BreakDuration:           5,
		LongBreakDuration:       15,
		PomodorosUntilLongBreak: 4,
		AutoStartBreaks:         false,
		AutoStartPomodoros:      false,
		SoundEnabled:            true,
		SoundVolume:             0.7,
		NotificationsEnabled:    true,
	}
}

// DurationFor returns the configured length of mode in minutes.
func (s Settings) DurationFor(mode TimerMode) int {
	switch mode {
	case ModeBreak:
		return s.BreakDuration
	case ModeLongBreak:
		return s.LongBreakDuration
	default:
		return s.WorkDuration
	}
}

// SecondsFor returns the configured length of mode in seconds.
func (s Settings) SecondsFor(mode TimerMode) int {
	return s.DurationFor(mode) * 60
}

// Normalize replaces every out-of-range field with the matching field of
// fallback. It never fails.
func (s Settings) Normalize(fallback Settings) Settings {
	out := s
	if !inRange(out.WorkDuration, MinWorkDuration, MaxWorkDuration) {
		out.WorkDuration = fallback.WorkDuration
	}
	if !inRange(out.BreakDuration, MinBreakDuration, MaxBreakDuration) {
		out.BreakDuration = fallback.BreakDuration
	}
	if !inRange(out.LongBreakDuration, MinLongBreakDuration, MaxLongBreakDuration) {
		out.LongBreakDuration = fallback.LongBreakDuration
	}
	if !inRange(out.PomodorosUntilLongBreak, MinUntilLongBreak, MaxUntilLongBreak) {
		out.PomodorosUntilLongBreak = fallback.PomodorosUntilLongBreak
	}
	if out.SoundVolume < 0 || out.SoundVolume > 1 || out.SoundVolume != out.SoundVolume {
		out.SoundVolume = fallback.SoundVolume
	}
	return out
}

// Validate reports the first out-of-range field.
func (s Settings) Validate() error {
	switch {
	case !inRange(s.WorkDuration, MinWorkDuration, MaxWorkDuration):
		return fmt.Errorf("%w: work duration must be %d-%d minutes", ErrInvalidSetting, MinWorkDuration, MaxWorkDuration)
	case !inRange(s.BreakDuration, MinBreakDuration, MaxBreakDuration):
		return fmt.Errorf("%w: break duration must be %d-%d minutes", ErrInvalidSetting, MinBreakDuration, MaxBreakDuration)
	case !inRange(s.LongBreakDuration, MinLongBreakDuration, MaxLongBreakDuration):
		return fmt.Errorf("%w: long break duration must be %d-%d minutes", ErrInvalidSetting, MinLongBreakDuration, MaxLongBreakDuration)
	case !inRange(s.PomodorosUntilLongBreak, MinUntilLongBreak, MaxUntilLongBreak):
		return fmt.Errorf("%w: pomodoros until long break must be %d-%d", ErrInvalidSetting, MinUntilLongBreak, MaxUntilLongBreak)
	case s.SoundVolume < 0 || s.SoundVolume > 1:
		return fmt.Errorf("%w: sound volume must be between 0 and 1", ErrInvalidSetting)
	}
	return nil
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

// SettingKeys lists the names accepted by Set, in display order.
var SettingKeys = []string{
	"work_duration",
	"break_duration",
	"long_break_duration",
	"pomodoros_until_long_break",
	"auto_start_breaks",
	"auto_start_pomodoros",
	"sound_enabled",
	"sound_volume",
	"notifications_enabled",
}

// Set parses raw and assigns it to the named field. Malformed or
// out-of-range values leave s unchanged and return ErrInvalidSetting.
func (s *Settings) Set(key, raw string) error {
	raw = strings.TrimSpace(raw)
	next := *s

	switch strings.ReplaceAll(strings.ToLower(key), "-", "_") {
	case "work_duration", "work":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidSetting, raw)
		}
		next.WorkDuration = n
	case "break_duration", "break":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidSetting, raw)
		}
		next.BreakDuration = n
	case "long_break_duration", "long_break":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidSetting, raw)
		}
		next.LongBreakDuration = n
	case "pomodoros_until_long_break", "until":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidSetting, raw)
		}
		next.PomodorosUntilLongBreak = n
	case "auto_start_breaks":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidSetting, raw)
		}
		next.AutoStartBreaks = b
	case "auto_start_pomodoros":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidSetting, raw)
		}
		next.AutoStartPomodoros = b
	case "sound_enabled", "sound":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidSetting, raw)
		}
		next.SoundEnabled = b
	case "sound_volume", "volume":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidSetting, raw)
		}
		next.SoundVolume = f
	case "notifications_enabled", "notifications":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidSetting, raw)
		}
		next.NotificationsEnabled = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

// Get returns the named field formatted the way Set accepts it.
func (s Settings) Get(key string) (string, error) {
	switch strings.ReplaceAll(strings.ToLower(key), "-", "_") {
	case "work_duration", "work":
		return strconv.Itoa(s.WorkDuration), nil
	case "break_duration", "break":
		return strconv.Itoa(s.BreakDuration), nil
	case "long_break_duration", "long_break":
		return strconv.Itoa(s.LongBreakDuration), nil
	case "pomodoros_until_long_break", "until":
		return strconv.Itoa(s.PomodorosUntilLongBreak), nil
	case "auto_start_breaks":
		return strconv.FormatBool(s.AutoStartBreaks), nil
	case "auto_start_pomodoros":
		return strconv.FormatBool(s.AutoStartPomodoros), nil
	case "sound_enabled", "sound":
		return strconv.FormatBool(s.SoundEnabled), nil
	case "sound_volume", "volume":
		return strconv.FormatFloat(s.SoundVolume, 'f', -1, 64), nil
	case "notifications_enabled", "notifications":
		return strconv.FormatBool(s.NotificationsEnabled), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSetting, key)
}
