package domain

import (
	"errors"
	"math"
	"testing"
)

func TestSettings_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
		check   func(Settings) bool
	}{
		{name: "work duration", key: "work_duration", value: "50", check: func(s Settings) bool { return s.WorkDuration == 50 }},
		{name: "dash alias", key: "long-break-duration", value: "20", check: func(s Settings) bool { return s.LongBreakDuration == 20 }},
		{name: "volume", key: "sound_volume", value: "0.25", check: func(s Settings) bool { return s.SoundVolume == 0.25 }},
		{name: "bool", key: "auto_start_breaks", value: "true", check: func(s Settings) bool { return s.AutoStartBreaks }},
		{name: "work too long", key: "work_duration", value: "61", wantErr: ErrInvalidSetting},
		{name: "break too long", key: "break_duration", value: "31", wantErr: ErrInvalidSetting},
		{name: "until too small", key: "pomodoros_until_long_break", value: "1", wantErr: ErrInvalidSetting},
		{name: "volume above one", key: "sound_volume", value: "1.5", wantErr: ErrInvalidSetting},
		{name: "not a number", key: "work_duration", value: "abc", wantErr: ErrInvalidSetting},
		{name: "unknown key", key: "colour", value: "red", wantErr: ErrUnknownSetting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			err := s.Set(tt.key, tt.value)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Set() error = %v, want %v", err, tt.wantErr)
				}
				if s != DefaultSettings() {
					t.Errorf("Set() changed settings on error: %+v", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() unexpected error = %v", err)
			}
			if !tt.check(s) {
				t.Errorf("Set(%s, %s) produced %+v", tt.key, tt.value, s)
			}
		})
	}
}

func TestSettings_Normalize(t *testing.T) {
	prev := DefaultSettings()
	prev.WorkDuration = 40

	in := Settings{
		WorkDuration:            0,
		BreakDuration:           10,
		LongBreakDuration:       90,
		PomodorosUntilLongBreak: 11,
		SoundVolume:             math.NaN(),
	}
	got := in.Normalize(prev)

	if got.WorkDuration != 40 {
		t.Errorf("Normalize() work = %d, want previous 40", got.WorkDuration)
	}
	if got.BreakDuration != 10 {
		t.Errorf("Normalize() break = %d, want 10", got.BreakDuration)
	}
	if got.LongBreakDuration != 15 {
		t.Errorf("Normalize() long break = %d, want 15", got.LongBreakDuration)
	}
	if got.PomodorosUntilLongBreak != 4 {
		t.Errorf("Normalize() until = %d, want 4", got.PomodorosUntilLongBreak)
	}
	if got.SoundVolume != 0.7 {
		t.Errorf("Normalize() volume = %v, want 0.7", got.SoundVolume)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Normalize() result fails validation: %v", err)
	}
}

func TestSettings_DurationFor(t *testing.T) {
	s := DefaultSettings()
	if s.SecondsFor(ModeWork) != 1500 || s.SecondsFor(ModeBreak) != 300 || s.SecondsFor(ModeLongBreak) != 900 {
		t.Errorf("SecondsFor() = %d/%d/%d, want 1500/300/900",
			s.SecondsFor(ModeWork), s.SecondsFor(ModeBreak), s.SecondsFor(ModeLongBreak))
	}
}

func TestSettings_GetRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.SoundVolume = 0.35
	s.AutoStartBreaks = true

	for _, key := range SettingKeys {
		t.Run(key, func(t *testing.T) {
			raw, err := s.Get(key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", key, err)
			}
			next := DefaultSettings()
			if err := next.Set(key, raw); err != nil {
				t.Fatalf("Set(%q, %q) error = %v", key, raw, err)
			}
			back, _ := next.Get(key)
			if back != raw {
				t.Errorf("Get(%q) after Set = %q, want %q", key, back, raw)
			}
		})
	}

	if _, err := s.Get("colour"); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("Get(unknown) error = %v, want ErrUnknownSetting", err)
	}
}
