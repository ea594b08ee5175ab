package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

func TestDefaultConfig_SeedSettings(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, domain.DefaultSettings(), cfg.SeedSettings())
}

func TestSeedSettings_OutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Defaults.WorkDuration = Duration(3 * time.Hour)
	cfg.Defaults.ShortBreak = Duration(10 * time.Minute)
	cfg.Defaults.SessionsBeforeLong = 1
	cfg.Notifications.Sound = false

	s := cfg.SeedSettings()
	assert.Equal(t, 25, s.WorkDuration)
	assert.Equal(t, 10, s.BreakDuration)
	assert.Equal(t, 4, s.PomodorosUntilLongBreak)
	assert.False(t, s.SoundEnabled)
}

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "first load writes the config file")

	assert.Equal(t, time.Second, time.Duration(cfg.Timer.TickInterval))
	assert.Equal(t, 25*time.Minute, time.Duration(cfg.Defaults.WorkDuration))
	assert.True(t, cfg.MCP.Enabled)
	assert.Equal(t, filepath.Join(cfg.Storage.DataDir, "pomo.log"), cfg.Log.File)
	assert.Equal(t, DefaultThemeConfig(), cfg.Theme)
}

func TestLoadFrom_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[storage]
data_dir = "` + filepath.ToSlash(dir) + `"

[defaults]
work_duration = "50m"
short_break = "10m"
auto_start_breaks = true

[timer]
tick_interval = "250ms"

[theme]
color_work = "#FF0000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dir, "pomo.db"), GetDBPath(cfg))
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Timer.TickInterval))
	assert.Equal(t, "#FF0000", cfg.Theme.ColorWork)
	assert.Equal(t, DefaultThemeConfig().ColorBreak, cfg.Theme.ColorBreak)

	s := cfg.SeedSettings()
	assert.Equal(t, 50, s.WorkDuration)
	assert.Equal(t, 10, s.BreakDuration)
	assert.Equal(t, 15, s.LongBreakDuration)
	assert.True(t, s.AutoStartBreaks)
}

func TestLoadFrom_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is [not toml"), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), cfg.SeedSettings())
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Storage.DataDir = dir
	cfg.Defaults.LongBreak = Duration(20 * time.Minute)
	cfg.MCP.Enabled = false
	require.NoError(t, SaveTo(path, cfg))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 20, loaded.SeedSettings().LongBreakDuration)
	assert.False(t, loaded.MCP.Enabled)
}

func TestDuration_Minutes(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{25 * time.Minute, 25},
		{90 * time.Second, 1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Duration(tt.in).Minutes(); got != tt.want {
			t.Errorf("Duration(%v).Minutes() = %d, want %d", tt.in, got, tt.want)
		}
	}
}
