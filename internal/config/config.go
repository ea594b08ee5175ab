// Package config provides configuration management for pomo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

const defaultDataDir = "~/.pomo"

// Config holds all configuration for the pomo application.
type Config struct {
	Storage       StorageConfig      `mapstructure:"storage"`
	Defaults      DefaultsConfig     `mapstructure:"defaults"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Timer         TimerConfig        `mapstructure:"timer"`
	Log           LogConfig          `mapstructure:"log"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// DefaultsConfig seeds the stored settings on first run. Once settings have
// been saved, `pomo settings` is the place to change them.
type DefaultsConfig struct {
	WorkDuration       Duration `mapstructure:"work_duration"`
	ShortBreak         Duration `mapstructure:"short_break"`
	LongBreak          Duration `mapstructure:"long_break"`
	SessionsBeforeLong int      `mapstructure:"sessions_before_long"`
	AutoStartBreaks    bool     `mapstructure:"auto_start_breaks"`
	AutoStartPomodoros bool     `mapstructure:"auto_start_pomodoros"`
	SoundVolume        float64  `mapstructure:"sound_volume"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// TimerConfig holds session timer settings.
type TimerConfig struct {
	TickInterval Duration `mapstructure:"tick_interval"`
}

// LogConfig holds log file settings. An empty file logs to
// <data_dir>/pomo.log.
type LogConfig struct {
	File      string `mapstructure:"file"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorWork           string `mapstructure:"color_work"`
	ColorBreak          string `mapstructure:"color_break"`
	ColorLongBreak      string `mapstructure:"color_long_break"`
	ColorPaused         string `mapstructure:"color_paused"`
	ColorTitle          string `mapstructure:"color_title"`
	ColorTask           string `mapstructure:"color_task"`
	ColorHelp           string `mapstructure:"color_help"`
	WorkGradientStart   string `mapstructure:"work_gradient_start"`
	WorkGradientEnd     string `mapstructure:"work_gradient_end"`
	BreakGradientStart  string `mapstructure:"break_gradient_start"`
	BreakGradientEnd    string `mapstructure:"break_gradient_end"`
	PausedGradientStart string `mapstructure:"paused_gradient_start"`
	PausedGradientEnd   string `mapstructure:"paused_gradient_end"`
	IconApp             string `mapstructure:"icon_app"`
	IconTask            string `mapstructure:"icon_task"`
	IconPaused          string `mapstructure:"icon_paused"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorWork:           "#E8574A",
		ColorBreak:          "#4ECDC4",
		ColorLongBreak:      "#7C6FE0",
		ColorPaused:         "#6B7280",
		ColorTitle:          "#6B7280",
		ColorTask:           "#A0AEC0",
		ColorHelp:           "#95A5A6",
		WorkGradientStart:   "#E8574A",
		WorkGradientEnd:     "#F5A623",
		BreakGradientStart:  "#4ECDC4",
		BreakGradientEnd:    "#2ECC71",
		PausedGradientStart: "#6B7280",
		PausedGradientEnd:   "#4B5563",
		IconApp:             "🍅",
		IconTask:            "📋",
		IconPaused:          "⏸",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Minutes returns the duration in whole minutes.
func (d Duration) Minutes() int {
	return int(time.Duration(d) / time.Minute)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	s := domain.DefaultSettings()
	return &Config{
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Defaults: DefaultsConfig{
			WorkDuration:       Duration(time.Duration(s.WorkDuration) * time.Minute),
			ShortBreak:         Duration(time.Duration(s.BreakDuration) * time.Minute),
			LongBreak:          Duration(time.Duration(s.LongBreakDuration) * time.Minute),
			SessionsBeforeLong: s.PomodorosUntilLongBreak,
			SoundVolume:        s.SoundVolume,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		Timer: TimerConfig{
			TickInterval: Duration(time.Second),
		},
		Log: LogConfig{
			MaxSizeMB: 5,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file, creating it
// with defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath. A file that cannot be
// parsed is ignored and the defaults are used.
func LoadFrom(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		v = newViper(configPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		cfg = *DefaultConfig()
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(dataDir, "pomo.log")
	}
	if cfg.Timer.TickInterval <= 0 {
		cfg.Timer.TickInterval = Duration(time.Second)
	}

	return &cfg, nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	setDefaults(v)
	return v
}

func expandHome(dir string) (string, error) {
	if dir == "" {
		dir = defaultDataDir
	}
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(dir, "~")), nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes cfg to configPath.
func SaveTo(configPath string, cfg *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("defaults.work_duration", cfg.Defaults.WorkDuration.String())
	v.Set("defaults.short_break", cfg.Defaults.ShortBreak.String())
	v.Set("defaults.long_break", cfg.Defaults.LongBreak.String())
	v.Set("defaults.sessions_before_long", cfg.Defaults.SessionsBeforeLong)
	v.Set("defaults.auto_start_breaks", cfg.Defaults.AutoStartBreaks)
	v.Set("defaults.auto_start_pomodoros", cfg.Defaults.AutoStartPomodoros)
	v.Set("defaults.sound_volume", cfg.Defaults.SoundVolume)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("timer.tick_interval", cfg.Timer.TickInterval.String())
	v.Set("log.file", cfg.Log.File)
	v.Set("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.Set("mcp.enabled", cfg.MCP.Enabled)

	t := cfg.Theme
	v.Set("theme.color_work", t.ColorWork)
	v.Set("theme.color_break", t.ColorBreak)
	v.Set("theme.color_long_break", t.ColorLongBreak)
	v.Set("theme.color_paused", t.ColorPaused)
	v.Set("theme.color_title", t.ColorTitle)
	v.Set("theme.color_task", t.ColorTask)
	v.Set("theme.color_help", t.ColorHelp)
	v.Set("theme.work_gradient_start", t.WorkGradientStart)
	v.Set("theme.work_gradient_end", t.WorkGradientEnd)
	v.Set("theme.break_gradient_start", t.BreakGradientStart)
	v.Set("theme.break_gradient_end", t.BreakGradientEnd)
	v.Set("theme.paused_gradient_start", t.PausedGradientStart)
	v.Set("theme.paused_gradient_end", t.PausedGradientEnd)
	v.Set("theme.icon_app", t.IconApp)
	v.Set("theme.icon_task", t.IconTask)
	v.Set("theme.icon_paused", t.IconPaused)

	return v.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pomo", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "pomo.db")
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("defaults.work_duration", d.Defaults.WorkDuration.String())
	v.SetDefault("defaults.short_break", d.Defaults.ShortBreak.String())
	v.SetDefault("defaults.long_break", d.Defaults.LongBreak.String())
	v.SetDefault("defaults.sessions_before_long", d.Defaults.SessionsBeforeLong)
	v.SetDefault("defaults.auto_start_breaks", false)
	v.SetDefault("defaults.auto_start_pomodoros", false)
	v.SetDefault("defaults.sound_volume", d.Defaults.SoundVolume)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.sound", true)
	v.SetDefault("timer.tick_interval", "1s")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("mcp.enabled", true)

	// Theme defaults
	t := DefaultThemeConfig()
	v.SetDefault("theme.color_work", t.ColorWork)
	v.SetDefault("theme.color_break", t.ColorBreak)
	v.SetDefault("theme.color_long_break", t.ColorLongBreak)
	v.SetDefault("theme.color_paused", t.ColorPaused)
	v.SetDefault("theme.color_title", t.ColorTitle)
	v.SetDefault("theme.color_task", t.ColorTask)
	v.SetDefault("theme.color_help", t.ColorHelp)
	v.SetDefault("theme.work_gradient_start", t.WorkGradientStart)
	v.SetDefault("theme.work_gradient_end", t.WorkGradientEnd)
	v.SetDefault("theme.break_gradient_start", t.BreakGradientStart)
	v.SetDefault("theme.break_gradient_end", t.BreakGradientEnd)
	v.SetDefault("theme.paused_gradient_start", t.PausedGradientStart)
	v.SetDefault("theme.paused_gradient_end", t.PausedGradientEnd)
	v.SetDefault("theme.icon_app", t.IconApp)
	v.SetDefault("theme.icon_task", t.IconTask)
	v.SetDefault("theme.icon_paused", t.IconPaused)
}

// SeedSettings converts the [defaults] and [notifications] sections into
// the settings used on first run. Out-of-range values are replaced by the
// built-in defaults.
func (c *Config) SeedSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.WorkDuration = c.Defaults.WorkDuration.Minutes()
	s.BreakDuration = c.Defaults.ShortBreak.Minutes()
	s.LongBreakDuration = c.Defaults.LongBreak.Minutes()
	s.PomodorosUntilLongBreak = c.Defaults.SessionsBeforeLong
	s.AutoStartBreaks = c.Defaults.AutoStartBreaks
	s.AutoStartPomodoros = c.Defaults.AutoStartPomodoros
	s.SoundVolume = c.Defaults.SoundVolume
	s.SoundEnabled = c.Notifications.Sound
	s.NotificationsEnabled = c.Notifications.Enabled
	return s.Normalize(domain.DefaultSettings())
}
