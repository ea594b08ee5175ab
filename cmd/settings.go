package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change timer settings",
	Long: `Timer settings are stored in the database and read by the timer at
every transition, so changes apply from the next session on.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := app.settings.Current()
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), s)
		}
		printSettings(cmd.OutOrStdout(), s)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. Keys: ` + strings.Join(domain.SettingKeys, ", ") + `.
Invalid values are rejected and the previous value is kept.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := app.settings.Set(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to update setting: %w", err)
		}
		value, _ := s.Get(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s = %s\n", args[0], value)
		return nil
	},
}

var settingsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the settings in an interactive form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isInteractive() {
			return errors.New("settings edit needs a terminal; use settings set instead")
		}

		next, err := editSettings(app.settings.Current())
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if err := app.settings.Replace(cmd.Context(), next); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Settings saved.")
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.settings.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		printSettings(cmd.OutOrStdout(), app.settings.Current())
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsEditCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func printSettings(w io.Writer, s domain.Settings) {
	fmt.Fprintln(w, "⚙️  Settings:")
	for _, key := range domain.SettingKeys {
		value, _ := s.Get(key)
		fmt.Fprintf(w, "   %-28s %s\n", key, value)
	}
}

// editSettings runs the settings form over a copy of current. Every field
// goes through Settings.Set, so the result is valid when err is nil.
func editSettings(current domain.Settings) (domain.Settings, error) {
	numeric := map[string]*string{}
	for _, key := range []string{"work_duration", "break_duration", "long_break_duration", "pomodoros_until_long_break", "sound_volume"} {
		v, _ := current.Get(key)
		numeric[key] = &v
	}

	validate := func(key string) func(string) error {
		return func(raw string) error {
			probe := current
			return probe.Set(key, raw)
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(fmt.Sprintf("Focus (min, %d-%d)", domain.MinWorkDuration, domain.MaxWorkDuration)).
				Value(numeric["work_duration"]).Validate(validate("work_duration")),
			huh.NewInput().Title(fmt.Sprintf("Short break (min, %d-%d)", domain.MinBreakDuration, domain.MaxBreakDuration)).
				Value(numeric["break_duration"]).Validate(validate("break_duration")),
			huh.NewInput().Title(fmt.Sprintf("Long break (min, %d-%d)", domain.MinLongBreakDuration, domain.MaxLongBreakDuration)).
				Value(numeric["long_break_duration"]).Validate(validate("long_break_duration")),
			huh.NewInput().Title(fmt.Sprintf("Pomodoros until long break (%d-%d)", domain.MinUntilLongBreak, domain.MaxUntilLongBreak)).
				Value(numeric["pomodoros_until_long_break"]).Validate(validate("pomodoros_until_long_break")),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Start breaks automatically?").Value(&current.AutoStartBreaks),
			huh.NewConfirm().Title("Start pomodoros automatically?").Value(&current.AutoStartPomodoros),
			huh.NewConfirm().Title("Play sounds?").Value(&current.SoundEnabled),
			huh.NewInput().Title("Sound volume (0-1)").
				Value(numeric["sound_volume"]).Validate(validate("sound_volume")),
			huh.NewConfirm().Title("Desktop notifications?").Value(&current.NotificationsEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return current, err
	}

	next := current
	for key, raw := range numeric {
		if err := next.Set(key, *raw); err != nil {
			return current, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return next, nil
}

