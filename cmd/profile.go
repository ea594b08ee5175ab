package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show level, XP and recent rewards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := refreshGamification(ctx); err != nil {
			return err
		}

		profile, err := app.gamification.Profile(ctx)
		if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}
		history, err := app.gamification.XPHistory(ctx)
		if err != nil {
			return fmt.Errorf("failed to get XP history: %w", err)
		}
		unlocked, err := app.gamification.UnlockedAchievements(ctx)
		if err != nil {
			return fmt.Errorf("failed to get achievements: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"profile":      profile,
				"achievements": len(unlocked),
				"xp_history":   history,
			})
		}

		printProfile(cmd.OutOrStdout(), profile, len(unlocked), history)
		return nil
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and their progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := refreshGamification(ctx); err != nil {
			return err
		}

		achievements, err := app.gamification.Achievements(ctx)
		if err != nil {
			return fmt.Errorf("failed to get achievements: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), achievements)
		}
		printAchievements(cmd.OutOrStdout(), achievements)
		return nil
	},
}

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "Show today's challenges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := refreshGamification(ctx); err != nil {
			return err
		}

		challenges, err := app.gamification.ActiveChallenges(ctx)
		if err != nil {
			return fmt.Errorf("failed to get challenges: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), challenges)
		}
		printChallenges(cmd.OutOrStdout(), challenges, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd, achievementsCmd, challengesCmd)
}

// refreshGamification brings challenges and achievements up to date with
// the stored stats before they are shown.
func refreshGamification(ctx context.Context) error {
	summary, err := app.stats.Summary(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	today, err := app.stats.Today(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	if err := app.gamification.Refresh(ctx, summary, today); err != nil {
		return fmt.Errorf("failed to refresh rewards: %w", err)
	}
	return nil
}

func printProfile(w io.Writer, p domain.PlayerProfile, unlocked int, history []domain.XPGain) {
	theme := app.theme()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorLongBreak))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorPaused))

	fmt.Fprintf(w, "\n  %s\n", titleStyle.Render(fmt.Sprintf("Level %d · %s", p.Level, p.Title)))

	bar := progress.New(progress.WithGradient(theme.WorkGradientStart, theme.WorkGradientEnd))
	bar.Width = 40
	ratio := 0.0
	if p.XPToNextLevel > 0 {
		ratio = float64(p.CurrentXP) / float64(p.XPToNextLevel)
	}
	fmt.Fprintf(w, "  %s\n", bar.ViewAs(ratio))
	fmt.Fprintf(w, "  %d / %d XP to level %d · %d XP total\n", p.CurrentXP, p.XPToNextLevel, p.Level+1, p.TotalXP)
	fmt.Fprintf(w, "  %d achievements unlocked · member since %s\n", unlocked, p.JoinedAt.Format("Jan 2, 2006"))

	if len(history) == 0 {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "\n  %s\n", dimStyle.Render("Recent XP"))
	for i, g := range history {
		if i == 5 {
			break
		}
		fmt.Fprintf(w, "  +%-4d %s  %s\n", g.Amount, g.Reason, dimStyle.Render(g.Timestamp.Format("Jan 2 15:04")))
	}
	fmt.Fprintln(w)
}

func printAchievements(w io.Writer, achievements []domain.Achievement) {
	unlocked := 0
	for _, a := range achievements {
		if a.Unlocked() {
			unlocked++
		}
	}
	fmt.Fprintf(w, "🏆 Achievements (%d/%d):\n\n", unlocked, len(achievements))

	for _, a := range achievements {
		if a.Unlocked() {
			fmt.Fprintf(w, "%s %-14s %s  +%d XP (%s)\n", a.Icon, a.Name, a.Description, a.XPReward, a.UnlockedAt.Format("2006-01-02"))
			continue
		}
		fmt.Fprintf(w, "🔒 %-14s %s  %d/%d\n", a.Name, a.Description, min(a.Progress, a.MaxProgress), a.MaxProgress)
	}
}

func printChallenges(w io.Writer, challenges []domain.Challenge, now time.Time) {
	if len(challenges) == 0 {
		fmt.Fprintln(w, "All of today's challenges are done. New ones arrive tomorrow.")
		return
	}

	fmt.Fprintln(w, "🎯 Challenges:")
	for _, c := range challenges {
		left := c.ExpiresAt.Sub(now).Round(time.Minute)
		fmt.Fprintf(w, "%s %s: %s  %d/%d  +%d XP (%s left)\n",
			c.Icon, c.Name, c.Description, c.Progress, c.MaxProgress, c.XPReward, left)
	}
}
