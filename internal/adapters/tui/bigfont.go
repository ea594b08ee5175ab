package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// digitMap holds the block glyph of every clock character.
var digitMap = map[rune][glyphRows]string{
	'0': {
		"████",
		"█  █",
		"█  █",
		"█  █",
		"████",
	},
	'1': {
		" █ ",
		"██ ",
		" █ ",
		" █ ",
		"███",
	},
	'2': {
		"████",
		"   █",
		"████",
		"█   ",
		"████",
	},
	'3': {
		"████",
		"   █",
		"████",
		"   █",
		"████",
	},
	'4': {
		"█  █",
		"█  █",
		"████",
		"   █",
		"   █",
	},
	'5': {
		"████",
		"█   ",
		"████",
		"   █",
		"████",
	},
	'6': {
		"████",
		"█   ",
		"████",
		"█  █",
		"████",
	},
	'7': {
		"████",
		"   █",
		"  █ ",
		" █  ",
		" █  ",
	},
	'8': {
		"████",
		"█  █",
		"████",
		"█  █",
		"████",
	},
	'9': {
		"████",
		"█  █",
		"████",
		"   █",
		"████",
	},
	':': {
		" ",
		"█",
		" ",
		"█",
		" ",
	},
}

// glyphRows is the height of every glyph in digitMap.
const glyphRows = 5

// minBigWidth is the narrowest terminal the big digits are drawn in.
const minBigWidth = 40

// renderBigTime renders a clock string like "24:59" with digitMap glyphs,
// one space between glyphs. Narrow terminals get a single bold line.
func renderBigTime(timeStr string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < minBigWidth {
		return style.Render(timeStr)
	}

	var rows [glyphRows][]string
	for _, ch := range timeStr {
		glyph, ok := digitMap[ch]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], glyph[i])
		}
	}

	styled := make([]string, glyphRows)
	for i, parts := range rows {
		styled[i] = style.Render(strings.Join(parts, " "))
	}
	return strings.Join(styled, "\n")
}
