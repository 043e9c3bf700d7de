package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// VisibleLength returns the display width of s, ignoring ANSI codes and
// counting wide runes such as emoji as two cells.
func VisibleLength(s string) int {
	return lipgloss.Width(s)
}

// TruncateText shortens text to maxWidth display cells, ending in the
// ellipsis. Returns the text and whether it was cut.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text, false
	}
	if runewidth.StringWidth(cfg.Ellipsis) >= maxWidth {
		return runewidth.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return runewidth.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// TruncateWithPrefixSuffix truncates text while keeping prefix and suffix,
// e.g. ("Development", 12, "📁 ", "/") -> "📁 Develo…/".
func TruncateWithPrefixSuffix(text string, maxWidth int, prefix, suffix string, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	combined := prefix + text + suffix
	if runewidth.StringWidth(combined) <= maxWidth {
		return combined, false
	}

	room := maxWidth - runewidth.StringWidth(prefix) - runewidth.StringWidth(suffix)
	if room <= runewidth.StringWidth(cfg.Ellipsis) {
		return TruncateText(combined, maxWidth, cfg)
	}
	body, _ := TruncateText(text, room, cfg)
	return prefix + body + suffix, true
}

// PadRight fills s with spaces up to width display cells.
func PadRight(s string, width int) string {
	if gap := width - VisibleLength(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
