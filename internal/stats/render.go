package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Width(18)
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	emptyStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

const barWidth = 30

// Render formats the summary for a terminal.
func Render(s Stats) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Overview") + "\n")
	fmt.Fprintf(&b, "%s%d\n", labelStyle.Render("Bookmarks"), s.Total)
	fmt.Fprintf(&b, "%s%d\n", labelStyle.Render("Folders"), s.Folders)
	for _, c := range model.Categories {
		label := classify.Icon(c) + " " + string(c)
		fmt.Fprintf(&b, "%s%d\n", labelStyle.Render(label), s.ByCategory[c])
	}

	b.WriteString("\n" + headingStyle.Render("Platforms") + "\n")
	writeCounts(&b, s.Platforms, "No platforms yet.")

	b.WriteString("\n" + headingStyle.Render("Top tags") + "\n")
	writeCounts(&b, s.Tags, "No tags yet.")

	b.WriteString("\n" + headingStyle.Render("Last 7 days") + "\n")
	if s.Total == 0 {
		b.WriteString(emptyStyle.Render("No activity yet.") + "\n")
		return b.String()
	}
	max := s.MaxActivity()
	for _, d := range s.Activity {
		filled := d.Count * barWidth / max
		bar := barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(&b, "%s%s %s\n", labelStyle.Render(d.Label), bar, countStyle.Render(fmt.Sprint(d.Count)))
	}
	return b.String()
}

func writeCounts(b *strings.Builder, counts []Count, empty string) {
	if len(counts) == 0 {
		b.WriteString(emptyStyle.Render(empty) + "\n")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(b, "%s%s\n", labelStyle.Render(c.Label), countStyle.Render(fmt.Sprint(c.Count)))
	}
}
