package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/tui/layout"
)

// renderView draws the header, list and detail panes and the help bar, or
// the active modal.
func (a App) renderView() string {
	switch a.mode {
	case ModeConfirmDelete, ModeMove, ModeEditTags, ModeHelp:
		return a.renderModal()
	}

	listHeight := layout.CalculateListHeight(a.height, a.layoutConfig.List)
	split := layout.CalculateSplit(a.width, a.layoutConfig.List)

	columns := a.renderList(split.ListWidth, listHeight)
	if split.DetailWidth > 0 {
		columns = lipgloss.JoinHorizontal(lipgloss.Top, columns, a.renderDetail(split.DetailWidth, listHeight))
	}

	content := a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		columns,
		a.renderStatus(),
		a.renderHints(a.normalHints()),
	))
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) renderHeader() string {
	title := a.styles.Title.Render("sbm")
	count := fmt.Sprintf("%d of %d bookmarks", len(a.items), len(a.store.Bookmarks))

	filters := []string{"category: " + a.categoryLabel(), "folder: " + a.folderLabel()}
	if a.mode == ModeFilter {
		filters = append(filters, "/"+a.filter.Input.View())
	} else if a.filter.Query != "" {
		filters = append(filters, "/"+a.filter.Query)
	}
	return title + "  " + a.styles.Subtitle.Render(count) + "\n" +
		a.styles.Filter.Render(strings.Join(filters, "  "))
}

func (a App) categoryLabel() string {
	c := a.filter.Category()
	if c == "" {
		return "all"
	}
	return classify.Icon(c) + " " + string(c)
}

func (a App) folderLabel() string {
	id := a.filter.Folder(a.store.AllFolders())
	if id == "" {
		return "all"
	}
	return a.store.FolderLabel(id)
}

func (a App) renderList(width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.List)

	if len(a.items) == 0 {
		msg := "No bookmarks yet."
		if len(a.store.Bookmarks) > 0 {
			msg = "No bookmarks match the current filters."
		}
		content.WriteString(a.styles.Empty.Render(msg))
	} else {
		visible := layout.CalculateVisibleRows(height, a.layoutConfig.List.RowHeight)
		offset := layout.CalculateViewportOffset(a.cursor, len(a.items), visible)
		for i := offset; i < len(a.items) && i < offset+visible; i++ {
			content.WriteString(a.renderItem(a.items[i], i == a.cursor, itemWidth))
			content.WriteString("\n")
		}
	}

	return a.styles.PaneActive.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderItem draws a two-line row: marker and title, then the subtitle.
func (a App) renderItem(it Item, atCursor bool, width int) string {
	marker := "  "
	if a.selection.IsSelected(it.ID()) {
		marker = "● "
	}
	title, _ := layout.TruncateWithPrefixSuffix(it.Title(), width, marker, "", a.layoutConfig.Text)
	subtitle, _ := layout.TruncateText(it.Subtitle(a.store), width-2, a.layoutConfig.Text)

	line := layout.PadRight(title, width)
	switch {
	case atCursor:
		line = a.styles.ItemCursor.Render(line)
	case a.selection.IsSelected(it.ID()):
		line = a.styles.ItemSelected.Render(line)
	default:
		line = a.styles.Item.Render(line)
	}
	return line + "\n  " + a.styles.Subtitle.Render(subtitle)
}

func (a App) renderDetail(width, height int) string {
	var content strings.Builder
	it := a.current()
	if it == nil {
		content.WriteString(a.styles.Empty.Render("Nothing selected"))
	} else {
		b := it.Bookmark
		textWidth := layout.CalculateItemWidth(width, a.layoutConfig.List)
		wrap := lipgloss.NewStyle().Width(textWidth)

		content.WriteString(a.styles.Title.Render(wrap.Render(b.Title)) + "\n")
		url, _ := layout.TruncateText(b.URL, textWidth, a.layoutConfig.Text)
		content.WriteString(a.styles.URL.Render(url) + "\n\n")

		row := func(label, value string) {
			if value != "" {
				content.WriteString(a.styles.Label.Render(label) + value + "\n")
			}
		}
		row("Category", classify.Icon(b.Category)+" "+string(b.Category))
		row("Platform", b.Platform)
		row("Folder", a.store.FolderLabel(b.FolderID))
		row("Tags", strings.Join(b.Tags, ", "))
		row("Saved", b.CreatedAt().Local().Format(time.DateTime))

		if m := b.Metadata; !m.IsEmpty() {
			content.WriteString("\n")
			row("Author", m.Author)
			row("Channel", m.Channel)
			row("User", m.Username)
			row("Duration", m.Duration)
			row("Views", m.ViewCount)
			if m.Description != "" {
				content.WriteString("\n" + a.styles.Subtitle.Render(wrap.Render(m.Description)))
			}
		}
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderStatus() string {
	var parts []string
	if n := a.selection.Count(); n > 0 {
		s := fmt.Sprintf("%d selected", n)
		if a.selection.VisualMode {
			s = "-- VISUAL -- " + s
		}
		parts = append(parts, s)
	}
	if a.status != "" {
		parts = append(parts, a.status)
	}
	return a.styles.Status.Render(strings.Join(parts, "  ·  "))
}

// renderModal renders the current modal dialog centered on screen.
func (a App) renderModal() string {
	var body strings.Builder
	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal.DefaultWidthPercent, a.layoutConfig.Modal)

	switch a.mode {
	case ModeConfirmDelete:
		n := len(a.modal.DeleteIDs)
		body.WriteString(a.styles.Warning.Render(fmt.Sprintf("Delete %d %s?", n, plural(n, "bookmark"))) + "\n\n")
		for i, id := range a.modal.DeleteIDs {
			if i == 5 {
				body.WriteString(a.styles.Subtitle.Render(fmt.Sprintf("…and %d more", n-5)) + "\n")
				break
			}
			if b := a.store.GetBookmarkByID(id); b != nil {
				title, _ := layout.TruncateText(b.Title, modalWidth-6, a.layoutConfig.Text)
				body.WriteString("  " + title + "\n")
			}
		}
		body.WriteString("\n" + a.renderHintsInline([]Hint{{"y/enter", "delete"}, {"n/esc", "cancel"}}))

	case ModeMove:
		n := len(a.move.IDs)
		body.WriteString(a.styles.Title.Render(fmt.Sprintf("Move %d %s to", n, plural(n, "bookmark"))) + "\n\n")
		body.WriteString(a.move.FilterInput.View() + "\n\n")
		if len(a.move.Filtered) == 0 {
			body.WriteString(a.styles.Empty.Render("No matching folders") + "\n")
		}
		start, end := layout.CalculateVisibleListItems(a.layoutConfig.Modal.MoveMaxVisible, a.move.FolderIdx, len(a.move.Filtered))
		for i := start; i < end; i++ {
			line := "  " + a.move.Filtered[i].Label()
			if i == a.move.FolderIdx {
				line = a.styles.ItemCursor.Render("> " + a.move.Filtered[i].Label())
			}
			body.WriteString(line + "\n")
		}
		body.WriteString("\n" + a.renderHintsInline([]Hint{{"↑/↓", "choose"}, {"enter", "move"}, {"esc", "cancel"}}))

	case ModeEditTags:
		title := ""
		if b := a.store.GetBookmarkByID(a.modal.EditItemID); b != nil {
			title, _ = layout.TruncateText(b.Title, modalWidth-6, a.layoutConfig.Text)
		}
		body.WriteString(a.styles.Title.Render("Edit tags") + "\n")
		body.WriteString(a.styles.Subtitle.Render(title) + "\n\n")
		body.WriteString(a.modal.TagsInput.View() + "\n\n")
		body.WriteString(a.renderHintsInline([]Hint{{"enter", "save"}, {"esc", "cancel"}}))

	case ModeHelp:
		body.WriteString(a.styles.Title.Render("Keys") + "\n")
		for _, section := range a.helpSections() {
			body.WriteString("\n" + a.styles.Subtitle.Render(section.Title) + "\n")
			for _, h := range section.Hints {
				body.WriteString(a.styles.Label.Render(h.Key) + h.Desc + "\n")
			}
		}
		body.WriteString("\n" + a.styles.Empty.Render("any key to close"))
	}

	modal := a.styles.Modal.Width(modalWidth).Render(strings.TrimRight(body.String(), "\n"))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}
