package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Action []Hint
	Edit   []Hint
	System []Hint
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// normalHints are shown in the bottom bar while browsing.
func (a App) normalHints() HintSet {
	hs := HintSet{
		Nav:    []Hint{{"j/k", "move"}, {"tab", "category"}, {"f", "folder"}, {"/", "filter"}},
		Action: []Hint{{"o", "open"}, {"Y", "yank"}},
		Edit:   []Hint{{"space", "select"}, {"V", "visual"}, {"d", "delete"}, {"m", "move"}, {"t", "tags"}},
		System: []Hint{{"?", "help"}, {"q", "quit"}},
	}
	if a.selection.HasSelection() || a.filter.Query != "" {
		hs.System = append([]Hint{{"esc", "clear"}}, hs.System...)
	}
	return hs
}

// renderHints renders hints in horizontal format for the bottom bar: "j/k:move o:open"
func (a App) renderHints(hints HintSet) string {
	all := hints.All()
	parts := make([]string, len(all))
	for i, h := range all {
		parts[i] = a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// helpSections lists every binding for the help overlay.
func (a App) helpSections() []struct {
	Title string
	Hints []Hint
} {
	return []struct {
		Title string
		Hints []Hint
	}{
		{"Navigation", []Hint{{"j/k", "move down/up"}, {"gg/G", "top/bottom"}, {"tab", "cycle category"}, {"f", "cycle folder"}, {"/", "filter"}}},
		{"Selection", []Hint{{"space", "toggle"}, {"V", "visual range"}, {"esc", "clear"}}},
		{"Actions", []Hint{{"o/enter", "open in browser"}, {"Y", "copy URL"}, {"d", "delete"}, {"m", "move to folder"}, {"t", "edit tags"}}},
		{"Other", []Hint{{"?", "this help"}, {"q", "save and quit"}}},
	}
}
