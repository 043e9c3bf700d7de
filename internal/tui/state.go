package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/tui/layout"
)

// Mode is the current interaction mode of the app.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeConfirmDelete
	ModeMove
	ModeEditTags
	ModeHelp
)

// FilterState holds the category, folder and text filters of the list.
type FilterState struct {
	Input       textinput.Model
	Query       string // applied text filter
	CategoryIdx int    // 0 = all, else model.Categories[i-1]
	FolderIdx   int    // 0 = all, else folders[i-1]
}

// NewFilterState creates a FilterState with an initialized input.
func NewFilterState(cfg layout.LayoutConfig) FilterState {
	input := textinput.New()
	input.Placeholder = "Filter..."
	input.CharLimit = cfg.Input.FilterCharLimit
	input.Width = cfg.Input.StandardWidth
	return FilterState{Input: input}
}

// Category returns the active category filter, "" for all.
func (f FilterState) Category() model.Category {
	if f.CategoryIdx == 0 {
		return ""
	}
	return model.Categories[f.CategoryIdx-1]
}

// NextCategory advances the category filter, wrapping to "all".
func (f *FilterState) NextCategory() {
	f.CategoryIdx = (f.CategoryIdx + 1) % (len(model.Categories) + 1)
}

// Folder returns the active folder filter, "" for all.
func (f FilterState) Folder(folders []model.Folder) string {
	if f.FolderIdx == 0 || f.FolderIdx > len(folders) {
		return ""
	}
	return folders[f.FolderIdx-1].ID
}

// NextFolder advances the folder filter, wrapping to "all".
func (f *FilterState) NextFolder(folders []model.Folder) {
	f.FolderIdx = (f.FolderIdx + 1) % (len(folders) + 1)
}

// MoveState holds the folder picker used to move bookmarks.
type MoveState struct {
	FilterInput textinput.Model
	Folders     []model.Folder // all folders
	Filtered    []model.Folder // folders matching the filter input
	FolderIdx   int            // selected index in Filtered
	IDs         []string       // bookmarks to move
}

// NewMoveState creates a new MoveState with initialized input.
func NewMoveState(cfg layout.LayoutConfig) MoveState {
	input := textinput.New()
	input.Placeholder = "Filter folders..."
	input.CharLimit = cfg.Input.FolderCharLimit
	input.Width = cfg.Input.StandardWidth
	return MoveState{FilterInput: input}
}

// Reset clears the move state for a new session.
func (m *MoveState) Reset() {
	m.FilterInput.Reset()
	m.Folders = nil
	m.Filtered = nil
	m.FolderIdx = 0
	m.IDs = nil
}

// ApplyFilter narrows Filtered to folders whose name contains the input.
func (m *MoveState) ApplyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.FilterInput.Value()))
	filtered := make([]model.Folder, 0, len(m.Folders))
	for _, f := range m.Folders {
		if query == "" || strings.Contains(strings.ToLower(f.Name), query) {
			filtered = append(filtered, f)
		}
	}
	m.Filtered = filtered
	if m.FolderIdx >= len(m.Filtered) {
		m.FolderIdx = 0
	}
}

// Selected returns the highlighted folder, or nil if none match.
func (m *MoveState) Selected() *model.Folder {
	if m.FolderIdx < 0 || m.FolderIdx >= len(m.Filtered) {
		return nil
	}
	return &m.Filtered[m.FolderIdx]
}

// ModalState holds state for the tag editor and delete confirmation.
type ModalState struct {
	TagsInput  textinput.Model
	EditItemID string   // bookmark whose tags are edited
	DeleteIDs  []string // bookmarks awaiting delete confirmation
}

// NewModalState creates a new ModalState with initialized inputs.
func NewModalState(cfg layout.LayoutConfig) ModalState {
	tagsInput := textinput.New()
	tagsInput.Placeholder = "tag1, tag2, tag3"
	tagsInput.CharLimit = cfg.Input.TagsCharLimit
	tagsInput.Width = cfg.Input.StandardWidth
	return ModalState{TagsInput: tagsInput}
}

// ResetInputs clears all modal inputs for a new modal session.
func (m *ModalState) ResetInputs() {
	m.TagsInput.Reset()
	m.EditItemID = ""
	m.DeleteIDs = nil
}

// SelectionState holds state for multi-select and visual mode.
type SelectionState struct {
	Selected    map[string]bool // bookmark IDs that are selected
	VisualMode  bool            // true while in visual line mode (V key)
	AnchorIndex int             // anchor of the visual range, -1 when unset
}

// NewSelectionState creates an empty SelectionState.
func NewSelectionState() SelectionState {
	return SelectionState{
		Selected:    make(map[string]bool),
		AnchorIndex: -1,
	}
}

// Reset clears all selection state.
func (s *SelectionState) Reset() {
	s.Selected = make(map[string]bool)
	s.VisualMode = false
	s.AnchorIndex = -1
}

// Toggle adds or removes a bookmark from the selection.
func (s *SelectionState) Toggle(id string) {
	if s.Selected[id] {
		delete(s.Selected, id)
	} else {
		s.Selected[id] = true
	}
}

// SelectRange replaces the selection with items[from..to], inclusive.
func (s *SelectionState) SelectRange(items []Item, from, to int) {
	if from > to {
		from, to = to, from
	}
	s.Selected = make(map[string]bool)
	for i := from; i <= to && i < len(items); i++ {
		if i >= 0 {
			s.Selected[items[i].ID()] = true
		}
	}
}

// IsSelected returns true if the bookmark ID is selected.
func (s *SelectionState) IsSelected(id string) bool {
	return s.Selected[id]
}

// Count returns the number of selected bookmarks.
func (s *SelectionState) Count() int {
	return len(s.Selected)
}

// HasSelection returns true if any bookmarks are selected.
func (s *SelectionState) HasSelection() bool {
	return len(s.Selected) > 0
}
