package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/search"
	"github.com/nikbrunner/sbm/internal/tui/layout"
)

// App is the main bubbletea model for browsing the collection.
type App struct {
	store        *model.Store
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	mode      Mode
	cursor    int
	items     []Item
	filter    FilterState
	selection SelectionState
	move      MoveState
	modal     ModalState

	// For gg command
	lastKeyWasG bool

	dirty  bool
	status string

	copy func(string) error
	open func(string) error

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store  *model.Store
	Keys   *KeyMap // optional, uses default if nil
	Styles *Styles // optional, uses default if nil

	// Clipboard and Open default to the system clipboard and browser.
	Clipboard func(string) error
	Open      func(string) error
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	openFn := params.Open
	if openFn == nil {
		openFn = OpenURL
	}
	store := params.Store
	if store == nil {
		store = model.NewStore()
	}

	cfg := layout.DefaultConfig()
	app := App{
		store:        store,
		keys:         keys,
		styles:       styles,
		layoutConfig: cfg,
		filter:       NewFilterState(cfg),
		selection:    NewSelectionState(),
		move:         NewMoveState(cfg),
		modal:        NewModalState(cfg),
		copy:         copyFn,
		open:         openFn,
		width:        100,
		height:       30,
	}
	app.refreshItems()
	return app
}

// Store returns the (possibly modified) store.
func (a App) Store() *model.Store { return a.store }

// Dirty reports whether the store was changed and needs saving.
func (a App) Dirty() bool { return a.dirty }

// Cursor returns the current cursor position.
func (a App) Cursor() int { return a.cursor }

// Items returns the bookmarks currently listed.
func (a App) Items() []Item { return a.items }

// Mode returns the current interaction mode.
func (a App) Mode() Mode { return a.mode }

// Status returns the last status message.
func (a App) Status() string { return a.status }

// SelectedCount returns the number of selected bookmarks.
func (a App) SelectedCount() int { return a.selection.Count() }

// refreshItems rebuilds the list from the store and the active filters.
func (a *App) refreshItems() {
	q := search.Query{
		Text:     a.filter.Query,
		Category: a.filter.Category(),
		Folder:   a.filter.Folder(a.store.AllFolders()),
	}
	matches := search.Filter(a.store, q)

	a.items = make([]Item, len(matches))
	for i, b := range matches {
		a.items[i] = Item{Bookmark: b}
	}
	if a.cursor >= len(a.items) {
		a.cursor = len(a.items) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) current() *Item {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return nil
	}
	return &a.items[a.cursor]
}

// targetIDs returns the selection, or the bookmark under the cursor.
func (a App) targetIDs() []string {
	if a.selection.HasSelection() {
		ids := make([]string, 0, a.selection.Count())
		for _, it := range a.items {
			if a.selection.IsSelected(it.ID()) {
				ids = append(ids, it.ID())
			}
		}
		return ids
	}
	if it := a.current(); it != nil {
		return []string{it.ID()}
	}
	return nil
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

type statusMsg string

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case statusMsg:
		a.status = string(msg)
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeFilter:
			return a.updateFilter(msg)
		case ModeConfirmDelete:
			return a.updateConfirmDelete(msg)
		case ModeMove:
			return a.updateMove(msg)
		case ModeEditTags:
			return a.updateEditTags(msg)
		case ModeHelp:
			a.mode = ModeNormal
			return a, nil
		}
		return a.updateNormal(msg)
	}
	return a, nil
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.lastKeyWasG = false
			a.moveCursor(0)
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.items)-1 {
			a.moveCursor(a.cursor + 1)
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.moveCursor(a.cursor - 1)
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(a.items) > 0 {
			a.moveCursor(len(a.items) - 1)
		}

	case key.Matches(msg, a.keys.CycleCategory):
		a.filter.NextCategory()
		a.selection.Reset()
		a.cursor = 0
		a.refreshItems()

	case key.Matches(msg, a.keys.CycleFolder):
		a.filter.NextFolder(a.store.AllFolders())
		a.selection.Reset()
		a.cursor = 0
		a.refreshItems()

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.filter.Input.SetValue(a.filter.Query)
		a.filter.Input.CursorEnd()
		return a, a.filter.Input.Focus()

	case key.Matches(msg, a.keys.Select):
		if it := a.current(); it != nil {
			a.selection.VisualMode = false
			a.selection.Toggle(it.ID())
		}

	case key.Matches(msg, a.keys.Visual):
		if a.selection.VisualMode {
			a.selection.VisualMode = false
			a.selection.AnchorIndex = -1
		} else if len(a.items) > 0 {
			a.selection.VisualMode = true
			a.selection.AnchorIndex = a.cursor
			a.selection.SelectRange(a.items, a.cursor, a.cursor)
		}

	case key.Matches(msg, a.keys.Cancel):
		a.selection.Reset()
		if a.filter.Query != "" {
			a.filter.Query = ""
			a.refreshItems()
		}

	case key.Matches(msg, a.keys.Delete):
		ids := a.targetIDs()
		if len(ids) == 0 {
			return a, nil
		}
		a.modal.ResetInputs()
		a.modal.DeleteIDs = ids
		a.mode = ModeConfirmDelete

	case key.Matches(msg, a.keys.Move):
		ids := a.targetIDs()
		if len(ids) == 0 {
			return a, nil
		}
		a.move.Reset()
		a.move.IDs = ids
		a.move.Folders = a.store.AllFolders()
		a.move.ApplyFilter()
		a.mode = ModeMove
		return a, a.move.FilterInput.Focus()

	case key.Matches(msg, a.keys.EditTags):
		it := a.current()
		if it == nil {
			return a, nil
		}
		a.modal.ResetInputs()
		a.modal.EditItemID = it.ID()
		a.modal.TagsInput.SetValue(strings.Join(it.Bookmark.Tags, ", "))
		a.modal.TagsInput.CursorEnd()
		a.mode = ModeEditTags
		return a, a.modal.TagsInput.Focus()

	case key.Matches(msg, a.keys.YankURL):
		it := a.current()
		if it == nil {
			return a, nil
		}
		if err := a.copy(it.Bookmark.URL); err != nil {
			a.status = "Copy failed: " + err.Error()
		} else {
			a.status = "Copied " + it.Bookmark.URL
		}

	case key.Matches(msg, a.keys.Open):
		it := a.current()
		if it == nil {
			return a, nil
		}
		url, open := it.Bookmark.URL, a.open
		return a, func() tea.Msg {
			if err := open(url); err != nil {
				return statusMsg("Open failed: " + err.Error())
			}
			return statusMsg("Opened " + url)
		}

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}
	return a, nil
}

// moveCursor sets the cursor and extends the visual range.
func (a *App) moveCursor(to int) {
	a.cursor = to
	if a.selection.VisualMode {
		a.selection.SelectRange(a.items, a.selection.AnchorIndex, a.cursor)
	}
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.filter.Input.Blur()
		a.filter.Input.Reset()
		a.filter.Query = ""
		a.mode = ModeNormal
		a.refreshItems()
		return a, nil
	case tea.KeyEnter:
		a.filter.Input.Blur()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.filter.Input, cmd = a.filter.Input.Update(msg)
	a.filter.Query = a.filter.Input.Value()
	a.selection.Reset()
	a.cursor = 0
	a.refreshItems()
	return a, cmd
}

func (a App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm), msg.String() == "y":
		removed := a.store.DeleteBookmarks(a.modal.DeleteIDs...)
		if removed > 0 {
			a.dirty = true
		}
		a.status = fmt.Sprintf("Deleted %d %s", removed, plural(removed, "bookmark"))
		a.selection.Reset()
		a.modal.ResetInputs()
		a.mode = ModeNormal
		a.refreshItems()
	case key.Matches(msg, a.keys.Cancel), msg.String() == "n":
		a.modal.ResetInputs()
		a.mode = ModeNormal
	}
	return a, nil
}

func (a App) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.move.FilterInput.Blur()
		a.move.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyUp, tea.KeyCtrlK, tea.KeyCtrlP:
		if a.move.FolderIdx > 0 {
			a.move.FolderIdx--
		}
		return a, nil

	case tea.KeyDown, tea.KeyCtrlJ, tea.KeyCtrlN:
		if a.move.FolderIdx < len(a.move.Filtered)-1 {
			a.move.FolderIdx++
		}
		return a, nil

	case tea.KeyEnter:
		folder := a.move.Selected()
		if folder == nil {
			return a, nil
		}
		moved, err := a.store.MoveBookmarks(a.move.IDs, folder.ID)
		if err != nil {
			a.status = "Move failed: " + err.Error()
		} else {
			if moved > 0 {
				a.dirty = true
			}
			a.status = fmt.Sprintf("Moved %d %s to %s", moved, plural(moved, "bookmark"), folder.Label())
		}
		a.move.FilterInput.Blur()
		a.move.Reset()
		a.selection.Reset()
		a.mode = ModeNormal
		a.refreshItems()
		return a, nil
	}

	var cmd tea.Cmd
	a.move.FilterInput, cmd = a.move.FilterInput.Update(msg)
	a.move.ApplyFilter()
	return a, cmd
}

func (a App) updateEditTags(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.modal.TagsInput.Blur()
		a.modal.ResetInputs()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyEnter:
		tags := model.ParseTags(a.modal.TagsInput.Value())
		if err := a.store.SetTags(a.modal.EditItemID, tags); err != nil {
			a.status = "Tagging failed: " + err.Error()
		} else {
			a.dirty = true
			a.status = fmt.Sprintf("Tagged with %d %s", len(tags), plural(len(tags), "tag"))
		}
		a.modal.TagsInput.Blur()
		a.modal.ResetInputs()
		a.mode = ModeNormal
		a.refreshItems()
		return a, nil
	}

	var cmd tea.Cmd
	a.modal.TagsInput, cmd = a.modal.TagsInput.Update(msg)
	return a, cmd
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
