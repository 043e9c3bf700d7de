package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/picker"
	"github.com/nikbrunner/sbm/internal/search"
	"github.com/nikbrunner/sbm/internal/tui"
)

// runTUI opens the full-screen browser and saves the store when it was
// changed.
func (a *app) runTUI(ctx context.Context) error {
	return a.update(ctx, func(store *model.Store) (bool, error) {
		app := tui.NewApp(tui.AppParams{Store: store})
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
		finalModel, err := p.Run()
		if err != nil {
			return false, fmt.Errorf("failed to run app: %w", err)
		}

		finalApp := finalModel.(tui.App)
		*store = *finalApp.Store()
		return finalApp.Dirty(), nil
	})
}

// runQuickSearch fuzzy-matches titles and opens the chosen bookmark. A
// single match opens directly.
func (a *app) runQuickSearch(cmd *cobra.Command, query string) error {
	return a.view(cmd.Context(), func(store *model.Store) error {
		results := search.FuzzySearchBookmarks(store, query)
		if len(results) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No bookmarks found for '%s'\n", query)
			return nil
		}

		var selected *model.Bookmark
		if len(results) == 1 {
			selected = results[0].Bookmark
		} else {
			p := tea.NewProgram(picker.New(results, query), tea.WithContext(cmd.Context()))
			finalModel, err := p.Run()
			if err != nil {
				return fmt.Errorf("failed to run picker: %w", err)
			}
			finalPicker := finalModel.(picker.Picker)
			if finalPicker.Cancelled() {
				return nil
			}
			selected = finalPicker.SelectedBookmark()
		}
		if selected == nil {
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", selected.Title)
		return tui.OpenURL(selected.URL)
	})
}
