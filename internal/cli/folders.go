package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/sbm/internal/model"
)

func (a *app) folderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}

	var emoji string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				if existing := store.GetFolderByName(args[0]); existing != nil {
					return false, fmt.Errorf("folder %q already exists", existing.Name)
				}
				f := model.NewFolder(model.NewFolderParams{Name: args[0], Emoji: emoji})
				if err := store.AddFolder(f); err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (%s)\n", f.Label(), shortID(f.ID))
				return true, nil
			})
		},
	}
	add.Flags().StringVarP(&emoji, "emoji", "e", "", "folder icon (default 📁)")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List built-in and user folders with bookmark counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd.Context(), func(store *model.Store) error {
				counts := make(map[string]int)
				for _, b := range store.Bookmarks {
					counts[b.FolderID]++
				}
				t := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("ID", "FOLDER", "BOOKMARKS")
				for _, f := range store.AllFolders() {
					t.Row(shortID(f.ID), f.Label(), fmt.Sprint(counts[f.ID]))
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.String())
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
