package cli

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/exporter"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/search"
	"github.com/nikbrunner/sbm/internal/tui/layout"
)

const listTitleWidth = 48

// enricher returns the page fetcher configured by the fetch section.
func (a *app) enricher() *capture.HTTPEnricher {
	e := capture.NewHTTPEnricher(&http.Client{Timeout: a.cfg.Fetch.Timeout})
	if ua := a.cfg.Fetch.UserAgent; ua != "" {
		e.UserAgent = ua
	}
	return e
}

type addFlags struct {
	title    string
	category string
	folder   string
	tags     string
	noFetch  bool
	force    bool
}

func (a *app) addCmd() *cobra.Command {
	f := new(addFlags)
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Save a bookmark, detecting its category and page details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				url := strings.TrimSpace(args[0])
				if store.HasBookmarkURL(url) && !f.force {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is already bookmarked (use --force to add it again)\n", url)
					return false, nil
				}

				form := capture.Form{Category: f.category, Tags: f.tags, Title: f.title}
				if f.folder != "" {
					folder, err := findFolder(store, f.folder)
					if err != nil {
						return false, err
					}
					form.Folder = folder.ID
				}
				if f.category != "" && f.category != capture.CategoryAuto {
					if _, err := model.ParseCategory(f.category); err != nil {
						return false, err
					}
				}

				settings := store.CurrentSettings()
				if f.noFetch {
					settings.AutoDetect = false
				}
				builder := capture.NewBuilder(a.enricher(), a.log)
				builder.Timeout = a.cfg.Fetch.EnrichTimeout

				b, err := builder.Build(cmd.Context(), capture.TabInfo{URL: url, Title: url}, form, settings)
				if err != nil {
					return false, err
				}
				store.AddBookmark(b)
				a.log.Info("bookmark added", logger.String("id", b.ID), logger.String("category", string(b.Category)))

				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s [%s · %s · %s]\n",
					classify.Icon(b.Category), b.Title, b.Category, b.Platform, store.FolderLabel(b.FolderID))
				return true, nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.title, "title", "t", "", "title (default: page title or URL)")
	flags.StringVar(&f.category, "category", capture.CategoryAuto, "video, image, audio, text or auto")
	flags.StringVarP(&f.folder, "folder", "f", "", "folder name or id")
	flags.StringVar(&f.tags, "tags", "", "comma-separated tags")
	flags.BoolVar(&f.noFetch, "no-fetch", false, "skip downloading the page for metadata")
	flags.BoolVar(&f.force, "force", false, "add even if the URL is already bookmarked")
	return cmd
}

type listFlags struct {
	category string
	folder   string
	tag      string
	query    string
	json     bool
}

func (a *app) listCmd() *cobra.Command {
	f := new(listFlags)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bookmarks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd.Context(), func(store *model.Store) error {
				q := search.Query{Text: f.query, Tag: f.tag}
				if f.category != "" {
					c, err := model.ParseCategory(f.category)
					if err != nil {
						return err
					}
					q.Category = c
				}
				if f.folder != "" {
					folder, err := findFolder(store, f.folder)
					if err != nil {
						return err
					}
					q.Folder = folder.ID
				}

				matches := search.Filter(store, q)
				out := cmd.OutOrStdout()
				if f.json {
					bookmarks := make([]model.Bookmark, len(matches))
					for i, b := range matches {
						bookmarks[i] = *b
					}
					return exporter.WriteJSON(out, bookmarks)
				}
				if len(matches) == 0 {
					fmt.Fprintln(out, "No bookmarks found.")
					return nil
				}
				fmt.Fprintln(out, bookmarkTable(store, matches))
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.category, "category", "", "only this category")
	flags.StringVarP(&f.folder, "folder", "f", "", "only this folder (name or id)")
	flags.StringVar(&f.tag, "tag", "", "only bookmarks with this tag")
	flags.StringVarP(&f.query, "query", "q", "", "text in title, URL, platform or tags")
	flags.BoolVar(&f.json, "json", false, "print JSON")
	return cmd
}

func bookmarkTable(store *model.Store, bookmarks []*model.Bookmark) string {
	text := layout.DefaultConfig().Text
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "CATEGORY", "PLATFORM", "FOLDER", "TAGS")
	for _, b := range bookmarks {
		title, _ := layout.TruncateText(b.Title, listTitleWidth, text)
		t.Row(
			shortID(b.ID),
			classify.Icon(b.Category)+" "+title,
			string(b.Category),
			b.Platform,
			store.FolderLabel(b.FolderID),
			strings.Join(b.Tags, ", "),
		)
	}
	return t.String()
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete bookmarks by id or id prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				ids, err := findBookmarkIDs(store, args)
				if err != nil {
					return false, err
				}
				n := store.DeleteBookmarks(ids...)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", plural(n, "bookmark"))
				return n > 0, nil
			})
		},
	}
}

func (a *app) mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <folder> <id>...",
		Short: "Move bookmarks into a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				folder, err := findFolder(store, args[0])
				if err != nil {
					return false, err
				}
				ids, err := findBookmarkIDs(store, args[1:])
				if err != nil {
					return false, err
				}
				n, err := store.MoveBookmarks(ids, folder.ID)
				if err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", plural(n, "bookmark"), folder.Label())
				return n > 0, nil
			})
		},
	}
}

func (a *app) tagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> [tags]",
		Short: "Replace a bookmark's tags (comma-separated, empty clears)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				b, err := findBookmark(store, args[0])
				if err != nil {
					return false, err
				}
				var input string
				if len(args) == 2 {
					input = args[1]
				}
				tags := model.ParseTags(input)
				if err := store.SetTags(b.ID, tags); err != nil {
					return false, err
				}
				if len(tags) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared tags of %s\n", b.Title)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s: %s\n", b.Title, strings.Join(tags, ", "))
				}
				return true, nil
			})
		},
	}
}
