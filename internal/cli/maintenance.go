package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/fetcher"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/stats"
)

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show counts per category, folder, platform and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd.Context(), func(store *model.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), stats.Render(stats.Compute(store, time.Now())))
				return nil
			})
		},
	}
}

// progress prints "label n/total" on one terminal line.
func progress(w io.Writer, label string) fetcher.ProgressFunc {
	return func(completed, total int) {
		fmt.Fprintf(w, "\r%s %d/%d", label, completed, total)
		if completed == total {
			fmt.Fprintln(w)
		}
	}
}

func (a *app) checkCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Find bookmarks whose pages are gone",
		Long: `Probe every bookmarked URL. Pages answering 404 or 410 are reported as dead;
timeouts, DNS failures and other errors as unreachable. With --delete the dead
bookmarks are removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				out := cmd.OutOrStdout()
				if len(store.Bookmarks) == 0 {
					fmt.Fprintln(out, "No bookmarks to check.")
					return false, nil
				}

				results := fetcher.CheckURLs(cmd.Context(), store.Bookmarks, fetcher.CheckOptions{
					Concurrency:    a.cfg.Fetch.Concurrency,
					Timeout:        a.cfg.Fetch.Timeout,
					ExcludeDomains: a.cfg.Fetch.ExcludeDomains,
					OnProgress:     progress(cmd.ErrOrStderr(), "Checking"),
				})
				if err := cmd.Context().Err(); err != nil {
					return false, err
				}

				sum := fetcher.Summarize(results)
				for _, r := range results {
					switch r.Status {
					case fetcher.Dead:
						fmt.Fprintf(out, "dead         %s  %s (%d)\n", shortID(r.Bookmark.ID), r.Bookmark.URL, r.StatusCode)
					case fetcher.Unreachable:
						fmt.Fprintf(out, "unreachable  %s  %s (%s)\n", shortID(r.Bookmark.ID), r.Bookmark.URL, r.Error)
					}
				}
				fmt.Fprintf(out, "%d healthy, %d dead, %d unreachable\n", sum.Healthy, sum.Dead, sum.Unreachable)

				if !remove || sum.Dead == 0 {
					return false, nil
				}
				// DeadIDs copies the IDs out before results go stale.
				n := store.DeleteBookmarks(fetcher.DeadIDs(results)...)
				a.log.Info("dead bookmarks removed", logger.Int("count", n))
				fmt.Fprintf(out, "Deleted %s\n", plural(n, "dead bookmark"))
				return n > 0, nil
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "delete dead bookmarks")
	return cmd
}

func (a *app) enrichCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Download page details for bookmarks that have none",
		Long: `Fetch each bookmarked page and store its description, image, author and
duration. Placeholder titles and generic categories are upgraded from the page.
With --force every bookmark is fetched again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				report, err := fetcher.Backfill(cmd.Context(), store, a.enricher(), fetcher.EnrichOptions{
					Concurrency: a.cfg.Fetch.Concurrency,
					Timeout:     a.cfg.Fetch.EnrichTimeout,
					Force:       force,
					OnProgress:  progress(cmd.ErrOrStderr(), "Enriching"),
				}, a.log)
				if err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d of %s (%d failed)\n",
					report.Updated, plural(report.Attempted, "bookmark"), report.Failed)
				return report.Updated > 0, nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "refetch bookmarks that already have details")
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	var page string
	cmd := &cobra.Command{
		Use:   "classify <url>...",
		Short: "Show the category and platform detected for URLs",
		Long: `Show how URLs would be classified without saving them. With --page, the
metadata of a saved HTML document is extracted too and used to refine the
result for the first URL.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, url := range args {
				d := classify.Detect(url)
				fmt.Fprintf(out, "%s %-5s  %-12s %s\n", classify.Icon(d.Category), d.Category, d.Platform, url)
			}
			if page == "" {
				return nil
			}
			return printPageDetails(cmd.Context(), out, args[0], page, a.log)
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "saved HTML file of the first URL")
	return cmd
}

func printPageDetails(ctx context.Context, w io.Writer, url, path string, log logger.Logger) error {
	builder := capture.NewBuilder(&capture.DocumentEnricher{Path: path}, log)
	settings := model.DefaultSettings()
	b, err := builder.Build(ctx, capture.TabInfo{URL: url, Title: url}, capture.Form{}, settings)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Title:     %s\n", b.Title)
	fmt.Fprintf(w, "Category:  %s %s\n", classify.Icon(b.Category), b.Category)
	fmt.Fprintf(w, "Platform:  %s\n", b.Platform)
	if m := b.Metadata; !m.IsEmpty() {
		field := func(label, v string) {
			if v != "" {
				fmt.Fprintf(w, "%-10s %s\n", label+":", v)
			}
		}
		field("Author", m.Author)
		field("Duration", m.Duration)
		field("Image", m.Image)
		field("Summary", m.Description)
	}
	return nil
}
