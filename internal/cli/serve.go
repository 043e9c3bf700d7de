package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/sbm/internal/capture"
	"github.com/nikbrunner/sbm/internal/fetcher"
	"github.com/nikbrunner/sbm/internal/httpserver"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/messaging"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/storage"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		listen  string
		noFetch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP bridge for the browser extension",
		Long: `Serve the message API on the configured address (default 127.0.0.1:8723).
The browser extension posts {"action": ...} messages to /api/message; page
metadata it pushes is cached and used when the page is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if listen != "" {
				a.cfg.Server.Listen = listen
			}
			if spec := a.cfg.Server.EnrichSchedule; spec != "" {
				if _, err := fetcher.ParseSchedule(spec); err != nil {
					return err
				}
			}

			st, err := storage.Open(ctx, a.cfg, a.log)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer st.Close()

			var fetch capture.Enricher
			if !noFetch {
				fetch = a.enricher()
			}
			d := messaging.NewDispatcher(st, fetch, a.log)
			d.Builder().Timeout = a.cfg.Fetch.EnrichTimeout

			srv := httpserver.New(a.cfg.Server, d, a.log)
			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s (Ctrl+C to stop)\n", srv.Addr())

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx)
			})
			if spec := a.cfg.Server.EnrichSchedule; spec != "" && fetch != nil {
				g.Go(func() error {
					return fetcher.RunScheduled(gctx, spec, func(ctx context.Context) {
						a.backfill(ctx, d, fetch)
					}, a.log)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			a.log.Info("HTTP bridge stopped", logger.String("addr", srv.Addr()))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen)")
	flags.BoolVar(&noFetch, "no-fetch", false, "only use metadata pushed by the extension")
	return cmd
}

// backfill is the scheduled enrichment run. Pages are fetched from a
// snapshot; the save lock is only held while the results are applied.
// Failures are logged only.
func (a *app) backfill(ctx context.Context, d *messaging.Dispatcher, e capture.Enricher) {
	snapshot, err := d.Load(ctx)
	if err != nil {
		a.log.Warn("scheduled backfill failed", logger.Error(err))
		return
	}
	fetched, err := fetcher.FetchMissing(ctx, snapshot.Bookmarks, e, fetcher.EnrichOptions{
		Concurrency: a.cfg.Fetch.Concurrency,
		Timeout:     a.cfg.Fetch.EnrichTimeout,
	}, a.log)
	if err != nil {
		if ctx.Err() == nil {
			a.log.Warn("scheduled backfill failed", logger.Error(err))
		}
		return
	}
	if len(fetched.Pages) == 0 {
		a.log.Debug("scheduled backfill found nothing new",
			logger.Int("attempted", fetched.Attempted))
		return
	}

	err = d.Update(ctx, func(store *model.Store) (bool, error) {
		report := fetcher.ApplyFetched(store, fetched)
		a.log.Info("scheduled backfill finished",
			logger.Int("attempted", report.Attempted),
			logger.Int("updated", report.Updated),
			logger.Int("failed", report.Failed))
		return report.Updated > 0, nil
	})
	if err != nil && ctx.Err() == nil {
		a.log.Warn("scheduled backfill failed", logger.Error(err))
	}
}
