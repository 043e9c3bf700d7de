// Package cli wires the sbm command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/sbm/internal/config"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/storage"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log logger.Logger
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: logger.Nop()}

	root := &cobra.Command{
		Use:   "sbm [query...]",
		Short: "Smart bookmark organizer",
		Long: `sbm keeps bookmarks sorted by what they are: videos, images, audio and text.

Run without arguments to open the interactive browser, or pass a query to
fuzzy-search your bookmarks and open the one you pick.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.runTUI(cmd.Context())
			}
			return a.runQuickSearch(cmd, strings.Join(args, " "))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default ~/.config/sbm/config.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.rmCmd(),
		a.mvCmd(),
		a.tagCmd(),
		a.folderCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.migrateCmd(),
		a.statsCmd(),
		a.settingsCmd(),
		a.resetCmd(),
		a.checkCmd(),
		a.enrichCmd(),
		a.classifyCmd(),
		a.serveCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Log.Pretty)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.log.Debug("config loaded",
		logger.String("file", cfg.File),
		logger.String("backend", cfg.Storage.Backend))
	return nil
}

// update loads the store, hands it to fn and saves it when fn reports a
// change. Nothing is written when fn fails.
func (a *app) update(ctx context.Context, fn func(store *model.Store) (bool, error)) error {
	st, err := storage.Open(ctx, a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer st.Close()

	store, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}
	changed, err := fn(store)
	if err != nil || !changed {
		return err
	}
	if err := st.Save(ctx, store); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return nil
}

// view is update for read-only commands.
func (a *app) view(ctx context.Context, fn func(store *model.Store) error) error {
	return a.update(ctx, func(store *model.Store) (bool, error) {
		return false, fn(store)
	})
}

// errAmbiguous is returned when an ID prefix matches several bookmarks.
var errAmbiguous = errors.New("ambiguous id")

// findBookmark resolves a full ID or a unique ID prefix.
func findBookmark(store *model.Store, ref string) (*model.Bookmark, error) {
	if ref == "" {
		return nil, fmt.Errorf("bookmark id is empty: %w", model.ErrNotFound)
	}
	if b := store.GetBookmarkByID(ref); b != nil {
		return b, nil
	}
	var found *model.Bookmark
	for i := range store.Bookmarks {
		if !strings.HasPrefix(store.Bookmarks[i].ID, ref) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("bookmark %q: %w", ref, errAmbiguous)
		}
		found = &store.Bookmarks[i]
	}
	if found == nil {
		return nil, fmt.Errorf("bookmark %q: %w", ref, model.ErrNotFound)
	}
	return found, nil
}

// findBookmarkIDs resolves every ref to a full bookmark ID.
func findBookmarkIDs(store *model.Store, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		b, err := findBookmark(store, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// findFolder resolves a folder ID or a case-insensitive folder name.
func findFolder(store *model.Store, ref string) (*model.Folder, error) {
	ref = strings.TrimSpace(ref)
	if f := store.GetFolderByID(ref); f != nil {
		return f, nil
	}
	if f := store.GetFolderByName(ref); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("folder %q: %w", ref, model.ErrNotFound)
}

// shortID is the ID prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
