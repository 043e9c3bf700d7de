package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/sbm/internal/config"
	"github.com/nikbrunner/sbm/internal/exporter"
	"github.com/nikbrunner/sbm/internal/importer"
	"github.com/nikbrunner/sbm/internal/logger"
	"github.com/nikbrunner/sbm/internal/model"
	"github.com/nikbrunner/sbm/internal/storage"
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import bookmarks from a JSON, CSV or browser HTML export",
		Long: `Import bookmarks from a file. The format follows the extension:
.json (sbm export), .csv (Title,URL,Category,... header) or .html
(Netscape bookmark file from any browser). URLs already saved are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				folders := len(store.Folders)
				sum, err := importer.ImportFile(store, args[0])
				if err != nil {
					return false, err
				}
				a.log.Info("import finished",
					logger.String("file", args[0]),
					logger.Int("imported", sum.Imported),
					logger.Int("skipped", sum.Skipped),
					logger.Int("invalid", sum.Invalid))

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %s", plural(sum.Imported, "bookmark"))
				if added := len(store.Folders) - folders; added > 0 {
					fmt.Fprintf(out, ", %s", plural(added, "folder"))
				}
				if sum.Skipped > 0 {
					fmt.Fprintf(out, " (%s skipped)", plural(sum.Skipped, "duplicate"))
				}
				if sum.Invalid > 0 {
					fmt.Fprintf(out, " (%s invalid)", plural(sum.Invalid, "record"))
				}
				fmt.Fprintln(out)
				return sum.Imported > 0 || len(store.Folders) != folders, nil
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [path|-]",
		Short: "Export every bookmark as JSON, CSV or browser HTML",
		Long: `Export every bookmark. Without a path the file is written to the export
directory (default ~/Downloads) as smart-bookmarks-<timestamp>.<ext>.
Use - to write to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Export.Format
			}
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			return a.view(cmd.Context(), func(store *model.Store) error {
				if len(args) == 1 && args[0] == "-" {
					err := exporter.Export(cmd.OutOrStdout(), store, f)
					if errors.Is(err, exporter.ErrEmpty) {
						fmt.Fprintln(cmd.ErrOrStderr(), "No bookmarks to export.")
						return nil
					}
					return err
				}

				path, err := a.exportPath(args, f)
				if err != nil {
					return err
				}
				switch err := exporter.ExportFile(store, f, path); {
				case errors.Is(err, exporter.ErrEmpty):
					a.log.Warn("export skipped, collection is empty")
					fmt.Fprintln(cmd.ErrOrStderr(), "No bookmarks to export.")
					return nil
				case err != nil:
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", plural(len(store.Bookmarks), "bookmark"), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "F", "", "json, csv or html (default from config)")
	return cmd
}

func (a *app) exportPath(args []string, f exporter.Format) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	dir, err := a.cfg.ExportDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve export directory: %w", err)
	}
	return filepath.Join(dir, exporter.FileName(f, time.Now())), nil
}

func (a *app) migrateCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "migrate --to <backend>",
		Short: "Copy the collection from the configured backend to another one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			to = strings.ToLower(strings.TrimSpace(to))
			switch to {
			case config.BackendJSON, config.BackendSQLite, config.BackendRedis:
			default:
				return fmt.Errorf("unknown storage backend %q (want json, sqlite or redis)", to)
			}
			from := a.cfg.Storage.Backend
			if to == from {
				return fmt.Errorf("storage already uses the %s backend", to)
			}

			ctx := cmd.Context()
			src, err := storage.Open(ctx, a.cfg, a.log)
			if err != nil {
				return fmt.Errorf("failed to open %s storage: %w", from, err)
			}
			defer src.Close()
			dst, err := storage.OpenBackend(ctx, to, a.cfg, a.log)
			if err != nil {
				return fmt.Errorf("failed to open %s storage: %w", to, err)
			}
			defer dst.Close()

			store, err := storage.Copy(ctx, dst, src)
			if err != nil {
				return err
			}
			a.log.Info("storage migrated", logger.String("from", from), logger.String("to", to))
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s and %s from %s to %s\n",
				plural(len(store.Bookmarks), "bookmark"), plural(len(store.Folders), "folder"), from, to)
			fmt.Fprintf(cmd.OutOrStdout(), "Set storage.backend to %q in %s to use it.\n", to, a.cfg.File)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target backend: json, sqlite or redis")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
