package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/sbm/internal/model"
)

// settingKeys lists the settings in display order.
var settingKeys = []string{"theme", "autoDetect", "defaultFolder", "notifications"}

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}

	get := &cobra.Command{
		Use:       "get [key]",
		Short:     "Print one setting or all of them",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: settingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd.Context(), func(store *model.Store) error {
				s := store.CurrentSettings()
				if len(args) == 0 {
					for _, key := range settingKeys {
						v, _ := settingValue(s, key)
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, v)
					}
					return nil
				}
				v, err := settingValue(s, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				s := store.CurrentSettings()
				if err := applySetting(store, &s, args[0], args[1]); err != nil {
					return false, err
				}
				store.ReplaceSettings(s)
				v, _ := settingValue(s, args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v)
				return true, nil
			})
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func settingValue(s model.Settings, key string) (string, error) {
	switch key {
	case "theme":
		return string(s.Theme), nil
	case "autoDetect":
		return strconv.FormatBool(s.AutoDetect), nil
	case "defaultFolder":
		return s.DefaultFolder, nil
	case "notifications":
		return strconv.FormatBool(s.Notifications), nil
	}
	return "", unknownSetting(key)
}

func applySetting(store *model.Store, s *model.Settings, key, value string) error {
	switch key {
	case "theme":
		theme := model.Theme(strings.ToLower(value))
		if theme != model.ThemeLight && theme != model.ThemeDark {
			return fmt.Errorf("invalid theme %q (want light or dark)", value)
		}
		s.Theme = theme
	case "autoDetect", "notifications":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s (want true or false)", value, key)
		}
		if key == "autoDetect" {
			s.AutoDetect = b
		} else {
			s.Notifications = b
		}
	case "defaultFolder":
		f, err := findFolder(store, value)
		if err != nil {
			return err
		}
		s.DefaultFolder = f.ID
	default:
		return unknownSetting(key)
	}
	return nil
}

func unknownSetting(key string) error {
	return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(settingKeys, ", "))
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every bookmark, folder and setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), func(store *model.Store) (bool, error) {
				if !yes {
					return false, fmt.Errorf("this deletes %s and %s; rerun with --yes to confirm",
						plural(len(store.Bookmarks), "bookmark"), plural(len(store.Folders), "folder"))
				}
				printReset(cmd.OutOrStdout(), store)
				store.Reset()
				return true, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

func printReset(w io.Writer, store *model.Store) {
	fmt.Fprintf(w, "Deleted %s and %s. Settings restored to defaults.\n",
		plural(len(store.Bookmarks), "bookmark"), plural(len(store.Folders), "folder"))
}
