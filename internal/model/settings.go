package model

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings is the singleton user preferences record.
type Settings struct {
	Theme         Theme  `json:"theme"`
	AutoDetect    bool   `json:"autoDetect"`
	DefaultFolder string `json:"defaultFolder"`
	Notifications bool   `json:"notifications"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		Theme:         ThemeLight,
		AutoDetect:    true,
		DefaultFolder: DefaultFolderID,
		Notifications: true,
	}
}
