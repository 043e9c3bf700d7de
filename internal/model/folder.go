package model

import "strings"

// Folder is a user-defined grouping for bookmarks.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name  string
	Emoji string
}

// NewFolder creates a Folder with generated UUID.
func NewFolder(params NewFolderParams) Folder {
	emoji := params.Emoji
	if emoji == "" {
		emoji = "📁"
	}
	return Folder{
		ID:        GenerateUUID(),
		Name:      strings.TrimSpace(params.Name),
		Emoji:     emoji,
		CreatedAt: NowMillis(),
	}
}

// Label renders the folder as "emoji name".
func (f Folder) Label() string {
	if f.Emoji == "" {
		return f.Name
	}
	return f.Emoji + " " + f.Name
}

// BuiltinFolders are always offered next to user folders and never stored.
var BuiltinFolders = []Folder{
	{ID: DefaultFolderID, Name: "Default"},
	{ID: "videos", Name: "Videos", Emoji: "📹"},
	{ID: "stories", Name: "Stories", Emoji: "📝"},
	{ID: "novels", Name: "Novels", Emoji: "📚"},
	{ID: "tutorials", Name: "Tutorials", Emoji: "🎓"},
	{ID: "images", Name: "Images", Emoji: "🖼️"},
	{ID: "audio", Name: "Audio", Emoji: "🎵"},
}
