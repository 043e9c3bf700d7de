package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	List  ListConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig sizes the bookmark list and the detail pane beside it.
type ListConfig struct {
	// HeightReduction is subtracted from terminal height for list content.
	// Accounts for: header (2) + pane borders (2) + status line (1) + help bar (2) = 7
	HeightReduction int

	// MinHeight is the minimum list height.
	MinHeight int

	// RowHeight is the number of lines one bookmark takes.
	RowHeight int

	// DetailWidthPercent is the share of width given to the detail pane.
	DetailWidthPercent int

	// MinDetailWidth hides the detail pane below this width.
	MinDetailWidth int

	// ContentPadding is subtracted from pane width for row rendering.
	ContentPadding int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	MinWidth int
	MaxWidth int

	// MoveMaxVisible: max folders shown in the move picker.
	MoveMaxVisible int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TagsCharLimit   int
	FilterCharLimit int
	FolderCharLimit int
	StandardWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		List: ListConfig{
			HeightReduction:    7,
			MinHeight:          4,
			RowHeight:          2,
			DetailWidthPercent: 40,
			MinDetailWidth:     30,
			ContentPadding:     4,
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 40,
			MinWidth:            44,
			MaxWidth:            80,
			MoveMaxVisible:      8,
		},
		Input: InputConfig{
			TagsCharLimit:   200,
			FilterCharLimit: 80,
			FolderCharLimit: 60,
			StandardWidth:   40,
		},
		Text: TextConfig{
			Ellipsis: "…",
		},
	}
}
