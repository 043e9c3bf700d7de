package layout

// Split holds the widths of the list and detail panes. DetailWidth is 0
// when the terminal is too narrow for a detail pane.
type Split struct {
	ListWidth   int
	DetailWidth int
}

// CalculateListHeight computes the content height of the list pane.
// Returns at least MinHeight.
func CalculateListHeight(terminalHeight int, cfg ListConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculateSplit divides the terminal width between list and detail.
// Each pane's border takes 2 columns and the app padding 4.
func CalculateSplit(terminalWidth int, cfg ListConfig) Split {
	usable := terminalWidth - 4
	detail := usable * cfg.DetailWidthPercent / 100
	if detail < cfg.MinDetailWidth {
		list := usable - 2
		if list < 1 {
			list = 1
		}
		return Split{ListWidth: list}
	}
	return Split{ListWidth: usable - detail - 4, DetailWidth: detail}
}

// CalculateVisibleRows returns how many rows of rowHeight lines fit in height.
func CalculateVisibleRows(height, rowHeight int) int {
	if rowHeight < 1 {
		rowHeight = 1
	}
	rows := height / rowHeight
	if rows < 1 {
		return 1
	}
	return rows
}

// CalculateItemWidth computes the width available for row content.
func CalculateItemWidth(paneWidth int, cfg ListConfig) int {
	w := paneWidth - cfg.ContentPadding
	if w < 1 {
		return 1
	}
	return w
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}
	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}
	return offset
}
