package model

// PageMetadata is the best-effort result of scraping one page.
// Every field is optional.
type PageMetadata struct {
	URL         string   `json:"url,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Author      string   `json:"author,omitempty"`
	SiteName    string   `json:"siteName,omitempty"`
	Platform    string   `json:"platform,omitempty"`
	Category    Category `json:"category,omitempty"`
	Username    string   `json:"username,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	ViewCount   string   `json:"viewCount,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (m *PageMetadata) IsEmpty() bool {
	return m == nil || *m == PageMetadata{}
}
