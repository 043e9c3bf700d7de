package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/sbm/internal/model"
)

// Placeholder titles used when a platform page has no readable title.
const (
	InstagramReelTitle = "Instagram Reel"
	InstagramPostTitle = "Instagram Post"
	TikTokVideoTitle   = "TikTok Video"
)

func youtube(doc *Document) model.PageMetadata {
	meta := model.PageMetadata{
		Platform: "YouTube",
		Category: model.CategoryVideo,
	}

	meta.Title = doc.Text(func(n *html.Node) bool {
		return byTagClass("h1", "ytd-video-primary-info-renderer")(n) || byTagClass("h1", "title")(n)
	})
	if meta.Title == "" {
		meta.Title = doc.Meta("title")
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(strings.Replace(doc.Title(), " - YouTube", "", 1))
	}

	meta.Channel = doc.Text(func(n *html.Node) bool {
		return within(byTag("ytd-channel-name"), byTag("a"))(n) ||
			within(byTagClass("", "ytd-video-owner-renderer"), byTag("a"))(n)
	})
	meta.Duration = doc.Text(byTagClass("", "ytp-time-duration"))
	meta.ViewCount = doc.Meta("interactionCount")
	if meta.ViewCount == "" {
		meta.ViewCount = doc.Text(byTagClass("", "view-count"))
	}
	return meta
}

var instagramProfile = regexp.MustCompile(`^/([^/]+)/`)

func instagram(doc *Document) model.PageMetadata {
	meta := model.PageMetadata{Platform: "Instagram"}

	link := doc.Find(func(n *html.Node) bool {
		return isElement(n, "a") && strings.HasPrefix(attr(n, "href"), "/")
	})
	if m := instagramProfile.FindStringSubmatch(attr(link, "href")); m != nil {
		meta.Username = "@" + m[1]
	}

	path := strings.ToLower(pathOf(doc))
	switch {
	case strings.Contains(path, "/reel/") || strings.Contains(path, "/tv/"):
		meta.Category = model.CategoryVideo
		meta.Title = instagramTitle(doc, InstagramReelTitle)
	case strings.Contains(path, "/p/"):
		meta.Category = model.CategoryImage
		meta.Title = instagramTitle(doc, InstagramPostTitle)
	}
	return meta
}

func instagramTitle(doc *Document, fallback string) string {
	if t := doc.Text(byTag("h1")); t != "" {
		return t
	}
	if t := doc.Meta("og:title"); t != "" {
		return t
	}
	return fallback
}

func tiktok(doc *Document) model.PageMetadata {
	meta := model.PageMetadata{
		Platform: "TikTok",
		Category: model.CategoryVideo,
		Title:    doc.Text(byTag("h1")),
		Username: doc.Text(byAttr("data-e2e", "browse-username")),
	}
	if meta.Title == "" {
		meta.Title = TikTokVideoTitle
	}
	return meta
}

func twitter(doc *Document) model.PageMetadata {
	meta := model.PageMetadata{Platform: "Twitter"}
	segments := strings.Split(strings.Trim(pathOf(doc), "/"), "/")
	if segments[0] != "" {
		meta.Username = "@" + segments[0]
	}
	return meta
}

func spotify(*Document) model.PageMetadata {
	return model.PageMetadata{
		Platform: "Spotify",
		Category: model.CategoryAudio,
	}
}
