// Package classify maps a URL to a content category and a platform label.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nikbrunner/sbm/internal/model"
)

// rule is one pattern in the category table.
type rule struct {
	category model.Category
	pattern  *regexp.Regexp
}

// site matches domain or any of its subdomains, followed by path. path is a
// regexp fragment; empty means the whole site.
func site(category model.Category, domain, path string) rule {
	if path == "" {
		path = `(/|$)`
	}
	expr := `(?i)^([^/]*\.)?` + regexp.QuoteMeta(domain) + `(:\d+)?` + path
	return rule{category, regexp.MustCompile(expr)}
}

// ext matches a file extension at the end of the path.
func ext(category model.Category, exts string) rule {
	return rule{category, regexp.MustCompile(`(?i)\.(` + exts + `)$`)}
}

// rules is checked top to bottom; the first match wins.
// Order encodes precedence: video, then audio, then image.
var rules = []rule{
	// Video
	site(model.CategoryVideo, "youtube.com", `/watch`),
	site(model.CategoryVideo, "youtube.com", `/shorts/`),
	site(model.CategoryVideo, "youtu.be", `/`),
	site(model.CategoryVideo, "vimeo.com", ""),
	site(model.CategoryVideo, "tiktok.com", ""),
	site(model.CategoryVideo, "instagram.com", `/reel`),
	site(model.CategoryVideo, "instagram.com", `/tv`),
	site(model.CategoryVideo, "facebook.com", `/watch`),
	site(model.CategoryVideo, "fb.watch", `/`),
	site(model.CategoryVideo, "dailymotion.com", ""),
	site(model.CategoryVideo, "twitch.tv", ""),
	ext(model.CategoryVideo, `mp4|webm|mov|mkv`),

	// Audio
	site(model.CategoryAudio, "spotify.com", `/(track|episode|album|playlist|show)`),
	site(model.CategoryAudio, "soundcloud.com", ""),
	site(model.CategoryAudio, "podcasts.apple.com", ""),
	site(model.CategoryAudio, "apple.com", `/.*podcast`),
	site(model.CategoryAudio, "anchor.fm", ""),
	ext(model.CategoryAudio, `mp3|wav|ogg|flac|m4a`),

	// Image
	site(model.CategoryImage, "pinterest.com", ""),
	site(model.CategoryImage, "pin.it", `/`),
	site(model.CategoryImage, "unsplash.com", ""),
	site(model.CategoryImage, "pexels.com", ""),
	site(model.CategoryImage, "flickr.com", ""),
	site(model.CategoryImage, "instagram.com", `/p/`),
	site(model.CategoryImage, "behance.net", ""),
	ext(model.CategoryImage, `jpe?g|png|gif|webp|svg`),
}

// Category classifies rawURL. Empty or unmatched URLs are text.
func Category(rawURL string) model.Category {
	if rawURL == "" {
		return model.CategoryText
	}

	// Rules see host+path only, so a query like ?f=a.jpg never
	// triggers a file extension rule.
	target := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		target = u.Host + u.EscapedPath()
	}

	for _, r := range rules {
		if r.pattern.MatchString(target) {
			return r.category
		}
	}
	return model.CategoryText
}

// Result is the full classification of one URL.
type Result struct {
	Category model.Category
	Platform string
}

// Detect classifies rawURL into a category and platform.
func Detect(rawURL string) Result {
	return Result{
		Category: Category(rawURL),
		Platform: Platform(rawURL),
	}
}

// Hostname returns the lowercased host of rawURL without port or "www.".
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// MatchesDomain reports whether host is domain or a subdomain of it.
func MatchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Icon returns the emoji used to display a category.
func Icon(c model.Category) string {
	switch c {
	case model.CategoryVideo:
		return "🎥"
	case model.CategoryAudio:
		return "🎵"
	case model.CategoryImage:
		return "🖼️"
	case model.CategoryText:
		return "📝"
	default:
		return "📄"
	}
}
