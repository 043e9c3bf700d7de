package classify

import "github.com/nikbrunner/sbm/internal/model"

// platforms maps a registrable domain to its display label.
var platforms = []struct {
	domain string
	name   string
}{
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
	{"instagram.com", "Instagram"},
	{"twitter.com", "Twitter"},
	{"x.com", "Twitter"},
	{"tiktok.com", "TikTok"},
	{"facebook.com", "Facebook"},
	{"fb.watch", "Facebook"},
	{"linkedin.com", "LinkedIn"},
	{"reddit.com", "Reddit"},
	{"spotify.com", "Spotify"},
	{"medium.com", "Medium"},
	{"vimeo.com", "Vimeo"},
	{"soundcloud.com", "SoundCloud"},
	{"pinterest.com", "Pinterest"},
	{"pin.it", "Pinterest"},
	{"twitch.tv", "Twitch"},
	{"dailymotion.com", "Dailymotion"},
	{"unsplash.com", "Unsplash"},
	{"pexels.com", "Pexels"},
	{"flickr.com", "Flickr"},
	{"behance.net", "Behance"},
}

// Platform returns the platform label for rawURL, or "Web".
func Platform(rawURL string) string {
	host := Hostname(rawURL)
	if host == "" {
		return model.DefaultPlatform
	}
	for _, p := range platforms {
		if MatchesDomain(host, p.domain) {
			return p.name
		}
	}
	return model.DefaultPlatform
}

// IsPlatformName reports whether s is exactly a known platform label.
func IsPlatformName(s string) bool {
	for _, p := range platforms {
		if p.name == s {
			return true
		}
	}
	return false
}
