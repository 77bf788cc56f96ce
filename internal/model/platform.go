package model

import (
	"fmt"
	"strings"
)

// Platform identifies a supported video platform.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
)

// User agent strings for extraction client presets
const (
	UserAgentTV      = "Mozilla/5.0 (SMART-TV; Linux; Tizen 6.0) AppleWebKit/537.36 (KHTML, like Gecko) SamsungBrowser/4.0 Chrome/76.0.3809.146 TV Safari/537.36"
	UserAgentAndroid = "Mozilla/5.0 (Linux; Android 11; SM-G991B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	UserAgentIOS     = "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1"
	UserAgentDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ClientStrategy is one extraction attempt preset: a user agent plus
// optional yt-dlp extractor arguments (player client hints).
type ClientStrategy struct {
	Name          string
	UserAgent     string
	ExtractorArgs string // yt-dlp --extractor-args value, empty if none
	Format        string // format selector override, empty keeps platform default
}

// PlatformConfig is the per-platform request configuration record.
type PlatformConfig struct {
	RequiresCookies bool
	Format          string // default yt-dlp format selector
	Strategies      []ClientStrategy
}

// platformConfigs is the closed set of supported platforms and their
// request parameters. TikTok never requires cookies.
var platformConfigs = map[Platform]PlatformConfig{
	PlatformYouTube: {
		RequiresCookies: true,
		Format:          "best[height<=1080]/bestvideo[height<=1080]+bestaudio/best",
		Strategies: []ClientStrategy{
			{Name: "TV Client", UserAgent: UserAgentTV, ExtractorArgs: "youtube:player_client=tv", Format: "best[height<=1080]"},
			{Name: "Android Client", UserAgent: UserAgentAndroid, ExtractorArgs: "youtube:player_client=android", Format: "best[height<=720]/worst"},
			{Name: "iOS Client", UserAgent: UserAgentIOS, ExtractorArgs: "youtube:player_client=ios", Format: "best[height<=720]/worst"},
		},
	},
	PlatformTikTok: {
		RequiresCookies: false,
		Format:          "best",
		Strategies: []ClientStrategy{
			{Name: "Mobile Client", UserAgent: UserAgentAndroid},
		},
	},
	PlatformInstagram: {
		RequiresCookies: true,
		Format:          "best",
		Strategies: []ClientStrategy{
			{Name: "Desktop Client", UserAgent: UserAgentDesktop},
		},
	},
}

// ParsePlatform parses a platform name from user input.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := platformConfigs[p]; !ok {
		return "", fmt.Errorf("unsupported platform: %q", s)
	}
	return p, nil
}

// DetectPlatform guesses the platform from a video URL. Returns false if
// the URL does not belong to a supported platform.
func DetectPlatform(url string) (Platform, bool) {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return PlatformYouTube, true
	case strings.Contains(u, "tiktok.com"):
		return PlatformTikTok, true
	case strings.Contains(u, "instagram.com"), strings.Contains(u, "instagr.am"):
		return PlatformInstagram, true
	}
	return "", false
}

// Config returns the request configuration for the platform.
func (p Platform) Config() PlatformConfig {
	return platformConfigs[p]
}

// RequiresCookies reports whether the platform needs an uploaded cookie
// file before downloads are dispatched.
func (p Platform) RequiresCookies() bool {
	return platformConfigs[p].RequiresCookies
}

// String returns the platform name.
func (p Platform) String() string {
	return string(p)
}

// Platforms returns all supported platforms in display order.
func Platforms() []Platform {
	return []Platform{PlatformYouTube, PlatformTikTok, PlatformInstagram}
}
