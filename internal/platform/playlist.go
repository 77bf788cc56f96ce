package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/videocatcher/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistTimeout = 60 * time.Second
)

// URL parameters and templates
const (
	PlaylistParam           = "list="
	ParamSeparator          = "&"
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// PlaylistService expands YouTube playlist URLs into per-video entries so
// the UI can queue single-video downloads. Downloads themselves always run
// with --no-playlist.
type PlaylistService struct {
	timeout time.Duration
}

// NewPlaylistService creates a new playlist expansion service.
func NewPlaylistService() *PlaylistService {
	return &PlaylistService{
		timeout: DefaultPlaylistTimeout,
	}
}

// SetTimeout sets the timeout for playlist expansion.
func (p *PlaylistService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Expand resolves the playlist behind url and returns its entries.
func (p *PlaylistService) Expand(ctx context.Context, url string) (*model.Playlist, error) {
	playlistID := extractPlaylistID(url)
	if playlistID == "" {
		return nil, model.NewValidationError("not a playlist URL: %q", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, model.PlaylistEntry{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}

	return &model.Playlist{
		ID:      playlistID,
		URL:     url,
		Entries: entries,
		Total:   len(entries),
	}, nil
}

// extractPlaylistID extracts the playlist ID from various URL formats.
// Returns an empty string when the URL carries no playlist parameter.
func extractPlaylistID(url string) string {
	if !strings.Contains(url, PlaylistParam) {
		return ""
	}
	parts := strings.Split(url, PlaylistParam)
	if len(parts) < 2 {
		return ""
	}
	id := parts[1]
	if strings.Contains(id, ParamSeparator) {
		id = strings.Split(id, ParamSeparator)[0]
	}
	return id
}
