package model

// PlaylistEntry is a single video listed in a playlist preview. Downloads
// themselves are always dispatched per video, never per playlist.
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Playlist is the result of expanding a playlist URL so the UI can queue
// single-video downloads.
type Playlist struct {
	ID      string          `json:"id"`
	URL     string          `json:"url"`
	Entries []PlaylistEntry `json:"entries"`
	Total   int             `json:"total"`
}
