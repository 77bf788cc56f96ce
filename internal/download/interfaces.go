package download

import (
	"context"

	"github.com/ytget/videocatcher/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	// Download dispatches one video download and blocks until it finishes,
	// fails, or the context is done. Platforms that require cookies are
	// rejected with AuthRequiredError when the session holds no valid
	// cookie entry.
	Download(ctx context.Context, sessionID string, platform model.Platform, url string) (*model.DownloadTask, error)

	// GetTask and GetAllTasks return copies; live tasks are mutated while
	// a download runs.
	GetTask(id string) (*model.DownloadTask, bool)
	GetAllTasks() []*model.DownloadTask
}

// Progress reports extraction progress for one attempt.
type Progress struct {
	DownloadedBytes int64
	TotalBytes      int64
	ETASec          int
	Title           string
}

// ExtractRequest carries everything one extraction call needs.
type ExtractRequest struct {
	URL        string
	Platform   model.Platform
	CookieFile string // path to a session-owned cookie snapshot, empty if none
}

// ExtractResult is the outcome of a successful extraction.
type ExtractResult struct {
	OutputPath string
	Title      string
}

// Extractor defines the interface to the external extraction library.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest, onProgress func(Progress)) (ExtractResult, error)
}
