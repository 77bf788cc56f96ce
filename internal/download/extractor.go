package download

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/videocatcher/internal/model"
)

// Extraction constants
const (
	ProgressInterval = 500 * time.Millisecond
	StrategyBackoff  = 2 * time.Second
	OutputTemplate   = "%(title)s.%(ext)s"
	OutputPrefixLen  = 8
)

// YTDLPExtractor drives yt-dlp through client-preset strategies. Each
// attempt sets a user agent and player-client hints; later presets are only
// tried when the earlier ones fail with retryable errors.
type YTDLPExtractor struct {
	downloadDir string
	proxy       string
}

// NewYTDLPExtractor creates an extractor writing media files under
// downloadDir. proxy may be empty.
func NewYTDLPExtractor(downloadDir, proxy string) *YTDLPExtractor {
	return &YTDLPExtractor{
		downloadDir: downloadDir,
		proxy:       proxy,
	}
}

// Extract runs the strategy chain for the request's platform and returns
// the saved file path. The underlying error of the last failed attempt is
// preserved for the user.
func (e *YTDLPExtractor) Extract(ctx context.Context, req ExtractRequest, onProgress func(Progress)) (ExtractResult, error) {
	cfg := req.Platform.Config()
	strategies := cfg.Strategies

	// Unique prefix keeps concurrent downloads of the same video apart.
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:OutputPrefixLen]
	outputTemplate := filepath.Join(e.downloadDir, prefix+"_"+OutputTemplate)

	var lastErr error
	for attempt, strategy := range strategies {
		if attempt > 0 {
			select {
			case <-time.After(StrategyBackoff):
			case <-ctx.Done():
				return ExtractResult{}, ctx.Err()
			}
		}

		log.Printf("Download attempt %d/%d using %s strategy (platform=%s)",
			attempt+1, len(strategies), strategy.Name, req.Platform)

		result, err := e.runStrategy(ctx, req, strategy, cfg.Format, outputTemplate, onProgress)
		if err == nil {
			log.Printf("Download successful using %s strategy: %s", strategy.Name, result.OutputPath)
			return result, nil
		}
		lastErr = err

		log.Printf("Strategy %s failed (attempt %d/%d): %v", strategy.Name, attempt+1, len(strategies), err)

		if ctx.Err() != nil {
			return ExtractResult{}, ctx.Err()
		}
		// Private or removed videos cannot succeed with a different client.
		if isPermanentFailure(err) {
			break
		}
	}

	return ExtractResult{}, classifyFailure(req.Platform, lastErr)
}

// runStrategy performs one yt-dlp invocation with the strategy's client
// preset applied.
func (e *YTDLPExtractor) runStrategy(ctx context.Context, req ExtractRequest, strategy model.ClientStrategy, defaultFormat, outputTemplate string, onProgress func(Progress)) (ExtractResult, error) {
	format := defaultFormat
	if strategy.Format != "" {
		format = strategy.Format
	}

	dl := ytdlp.New().
		NoPlaylist().
		ForceOverwrites().
		RestrictFilenames().
		Format(format).
		UserAgent(strategy.UserAgent).
		Output(outputTemplate)

	if strategy.ExtractorArgs != "" {
		dl = dl.ExtractorArgs(strategy.ExtractorArgs)
	}
	if e.proxy != "" {
		dl = dl.Proxy(e.proxy)
	}
	if req.CookieFile != "" {
		dl = dl.Cookies(req.CookieFile)
	}

	if onProgress != nil {
		dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
			progress := Progress{
				DownloadedBytes: int64(update.DownloadedBytes),
				TotalBytes:      int64(update.TotalBytes),
				ETASec:          -1,
			}
			if eta := update.ETA(); eta > 0 {
				progress.ETASec = int(eta.Seconds())
			}
			if update.Info != nil && update.Info.Title != nil {
				progress.Title = *update.Info.Title
			}
			onProgress(progress)
		})
	}

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return ExtractResult{}, err
	}

	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 {
		return ExtractResult{}, fmt.Errorf("extraction finished without file info: %v", err)
	}

	extracted := ExtractResult{}
	if info[0].Filename != nil {
		extracted.OutputPath = *info[0].Filename
	}
	if info[0].Title != nil {
		extracted.Title = *info[0].Title
	}
	if extracted.OutputPath == "" {
		return ExtractResult{}, fmt.Errorf("extraction finished without an output path")
	}
	return extracted, nil
}

// isPermanentFailure reports errors no alternate client preset can fix.
func isPermanentFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "private") || strings.Contains(msg, "unavailable")
}

// classifyFailure wraps the last attempt error with an operator-facing
// summary. 403 responses usually mean missing or stale cookies.
func classifyFailure(platform model.Platform, err error) error {
	if err == nil {
		return &model.ExtractionError{Platform: platform, Err: fmt.Errorf("no extraction strategies configured")}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "403"), strings.Contains(msg, "forbidden"):
		return &model.ExtractionError{
			Platform: platform,
			Err:      fmt.Errorf("all extraction clients were blocked (403); the video may require fresh authentication cookies or a proxy: %w", err),
		}
	case strings.Contains(msg, "private"), strings.Contains(msg, "unavailable"):
		return &model.ExtractionError{
			Platform: platform,
			Err:      fmt.Errorf("video is private, deleted, or unavailable: %w", err),
		}
	default:
		return &model.ExtractionError{Platform: platform, Err: err}
	}
}
