package download

// Package download implements the download pipeline built on top of yt-dlp
// (via github.com/lrstanley/go-ytdlp). The service resolves cookie
// requirements per platform, bounds concurrency and per-call time, tracks
// task lifecycle, and walks client-preset extraction strategies until one
// succeeds.
