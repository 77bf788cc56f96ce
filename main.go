package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ytget/videocatcher/internal/config"
	"github.com/ytget/videocatcher/internal/convert"
	"github.com/ytget/videocatcher/internal/cookies"
	"github.com/ytget/videocatcher/internal/download"
	"github.com/ytget/videocatcher/internal/history"
	"github.com/ytget/videocatcher/internal/platform"
	"github.com/ytget/videocatcher/internal/web"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// SweepInterval is how often expired cookies and stale downloads are
// removed in the background.
const SweepInterval = 5 * time.Minute

func main() {
	log.Printf("VideoCatcher v%s starting...", version)

	settings := config.NewSettings()

	downloadsDir := settings.GetDownloadsDirectory()
	cookiesDir := settings.GetCookiesDirectory()
	for _, dir := range []string{downloadsDir, cookiesDir} {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	cookieStore := cookies.NewStore(cookiesDir, settings.GetCookieTTL())
	extractor := download.NewYTDLPExtractor(downloadsDir, settings.GetProxyURL())
	downloader := download.NewService(extractor, cookieStore, settings.GetMaxParallelDownloads(), settings.GetDownloadTimeout())
	converter := convert.NewService()
	playlists := platform.NewPlaylistService()
	historyStore := history.NewStore(settings.GetHistoryPath(), settings.GetMaxHistory())

	downloadTTL := settings.GetDownloadTTL()
	cleanup := func() {
		removed := cookieStore.Sweep()
		stale := platform.RemoveFilesOlderThan(downloadsDir, downloadTTL)
		if removed > 0 || stale > 0 {
			log.Printf("Cleanup removed %d cookie sessions, %d stale downloads", removed, stale)
		}
	}

	server := web.NewServer(downloader, cookieStore, converter, playlists, historyStore, cleanup, web.Config{
		DownloadsDir:   downloadsDir,
		AdminPassword:  settings.GetAdminPassword(),
		APIUploadToken: settings.GetAPIUploadToken(),
		SessionSecret:  sessionSecret(settings),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:    ":" + settings.GetPort(),
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	cookieStore.Sweep()
}

// sessionSecret returns the configured secret or generates a per-boot one.
// A generated secret invalidates browser sessions on restart.
func sessionSecret(settings *config.Settings) string {
	if secret := settings.GetSessionSecret(); secret != "" {
		return secret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	log.Println("SESSION_SECRET not set, generated a per-boot secret")
	return hex.EncodeToString(buf)
}
