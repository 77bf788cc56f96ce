package web

import (
	"context"

	"github.com/gin-contrib/sessions"
	ginsessions "github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/ytget/videocatcher/internal/convert"
	"github.com/ytget/videocatcher/internal/cookies"
	"github.com/ytget/videocatcher/internal/download"
	"github.com/ytget/videocatcher/internal/history"
	"github.com/ytget/videocatcher/internal/model"
)

// SharedSessionID is the session the token-protected sync endpoint uploads
// into. Browser sessions without their own cookies fall back to it.
const SharedSessionID = "shared-sync"

// Upload limits
const MaxCookieFileSize = 1 << 20 // 1 MiB

// PlaylistExpander defines the playlist preview dependency.
type PlaylistExpander interface {
	Expand(ctx context.Context, url string) (*model.Playlist, error)
}

// Config carries the handler-level configuration.
type Config struct {
	DownloadsDir   string
	AdminPassword  string
	APIUploadToken string
	SessionSecret  string
}

// Server wires the HTTP surface to the domain services.
type Server struct {
	downloader download.Downloader
	store      cookies.SessionStore
	converter  convert.Converter
	playlists  PlaylistExpander
	history    *history.Store
	sweep      func() // forced cleanup hook for the admin page
	cfg        Config
}

// NewServer creates a server around the given services. sweep is invoked
// by the admin force-sweep action and may be nil.
func NewServer(downloader download.Downloader, store cookies.SessionStore, converter convert.Converter, playlists PlaylistExpander, historyStore *history.Store, sweep func(), cfg Config) *Server {
	if sweep == nil {
		sweep = func() {}
	}
	return &Server{
		downloader: downloader,
		store:      store,
		converter:  converter,
		playlists:  playlists,
		history:    historyStore,
		sweep:      sweep,
		cfg:        cfg,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(loadTemplates())

	sessionStore := ginsessions.NewStore([]byte(s.cfg.SessionSecret))
	r.Use(sessions.Sessions(SessionName, sessionStore))
	r.Use(ensureSession())

	r.GET("/", s.handleIndex)
	r.POST("/download", s.handleDownload)
	r.POST("/upload_cookies", s.handleUploadCookies)
	r.GET("/downloads/:filename", s.handleDownloadFile)

	api := r.Group("/api")
	{
		api.GET("/history", s.handleHistory)
		api.POST("/playlist", s.handlePlaylist)
		api.POST("/convert", s.handleConvertStart)
		api.GET("/convert/:id", s.handleConvertStatus)
		api.POST("/convert/:id/stop", s.handleConvertStop)
		api.POST("/upload_cookies", s.handleAPIUploadCookies)
	}

	r.GET("/admin/login", s.handleAdminLoginForm)
	r.POST("/admin/login", s.handleAdminLogin)
	r.POST("/admin/logout", s.handleAdminLogout)

	admin := r.Group("/admin", s.requireAdmin)
	{
		admin.GET("", s.handleAdmin)
		admin.POST("/sweep", s.handleAdminSweep)
		admin.POST("/cookies/delete", s.handleAdminDeleteCookies)
	}

	return r
}
