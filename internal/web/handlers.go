package web

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ytget/videocatcher/internal/cookies"
	"github.com/ytget/videocatcher/internal/model"
	"github.com/ytget/videocatcher/internal/platform"
)

type downloadRequest struct {
	URL      string `form:"url" json:"url"`
	Platform string `form:"platform" json:"platform"`
}

type playlistRequest struct {
	URL string `form:"url" json:"url"`
}

type convertRequest struct {
	Filename string `form:"filename" json:"filename"`
}

// handleIndex serves the UI.
func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Platforms": model.Platforms(),
		"History":   s.history.List(),
	})
}

// handleDownload dispatches one download and streams back the result link.
func (s *Server) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, model.NewValidationError("invalid request body: %v", err))
		return
	}
	if req.URL == "" {
		respondError(c, model.NewValidationError("please provide a video URL"))
		return
	}

	p, err := s.resolvePlatform(req.Platform, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := s.downloader.Download(c.Request.Context(), s.effectiveSession(c, p), p, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	entry := s.history.Append(p, req.URL, task.Filename, task.Title)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"download_link": "/downloads/" + task.Filename,
		"filename":      task.Filename,
		"title":         task.GetDisplayTitle(),
		"task_id":       task.ID,
		"history_id":    entry.ID,
	})
}

// handleUploadCookies validates and stores a Netscape cookie file for the
// requesting session.
func (s *Server) handleUploadCookies(c *gin.Context) {
	p, err := model.ParsePlatform(c.PostForm("platform"))
	if err != nil {
		respondError(c, model.NewValidationError("%v", err))
		return
	}
	if !p.RequiresCookies() {
		respondError(c, model.NewValidationError("%s downloads do not use cookies", p))
		return
	}

	entry, err := s.storeCookieUpload(c, sessionID(c), p)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"platform":   p.String(),
		"expires_at": entry.ExpiresAt.Format(time.RFC3339),
	})
}

// handleAPIUploadCookies is the token-protected automated sync endpoint.
// Uploads land in the shared session used as a fallback by all browsers.
func (s *Server) handleAPIUploadCookies(c *gin.Context) {
	if s.cfg.APIUploadToken == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "API upload not enabled"})
		return
	}
	token := c.GetHeader("X-Upload-Token")
	if token == "" {
		token = c.PostForm("token")
	}
	if token != s.cfg.APIUploadToken {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid upload token"})
		return
	}

	p, err := model.ParsePlatform(c.PostForm("platform"))
	if err != nil {
		respondError(c, model.NewValidationError("%v", err))
		return
	}
	if !p.RequiresCookies() {
		respondError(c, model.NewValidationError("%s downloads do not use cookies", p))
		return
	}

	entry, err := s.storeCookieUpload(c, SharedSessionID, p)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("API uploaded %s cookies via token", p)
	c.JSON(http.StatusOK, gin.H{"ok": true, "expires_at": entry.ExpiresAt.Format(time.RFC3339)})
}

// storeCookieUpload reads, validates, and stores the "cookies" form file.
func (s *Server) storeCookieUpload(c *gin.Context, sid string, p model.Platform) (cookies.Entry, error) {
	fileHeader, err := c.FormFile("cookies")
	if err != nil {
		return cookies.Entry{}, model.NewValidationError("no cookie file uploaded")
	}
	if fileHeader.Size > MaxCookieFileSize {
		return cookies.Entry{}, model.NewValidationError("cookie file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return cookies.Entry{}, model.NewValidationError("cannot read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxCookieFileSize+1))
	if err != nil {
		return cookies.Entry{}, model.NewValidationError("cannot read uploaded file")
	}
	if len(data) > MaxCookieFileSize {
		return cookies.Entry{}, model.NewValidationError("cookie file too large")
	}

	if err := cookies.ValidateNetscape(data); err != nil {
		return cookies.Entry{}, model.NewValidationError("invalid cookie file: %v", err)
	}

	return s.store.Put(sid, p, data)
}

// handleDownloadFile serves a completed download as an attachment.
func (s *Server) handleDownloadFile(c *gin.Context) {
	name := platform.SanitizeFilename(c.Param("filename"))
	if name == "" {
		respondError(c, model.NewValidationError("invalid filename"))
		return
	}

	c.FileAttachment(filepath.Join(s.cfg.DownloadsDir, name), name)
}

// handleHistory lists recent downloads, newest first.
func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": s.history.List()})
}

// handlePlaylist expands a playlist URL into per-video entries.
func (s *Server) handlePlaylist(c *gin.Context) {
	var req playlistRequest
	if err := c.ShouldBind(&req); err != nil || req.URL == "" {
		respondError(c, model.NewValidationError("please provide a playlist URL"))
		return
	}

	playlist, err := s.playlists.Expand(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// handleConvertStart starts MP4 conversion of a completed download.
func (s *Server) handleConvertStart(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, model.NewValidationError("invalid request body: %v", err))
		return
	}

	name := platform.SanitizeFilename(req.Filename)
	if name == "" {
		respondError(c, model.NewValidationError("invalid filename"))
		return
	}

	task, err := s.converter.StartConversion(filepath.Join(s.cfg.DownloadsDir, name))
	if err != nil {
		respondError(c, model.NewValidationError("%v", err))
		return
	}

	c.JSON(http.StatusAccepted, task)
}

// handleConvertStatus reports one conversion task.
func (s *Server) handleConvertStatus(c *gin.Context) {
	task, ok := s.converter.GetTask(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleConvertStop requests cancellation of a running conversion.
func (s *Server) handleConvertStop(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.converter.GetTask(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion task not found"})
		return
	}
	if err := s.converter.StopConversion(id); err != nil {
		respondError(c, model.NewValidationError("%v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"stopping": true})
}

// handleAdminLoginForm serves the admin login page.
func (s *Server) handleAdminLoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_login.html", gin.H{})
}

// handleAdminLogin checks the admin password and flips the session flag.
func (s *Server) handleAdminLogin(c *gin.Context) {
	if s.cfg.AdminPassword == "" {
		c.HTML(http.StatusForbidden, "admin_login.html", gin.H{"Error": "admin access is disabled"})
		return
	}
	if c.PostForm("password") != s.cfg.AdminPassword {
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{"Error": "invalid password"})
		return
	}
	if err := setAdmin(c, true); err != nil {
		respondError(c, &model.StorageError{Op: "admin login", Err: err})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// handleAdminLogout drops the admin flag.
func (s *Server) handleAdminLogout(c *gin.Context) {
	if err := setAdmin(c, false); err != nil {
		log.Printf("Failed to clear admin session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// requireAdmin gates the admin pages behind the session flag.
func (s *Server) requireAdmin(c *gin.Context) {
	if !isAdmin(c) {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		c.Abort()
		return
	}
	c.Next()
}

// handleAdmin serves the status page. Session identifiers are truncated
// and cookie contents are never shown.
func (s *Server) handleAdmin(c *gin.Context) {
	type sessionView struct {
		Session   string
		Platform  string
		ExpiresAt string
		Shared    bool
	}

	entries := s.store.Entries()
	views := make([]sessionView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, sessionView{
			Session:   truncateSession(entry.SessionID),
			Platform:  entry.Platform.String(),
			ExpiresAt: entry.ExpiresAt.Format(time.RFC3339),
			Shared:    entry.SessionID == SharedSessionID,
		})
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Sessions":     views,
		"Tasks":        s.downloader.GetAllTasks(),
		"HistoryCount": s.history.Len(),
		"DiskUsage":    platform.DirSize(s.cfg.DownloadsDir),
	})
}

// handleAdminDeleteCookies removes the shared sync session's cookies for
// one platform. Per-browser entries stay; they expire via the sweeper.
func (s *Server) handleAdminDeleteCookies(c *gin.Context) {
	p, err := model.ParsePlatform(c.PostForm("platform"))
	if err != nil {
		respondError(c, model.NewValidationError("%v", err))
		return
	}
	s.store.Delete(SharedSessionID, p)
	c.Redirect(http.StatusSeeOther, "/admin")
}

// handleAdminSweep forces cookie expiry and downloads-directory cleanup.
func (s *Server) handleAdminSweep(c *gin.Context) {
	removed := s.store.Sweep()
	s.sweep()
	c.JSON(http.StatusOK, gin.H{"swept_cookie_sessions": removed})
}

// resolvePlatform parses an explicit platform name or detects one from the
// URL.
func (s *Server) resolvePlatform(name, url string) (model.Platform, error) {
	if name != "" {
		p, err := model.ParsePlatform(name)
		if err != nil {
			return "", model.NewValidationError("unsupported platform. Supported: YouTube, TikTok, Instagram")
		}
		return p, nil
	}
	p, ok := model.DetectPlatform(url)
	if !ok {
		return "", model.NewValidationError("unsupported platform. Supported: YouTube, TikTok, Instagram")
	}
	return p, nil
}

// effectiveSession picks the session whose cookies a download should use:
// the browser's own when it holds a valid entry, else the shared sync
// session. Platforms that need no cookies never touch the store.
func (s *Server) effectiveSession(c *gin.Context, p model.Platform) string {
	sid := sessionID(c)
	if !p.RequiresCookies() {
		return sid
	}
	if _, ok := s.store.GetValid(sid, p); ok {
		return sid
	}
	if _, ok := s.store.GetValid(SharedSessionID, p); ok {
		return SharedSessionID
	}
	return sid
}

// truncateSession shortens a session ID for display.
func truncateSession(sid string) string {
	if len(sid) <= 8 {
		return sid
	}
	return sid[:8] + "…"
}
