package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ytget/videocatcher/internal/cookies"
	"github.com/ytget/videocatcher/internal/history"
	"github.com/ytget/videocatcher/internal/model"
)

type fakeDownloader struct {
	lastSessionID string
	lastPlatform  model.Platform
	lastURL       string
	task          *model.DownloadTask
	err           error
}

func (d *fakeDownloader) Download(ctx context.Context, sessionID string, p model.Platform, url string) (*model.DownloadTask, error) {
	d.lastSessionID = sessionID
	d.lastPlatform = p
	d.lastURL = url
	if d.err != nil {
		return nil, d.err
	}
	if d.task == nil {
		d.task = &model.DownloadTask{
			ID:       "dl-test",
			URL:      url,
			Platform: p,
			Status:   model.TaskStatusCompleted,
			Filename: "video.mp4",
			Title:    "Test Video",
		}
	}
	return d.task, nil
}

func (d *fakeDownloader) GetTask(id string) (*model.DownloadTask, bool) {
	if d.task != nil && d.task.ID == id {
		return d.task, true
	}
	return nil, false
}

func (d *fakeDownloader) GetAllTasks() []*model.DownloadTask {
	if d.task == nil {
		return nil
	}
	return []*model.DownloadTask{d.task}
}

type fakeCookieStore struct {
	entries map[string]cookies.Entry
	putErr  error
}

func newFakeCookieStore() *fakeCookieStore {
	return &fakeCookieStore{entries: make(map[string]cookies.Entry)}
}

func cookieKey(sessionID string, p model.Platform) string {
	return sessionID + "|" + p.String()
}

func (s *fakeCookieStore) Put(sessionID string, p model.Platform, data []byte) (cookies.Entry, error) {
	if s.putErr != nil {
		return cookies.Entry{}, s.putErr
	}
	entry := cookies.Entry{
		SessionID:  sessionID,
		Platform:   p,
		UploadedAt: time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	s.entries[cookieKey(sessionID, p)] = entry
	return entry, nil
}

func (s *fakeCookieStore) GetValid(sessionID string, p model.Platform) (cookies.Entry, bool) {
	entry, ok := s.entries[cookieKey(sessionID, p)]
	return entry, ok
}

func (s *fakeCookieStore) Snapshot(sessionID string, p model.Platform) (string, func(), error) {
	if _, ok := s.entries[cookieKey(sessionID, p)]; !ok {
		return "", nil, cookies.ErrNoSession
	}
	return "/tmp/snap.txt", func() {}, nil
}

func (s *fakeCookieStore) Delete(sessionID string, p model.Platform) {
	delete(s.entries, cookieKey(sessionID, p))
}

func (s *fakeCookieStore) Sweep() int { return 0 }

func (s *fakeCookieStore) Entries() []cookies.Entry {
	out := make([]cookies.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out
}

type fakeConverter struct {
	task      *model.ConversionTask
	err       error
	stoppedID string
}

func (c *fakeConverter) StartConversion(inputPath string) (*model.ConversionTask, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.task = &model.ConversionTask{ID: "convert-test", InputPath: inputPath, Status: model.TaskStatusStarting}
	return c.task, nil
}

func (c *fakeConverter) StopConversion(taskID string) error {
	c.stoppedID = taskID
	return nil
}

func (c *fakeConverter) GetTask(taskID string) (*model.ConversionTask, bool) {
	if c.task != nil && c.task.ID == taskID {
		return c.task, true
	}
	return nil, false
}

func (c *fakeConverter) GetAllTasks() []*model.ConversionTask { return nil }

type fakePlaylists struct {
	playlist *model.Playlist
	err      error
}

func (p *fakePlaylists) Expand(ctx context.Context, url string) (*model.Playlist, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.playlist, nil
}

type testEnv struct {
	server     *Server
	router     *gin.Engine
	downloader *fakeDownloader
	store      *fakeCookieStore
	converter  *fakeConverter
	playlists  *fakePlaylists
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		downloader: &fakeDownloader{},
		store:      newFakeCookieStore(),
		converter:  &fakeConverter{},
		playlists:  &fakePlaylists{},
	}

	historyStore := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 50)
	env.server = NewServer(env.downloader, env.store, env.converter, env.playlists, historyStore, nil, Config{
		DownloadsDir:   t.TempDir(),
		AdminPassword:  "hunter2",
		APIUploadToken: "sync-token",
		SessionSecret:  "test-secret",
	})
	env.router = env.server.Router()
	return env
}

func (env *testEnv) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

const validCookies = "# Netscape HTTP Cookie File\n.youtube.com\tTRUE\t/\tTRUE\t1999999999\tSID\tabc123\n"

// lastCookies keeps only the last Set-Cookie per name, mirroring how a
// cookie jar resolves duplicate headers from the same response.
func lastCookies(cs []*http.Cookie) []*http.Cookie {
	byName := map[string]*http.Cookie{}
	var order []string
	for _, c := range cs {
		if _, seen := byName[c.Name]; !seen {
			order = append(order, c.Name)
		}
		byName[c.Name] = c
	}
	out := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write field %s: %v", key, err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("cookies", filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestHandleDownload_Success(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/download", map[string]string{"url": "https://www.tiktok.com/@a/video/1"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["success"] != true {
		t.Errorf("Expected success true, got %v", resp["success"])
	}
	if resp["download_link"] != "/downloads/video.mp4" {
		t.Errorf("Expected download link /downloads/video.mp4, got %v", resp["download_link"])
	}
	if env.downloader.lastPlatform != model.PlatformTikTok {
		t.Errorf("Expected detected platform tiktok, got %s", env.downloader.lastPlatform)
	}
}

func TestHandleDownload_ExplicitPlatform(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/download", map[string]string{
		"url":      "https://example.com/watch",
		"platform": "YouTube",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.downloader.lastPlatform != model.PlatformYouTube {
		t.Errorf("Expected platform youtube, got %s", env.downloader.lastPlatform)
	}
}

func TestHandleDownload_MissingURL(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/download", map[string]string{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleDownload_UnknownPlatform(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/download", map[string]string{"url": "https://vimeo.com/12345"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if code := resp["code"]; code != CodeValidation {
		t.Errorf("Expected code %s, got %v", CodeValidation, code)
	}
}

func TestHandleDownload_AuthRequired(t *testing.T) {
	env := newTestEnv(t)
	env.downloader.err = &model.AuthRequiredError{Platform: model.PlatformYouTube}

	w := env.postJSON("/download", map[string]string{"url": "https://youtube.com/watch?v=abc"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if resp["code"] != CodeAuthRequired {
		t.Errorf("Expected code %s, got %v", CodeAuthRequired, resp["code"])
	}
	if resp["platform"] != "youtube" {
		t.Errorf("Expected platform youtube in response, got %v", resp["platform"])
	}
}

func TestHandleDownload_ExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	env.downloader.err = &model.ExtractionError{Platform: model.PlatformTikTok, Err: context.DeadlineExceeded}

	w := env.postJSON("/download", map[string]string{"url": "https://www.tiktok.com/@a/video/1"})

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}

func TestHandleDownload_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.downloader.err = &model.StorageError{Op: "cookie snapshot", Err: context.DeadlineExceeded}

	w := env.postJSON("/download", map[string]string{"url": "https://youtube.com/watch?v=abc"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if resp["code"] != CodeStorage {
		t.Errorf("Expected code %s, got %v", CodeStorage, resp["code"])
	}
}

func TestHandleDownload_SharedSessionFallback(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(SharedSessionID, model.PlatformYouTube, []byte(validCookies))

	w := env.postJSON("/download", map[string]string{"url": "https://youtube.com/watch?v=abc"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.downloader.lastSessionID != SharedSessionID {
		t.Errorf("Expected fallback to shared session, got %q", env.downloader.lastSessionID)
	}
}

func TestHandleDownload_TikTokKeepsOwnSession(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(SharedSessionID, model.PlatformYouTube, []byte(validCookies))

	w := env.postJSON("/download", map[string]string{"url": "https://www.tiktok.com/@a/video/1"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if env.downloader.lastSessionID == SharedSessionID {
		t.Error("TikTok download should not use the shared cookie session")
	}
}

func TestHandleUploadCookies(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"platform": "youtube"}, "cookies.txt", validCookies)
	req := httptest.NewRequest(http.MethodPost, "/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["platform"] != "youtube" {
		t.Errorf("Expected platform youtube, got %v", resp["platform"])
	}
	if _, err := time.Parse(time.RFC3339, resp["expires_at"].(string)); err != nil {
		t.Errorf("Expected RFC3339 expires_at, got %v", resp["expires_at"])
	}
	if len(env.store.entries) != 1 {
		t.Errorf("Expected 1 stored entry, got %d", len(env.store.entries))
	}
}

func TestHandleUploadCookies_InvalidFile(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"platform": "youtube"}, "cookies.txt", "not a cookie file")
	req := httptest.NewRequest(http.MethodPost, "/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if len(env.store.entries) != 0 {
		t.Errorf("Expected no stored entries, got %d", len(env.store.entries))
	}
}

func TestHandleUploadCookies_PlatformWithoutCookies(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"platform": "tiktok"}, "cookies.txt", validCookies)
	req := httptest.NewRequest(http.MethodPost, "/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleUploadCookies_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"platform": "youtube"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleAPIUploadCookies(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"platform": "youtube"}, "cookies.txt", validCookies)
	req := httptest.NewRequest(http.MethodPost, "/api/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Upload-Token", "sync-token")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, ok := env.store.GetValid(SharedSessionID, model.PlatformYouTube); !ok {
		t.Error("Expected cookies stored under the shared session")
	}
}

func TestHandleAPIUploadCookies_BadToken(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"platform": "youtube"}, "cookies.txt", validCookies)
	req := httptest.NewRequest(http.MethodPost, "/api/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Upload-Token", "wrong")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestHandleAPIUploadCookies_TokenUnset(t *testing.T) {
	env := newTestEnv(t)
	env.server.cfg.APIUploadToken = ""

	body, contentType := multipartUpload(t, map[string]string{"platform": "youtube"}, "cookies.txt", validCookies)
	req := httptest.NewRequest(http.MethodPost, "/api/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 when token unset, got %d", w.Code)
	}
}

func TestHandleAPIUploadCookies_PlatformWithoutCookies(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, map[string]string{"platform": "tiktok"}, "cookies.txt", validCookies)
	req := httptest.NewRequest(http.MethodPost, "/api/upload_cookies", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Upload-Token", "sync-token")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if len(env.store.entries) != 0 {
		t.Errorf("Expected no stored entries, got %d", len(env.store.entries))
	}
}

func TestHandleDownloadFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.server.cfg.DownloadsDir, "clip.mp4")
	if err := os.WriteFile(path, []byte("video data"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/downloads/clip.mp4", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "clip.mp4") {
		t.Errorf("Expected attachment disposition, got %q", w.Header().Get("Content-Disposition"))
	}
	if w.Body.String() != "video data" {
		t.Errorf("Expected file body, got %q", w.Body.String())
	}
}

func TestHandleDownloadFile_TraversalRejected(t *testing.T) {
	env := newTestEnv(t)
	outside := filepath.Join(filepath.Dir(env.server.cfg.DownloadsDir), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/downloads/..%2Fsecret.txt", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code == http.StatusOK && w.Body.String() == "secret" {
		t.Error("Traversal request must not serve files outside the downloads directory")
	}
}

func TestHandleDownloadFile_Missing(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/downloads/nope.mp4", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	env := newTestEnv(t)
	env.server.history.Append(model.PlatformTikTok, "https://www.tiktok.com/@a/video/1", "a.mp4", "First")

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeJSON(t, w)
	items, ok := resp["history"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("Expected 1 history entry, got %v", resp["history"])
	}
}

func TestHandlePlaylist(t *testing.T) {
	env := newTestEnv(t)
	env.playlists.playlist = &model.Playlist{
		ID:  "PLtest",
		URL: "https://www.youtube.com/playlist?list=PLtest",
		Entries: []model.PlaylistEntry{
			{ID: "a1", Title: "One", URL: "https://www.youtube.com/watch?v=a1"},
		},
		Total: 1,
	}

	w := env.postJSON("/api/playlist", map[string]string{"url": "https://www.youtube.com/playlist?list=PLtest"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["id"] != "PLtest" {
		t.Errorf("Expected playlist id PLtest, got %v", resp["id"])
	}
}

func TestHandlePlaylist_MissingURL(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/api/playlist", map[string]string{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleConvert(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON("/api/convert", map[string]string{"filename": "clip.webm"})

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	if env.converter.task == nil {
		t.Fatal("Expected conversion task to be started")
	}
	if filepath.Base(env.converter.task.InputPath) != "clip.webm" {
		t.Errorf("Expected input clip.webm, got %s", env.converter.task.InputPath)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/convert/convert-test", nil)
	statusRec := httptest.NewRecorder()
	env.router.ServeHTTP(statusRec, req)
	if statusRec.Code != http.StatusOK {
		t.Errorf("Expected status 200 for task lookup, got %d", statusRec.Code)
	}
}

func TestHandleConvertStop(t *testing.T) {
	env := newTestEnv(t)
	env.converter.task = &model.ConversionTask{ID: "convert-test", Status: model.TaskStatusDownloading}

	req := httptest.NewRequest(http.MethodPost, "/api/convert/convert-test/stop", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.converter.stoppedID != "convert-test" {
		t.Errorf("Expected stop request for convert-test, got %q", env.converter.stoppedID)
	}
}

func TestHandleConvertStop_UnknownTask(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/convert/missing/stop", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if env.converter.stoppedID != "" {
		t.Errorf("Expected no stop request, got %q", env.converter.stoppedID)
	}
}

func TestHandleConvert_UnknownTask(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/convert/missing", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestAdmin_RedirectsWithoutLogin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("Expected redirect to /admin/login, got %q", loc)
	}
}

func TestAdmin_LoginFlow(t *testing.T) {
	env := newTestEnv(t)

	form := strings.NewReader("password=hunter2")
	loginReq := httptest.NewRequest(http.MethodPost, "/admin/login", form)
	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRec := httptest.NewRecorder()
	env.router.ServeHTTP(loginRec, loginReq)

	if loginRec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect 303 after login, got %d: %s", loginRec.Code, loginRec.Body.String())
	}

	adminReq := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range lastCookies(loginRec.Result().Cookies()) {
		adminReq.AddCookie(c)
	}
	adminRec := httptest.NewRecorder()
	env.router.ServeHTTP(adminRec, adminReq)

	if adminRec.Code != http.StatusOK {
		t.Errorf("Expected status 200 on admin page after login, got %d", adminRec.Code)
	}
}

func TestAdmin_DeleteSharedCookies(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(SharedSessionID, model.PlatformYouTube, []byte(validCookies))

	form := strings.NewReader("password=hunter2")
	loginReq := httptest.NewRequest(http.MethodPost, "/admin/login", form)
	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRec := httptest.NewRecorder()
	env.router.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect 303 after login, got %d", loginRec.Code)
	}

	deleteReq := httptest.NewRequest(http.MethodPost, "/admin/cookies/delete", strings.NewReader("platform=youtube"))
	deleteReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range lastCookies(loginRec.Result().Cookies()) {
		deleteReq.AddCookie(c)
	}
	deleteRec := httptest.NewRecorder()
	env.router.ServeHTTP(deleteRec, deleteReq)

	if deleteRec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect 303, got %d: %s", deleteRec.Code, deleteRec.Body.String())
	}
	if _, ok := env.store.GetValid(SharedSessionID, model.PlatformYouTube); ok {
		t.Error("Expected shared youtube cookies to be deleted")
	}
}

func TestAdmin_DeleteCookies_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(SharedSessionID, model.PlatformYouTube, []byte(validCookies))

	req := httptest.NewRequest(http.MethodPost, "/admin/cookies/delete", strings.NewReader("platform=youtube"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/admin/login" {
		t.Errorf("Expected redirect to /admin/login, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if _, ok := env.store.GetValid(SharedSessionID, model.PlatformYouTube); !ok {
		t.Error("Expected cookies untouched without admin login")
	}
}

func TestAdmin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	form := strings.NewReader("password=wrong")
	req := httptest.NewRequest(http.MethodPost, "/admin/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAdmin_DisabledWithoutPassword(t *testing.T) {
	env := newTestEnv(t)
	env.server.cfg.AdminPassword = ""

	form := strings.NewReader("password=")
	req := httptest.NewRequest(http.MethodPost, "/admin/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"youtube", "tiktok", "instagram", "upload_cookies"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected index page to mention %q", want)
		}
	}
}
