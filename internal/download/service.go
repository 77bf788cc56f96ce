package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/videocatcher/internal/cookies"
	"github.com/ytget/videocatcher/internal/model"
)

// Task ID prefix
const TaskIDPrefix = "dl-"

// Service handles download operations. It is the platform dispatcher: it
// decides per platform whether a cookie session is required, resolves the
// cookie file, and hands the request to the extractor under a bounded
// timeout and parallelism.
type Service struct {
	tasks      map[string]*model.DownloadTask
	tasksMutex sync.RWMutex

	slots     chan struct{}
	timeout   time.Duration
	extractor Extractor
	store     cookies.SessionStore
}

// NewService creates a new download service.
func NewService(extractor Extractor, store cookies.SessionStore, maxParallel int, timeout time.Duration) *Service {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Service{
		tasks:     make(map[string]*model.DownloadTask),
		slots:     make(chan struct{}, maxParallel),
		timeout:   timeout,
		extractor: extractor,
		store:     store,
	}
}

// Download dispatches one download and blocks until it finishes. TikTok
// proceeds without cookies; YouTube and Instagram refuse to start unless
// the session holds a valid cookie entry.
func (s *Service) Download(ctx context.Context, sessionID string, platform model.Platform, url string) (*model.DownloadTask, error) {
	req := ExtractRequest{URL: url, Platform: platform}

	if platform.RequiresCookies() {
		snap, cleanup, err := s.store.Snapshot(sessionID, platform)
		if errors.Is(err, cookies.ErrNoSession) {
			return nil, &model.AuthRequiredError{Platform: platform}
		}
		if err != nil {
			return nil, err
		}
		defer cleanup()
		req.CookieFile = snap
	}

	// Bound concurrent extractions; a waiting request still honors its
	// client disconnecting.
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.slots }()

	task := &model.DownloadTask{
		ID:        generateTaskID(),
		URL:       url,
		Platform:  platform,
		Status:    model.TaskStatusStarting,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
	s.tasksMutex.Lock()
	s.tasks[task.ID] = task
	s.tasksMutex.Unlock()

	s.setStatus(task, model.TaskStatusDownloading)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	result, err := s.extractor.Extract(ctx, req, func(p Progress) {
		s.updateTaskProgress(task, started, p)
	})

	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	task.FinishedAt = time.Now()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			task.Status = model.TaskStatusStopped
			task.LastError = "canceled"
			return task, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = &model.ExtractionError{
				Platform: platform,
				Err:      fmt.Errorf("download timed out after %s", s.timeout),
			}
		}
		var extractionErr *model.ExtractionError
		if !errors.As(err, &extractionErr) {
			err = &model.ExtractionError{Platform: platform, Err: err}
		}
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
		return task, err
	}

	task.Status = model.TaskStatusCompleted
	task.Progress = 1.0
	task.Percent = 100
	task.OutputPath = result.OutputPath
	task.Filename = filepath.Base(result.OutputPath)
	if task.Title == "" {
		task.Title = result.Title
	}
	return task, nil
}

// GetTask returns a copy of a task by ID. Live task structs are mutated
// under the service lock while a download runs; handing out copies keeps
// readers race-free.
func (s *Service) GetTask(id string) (*model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// GetAllTasks returns copies of all tasks, snapshotted under the lock.
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		snapshot := *task
		tasks = append(tasks, &snapshot)
	}
	return tasks
}

// setStatus updates a task status under the service lock.
func (s *Service) setStatus(task *model.DownloadTask, status model.TaskStatus) {
	s.tasksMutex.Lock()
	task.Status = status
	s.tasksMutex.Unlock()
}

// updateTaskProgress folds one extractor progress report into the task.
func (s *Service) updateTaskProgress(task *model.DownloadTask, started time.Time, p Progress) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if p.TotalBytes > 0 {
		percent := float64(p.DownloadedBytes) / float64(p.TotalBytes) * 100
		task.Percent = int(percent)
		task.Progress = percent / 100.0
	}

	if elapsed := time.Since(started); elapsed.Seconds() > 0 && p.DownloadedBytes > 0 {
		bytesPerSecond := float64(p.DownloadedBytes) / elapsed.Seconds()
		task.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
	}

	task.ETASec = p.ETASec

	if p.Title != "" && task.Title == "" {
		task.Title = p.Title
	}
}

// generateTaskID generates a unique task ID using UUID v7 for better uniqueness and time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
