package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/videocatcher/internal/model"
)

// FFmpeg constants for conversion settings
const (
	VideoCodec  = "libx264"
	VideoPreset = "medium"
	VideoCRF    = "23"

	AudioCodec   = "aac"
	AudioBitrate = "128k"

	FastStartFlag = "+faststart"

	ConvertedSuffix = "-converted"

	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	TaskIDPrefix        = "convert-"
	OutputExtensionMP4  = ".mp4"
)

// Service handles MP4 conversion of downloaded media files. Conversion runs
// in the background; callers poll the task via GetTask.
type Service struct {
	tasks      map[string]*model.ConversionTask
	tasksMutex sync.RWMutex
}

// NewService creates a new conversion service.
func NewService() *Service {
	return &Service{
		tasks: make(map[string]*model.ConversionTask),
	}
}

// StartConversion starts converting a downloaded file to MP4.
func (s *Service) StartConversion(inputPath string) (*model.ConversionTask, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	// One active conversion per file
	for _, task := range s.tasks {
		if task.InputPath == inputPath && task.Status.IsActive() {
			return nil, fmt.Errorf("conversion already in progress for file: %s", inputPath)
		}
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file does not exist: %s", inputPath)
	}

	outputPath := generateOutputPath(inputPath)

	task := &model.ConversionTask{
		ID:         generateTaskID(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Filename:   filepath.Base(outputPath),
		Status:     model.TaskStatusPending,
		Progress:   0.0,
		Percent:    0,
		StartedAt:  time.Now(),
	}

	s.tasks[task.ID] = task

	go s.runConversion(task)

	snapshot := *task
	return &snapshot, nil
}

// StopConversion stops a running conversion task.
func (s *Service) StopConversion(taskID string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return fmt.Errorf("conversion task not found: %s", taskID)
	}

	if !task.Status.IsActive() {
		return fmt.Errorf("conversion task is not active: %s", task.Status)
	}

	task.Status = model.TaskStatusStopping
	return nil
}

// runConversion performs the actual conversion.
func (s *Service) runConversion(task *model.ConversionTask) {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusStarting
	s.tasksMutex.Unlock()

	duration, err := s.getVideoDuration(task.InputPath)
	if err != nil {
		log.Printf("Failed to get video duration for %s: %v", task.InputPath, err)
		s.setTaskError(task, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Monitor for stop requests
	go func() {
		for {
			s.tasksMutex.RLock()
			status := task.Status
			s.tasksMutex.RUnlock()

			if status == model.TaskStatusStopping {
				cancel()
				return
			}
			if status.IsFinished() {
				return
			}
			time.Sleep(100 * time.Millisecond)
		}
	}()

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusDownloading
	s.tasksMutex.Unlock()

	args := s.BuildFFmpegArgs(task.InputPath, task.OutputPath)
	cmd := exec.CommandContext(ctx, FFmpegCommand, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.setTaskError(task, fmt.Errorf("failed to create stderr pipe: %w", err))
		return
	}

	if err := cmd.Start(); err != nil {
		s.setTaskError(task, fmt.Errorf("failed to start ffmpeg: %w", err))
		return
	}

	go s.monitorProgress(stderr, task, duration)

	err = cmd.Wait()

	s.tasksMutex.Lock()
	if ctx.Err() == context.Canceled {
		task.Status = model.TaskStatusStopped
		// Remove partial output file
		os.Remove(task.OutputPath)
	} else if err != nil {
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
		os.Remove(task.OutputPath)
	} else {
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()
}

// GetTask returns a copy of a conversion task by ID. The background
// conversion goroutine mutates the live task under the lock; callers get a
// race-free snapshot.
func (s *Service) GetTask(taskID string) (*model.ConversionTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[taskID]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// GetAllTasks returns copies of all conversion tasks.
func (s *Service) GetAllTasks() []*model.ConversionTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.ConversionTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		snapshot := *task
		tasks = append(tasks, &snapshot)
	}
	return tasks
}

// BuildFFmpegArgs builds the ffmpeg command arguments.
func (s *Service) BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", VideoCodec,
		"-preset", VideoPreset,
		"-crf", VideoCRF,
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-movflags", FastStartFlag,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// getVideoDuration gets the duration of a video file using ffprobe.
func (s *Service) getVideoDuration(filePath string) (float64, error) {
	cmd := exec.Command(FFprobeCommand, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// monitorProgress parses ffmpeg progress output lines (out_time_us=N).
func (s *Service) monitorProgress(stderr io.ReadCloser, task *model.ConversionTask, totalDuration float64) {
	defer stderr.Close()
	scanner := bufio.NewScanner(stderr)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !strings.HasPrefix(line, ProgressTimePrefix) {
			continue
		}
		timeMicroseconds, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil {
			continue
		}

		timeSeconds := float64(timeMicroseconds) / 1000000.0
		if totalDuration <= 0 {
			continue
		}

		progress := timeSeconds / totalDuration
		if progress > 1.0 {
			progress = 1.0
		}

		s.tasksMutex.Lock()
		task.Progress = progress
		task.Percent = int(progress * 100)
		s.tasksMutex.Unlock()
	}
}

// setTaskError sets an error state for a task.
func (s *Service) setTaskError(task *model.ConversionTask, err error) {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusError
	task.LastError = err.Error()
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()
}

// generateOutputPath generates the output path for a converted file.
func generateOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(inputPath, ext)
	return baseName + ConvertedSuffix + OutputExtensionMP4
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
