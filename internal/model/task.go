package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DownloadTask represents a single download dispatched to the extraction
// library. Tasks are kept in memory for the admin status page; they are not
// persisted.
type DownloadTask struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Platform   Platform   `json:"platform"`
	Status     TaskStatus `json:"status"`
	Progress   float64    `json:"progress"` // 0.0 to 1.0
	Percent    int        `json:"percent"`  // 0 to 100
	Speed      string     `json:"speed,omitempty"`
	ETASec     int        `json:"eta_sec"` // -1 if unknown
	LastError  string     `json:"error,omitempty"`
	OutputPath string     `json:"-"`
	Filename   string     `json:"filename,omitempty"` // base name of OutputPath
	Title      string     `json:"title,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`
}

// ConversionTask represents a single MP4 conversion of a downloaded file.
type ConversionTask struct {
	ID         string     `json:"id"`
	InputPath  string     `json:"-"`
	OutputPath string     `json:"-"`
	Filename   string     `json:"filename,omitempty"` // base name of OutputPath
	Status     TaskStatus `json:"status"`
	Progress   float64    `json:"progress"` // 0.0 to 1.0
	Percent    int        `json:"percent"`  // 0 to 100
	LastError  string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (dt *DownloadTask) GetETAString() string {
	if dt.ETASec <= 0 {
		return "—"
	}

	hours := dt.ETASec / 3600
	minutes := (dt.ETASec % 3600) / 60
	seconds := dt.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" && !strings.HasPrefix(dt.Title, "http") {
		return dt.Title
	}

	if dt.OutputPath != "" {
		filename := filepath.Base(dt.OutputPath)
		if idx := strings.LastIndex(filename, "."); idx > 0 {
			filename = filename[:idx]
		}
		return filename
	}

	return dt.URL
}
