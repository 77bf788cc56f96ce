// Package history persists a bounded log of completed downloads to a JSON
// file so the UI can list recent activity across restarts.
package history

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/videocatcher/internal/model"
)

// History file permissions
const historyFilePerm = 0644

// Entry is one completed download.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Platform  model.Platform `json:"platform"`
	URL       string         `json:"url"`
	Filename  string         `json:"filename"`
	Title     string         `json:"title,omitempty"`
}

// Store is a JSON-file-backed history log trimmed to a maximum length.
type Store struct {
	mu   sync.Mutex
	path string
	max  int
}

// NewStore creates a history store writing to path, keeping at most max
// entries.
func NewStore(path string, max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{path: path, max: max}
}

// Append records one completed download. Persistence failures are logged,
// not fatal: history is best-effort.
func (s *Store) Append(platform model.Platform, url, filename, title string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Platform:  platform,
		URL:       url,
		Filename:  filename,
		Title:     title,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()
	entries = append(entries, entry)
	if len(entries) > s.max {
		entries = entries[len(entries)-s.max:]
	}
	s.saveLocked(entries)

	return entry
}

// List returns recorded entries, newest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	entries := s.loadLocked()
	s.mu.Unlock()

	// stored oldest-first; reverse for display
	result := make([]Entry, len(entries))
	for i, entry := range entries {
		result[len(entries)-1-i] = entry
	}
	return result
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loadLocked())
}

// loadLocked reads the history file. A missing or corrupt file yields an
// empty history.
func (s *Store) loadLocked() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to read history file %s: %v", s.path, err)
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("Failed to parse history file %s: %v", s.path, err)
		return nil
	}
	return entries
}

// saveLocked writes entries via a temp file and rename.
func (s *Store) saveLocked(entries []Entry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("Failed to encode history: %v", err)
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		log.Printf("Failed to create history temp file: %v", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		log.Printf("Failed to write history: %v", err)
		return
	}
	if err := tmp.Chmod(historyFilePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		log.Printf("Failed to save history file %s: %v", s.path, err)
	}
}
