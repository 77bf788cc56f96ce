package platform

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// File extensions to skip during cleanup: in-progress download artifacts.
var (
	SkippedExtensions = []string{".part", ".ytdl", ".tmp"}
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// SanitizeFilename reduces a client-supplied filename to a safe base name.
// Path separators and parent references are rejected by returning an empty
// string.
func SanitizeFilename(name string) string {
	if name == "" {
		return ""
	}
	if name != filepath.Base(name) {
		return ""
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return ""
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ""
	}
	return name
}

// RemoveFilesOlderThan deletes regular files in dir whose modification time
// is older than ttl, skipping in-progress download artifacts. Returns how
// many files were removed.
func RemoveFilesOlderThan(dir string, ttl time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("Cleanup skipped, cannot read %s: %v", dir, err)
		return 0
	}

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isSkippedExtension(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("Cleanup failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed
}

// DirSize returns the total size in bytes of regular files directly in dir.
func DirSize(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, err := entry.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

// isSkippedExtension reports whether the filename carries an in-progress
// download extension.
func isSkippedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, skipped := range SkippedExtensions {
		if ext == skipped {
			return true
		}
	}
	return false
}
