package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")

	if err := CreateDirectoryIfNotExists(dir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Expected directory to exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected a directory")
	}

	// Second call on an existing directory is a no-op
	if err := CreateDirectoryIfNotExists(dir); err != nil {
		t.Errorf("Expected no error for existing directory, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"video.mp4", "video.mp4"},
		{"abc12345_My_Video.webm", "abc12345_My_Video.webm"},
		{"", ""},
		{"../etc/passwd", ""},
		{"..", ""},
		{".", ""},
		{".hidden", ""},
		{"dir/video.mp4", ""},
		{"..\\windows", ""},
	}

	for _, test := range tests {
		if result := SanitizeFilename(test.input); result != test.expected {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestRemoveFilesOlderThan(t *testing.T) {
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "old.mp4")
	newFile := filepath.Join(dir, "new.mp4")
	partFile := filepath.Join(dir, "old.part")
	for _, path := range []string{oldFile, newFile, partFile} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	stale := time.Now().Add(-3 * time.Hour)
	for _, path := range []string{oldFile, partFile} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("Failed to age %s: %v", path, err)
		}
	}

	removed := RemoveFilesOlderThan(dir, 2*time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed file, got %d", removed)
	}

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("Expected old file to be removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Error("Expected new file to survive")
	}
	if _, err := os.Stat(partFile); err != nil {
		t.Error("Expected in-progress artifact to survive despite age")
	}
}

func TestRemoveFilesOlderThan_MissingDir(t *testing.T) {
	if removed := RemoveFilesOlderThan(filepath.Join(t.TempDir(), "missing"), time.Hour); removed != 0 {
		t.Errorf("Expected 0 removed for missing dir, got %d", removed)
	}
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.bin"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	if size := DirSize(dir); size != 150 {
		t.Errorf("Expected dir size 150, got %d", size)
	}
}
