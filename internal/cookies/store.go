package cookies

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/videocatcher/internal/model"
)

// File permissions for stored cookie files
const cookieFilePerm = 0600

// Store is the file-backed cookie-session store. Map membership is guarded
// by a store-level mutex held only for lookups and swaps; everything slow
// (file writes, copies, removals) happens under the per-entry mutex so
// unrelated sessions never serialize.
type Store struct {
	mu      sync.RWMutex
	entries map[entryKey]*storeEntry

	dir string
	ttl time.Duration
	now func() time.Time
}

type entryKey struct {
	session  string
	platform model.Platform
}

type storeEntry struct {
	mu      sync.Mutex
	deleted bool
	Entry
}

// NewStore creates a cookie store persisting files under dir. Entries
// expire ttl after upload.
func NewStore(dir string, ttl time.Duration) *Store {
	return &Store{
		entries: make(map[entryKey]*storeEntry),
		dir:     dir,
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Used in tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Put stores data under a fresh session-scoped path and stamps the expiry.
// Any prior entry for (sessionID, platform) is replaced and its file
// removed. The write goes through a temp file and rename so a half-written
// file is never observable under the final path.
func (s *Store) Put(sessionID string, platform model.Platform, data []byte) (Entry, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s-%s.txt", sessionID, platform, uuid.NewString()))

	if err := writeFileAtomic(path, data); err != nil {
		return Entry{}, &model.StorageError{Op: "cookie upload", Err: err}
	}

	uploadedAt := s.now()
	entry := &storeEntry{
		Entry: Entry{
			SessionID:  sessionID,
			Platform:   platform,
			FilePath:   path,
			UploadedAt: uploadedAt,
			ExpiresAt:  uploadedAt.Add(s.ttl),
		},
	}

	key := entryKey{session: sessionID, platform: platform}
	s.mu.Lock()
	old := s.entries[key]
	s.entries[key] = entry
	s.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		if !old.deleted {
			old.deleted = true
			removeFile(old.FilePath)
		}
		old.mu.Unlock()
	}

	return entry.Entry, nil
}

// GetValid returns the entry for (sessionID, platform) if present and not
// expired. An expired entry is deleted together with its backing file
// before "absent" is reported (lazy expiry).
func (s *Store) GetValid(sessionID string, platform model.Platform) (Entry, bool) {
	entry := s.lookup(sessionID, platform)
	if entry == nil {
		return Entry{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if s.expireLocked(entry) {
		return Entry{}, false
	}
	return entry.Entry, true
}

// Snapshot copies the valid cookie file for (sessionID, platform) to a
// caller-owned temp file. The copy is taken under the entry lock, so a
// concurrent re-upload cannot swap the file mid-copy; afterwards the
// caller's download is isolated from replacement and expiry.
func (s *Store) Snapshot(sessionID string, platform model.Platform) (string, func(), error) {
	entry := s.lookup(sessionID, platform)
	if entry == nil {
		return "", nil, ErrNoSession
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if s.expireLocked(entry) {
		return "", nil, ErrNoSession
	}

	snap := filepath.Join(s.dir, fmt.Sprintf("snap-%s.txt", uuid.NewString()))
	if err := copyFile(entry.FilePath, snap); err != nil {
		log.Printf("Failed to snapshot cookie file for session %s: %v", sessionID, err)
		return "", nil, &model.StorageError{Op: "cookie snapshot", Err: err}
	}
	return snap, func() { removeFile(snap) }, nil
}

// Delete removes the entry and its backing file if present.
func (s *Store) Delete(sessionID string, platform model.Platform) {
	key := entryKey{session: sessionID, platform: platform}
	s.mu.Lock()
	entry := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	if entry == nil {
		return
	}
	entry.mu.Lock()
	if !entry.deleted {
		entry.deleted = true
		removeFile(entry.FilePath)
	}
	entry.mu.Unlock()
}

// Sweep deletes every expired entry and returns how many were removed.
// Covers sessions that uploaded once and never came back.
func (s *Store) Sweep() int {
	s.mu.RLock()
	candidates := make([]*storeEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		candidates = append(candidates, entry)
	}
	s.mu.RUnlock()

	removed := 0
	for _, entry := range candidates {
		entry.mu.Lock()
		if s.expireLocked(entry) {
			removed++
		}
		entry.mu.Unlock()
	}
	return removed
}

// Entries lists current non-expired entries, newest upload first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	candidates := make([]*storeEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		candidates = append(candidates, entry)
	}
	s.mu.RUnlock()

	result := make([]Entry, 0, len(candidates))
	for _, entry := range candidates {
		entry.mu.Lock()
		if !entry.deleted && s.now().Before(entry.ExpiresAt) {
			result = append(result, entry.Entry)
		}
		entry.mu.Unlock()
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result
}

// lookup fetches the live entry pointer for a key.
func (s *Store) lookup(sessionID string, platform model.Platform) *storeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[entryKey{session: sessionID, platform: platform}]
}

// expireLocked checks freshness of an entry whose lock is held. If expired
// (or already replaced), the file is removed and the entry dropped from the
// map. Reports true if the entry is unusable.
func (s *Store) expireLocked(entry *storeEntry) bool {
	if entry.deleted {
		return true
	}
	if s.now().Before(entry.ExpiresAt) {
		return false
	}

	entry.deleted = true
	removeFile(entry.FilePath)

	key := entryKey{session: entry.SessionID, platform: entry.Platform}
	s.mu.Lock()
	if s.entries[key] == entry {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return true
}

// writeFileAtomic writes data to path via a temp file and rename. The temp
// file is removed on any failure.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cookie-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		removeFile(tmpName)
		return err
	}
	if err := tmp.Chmod(cookieFilePerm); err != nil {
		tmp.Close()
		removeFile(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		removeFile(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		removeFile(tmpName)
		return err
	}
	return nil
}

// copyFile copies src to dst with cookie-file permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, cookieFilePerm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		removeFile(dst)
		return err
	}
	if err := out.Close(); err != nil {
		removeFile(dst)
		return err
	}
	return nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove cookie file %s: %v", path, err)
	}
}
