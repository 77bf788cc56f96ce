package cookies

import (
	"errors"
	"time"

	"github.com/ytget/videocatcher/internal/model"
)

// ErrNoSession reports that no valid cookie entry exists for the requested
// (session, platform) pair. Distinct from storage failures so callers can
// answer "upload cookies first" instead of a server error.
var ErrNoSession = errors.New("no valid cookie session")

// SessionStore defines the interface for the cookie-session store.
type SessionStore interface {
	// Put validates nothing; callers validate data first. It writes data
	// under a fresh session-scoped path and replaces any prior entry for
	// (sessionID, platform), removing the old file.
	Put(sessionID string, platform model.Platform, data []byte) (Entry, error)

	// GetValid returns the entry for (sessionID, platform) if it has not
	// expired. An expired entry is deleted together with its backing file
	// and reported as absent.
	GetValid(sessionID string, platform model.Platform) (Entry, bool)

	// Snapshot copies the valid cookie file to a caller-owned path so an
	// in-flight download keeps the file it started with. The caller must
	// invoke cleanup when done. Returns ErrNoSession when no valid entry
	// exists and a StorageError when the copy fails.
	Snapshot(sessionID string, platform model.Platform) (path string, cleanup func(), err error)

	// Delete removes the entry and its backing file if present.
	Delete(sessionID string, platform model.Platform)

	// Sweep deletes every expired entry and returns how many were removed.
	Sweep() int

	// Entries lists current non-expired entries, newest first.
	Entries() []Entry
}

// Entry describes one stored cookie session. It never carries cookie
// contents, only metadata.
type Entry struct {
	SessionID  string         `json:"session_id"`
	Platform   model.Platform `json:"platform"`
	FilePath   string         `json:"-"`
	UploadedAt time.Time      `json:"uploaded_at"`
	ExpiresAt  time.Time      `json:"expires_at"`
}
