package snapshot

import (
	"errors"
	"time"
)

// #region errors

var (
	// ErrNoSnapshots is returned by Rollback when no snapshot exists:
	// there is no recovery point, which is fatal for the caller.
	ErrNoSnapshots = errors.New("no snapshots available, cannot rollback")

	// ErrHashOnlyManifest is returned when a manifest contains entries
	// stored by hash only. Restore must be all-or-nothing, so such a
	// manifest is refused outright instead of partially applied.
	ErrHashOnlyManifest = errors.New("restore not implemented for hash-only entries")
)

// #endregion errors

// #region entry

// Entry is one tracked file inside a manifest: either the full content
// inline, or a sha256 hash when the file exceeded the inline limit.
type Entry struct {
	Content *string `json:"content,omitempty"`
	Hash    string  `json:"hash,omitempty"`
}

// #endregion entry

// #region manifest

// Manifest is the persisted form of a snapshot: one JSON file per
// snapshot, immutable once written, read-only by rollback.
type Manifest struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Files     map[string]Entry `json:"files"`
}

// #endregion manifest

// #region meta

// Meta is the cheap listing view of a snapshot: no content is carried.
type Meta struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	FileCount int       `json:"file_count"`
	ModTime   time.Time `json:"mod_time"`
}

// #endregion meta

// #region config

// Config locates the snapshot directory and the files it protects.
type Config struct {
	Dir          string   // snapshot manifests live here
	Root         string   // tracked paths are resolved relative to this
	TrackedPaths []string // files captured by each snapshot
	InlineLimit  int64    // files larger than this are stored by hash
}

// DefaultInlineLimit is the size above which file content is hashed
// instead of embedded.
const DefaultInlineLimit = 1 << 20

// #endregion config
