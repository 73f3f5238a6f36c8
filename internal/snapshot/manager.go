package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// snapExt is the fixed extension for manifest files; the file name is
// the snapshot id plus this extension.
const snapExt = ".snap.json"

// #region manager

// Manager persists recoverable state before mutating actions and
// restores the latest snapshot on failure. "Latest" is determined by
// filesystem modification time, not an embedded sequence number.
type Manager struct {
	config Config

	// mu serializes rollback against snapshot creation. Rollback is
	// destructive and holds this lock for its full duration.
	mu sync.Mutex
}

// NewManager creates a manager and ensures the snapshot directory exists.
func NewManager(config Config) (*Manager, error) {
	if config.InlineLimit <= 0 {
		config.InlineLimit = DefaultInlineLimit
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Manager{config: config}, nil
}

// #endregion manager

// #region snapshot

// Snapshot captures the tracked files into a new immutable manifest
// and returns the snapshot id. Tracked files that do not exist are
// skipped; an empty capture still produces a valid manifest.
func (m *Manager) Snapshot() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest := Manifest{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Files:     make(map[string]Entry, len(m.config.TrackedPaths)),
	}

	for _, rel := range m.config.TrackedPaths {
		abs := filepath.Join(m.config.Root, rel)
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("stat %s: %w", rel, err)
		}
		if info.IsDir() {
			continue
		}

		data, err := os.ReadFile(abs)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", rel, err)
		}

		if info.Size() > m.config.InlineLimit {
			sum := sha256.Sum256(data)
			manifest.Files[rel] = Entry{Hash: hex.EncodeToString(sum[:])}
		} else {
			content := string(data)
			manifest.Files[rel] = Entry{Content: &content}
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(m.config.Dir, manifest.ID+snapExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return manifest.ID, nil
}

// #endregion snapshot

// #region list

// ListSnapshots returns snapshot metadata sorted strictly by
// descending modification time. File contents are not materialized;
// only the manifest header and the file count are read.
func (m *Manager) ListSnapshots() ([]Meta, error) {
	entries, err := os.ReadDir(m.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var metas []Meta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}

		meta, err := readMeta(filepath.Join(m.config.Dir, e.Name()))
		if err != nil {
			return nil, err
		}
		meta.ModTime = info.ModTime()
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ModTime.After(metas[j].ModTime)
	})
	return metas, nil
}

// readMeta decodes only the manifest header; file entries stay raw.
func readMeta(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("read manifest %s: %w", filepath.Base(path), err)
	}

	var header struct {
		ID        string                     `json:"id"`
		Timestamp time.Time                  `json:"timestamp"`
		Files     map[string]json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Meta{}, fmt.Errorf("decode manifest %s: %w", filepath.Base(path), err)
	}

	return Meta{ID: header.ID, Timestamp: header.Timestamp, FileCount: len(header.Files)}, nil
}

// #endregion list

// #region rollback

// Rollback restores the most recent snapshot. It fails with
// ErrNoSnapshots when none exists. Restoration is all-or-nothing: the
// whole manifest is validated first, every file is staged to a temp
// path, and only then are the staged files moved into place. A
// manifest holding hash-only entries is refused before any file is
// touched.
func (m *Manager) Rollback() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metas, err := m.ListSnapshots()
	if err != nil {
		return "", err
	}
	if len(metas) == 0 {
		return "", ErrNoSnapshots
	}

	latest := metas[0]
	manifest, err := m.load(latest.ID)
	if err != nil {
		return "", err
	}

	// Validate the entire manifest up front.
	for rel, entry := range manifest.Files {
		if entry.Content == nil {
			return "", fmt.Errorf("snapshot %s, file %s: %w", manifest.ID, rel, ErrHashOnlyManifest)
		}
	}

	// Stage every file before moving any into place.
	staged := make(map[string]string, len(manifest.Files))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for rel, entry := range manifest.Files {
		abs := filepath.Join(m.config.Root, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return "", fmt.Errorf("prepare %s: %w", rel, err)
		}
		tmp := abs + ".restore~"
		if err := os.WriteFile(tmp, []byte(*entry.Content), 0o644); err != nil {
			return "", fmt.Errorf("stage %s: %w", rel, err)
		}
		staged[abs] = tmp
	}

	for abs, tmp := range staged {
		if err := os.Rename(tmp, abs); err != nil {
			return "", fmt.Errorf("restore %s: %w", filepath.Base(abs), err)
		}
		delete(staged, abs)
	}

	return manifest.ID, nil
}

// load reads a full manifest by id.
func (m *Manager) load(id string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(m.config.Dir, id+snapExt))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", id, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", id, err)
	}
	return manifest, nil
}

// #endregion rollback
