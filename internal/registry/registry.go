// Package registry provides an explicit component registry constructed
// once at process start and passed by reference to everything that
// needs lookup. There is no package-level mutable state: two processes
// (or two tests) get two independent registries.
package registry

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateEntry is returned when a component name is registered twice.
var ErrDuplicateEntry = errors.New("component already registered")

// #region manifest

// Manifest is the metadata a component declares at registration time.
type Manifest struct {
	Mode        string `json:"mode" yaml:"mode"` // e.g. "transform", "analysis"
	Description string `json:"description" yaml:"description"`
	Governed    bool   `json:"governed" yaml:"governed"` // patches from this component pass the gate
}

// #endregion manifest

// #region grants

// Grants is the typed capability set handed to a component at
// construction. Capabilities are granted once, up front; there are no
// string-keyed permission checks at call time.
type Grants struct {
	Transform bool // may trigger transform (mutating) actions
	Rollback  bool // may trigger a rollback
}

// #endregion grants

// #region registry

// Entry pairs a registered component with its declared manifest and
// granted capabilities.
type Entry struct {
	Name     string
	Manifest Manifest
	Grants   Grants
}

// Registry holds registered components keyed by name.
type Registry struct {
	entries map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a component. Duplicate names are an error: a second
// registration under the same name is a wiring bug, not an override.
func (r *Registry) Register(name string, manifest Manifest, grants Grants) error {
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateEntry)
	}
	r.entries[name] = Entry{Name: name, Manifest: manifest, Grants: grants}
	return nil
}

// Lookup returns a registered entry by name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// List returns all entries sorted by name.
func (r *Registry) List() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// #endregion registry
