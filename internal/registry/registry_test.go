package registry

import (
	"errors"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()

	err := r.Register("generator", Manifest{
		Mode:        "analysis",
		Description: "external sample generator",
		Governed:    true,
	}, Grants{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	e, ok := r.Lookup("generator")
	if !ok {
		t.Fatal("expected entry")
	}
	if e.Manifest.Mode != "analysis" || !e.Manifest.Governed {
		t.Fatalf("manifest = %+v", e.Manifest)
	}
	if e.Grants.Transform || e.Grants.Rollback {
		t.Fatalf("ungranted component must hold no capabilities: %+v", e.Grants)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := New()
	if err := r.Register("a", Manifest{}, Grants{}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register("a", Manifest{}, Grants{}); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("duplicate registration: expected ErrDuplicateEntry, got %v", err)
	}
}

func TestLookupMissing(t *testing.T) {
	r := New()
	if _, ok := r.Lookup("nope"); ok {
		t.Fatal("missing entry must not be found")
	}
}

func TestListSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(name, Manifest{}, Grants{}); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	entries := r.List()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "alpha" || entries[2].Name != "zeta" {
		t.Fatalf("entries not sorted: %v", entries)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	if err := a.Register("x", Manifest{}, Grants{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := b.Lookup("x"); ok {
		t.Fatal("registries must not share state")
	}
}
