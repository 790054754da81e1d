package testsupport

import (
	"testing"

	"writegeist/internal/config"
	"writegeist/internal/project"
)

// MustOpenStore opens a project.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenService wires a full project service over a fresh store and marker.
func MustOpenService(t testing.TB, cfg *config.Config) *project.Service {
	t.Helper()

	store := MustOpenStore(t, cfg)
	marker := project.NewMarker(cfg.SyncMarkerPath())
	return project.NewService(store, marker, nil)
}
