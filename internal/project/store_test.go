package project_test

import (
	"context"
	"path/filepath"
	"testing"

	"writegeist/internal/project"
)

func openTestStore(t *testing.T) *project.Store {
	t.Helper()
	store, err := project.OpenPath(filepath.Join(t.TempDir(), "writegeist.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreLoadBootstrapsSkeleton(t *testing.T) {
	store := openTestStore(t)

	markdown, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if markdown != project.DefaultMarkdown {
		t.Fatalf("unexpected bootstrap content: %q", markdown)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := "# My Project\n\n## Characters\n\n* Max"
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %q, want %q", got, want)
	}

	// Saving again overwrites the single row.
	if err := store.Save(ctx, "replacement"); err != nil {
		t.Fatalf("second Save returned error: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "replacement" {
		t.Fatalf("Load after overwrite = %q", got)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "writegeist.db")
	ctx := context.Background()

	store, err := project.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	if err := store.Save(ctx, "persisted content"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := project.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "persisted content" {
		t.Fatalf("Load after reopen = %q", got)
	}
}
