package project_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"writegeist/internal/project"
)

func TestMarkerAbsentReadsZero(t *testing.T) {
	marker := project.NewMarker(filepath.Join(t.TempDir(), "last_update.txt"))
	if got := marker.Value(); got != 0 {
		t.Fatalf("Value = %d, want 0", got)
	}
}

func TestMarkerTouchRecordsUnixSeconds(t *testing.T) {
	marker := project.NewMarker(filepath.Join(t.TempDir(), "last_update.txt"))

	now := time.Unix(1_700_000_000, 0)
	value, err := marker.Touch(now)
	if err != nil {
		t.Fatalf("Touch returned error: %v", err)
	}
	if value != 1_700_000_000 {
		t.Fatalf("Touch = %d, want %d", value, 1_700_000_000)
	}
	if got := marker.Value(); got != value {
		t.Fatalf("Value = %d, want %d", got, value)
	}
}

func TestMarkerTouchStrictlyIncreases(t *testing.T) {
	marker := project.NewMarker(filepath.Join(t.TempDir(), "last_update.txt"))

	now := time.Unix(1_700_000_000, 0)
	first, err := marker.Touch(now)
	if err != nil {
		t.Fatalf("first Touch: %v", err)
	}
	// Same second, and even an earlier clock reading, still advances.
	second, err := marker.Touch(now)
	if err != nil {
		t.Fatalf("second Touch: %v", err)
	}
	third, err := marker.Touch(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("third Touch: %v", err)
	}
	if !(first < second && second < third) {
		t.Fatalf("marker not strictly increasing: %d, %d, %d", first, second, third)
	}
}

func TestMarkerIgnoresCorruptContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_update.txt")
	if err := os.WriteFile(path, []byte("not-a-number\n"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	marker := project.NewMarker(path)
	if got := marker.Value(); got != 0 {
		t.Fatalf("Value = %d, want 0 for corrupt content", got)
	}
}
