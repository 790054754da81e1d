package textutil

import (
	"math"
	"testing"
)

func TestJaccardIdentical(t *testing.T) {
	text := "can control shadow creatures at will"
	if got := Jaccard(text, text); got != 1.0 {
		t.Errorf("Jaccard(identical) = %v, want 1.0", got)
	}
}

func TestJaccardDisjoint(t *testing.T) {
	if got := Jaccard("apple banana cherry", "dog elephant frog"); got != 0 {
		t.Errorf("Jaccard(disjoint) = %v, want 0", got)
	}
}

func TestJaccardEmpty(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"both empty", "", ""},
		{"a empty", "", "hello world"},
		{"b empty", "hello world", ""},
		{"whitespace only", "   \t\n", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); got != 0 {
				t.Errorf("Jaccard(%q, %q) = %v, want 0", tt.a, tt.b, got)
			}
		})
	}
}

func TestJaccardPartialOverlap(t *testing.T) {
	// 4 shared words out of 5 in each set: 4 / (5 + 5 - 4) = 2/3.
	got := Jaccard("the quick brown fox jumps", "the quick brown fox sleeps")
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("Jaccard(partial) = %v, want %v", got, 2.0/3.0)
	}
}

func TestJaccardCaseInsensitive(t *testing.T) {
	if got := Jaccard("Max The Wizard", "max the wizard"); got != 1.0 {
		t.Errorf("Jaccard(case variants) = %v, want 1.0", got)
	}
}

func TestJaccardRepeatedWords(t *testing.T) {
	// Word sets collapse duplicates, so repetition does not change the score.
	if got := Jaccard("fire fire fire mage", "fire mage"); got != 1.0 {
		t.Errorf("Jaccard(repeated words) = %v, want 1.0", got)
	}
}

func TestWordSetNilForEmpty(t *testing.T) {
	if set := WordSet("  \t "); set != nil {
		t.Errorf("WordSet(blank) = %v, want nil", set)
	}
}
