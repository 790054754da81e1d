package projectdoc_test

import (
	"strings"
	"testing"

	"writegeist/internal/projectdoc"
)

const charactersDoc = "## Characters\n\n* Max (shadow wizard) — can control shadows"

func TestMergeExactContainmentRejects(t *testing.T) {
	patch := "* Max (shadow wizard) — can control shadows"
	got, res := projectdoc.Merge(charactersDoc, "Characters", patch)
	if got != charactersDoc {
		t.Errorf("document changed: %q", got)
	}
	if res.Outcome != projectdoc.OutcomeRejected || res.Rule != projectdoc.RuleExactBlock {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestMergeNameMatchRejects(t *testing.T) {
	patch := "* Max — controls shadow creatures"
	got, res := projectdoc.Merge(charactersDoc, "Characters", patch)
	if got != charactersDoc {
		t.Errorf("document changed: %q", got)
	}
	if res.Rule != projectdoc.RuleNameMatch {
		t.Errorf("rule = %q, want %q (result %+v)", res.Rule, projectdoc.RuleNameMatch, res)
	}
	if res.Incoming != "Max — controls shadow creatures" {
		t.Errorf("incoming = %q", res.Incoming)
	}
}

func TestMergeShortNameDoesNotReject(t *testing.T) {
	doc := "## Characters\n\n* Al (a brief fellow) — keeps the inn"
	patch := "* Al's ghost haunting stories retold nightly"
	// Derived name "Al" is only two characters, so the name rule must not fire.
	got, res := projectdoc.Merge(doc, "Characters", patch)
	if res.Rejected() {
		t.Fatalf("patch rejected: %+v", res)
	}
	if !strings.Contains(got, "Al's ghost") {
		t.Errorf("patch not applied: %q", got)
	}
}

func TestMergeNewBulletAccepted(t *testing.T) {
	patch := "* Zara (fire mage) — can summon flames"
	got, res := projectdoc.Merge(charactersDoc, "Characters", patch)
	if res.Outcome != projectdoc.OutcomeApplied {
		t.Fatalf("unexpected result: %+v", res)
	}
	content := projectdoc.ExtractSection(got, "Characters")
	lines := strings.Split(content, "\n")
	bullets := make([]string, 0, 2)
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "* ") {
			bullets = append(bullets, strings.TrimSpace(line))
		}
	}
	if len(bullets) != 2 {
		t.Fatalf("expected 2 bullets, got %d: %q", len(bullets), content)
	}
	if !strings.HasPrefix(bullets[0], "* Max") || !strings.HasPrefix(bullets[1], "* Zara") {
		t.Errorf("bullet order wrong: %#v", bullets)
	}
}

func TestMergeProseLineMatchRejects(t *testing.T) {
	doc := "## Setting\n\nA quiet village by the sea."
	got, res := projectdoc.Merge(doc, "Setting", "A quiet village by the sea.")
	if got != doc {
		t.Errorf("document changed: %q", got)
	}
	if !res.Rejected() {
		t.Errorf("expected rejection, got %+v", res)
	}
}

func TestMergeProseDuplicateLineAmongNewOnes(t *testing.T) {
	doc := "## Setting\n\nA quiet village by the sea.\nCliffs rise to the north."
	patch := "New mountains to the east.\nCliffs rise to the north."
	got, res := projectdoc.Merge(doc, "Setting", patch)
	if got != doc {
		t.Errorf("document changed: %q", got)
	}
	if res.Rule != projectdoc.RuleLineMatch {
		t.Errorf("rule = %q, want %q", res.Rule, projectdoc.RuleLineMatch)
	}
}

func TestMergeCreatesMissingSection(t *testing.T) {
	doc := "# My Project\n\n## Setting\n\nA quiet village by the sea."
	got, res := projectdoc.Merge(doc, "Ideas-Notes", "A talking cat appears.")
	if res.Outcome != projectdoc.OutcomeCreated {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasSuffix(got, "## Ideas-Notes\n\nA talking cat appears.") {
		t.Errorf("unexpected document tail: %q", got)
	}
	if projectdoc.ExtractSection(got, "ideas-notes") != "A talking cat appears." {
		t.Errorf("section content = %q", projectdoc.ExtractSection(got, "ideas-notes"))
	}
	sections := projectdoc.Parse(got).Sections()
	if last := sections[len(sections)-1]; last.Name != "Ideas-Notes" {
		t.Errorf("last section = %q, want Ideas-Notes", last.Name)
	}
}

func TestMergeSectionCreationSeparatorOnlyWhenNeeded(t *testing.T) {
	// Document already ends with a blank line: no extra separator.
	got, _ := projectdoc.Merge("## Setting\n\ntext\n", "Notes", "idea")
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("double separator inserted: %q", got)
	}
	if !strings.HasSuffix(got, "## Notes\n\nidea") {
		t.Errorf("unexpected tail: %q", got)
	}
}

func TestMergeIdempotent(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		section string
		patch   string
	}{
		{"bullet into existing", charactersDoc, "Characters", "* Zara (fire mage) — can summon flames"},
		{"prose into existing", "## Setting\n\nOld line.", "Setting", "A brand new line."},
		{"create section", skeleton, "Villains", "* Morgath — eats light"},
		{"multiline prose", "## Full Outline", "Full Outline", "Act I begins.\n\nAct II follows."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, _ := projectdoc.Merge(tt.doc, tt.section, tt.patch)
			twice, res := projectdoc.Merge(once, tt.section, tt.patch)
			if twice != once {
				t.Errorf("merge not idempotent:\nonce:  %q\ntwice: %q", once, twice)
			}
			if !res.Rejected() {
				t.Errorf("second merge should reject, got %+v", res)
			}
		})
	}
}

func TestMergePreservesOtherSections(t *testing.T) {
	doc := "# My Project\n\n## Ideas-Notes\n\nAn idea.\n\n## Setting\n\nA village.\n\n## Characters\n\n* Max — hero"
	got, res := projectdoc.Merge(doc, "Setting", "A second village appears.")
	if res.Rejected() {
		t.Fatalf("unexpected rejection: %+v", res)
	}
	for _, name := range []string{"Ideas-Notes", "Characters"} {
		before := projectdoc.ExtractSection(doc, name)
		after := projectdoc.ExtractSection(got, name)
		if before != after {
			t.Errorf("section %q changed: %q -> %q", name, before, after)
		}
	}
	if !strings.HasPrefix(got, "# My Project\n") {
		t.Errorf("preamble changed: %q", got)
	}
}

func TestMergeWholePatchRejectedOnSingleDuplicateBullet(t *testing.T) {
	patch := "* Brand New Person (bard) — sings sea shanties\n* Max (shadow wizard) — can control shadows"
	got, res := projectdoc.Merge(charactersDoc, "Characters", patch)
	if got != charactersDoc {
		t.Errorf("document changed: %q", got)
	}
	if !res.Rejected() {
		t.Errorf("expected whole-patch rejection, got %+v", res)
	}
	if strings.Contains(got, "Brand New Person") {
		t.Errorf("partial application detected: %q", got)
	}
}

func TestMergeSimilarityRejectsNearDuplicate(t *testing.T) {
	doc := "## Characters\n\n* wields the ancient storm blade of kings"
	// Same words in a different order, one word swapped: similarity above 0.8.
	patch := "* wields the ancient storm blade of legends kings"
	got, res := projectdoc.Merge(doc, "Characters", patch)
	if got != doc {
		t.Errorf("document changed: %q", got)
	}
	if res.Rule != projectdoc.RuleSimilarity {
		t.Fatalf("rule = %q, want %q (result %+v)", res.Rule, projectdoc.RuleSimilarity, res)
	}
	if res.Similarity <= 0.8 {
		t.Errorf("similarity = %v, want > 0.8", res.Similarity)
	}
}

func TestMergeSimilarityBoundaryAccepted(t *testing.T) {
	// Word sets of nine and nine sharing eight words: 8/10 = 0.8 exactly.
	// The threshold comparison is strictly greater-than, so the boundary
	// value is accepted.
	doc := "## Characters\n\n* alpha beta gamma delta epsilon zeta eta theta iota"
	patch := "* alpha beta gamma delta epsilon zeta eta theta kappa"
	got, res := projectdoc.Merge(doc, "Characters", patch)
	if res.Rejected() {
		t.Fatalf("boundary similarity rejected: %+v", res)
	}
	if !strings.Contains(got, "kappa") {
		t.Errorf("patch not applied: %q", got)
	}
}

func TestMergeShortItemsSkipSimilarity(t *testing.T) {
	// The items share an identical word set (Jaccard 1.0) but are ten
	// characters or fewer, which disables the similarity check entirely.
	doc := "## Characters\n\n* a b c d e"
	patch := "* e d c b a"
	got, res := projectdoc.Merge(doc, "Characters", patch)
	if res.Rejected() {
		t.Fatalf("short items rejected: %+v", res)
	}
	if !strings.Contains(got, "* e d c b a") {
		t.Errorf("patch not applied: %q", got)
	}
}

func TestMergeCaseInsensitiveSectionLookup(t *testing.T) {
	got, res := projectdoc.Merge(charactersDoc, "CHARACTERS", "* Zara (fire mage) — can summon flames")
	if res.Outcome != projectdoc.OutcomeApplied {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Section != "Characters" {
		t.Errorf("result section = %q, want header spelling", res.Section)
	}
	if strings.Contains(got, "## CHARACTERS") {
		t.Errorf("header rewritten: %q", got)
	}
}

func TestMergeExactItemCaseInsensitive(t *testing.T) {
	patch := "* MAX (SHADOW WIZARD) — CAN CONTROL SHADOWS"
	got, res := projectdoc.Merge(charactersDoc, "Characters", patch)
	if got != charactersDoc {
		t.Errorf("document changed: %q", got)
	}
	if res.Rule != projectdoc.RuleExactItem {
		t.Errorf("rule = %q, want %q", res.Rule, projectdoc.RuleExactItem)
	}
}

func TestMergeEmptyPatchIsNoOp(t *testing.T) {
	got, res := projectdoc.Merge(charactersDoc, "Characters", "")
	if got != charactersDoc {
		t.Errorf("document changed: %q", got)
	}
	if !res.Rejected() {
		t.Errorf("expected no-op rejection, got %+v", res)
	}
}

func TestMergeAppendSeparatorRules(t *testing.T) {
	// Section content ends on a non-blank line: a blank separator precedes
	// the appended block.
	got, _ := projectdoc.Merge("## Setting\nA village.", "Setting", "New cliffs.")
	if got != "## Setting\nA village.\n\nNew cliffs." {
		t.Errorf("unexpected merge output: %q", got)
	}

	// Empty section body: no separator is inserted.
	got, _ = projectdoc.Merge("## Setting\n\n## Next", "Setting", "A village.")
	if got != "## Setting\n\nA village.\n## Next" {
		t.Errorf("unexpected merge output: %q", got)
	}
}

func TestMergeIntoMiddleSectionKeepsFollowing(t *testing.T) {
	doc := "## A\n\nalpha text\n\n## B\n\nbeta text"
	got, res := projectdoc.Merge(doc, "A", "more alpha")
	if res.Rejected() {
		t.Fatalf("unexpected rejection: %+v", res)
	}
	if !strings.Contains(got, "more alpha\n## B") && !strings.Contains(got, "more alpha\n\n## B") {
		t.Errorf("appended content not before next section: %q", got)
	}
	if projectdoc.ExtractSection(got, "B") != "beta text" {
		t.Errorf("following section changed: %q", projectdoc.ExtractSection(got, "B"))
	}
}
