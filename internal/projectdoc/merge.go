package projectdoc

import (
	"strings"
	"unicode/utf8"

	"writegeist/internal/textutil"
)

const (
	// similarityThreshold is strictly exceeded before two bullet items count
	// as near-duplicates; the boundary value itself is accepted.
	similarityThreshold = 0.8
	// minSimilarityLength is the rune count both items must exceed before the
	// similarity check applies.
	minSimilarityLength = 10
	// minNameLength is the rune count a derived item name must exceed before
	// a name match rejects a patch.
	minNameLength = 2
)

// Outcome classifies the effect of a merge.
type Outcome string

const (
	// OutcomeApplied means the patch was appended to an existing section.
	OutcomeApplied Outcome = "applied"
	// OutcomeCreated means the target section did not exist and was created
	// at the end of the document with the patch as its content.
	OutcomeCreated Outcome = "created-section"
	// OutcomeRejected means the patch duplicated existing content and the
	// document was returned unchanged.
	OutcomeRejected Outcome = "rejected"
)

// Rule identifies the duplicate-detection predicate that rejected a patch.
type Rule string

const (
	// RuleExactBlock: the whole incoming block is already a contiguous
	// substring of the section content.
	RuleExactBlock Rule = "exact-block"
	// RuleExactItem: an incoming bullet item equals an existing one
	// case-insensitively.
	RuleExactItem Rule = "exact-item"
	// RuleNameMatch: an incoming bullet item's derived name equals an
	// existing item's name.
	RuleNameMatch Rule = "name-match"
	// RuleSimilarity: an incoming bullet item's word set is too similar to an
	// existing item's.
	RuleSimilarity Rule = "similarity"
	// RuleLineMatch: a prose line in the incoming block equals an existing
	// line in the section.
	RuleLineMatch Rule = "line-match"
)

// Result describes a merge decision. Rejections carry the rule that fired,
// the incoming and matched text, and the similarity score when relevant.
type Result struct {
	Outcome    Outcome `json:"outcome"`
	Section    string  `json:"section"`
	Rule       Rule    `json:"rule,omitempty"`
	Incoming   string  `json:"incoming,omitempty"`
	Match      string  `json:"match,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// Rejected reports whether the merge left the document unchanged.
func (r Result) Rejected() bool {
	return r.Outcome == OutcomeRejected
}

// Merge applies a proposed content block to the named section of text and
// returns the updated document text. It is pure and total: any input is
// valid, a missing section is created at the end of the document, and
// duplicate content leaves the text unchanged. Rejection is all-or-nothing;
// a patch is never partially applied.
func Merge(text, sectionName, content string) (string, Result) {
	doc := Parse(text)
	sec, ok := doc.Section(sectionName)
	if !ok {
		return appendNewSection(doc.lines, sectionName, content),
			Result{Outcome: OutcomeCreated, Section: sectionName}
	}

	sectionLines := doc.lines[sec.Start:sec.End]
	existing := strings.Join(trimBlankLines(sectionLines), "\n")
	incoming := strings.Join(trimBlankLines(strings.Split(content, "\n")), "\n")

	// An incoming block already present verbatim (or empty) is a no-op.
	if strings.Contains(existing, incoming) {
		return text, Result{
			Outcome:  OutcomeRejected,
			Section:  sec.Name,
			Rule:     RuleExactBlock,
			Incoming: incoming,
		}
	}

	if isBulletBlock(incoming) {
		if res, rejected := findBulletDuplicate(sec.Name, incoming, sectionLines); rejected {
			return text, res
		}
	} else if res, rejected := findLineDuplicate(sec.Name, incoming, sectionLines); rejected {
		return text, res
	}

	return appendToSection(doc.lines, sec, content),
		Result{Outcome: OutcomeApplied, Section: sec.Name}
}

// isBulletBlock reports whether the block's first non-blank line is a bullet.
func isBulletBlock(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "* ")
	}
	return false
}

// findBulletDuplicate checks every incoming bullet item against every
// existing bullet line, in priority order: exact item match, derived-name
// match, then word-set similarity. Any hit rejects the whole patch.
func findBulletDuplicate(section, incoming string, sectionLines []string) (Result, bool) {
	for _, raw := range strings.Split(incoming, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "* ") {
			continue
		}
		item := strings.TrimSpace(line[2:])
		name := itemName(item)

		for _, existingRaw := range sectionLines {
			existingLine := strings.TrimSpace(existingRaw)
			if !strings.HasPrefix(existingLine, "* ") {
				continue
			}
			existingItem := strings.TrimSpace(existingLine[2:])

			if strings.EqualFold(existingItem, item) {
				return Result{
					Outcome:  OutcomeRejected,
					Section:  section,
					Rule:     RuleExactItem,
					Incoming: item,
					Match:    existingItem,
				}, true
			}

			if utf8.RuneCountInString(name) > minNameLength &&
				strings.EqualFold(name, itemName(existingItem)) {
				return Result{
					Outcome:  OutcomeRejected,
					Section:  section,
					Rule:     RuleNameMatch,
					Incoming: item,
					Match:    existingItem,
				}, true
			}

			if utf8.RuneCountInString(item) > minSimilarityLength &&
				utf8.RuneCountInString(existingItem) > minSimilarityLength {
				if sim := textutil.Jaccard(item, existingItem); sim > similarityThreshold {
					return Result{
						Outcome:    OutcomeRejected,
						Section:    section,
						Rule:       RuleSimilarity,
						Incoming:   item,
						Match:      existingItem,
						Similarity: sim,
					}, true
				}
			}
		}
	}
	return Result{}, false
}

// findLineDuplicate rejects a prose block when any of its non-blank lines
// already appears, trimmed, in the section.
func findLineDuplicate(section, incoming string, sectionLines []string) (Result, bool) {
	existing := make(map[string]struct{}, len(sectionLines))
	for _, raw := range sectionLines {
		if line := strings.TrimSpace(raw); line != "" {
			existing[line] = struct{}{}
		}
	}
	for _, raw := range strings.Split(incoming, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if _, ok := existing[line]; ok {
			return Result{
				Outcome:  OutcomeRejected,
				Section:  section,
				Rule:     RuleLineMatch,
				Incoming: line,
				Match:    line,
			}, true
		}
	}
	return Result{}, false
}

// itemName derives a bullet item's name: the item text truncated at the
// first '(' or em-dash, trimmed.
func itemName(item string) string {
	if i := strings.Index(item, "("); i >= 0 {
		item = item[:i]
	}
	if i := strings.Index(item, "—"); i >= 0 {
		item = item[:i]
	}
	return strings.TrimSpace(item)
}

// appendToSection inserts the patch lines verbatim at the end of the section,
// preceded by a blank separator when the section's last line is non-blank.
func appendToSection(lines []string, sec Section, content string) string {
	out := make([]string, 0, len(lines)+strings.Count(content, "\n")+2)
	out = append(out, lines[:sec.End]...)
	if sec.End > sec.Start && strings.TrimSpace(lines[sec.End-1]) != "" {
		out = append(out, "")
	}
	out = append(out, strings.Split(content, "\n")...)
	out = append(out, lines[sec.End:]...)
	return strings.Join(out, "\n")
}

// appendNewSection adds a new trailing section with the patch as content.
func appendNewSection(lines []string, name, content string) string {
	out := make([]string, 0, len(lines)+strings.Count(content, "\n")+3)
	out = append(out, lines...)
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	out = append(out, "## "+name, "")
	out = append(out, strings.Split(content, "\n")...)
	return strings.Join(out, "\n")
}
