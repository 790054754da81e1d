package projectdoc

import (
	"regexp"
	"strings"
)

// headerPrefix matches the start of a level-2 section header. Level-1 headers
// and header-like lines without the "## " prefix are ordinary content.
var headerPrefix = regexp.MustCompile(`^\s*##\s+`)

// Section is a half-open line range [Start, End) holding a section's content
// lines. Header is the index of the "## <name>" line itself; Name preserves
// the header's spelling.
type Section struct {
	Name   string
	Header int
	Start  int
	End    int
}

// Document is an ordered sequence of lines split into a preamble and named
// sections. It is constructed by Parse and never mutated.
type Document struct {
	lines    []string
	sections []Section
}

// Parse splits text into lines and locates section boundaries. Every input is
// valid; a document without headers is all preamble.
func Parse(text string) *Document {
	lines := strings.Split(text, "\n")
	doc := &Document{lines: lines}

	for i, line := range lines {
		loc := headerPrefix.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if n := len(doc.sections); n > 0 {
			doc.sections[n-1].End = i
		}
		doc.sections = append(doc.sections, Section{
			Name:   strings.TrimSpace(line[loc[1]:]),
			Header: i,
			Start:  i + 1,
			End:    len(lines),
		})
	}
	return doc
}

// Serialize reconstructs the document text. For an unmodified document it is
// the exact inverse of Parse.
func (d *Document) Serialize() string {
	return strings.Join(d.lines, "\n")
}

// Lines returns a copy of the document's lines.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// Sections returns the document's sections in order.
func (d *Document) Sections() []Section {
	out := make([]Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// Preamble returns the lines preceding the first section header, or all lines
// when the document has no sections.
func (d *Document) Preamble() []string {
	end := len(d.lines)
	if len(d.sections) > 0 {
		end = d.sections[0].Header
	}
	out := make([]string, end)
	copy(out, d.lines[:end])
	return out
}

// Section locates a section by case-insensitive name match.
func (d *Document) Section(name string) (Section, bool) {
	for _, sec := range d.sections {
		if strings.EqualFold(sec.Name, name) {
			return sec, true
		}
	}
	return Section{}, false
}

// Extract returns the named section's content with leading and trailing blank
// lines stripped. Absent sections yield an empty string; blank lines interior
// to the content are preserved.
func (d *Document) Extract(name string) string {
	sec, ok := d.Section(name)
	if !ok {
		return ""
	}
	return strings.Join(trimBlankLines(d.lines[sec.Start:sec.End]), "\n")
}

// ExtractSection parses text and extracts the named section.
func ExtractSection(text, name string) string {
	return Parse(text).Extract(name)
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
