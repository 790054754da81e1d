// Package projectdoc implements the section-scoped project document model:
// parsing markdown into level-2-header-delimited sections, extracting section
// content by name, and merging proposed content blocks into a section with
// layered duplicate detection.
//
// Documents are immutable once parsed; merges return new text. Parsing and
// merging are total functions: malformed header-like lines are ordinary
// content, missing sections are created, and duplicate content is silently
// rejected with a structured Result describing why.
package projectdoc
