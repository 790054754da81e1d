// Package project owns the persisted project document: a single markdown page
// stored in SQLite, a file-backed last-updated marker, and the service that
// serializes reads, merges, and uploads against both.
//
// The document row is bootstrapped with a default skeleton on first access so
// callers always observe a well-formed page. Every successful write advances
// the sync marker; external pollers compare marker values to decide when to
// refresh.
package project
