// Package ingest runs the chapter analysis pipeline: four sequential
// extraction stages (characters, locations, point of view, metadata) over a
// shared state, each backed by a JSON-only model call with a deterministic
// fallback so a flaky model degrades the result instead of failing the
// request.
package ingest
