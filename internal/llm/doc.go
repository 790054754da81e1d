// Package llm wraps an OpenAI-compatible chat completion endpoint for
// JSON-only structured extraction requests. It handles retries with backoff,
// Retry-After hints, and the formatting quirks models exhibit when asked for
// raw JSON.
package llm
