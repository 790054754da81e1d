// Package daemon coordinates the long-running service: single-instance file
// locking, the HTTP API server, and graceful shutdown. It wires the project
// service, the ingestion pipeline, and notifications behind the wire contract
// defined in the api package.
package daemon
