// Package main hosts the Writegeist CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP calls
// against the daemon: section reads, merge proposals, chapter ingestion,
// project upload and download, and configuration scaffolding. It centralizes
// configuration resolution and daemon address discovery so subcommands can
// focus on user experience instead of wiring.
package main
