// Package api defines the wire types of the daemon's HTTP surface and the
// client the CLI uses to talk to it. The request and response shapes are the
// stable contract between the daemon, the desktop app, and automation
// webhooks.
package api
