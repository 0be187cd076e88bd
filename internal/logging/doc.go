// Package logging provides opt-in file logging with size-based rotation.
//
// With --debug, or when serving MCP over stdio, JSON logs are written to
// ~/.storekb/logs/server.log. Without it, logs go to stderr only.
// The viewer in this package backs the `storekb logs` command.
package logging
