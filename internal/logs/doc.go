// Package logs provides bounded log file tailing shared by the CLI and the
// daemon's IPC surface.
//
// Negative offsets read the last N lines, non-negative offsets resume from a
// previous read, and follow mode polls until new lines arrive or the caller's
// context expires. Use it wherever log viewing semantics must match across
// commands.
package logs
