// Package api defines the transport-neutral DTOs shared by the HTTP server,
// the IPC surface, and the CLI, plus conversion helpers from queue records
// and workflow summaries.
package api
