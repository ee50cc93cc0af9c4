// Package queue persists captioning jobs in SQLite and exposes the status
// transitions the workflow manager drives: pending through extraction,
// transcription, and burn-in to completion. The store retries on SQLITE_BUSY
// and guards its schema with an embedded version gate.
package queue
