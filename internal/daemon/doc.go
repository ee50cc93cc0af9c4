// Package daemon coordinates the long-running subburn process.
//
// It wires configuration, queue storage, the workflow manager, and the HTTP
// upload API into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon exposes queue maintenance helpers, manages
// file ingestion from uploads and local paths, and reports dependency health.
//
// Keep orchestration logic here: individual pipeline stages live in their own
// packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
