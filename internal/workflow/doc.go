// Package workflow orchestrates queue processing. A manager polls the queue
// for items whose status begins a stage, runs the registered handler with a
// heartbeat loop, and advances or fails the item based on the outcome.
// Validation and configuration failures park the item for review instead of
// plain failure.
package workflow
