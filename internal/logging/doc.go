// Package logging wraps log/slog with the structured conventions used across
// the pipeline: typed attribute helpers, standardized field keys, a console
// handler for interactive use, and context-derived fields for correlating
// output with queue items and stages.
package logging
