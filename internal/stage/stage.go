package stage

import (
	"context"

	"log/slog"

	"subburn/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}

// LoggerAware lets the workflow swap in a contextual logger before running a
// stage handler.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
