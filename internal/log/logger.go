package log

import (
	"context"

	"github.com/go-logr/logr"
)

// Debug is the verbosity used for per-task progress messages.
const Debug = 1

func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}

func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// WithName returns ctx carrying the current logger with name appended.
func WithName(ctx context.Context, name string) (context.Context, logr.Logger) {
	logger := FromContext(ctx).WithName(name)
	return WithLogger(ctx, logger), logger
}
