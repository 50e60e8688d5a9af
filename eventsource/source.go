package eventsource

import (
	"context"
	"errors"

	"github.com/byte4ever/stacktail/stackevent"
)

// Pattern: Strategy -- swap the event backend without
// changing the tailing logic.

var (
	// ErrThrottled is returned when the API rejected the
	// request because of rate limiting.
	ErrThrottled = errors.New("throttled")

	// ErrNotFound is returned when the stack does not
	// exist.
	ErrNotFound = errors.New("stack not found")

	// ErrTransient is returned for failures that never
	// reached the API, such as network errors.
	ErrTransient = errors.New("transient failure")

	// ErrFatal is returned for any other API error.
	ErrFatal = errors.New("fatal api error")
)

// Source returns the most recent events of a stack,
// newest first.
type Source interface {
	Fetch(
		ctx context.Context,
		stackID string,
	) ([]stackevent.StackEvent, error)
}

// SourceFunc adapts a plain function to the Source
// interface.
type SourceFunc func(
	ctx context.Context,
	stackID string,
) ([]stackevent.StackEvent, error)

// Fetch delegates to the wrapped function.
func (f SourceFunc) Fetch(
	ctx context.Context,
	stackID string,
) ([]stackevent.StackEvent, error) {
	return f(ctx, stackID)
}
