package eventsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/byte4ever/stacktail/stackevent"
)

const (
	// DefaultThrottleRetries is the number of delayed
	// retries performed after a throttled request.
	DefaultThrottleRetries = 5

	// DefaultThrottleDelay is the fixed wait between
	// throttled attempts.
	DefaultThrottleDelay = time.Second
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the SleepFunc backed by a real timer.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retrying retries throttled fetches of the wrapped
// Source with a fixed delay. Other errors are returned
// untouched on the first occurrence.
//
// Pattern: Decorator -- wraps any Source.
type Retrying struct {
	// Source is the wrapped event source.
	Source Source

	// Retries is the number of delayed retries after a
	// throttled attempt. Negative means none.
	Retries int

	// Delay is the wait before each retry.
	Delay time.Duration

	// Sleep waits between attempts. Nil uses Sleep.
	Sleep SleepFunc
}

// NewRetrying wraps src with the default throttling
// policy.
func NewRetrying(src Source) *Retrying {
	return &Retrying{
		Source:  src,
		Retries: DefaultThrottleRetries,
		Delay:   DefaultThrottleDelay,
	}
}

// Fetch calls the wrapped source, retrying while it
// reports ErrThrottled and the retry budget lasts. When
// the budget is exhausted the last throttling error is
// returned.
func (r *Retrying) Fetch(
	ctx context.Context,
	stackID string,
) ([]stackevent.StackEvent, error) {
	const errCtx = "fetching with throttle retry"

	sleep := r.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for attempt := 0; ; attempt++ {
		evs, err := r.Source.Fetch(ctx, stackID)
		if err == nil {
			return evs, nil
		}

		if !errors.Is(err, ErrThrottled) ||
			attempt >= r.Retries {
			return nil, err
		}

		slog.Debug(
			"throttled, retrying",
			"stack", stackID,
			"attempt", attempt+1,
			"delay", r.Delay,
		)

		if sleepErr := sleep(ctx, r.Delay); sleepErr != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, sleepErr,
			)
		}
	}
}
