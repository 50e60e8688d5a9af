package eventsource_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/stacktail/eventsource"
	"github.com/byte4ever/stacktail/stackevent"
)

// scripted returns a source that replays errs in order
// and counts calls; once errs is exhausted it returns a
// single event.
func scripted(
	calls *int,
	errs ...error,
) eventsource.SourceFunc {
	return func(
		_ context.Context,
		_ string,
	) ([]stackevent.StackEvent, error) {
		n := *calls
		*calls++

		if n < len(errs) {
			return nil, errs[n]
		}

		return []stackevent.StackEvent{{EventID: "e1"}}, nil
	}
}

func throttled() error {
	return fmt.Errorf("describe: %w", eventsource.ErrThrottled)
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(
	_ context.Context,
	d time.Duration,
) error {
	s.delays = append(s.delays, d)

	return nil
}

func TestRetrying_success_without_retry(t *testing.T) {
	t.Parallel()

	var calls int

	rec := &sleepRecorder{}
	src := eventsource.NewRetrying(scripted(&calls))
	src.Sleep = rec.sleep

	evs, err := src.Fetch(context.Background(), "app")

	require.NoError(t, err)
	assert.Len(t, evs, 1)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestRetrying_recovers_after_throttling(t *testing.T) {
	t.Parallel()

	var calls int

	rec := &sleepRecorder{}
	src := eventsource.NewRetrying(
		scripted(&calls, throttled(), throttled()),
	)
	src.Sleep = rec.sleep

	evs, err := src.Fetch(context.Background(), "app")

	require.NoError(t, err)
	assert.Len(t, evs, 1)
	assert.Equal(t, 3, calls)
	assert.Equal(
		t,
		[]time.Duration{time.Second, time.Second},
		rec.delays,
	)
}

func TestRetrying_budget_exhausted(t *testing.T) {
	t.Parallel()

	var calls int

	errs := make([]error, 6)
	for i := range errs {
		errs[i] = throttled()
	}

	rec := &sleepRecorder{}
	src := eventsource.NewRetrying(scripted(&calls, errs...))
	src.Sleep = rec.sleep

	_, err := src.Fetch(context.Background(), "app")

	require.ErrorIs(t, err, eventsource.ErrThrottled)
	assert.Equal(t, 6, calls)
	assert.Len(t, rec.delays, 5)

	for _, d := range rec.delays {
		assert.Equal(t, time.Second, d)
	}
}

func TestRetrying_non_throttle_errors_not_retried(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{
		eventsource.ErrNotFound,
		eventsource.ErrFatal,
		eventsource.ErrTransient,
	} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			t.Parallel()

			var calls int

			rec := &sleepRecorder{}
			src := eventsource.NewRetrying(
				scripted(&calls, sentinel),
			)
			src.Sleep = rec.sleep

			_, err := src.Fetch(context.Background(), "app")

			require.ErrorIs(t, err, sentinel)
			assert.Equal(t, 1, calls)
			assert.Empty(t, rec.delays)
		})
	}
}

func TestRetrying_sleep_cancelled(t *testing.T) {
	t.Parallel()

	var calls int

	src := eventsource.NewRetrying(
		scripted(&calls, throttled(), throttled()),
	)
	src.Sleep = func(context.Context, time.Duration) error {
		return context.Canceled
	}

	_, err := src.Fetch(context.Background(), "app")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSleep_honours_context(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eventsource.Sleep(ctx, time.Hour)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoError(
		t, eventsource.Sleep(context.Background(), 0),
	)
}
