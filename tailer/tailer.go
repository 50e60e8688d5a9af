package tailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/byte4ever/stacktail/eventsource"
	"github.com/byte4ever/stacktail/render"
	"github.com/byte4ever/stacktail/stackevent"
)

// DefaultPollInterval is the wait between two polls of
// a stack's events.
const DefaultPollInterval = time.Second

// Config holds the collaborators of a Tailer.
type Config struct {
	// Source fetches events, newest first. It is
	// expected to handle throttling backoff itself.
	Source eventsource.Source

	// Renderer displays events and notices.
	Renderer render.Renderer

	// PollInterval is the wait after each poll. Zero
	// uses DefaultPollInterval.
	PollInterval time.Duration

	// Sleep waits between polls. Nil uses
	// eventsource.Sleep.
	Sleep eventsource.SleepFunc
}

// Tailer follows stacks and their nested stacks. It
// holds no per-stack state, every Tail call owns its own
// Session.
type Tailer struct {
	source   eventsource.Source
	renderer render.Renderer
	interval time.Duration
	sleep    eventsource.SleepFunc
}

// New validates cfg and returns a Tailer.
func New(cfg Config) (*Tailer, error) {
	const errCtx = "creating tailer"

	if cfg.Source == nil {
		return nil, fmt.Errorf(
			"%s: source must be set", errCtx,
		)
	}

	if cfg.Renderer == nil {
		return nil, fmt.Errorf(
			"%s: renderer must be set", errCtx,
		)
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = eventsource.Sleep
	}

	return &Tailer{
		source:   cfg.Source,
		renderer: cfg.Renderer,
		interval: interval,
		sleep:    sleep,
	}, nil
}

// Tail follows the current execution of stackID until
// its terminal event is seen, then waits for every
// nested stack tail it started. Nested failures are
// logged and do not change the result. Tail is safe for
// concurrent use.
func (t *Tailer) Tail(
	ctx context.Context,
	stackID string,
) (Result, error) {
	sess := NewSession(stackID)

	err := t.run(ctx, sess)

	// Nested tails always run to completion, even when
	// this branch failed.
	t.drain(sess)

	return sess.Result(), err
}

func (t *Tailer) run(ctx context.Context, sess *Session) error {
	const errCtx = "tailing stack"

	if err := t.initialize(ctx, sess); err != nil {
		return fmt.Errorf(
			"%s: %s: %w", errCtx, sess.StackName, err,
		)
	}

	for sess.State == StatePolling {
		if err := t.poll(ctx, sess); err != nil {
			return fmt.Errorf(
				"%s: %s: %w", errCtx, sess.StackName, err,
			)
		}
	}

	return nil
}

// initialize records the execution boundary. When the
// newest event already is the boundary nothing is
// running and the session goes straight to StateDone.
func (t *Tailer) initialize(
	ctx context.Context,
	sess *Session,
) error {
	const errCtx = "locating execution boundary"

	evs, err := t.source.Fetch(ctx, sess.StackID)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if b := stackevent.FindTerminal(sess.StackName, evs); b != nil {
		sess.BoundaryID = b.EventID

		if evs[0].EventID == b.EventID {
			sess.noOp = true
			t.transition(sess, StateDone)

			if err := t.renderer.Notice(
				sess.StackName, render.NoRunningUpdate,
			); err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			return nil
		}
	}

	t.transition(sess, StatePolling)

	return nil
}

// poll performs one iteration: fetch, window, render,
// discover nested stacks, sleep, then check whether the
// stack's own terminal event was among the new events.
func (t *Tailer) poll(ctx context.Context, sess *Session) error {
	const errCtx = "polling stack events"

	evs, err := t.source.Fetch(ctx, sess.StackID)
	if err != nil {
		if !errors.Is(err, eventsource.ErrThrottled) {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		slog.Warn(
			"throttled, skipping poll",
			"stack", sess.StackName,
		)

		evs = nil
	}

	window := Window(evs, sess.BoundaryID, sess.LastLoggedID)

	for _, ev := range window {
		if err := t.renderer.Event(ev); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		sess.LastLoggedID = ev.EventID

		t.discover(ctx, sess, ev)
	}

	if err := t.sleep(ctx, t.interval); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if term := stackevent.FindTerminal(
		sess.StackName, window,
	); term != nil {
		sess.Terminal = term
		t.transition(sess, StateDrainingChildren)
	}

	return nil
}

// discover starts a nested tail when ev reveals a child
// stack that is not tracked yet.
func (t *Tailer) discover(
	ctx context.Context,
	sess *Session,
	ev stackevent.StackEvent,
) {
	if !stackevent.IsNestedStack(sess.StackName, ev) {
		return
	}

	childID := ev.PhysicalResourceID

	started := sess.children.track(
		childID,
		func() (Result, error) {
			res, err := t.Tail(ctx, childID)
			if err != nil {
				slog.Error(
					"nested stack tail failed",
					"parent", sess.StackName,
					"stack", childID,
					"error", err,
				)
			}

			return res, err
		},
	)

	if started {
		slog.Info(
			"tailing nested stack",
			"parent", sess.StackName,
			"stack", childID,
		)
	}
}

// drain waits for every nested tail of sess.
func (t *Tailer) drain(sess *Session) {
	if sess.State == StateDrainingChildren {
		defer t.transition(sess, StateDone)
	}

	for _, child := range sess.children.wait() {
		slog.Debug(
			"nested stack finished",
			"parent", sess.StackName,
			"stack", child.id,
			"outcome", child.result.Outcome.String(),
			"failed", child.err != nil,
		)
	}
}

func (t *Tailer) transition(sess *Session, to State) {
	slog.Debug(
		"session transition",
		"stack", sess.StackName,
		"from", sess.State.String(),
		"to", to.String(),
	)

	sess.State = to
}
