package tailer_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/byte4ever/stacktail/eventsource"
	"github.com/byte4ever/stacktail/stackevent"
)

//nolint:gochecknoglobals // fixed test clock
var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

const childARN = "arn:aws:cloudformation:us-east-1:" +
	"123456789012:stack/app-Db-1ABC/0000-1111"

// stackEv builds a stack-level event of stack name at
// base+sec.
func stackEv(
	id, name, status string,
	sec int,
) stackevent.StackEvent {
	return stackevent.StackEvent{
		EventID:           id,
		StackName:         name,
		Timestamp:         base.Add(time.Duration(sec) * time.Second),
		LogicalResourceID: name,
		ResourceType:      stackevent.StackType,
		ResourceStatus:    status,
	}
}

// resEv builds a member resource event of stack app.
func resEv(
	id, logical, status string,
	sec int,
) stackevent.StackEvent {
	return stackevent.StackEvent{
		EventID:           id,
		StackName:         "app",
		Timestamp:         base.Add(time.Duration(sec) * time.Second),
		LogicalResourceID: logical,
		ResourceType:      "AWS::S3::Bucket",
		ResourceStatus:    status,
	}
}

// childEv builds the parent-side event of nested stack
// Db.
func childEv(id, status string, sec int) stackevent.StackEvent {
	ev := stackEv(id, "app", status, sec)
	ev.LogicalResourceID = "Db"
	ev.PhysicalResourceID = childARN

	return ev
}

// newestFirst returns evs in reverse order, the way the
// API delivers them.
func newestFirst(
	evs ...stackevent.StackEvent,
) []stackevent.StackEvent {
	out := slices.Clone(evs)
	slices.Reverse(out)

	return out
}

func ids(evs []stackevent.StackEvent) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.EventID)
	}

	return out
}

type page struct {
	evs []stackevent.StackEvent
	err error
}

// fakeSource replays scripted pages per stack id; the
// last page repeats once the script is exhausted.
type fakeSource struct {
	mu    sync.Mutex
	pages map[string][]page
	calls map[string]int
	gate  map[string]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages: make(map[string][]page),
		calls: make(map[string]int),
		gate:  make(map[string]chan struct{}),
	}
}

func (f *fakeSource) script(id string, pages ...page) {
	f.pages[id] = pages
}

func ok(evs ...stackevent.StackEvent) page {
	return page{evs: evs}
}

func (f *fakeSource) Fetch(
	ctx context.Context,
	id string,
) ([]stackevent.StackEvent, error) {
	f.mu.Lock()
	gate := f.gate[id]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.calls[id]
	f.calls[id]++

	ps := f.pages[id]
	if len(ps) == 0 {
		return nil, fmt.Errorf(
			"fake: %s: %w", id, eventsource.ErrNotFound,
		)
	}

	if n >= len(ps) {
		n = len(ps) - 1
	}

	return ps[n].evs, ps[n].err
}

func (f *fakeSource) callsFor(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[id]
}

type notice struct {
	stack string
	msg   string
}

// recorder is a concurrency safe render.Renderer.
type recorder struct {
	mu      sync.Mutex
	events  []stackevent.StackEvent
	notices []notice
}

func (r *recorder) Event(ev stackevent.StackEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)

	return nil
}

func (r *recorder) Notice(stack, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, notice{stack, msg})

	return nil
}

func (r *recorder) eventsOf(stack string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string

	for _, ev := range r.events {
		if ev.StackName == stack {
			out = append(out, ev.EventID)
		}
	}

	return out
}

type sleepCounter struct {
	mu sync.Mutex
	n  int
}

func (s *sleepCounter) sleep(
	_ context.Context,
	_ time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++

	return nil
}
