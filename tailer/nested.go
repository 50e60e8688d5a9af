package tailer

import (
	"slices"

	"golang.org/x/sync/errgroup"
)

// childTask is the handle of one nested tail. result
// and err are written by the child goroutine and read
// after registry.wait returns.
type childTask struct {
	id     string
	result Result
	err    error
}

// registry maps nested stack physical ids to their
// tails. It is only touched by the owning session's
// goroutine; children report through their childTask.
type registry struct {
	self  string
	tasks map[string]*childTask
	order []string
	group errgroup.Group
}

func newRegistry(self string) *registry {
	return &registry{
		self:  self,
		tasks: make(map[string]*childTask),
	}
}

// track starts run for id unless id is the owning stack
// or already tracked. It returns true when a new tail was
// started.
func (r *registry) track(
	id string,
	run func() (Result, error),
) bool {
	if id == r.self {
		return false
	}

	if _, ok := r.tasks[id]; ok {
		return false
	}

	task := &childTask{id: id}
	r.tasks[id] = task
	r.order = append(r.order, id)

	r.group.Go(func() error {
		task.result, task.err = run()

		// A failed branch must not abort its siblings.
		return nil
	})

	return true
}

// wait blocks until every tracked tail has returned and
// returns their handles in discovery order.
func (r *registry) wait() []*childTask {
	_ = r.group.Wait()

	out := make([]*childTask, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id])
	}

	return out
}

func (r *registry) ids() []string {
	return slices.Clone(r.order)
}
