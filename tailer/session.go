package tailer

import (
	"github.com/byte4ever/stacktail/stackevent"
)

// State is the lifecycle position of a Session.
type State int

const (
	// StateInitializing locates the execution boundary.
	StateInitializing State = iota
	// StatePolling logs new events until the stack's
	// terminal event shows up.
	StatePolling
	// StateDrainingChildren waits for nested tails.
	StateDrainingChildren
	// StateDone means the outcome is final.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StatePolling:
		return "polling"
	case StateDrainingChildren:
		return "draining_children"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is the result of a stack execution.
type Outcome int

const (
	// OutcomePending means no terminal event was seen.
	OutcomePending Outcome = iota
	// OutcomeSuccess means the execution succeeded, or
	// nothing was running.
	OutcomeSuccess
	// OutcomeFailure means the execution ended in a
	// non-success terminal status.
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is what a finished tail reports to its caller.
type Result struct {
	// StackName is the display name of the stack.
	StackName string
	// Status is the terminal status observed, empty
	// when nothing was running.
	Status string
	// Outcome classifies Status.
	Outcome Outcome
	// NoOp is true when no execution was in flight.
	NoOp bool
}

// ExitCode maps the result of the top-level tail to a
// process exit status.
func ExitCode(res Result, err error) int {
	if err != nil || res.Outcome != OutcomeSuccess {
		return 1
	}

	return 0
}

// Session is the mutable state of one stack's tail. It
// is owned by the goroutine running that tail.
type Session struct {
	// StackID is the identifier passed to the source.
	StackID string
	// StackName is the display name derived from
	// StackID, matched against logical resource ids.
	StackName string
	// BoundaryID is the terminal event id of the
	// previous execution, empty on a first execution.
	BoundaryID string
	// LastLoggedID is the id of the newest event
	// rendered so far.
	LastLoggedID string
	// State is the current lifecycle position.
	State State
	// Terminal is the stack's own terminal event once
	// seen.
	Terminal *stackevent.StackEvent

	noOp     bool
	children *registry
}

// NewSession returns a session for stackID in
// StateInitializing.
func NewSession(stackID string) *Session {
	return &Session{
		StackID:   stackID,
		StackName: stackevent.NameFromID(stackID),
		State:     StateInitializing,
		children:  newRegistry(stackID),
	}
}

// Outcome returns the outcome known so far.
func (s *Session) Outcome() Outcome {
	switch {
	case s.noOp:
		return OutcomeSuccess
	case s.Terminal == nil:
		return OutcomePending
	case stackevent.IsSuccessStatus(s.Terminal.ResourceStatus):
		return OutcomeSuccess
	default:
		return OutcomeFailure
	}
}

// Result builds the caller facing result.
func (s *Session) Result() Result {
	res := Result{
		StackName: s.StackName,
		Outcome:   s.Outcome(),
		NoOp:      s.noOp,
	}

	if s.Terminal != nil {
		res.Status = s.Terminal.ResourceStatus
	}

	return res
}

// Children returns the ids of the nested stacks being
// tailed, in discovery order.
func (s *Session) Children() []string {
	return s.children.ids()
}
