package render

import (
	"fmt"
	"io"

	"github.com/byte4ever/stacktail/stackevent"
)

const (
	// FormatText selects the column layout.
	FormatText = "text"
	// FormatJSON selects JSON lines.
	FormatJSON = "json"
)

// NoRunningUpdate is the notice emitted when a stack has
// no execution in flight.
const NoRunningUpdate = "No currently running stack update"

// Renderer displays events and notices. Implementations
// must be safe for concurrent use.
type Renderer interface {
	// Event writes one event.
	Event(ev stackevent.StackEvent) error
	// Notice writes an informational line about a stack.
	Notice(stackName string, msg string) error
}

// New returns the renderer for format.
func New(
	format string,
	out io.Writer,
) (Renderer, error) {
	const errCtx = "creating renderer"

	switch format {
	case FormatText, "":
		return NewText(out, TerminalWidth(out)), nil
	case FormatJSON:
		return NewJSON(out), nil
	default:
		return nil, fmt.Errorf(
			"%s: unknown format %q", errCtx, format,
		)
	}
}
