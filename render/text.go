package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/byte4ever/stacktail/stackevent"
)

const (
	// DefaultWidth is used when the output is not a
	// terminal.
	DefaultWidth = 132

	timestampWidth = 24
	columnCount    = 6
	columnSep      = "  "
	timeLayout     = "2006-01-02T15:04:05.000Z07:00"
)

type fder interface {
	Fd() uintptr
}

// TerminalWidth returns 80% of the terminal width of w,
// or DefaultWidth when w is not a terminal.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(fder)
	if !ok {
		return DefaultWidth
	}

	fd := int(f.Fd()) //nolint:gosec // fd fits in int
	if !term.IsTerminal(fd) {
		return DefaultWidth
	}

	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return DefaultWidth
	}

	width := cols * 4 / 5 //nolint:mnd // 80% of the terminal
	if width == 0 {
		return DefaultWidth
	}

	return width
}

// ColumnWidths splits total between the stack name,
// timestamp, logical id, type, status and reason
// columns. The timestamp column is fixed.
func ColumnWidths(total int) []int {
	fifth := total / 5 //nolint:mnd // five flexible columns
	if fifth < 1 {
		fifth = 1
	}

	return []int{
		fifth, timestampWidth, fifth, fifth, fifth, fifth,
	}
}

// Text renders events as wrapped columns.
type Text struct {
	mu     sync.Mutex
	out    io.Writer
	widths []int
}

// NewText returns a Text renderer laid out for width
// total columns.
func NewText(out io.Writer, width int) *Text {
	return &Text{
		out:    out,
		widths: ColumnWidths(width),
	}
}

// Event writes ev as one or more lines; each cell wraps
// within its column and the row is as tall as its
// tallest cell.
func (t *Text) Event(ev stackevent.StackEvent) error {
	const errCtx = "rendering text event"

	cells := [columnCount][]string{
		chunk(ev.StackName, t.widths[0]),
		chunk(ev.Timestamp.UTC().Format(timeLayout), t.widths[1]),
		chunk(ev.LogicalResourceID, t.widths[2]),
		chunk(ev.ResourceType, t.widths[3]),
		chunk(ev.ResourceStatus, t.widths[4]),
		chunk(ev.StatusReason, t.widths[5]),
	}

	lines := 0
	for _, c := range cells {
		lines = max(lines, len(c))
	}

	var sb strings.Builder

	for i := range lines {
		parts := make([]string, columnCount)

		for col, c := range cells {
			var s string
			if i < len(c) {
				s = c[i]
			}

			parts[col] = pad(s, t.widths[col])
		}

		sb.WriteString(strings.Join(parts, columnSep))
		sb.WriteByte('\n')
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := io.WriteString(t.out, sb.String()); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Notice writes "<stack>: <msg>".
func (t *Text) Notice(stackName string, msg string) error {
	const errCtx = "rendering text notice"

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(
		t.out, "%s: %s\n", stackName, msg,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// chunk splits s into pieces of at most width runes. An
// empty string yields no pieces.
func chunk(s string, width int) []string {
	runes := []rune(s)

	var out []string

	for len(runes) > 0 {
		n := min(width, len(runes))
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}

	return out
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}

	return s + strings.Repeat(" ", width-n)
}
