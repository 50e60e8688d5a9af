package render

import (
	"fmt"
	"io"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/stacktail/stackevent"
)

// JSON renders every event as one JSON object per line.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

type notice struct {
	StackName string `json:"stackName"`
	Message   string `json:"message"`
}

// NewJSON returns a JSON lines renderer writing to out.
func NewJSON(out io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(out)}
}

// Event encodes ev on its own line.
func (j *JSON) Event(ev stackevent.StackEvent) error {
	return j.encode(ev)
}

// Notice encodes a {"stackName","message"} object.
func (j *JSON) Notice(stackName string, msg string) error {
	return j.encode(notice{
		StackName: stackName,
		Message:   msg,
	})
}

func (j *JSON) encode(v any) error {
	const errCtx = "rendering json"

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(v); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
