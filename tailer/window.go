package tailer

import (
	"slices"

	"github.com/byte4ever/stacktail/stackevent"
)

// Window returns the events of page that belong to the
// current execution and were not logged yet, oldest
// first. page is newest first, as returned by the API.
//
// Events at or after boundaryID (the terminal event of
// the previous execution) are dropped, then events at or
// after lastLoggedID. Ids absent from page trim nothing.
func Window(
	page []stackevent.StackEvent,
	boundaryID string,
	lastLoggedID string,
) []stackevent.StackEvent {
	end := len(page)

	if i := indexOf(page[:end], boundaryID); i >= 0 {
		end = i
	}

	if i := indexOf(page[:end], lastLoggedID); i >= 0 {
		end = i
	}

	out := slices.Clone(page[:end])
	slices.Reverse(out)
	slices.SortStableFunc(
		out,
		func(a, b stackevent.StackEvent) int {
			return a.Timestamp.Compare(b.Timestamp)
		},
	)

	return out
}

func indexOf(page []stackevent.StackEvent, id string) int {
	if id == "" {
		return -1
	}

	return slices.IndexFunc(
		page,
		func(ev stackevent.StackEvent) bool {
			return ev.EventID == id
		},
	)
}
