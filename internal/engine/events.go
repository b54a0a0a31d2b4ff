package engine

import "fmt"

// EventKind identifies what an Event does when it is dispatched.
type EventKind uint8

const (
	EventNoteOn EventKind = iota + 1
	EventNoteOff
	EventAllNotesOff
)

// String returns the kind's lower-case name, e.g. "note-on".
func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventAllNotesOff:
		return "all-notes-off"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a note event scheduled at an absolute sample frame.
type Event struct {
	Frame    int64
	Kind     EventKind
	Note     int
	Velocity float64
}

type queuedEvent struct {
	Event
	seq uint64
}

// eventQueue is a min-heap ordered by frame, then by insertion order so
// events sharing a frame are dispatched first-in first-out.
type eventQueue []queuedEvent

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].Frame != q[j].Frame {
		return q[i].Frame < q[j].Frame
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(queuedEvent)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	*q = old[:n-1]
	return ev
}
