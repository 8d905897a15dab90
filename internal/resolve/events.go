package resolve

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event sources recorded on lookup events.
const (
	EventSourceMemory  = "memory"
	EventSourceStore   = "store"
	EventSourceNetwork = "network"
	EventSourceSkipped = "skipped"
)

// Event is one entry in the resolution audit log.
type Event struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	LookupHash string        `json:"lookupHash"`
	Title      string        `json:"title"`
	Source     string        `json:"source"`
	TmdbID     *int          `json:"tmdbId"`
	Confidence *float64      `json:"confidence"`
	Trace      DecisionTrace `json:"trace"`
}

// eventLog is an append-only in-process buffer of resolution decisions,
// drained by external reporting. The cap keeps an undrained log from
// growing without bound; oldest entries fall off first.
type eventLog struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

func newEventLog(limit int) *eventLog {
	if limit <= 0 {
		limit = 1000
	}
	return &eventLog{limit: limit}
}

func (l *eventLog) record(ev Event) {
	ev.ID = uuid.New().String()
	ev.Timestamp = time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	if len(l.events) > l.limit {
		l.events = l.events[len(l.events)-l.limit:]
	}
}

// drain returns all buffered events and clears the buffer.
func (l *eventLog) drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.events
	l.events = nil
	return out
}
