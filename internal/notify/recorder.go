package notify

import "sync"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelLoading Level = "loading"
)

// Event is one message emitted to a Recorder. Replaced is set on terminal
// messages that resolve a Loading message and holds its index.
type Event struct {
	Level    Level
	Message  string
	Replaced int
}

// Recorder is a Sink that keeps every message in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(msg string)    { r.add(Event{Level: LevelInfo, Message: msg, Replaced: -1}) }
func (r *Recorder) Success(msg string) { r.add(Event{Level: LevelSuccess, Message: msg, Replaced: -1}) }
func (r *Recorder) Error(msg string)   { r.add(Event{Level: LevelError, Message: msg, Replaced: -1}) }

func (r *Recorder) Loading(msg string) Pending {
	idx := r.add(Event{Level: LevelLoading, Message: msg, Replaced: -1})
	return &recordedPending{r: r, idx: idx}
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of the given level were recorded.
func (r *Recorder) Count(level Level) int {
	n := 0
	for _, e := range r.Events() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (r *Recorder) add(e Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return len(r.events) - 1
}

type recordedPending struct {
	r   *Recorder
	idx int
}

func (p *recordedPending) Success(msg string) {
	p.r.add(Event{Level: LevelSuccess, Message: msg, Replaced: p.idx})
}

func (p *recordedPending) Error(msg string) {
	p.r.add(Event{Level: LevelError, Message: msg, Replaced: p.idx})
}
