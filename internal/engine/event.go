package engine

// Event is a scheduled occurrence: something happens at Time, identified
// by Name, carrying optional Data. SourceTask records which task's
// program emitted it, for diagnostics and the execution log.
type Event struct {
	Time       float64
	Name       string
	Priority   int
	Data       map[string]any
	SourceTask string
}

// EventEmitter is the per-execution scratch buffer a running task's
// program writes into via emit(...). The executor drains it into the
// shared EventQueue only after the owning batch fully succeeds (spec.md
// §5: all-or-nothing batch merge), so emission itself never touches
// shared state.
type EventEmitter struct {
	sourceTask  string
	currentTime float64
	pending     []Event
}

// NewEventEmitter returns an emitter for a single task execution, given
// the current simulation time (delays are relative to it).
func NewEventEmitter(sourceTask string, currentTime float64) *EventEmitter {
	return &EventEmitter{sourceTask: sourceTask, currentTime: currentTime}
}

// Emit records an event to be scheduled at currentTime+delay once this
// emitter's batch is accepted.
func (e *EventEmitter) Emit(name string, delay float64, priority int) {
	if delay < 0 {
		delay = 0
	}
	e.pending = append(e.pending, Event{
		Time:       e.currentTime + delay,
		Name:       name,
		Priority:   priority,
		SourceTask: e.sourceTask,
	})
}

// Pending returns the events recorded so far.
func (e *EventEmitter) Pending() []Event {
	return e.pending
}
