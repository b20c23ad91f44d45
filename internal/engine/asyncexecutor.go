package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// generateInputEvent is the synthetic event the executor uses to pull a
// fresh input record from its InputSource on a fixed cadence, mirroring
// the source tool's "_generate_and_emit_input" step.
const generateInputEvent = "_generate_input"

// periodicWakeEvent is the synthetic event pushed to guarantee the queue
// has something to pop at a periodic task's next due time. Periodic
// triggers are gated purely on elapsed simulated time (spec.md §3), not
// on this event's name, so one shared name serves every periodic task —
// the event's only job is to make sure the clock gets a chance to reach
// that time at all.
const periodicWakeEvent = "__periodic__"

// startEvent is the fallback event pushed once at t=0 so an
// ImmediateTrigger (or any EventTrigger named "start") has something to
// fire on even when a run defines no periodic tasks and no input
// generation is configured.
const startEvent = "start"

// EventDrivenExecutor drives a single Component event by event rather
// than round by round: it maintains an EventQueue seeded with each
// task's periodic ticks plus input-generation events, and on every
// popped event determines which tasks are activated, runs them (in
// parallel when more than one activates on the same event), and merges
// their combined delta only if every one of them succeeded.
type EventDrivenExecutor struct {
	Component   *Component
	Queue       *EventQueue
	Clock       *SimulationTime
	Termination TerminationCondition
	Inputs      InputSource
	MaxWorkers  int
	Log         *ExecutionLog
	Logger      *slog.Logger

	// Metrics is optional: a nil value disables Prometheus instrumentation
	// entirely, since every Metrics method is nil-receiver-safe.
	Metrics *Metrics

	// InputInterval gates recurring "_generate_input" scheduling: the
	// event is only seeded (and only re-armed after firing) when both
	// Inputs is non-nil and InputInterval > 0, mirroring the source
	// tool's "if self.input_generator and self.input_interval" guard.
	// Zero (the default) disables automatic input regeneration entirely.
	InputInterval float64

	outputs         *Record
	latestInputs    map[string]any
	eventsProcessed int
	inputRound      int
}

// NewEventDrivenExecutor wires a ready-to-run executor. maxWorkers bounds
// how many tasks activated by the same event run concurrently; a value
// <= 0 is treated as 1 (fully sequential). Automatic input regeneration
// is off by default; set InputInterval on the returned executor to
// enable it.
func NewEventDrivenExecutor(c *Component, clock *SimulationTime, term TerminationCondition, inputs InputSource, maxWorkers int, logger *slog.Logger) *EventDrivenExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &EventDrivenExecutor{
		Component:    c,
		Queue:        NewEventQueue(),
		Clock:        clock,
		Termination:  term,
		Inputs:       inputs,
		MaxWorkers:   maxWorkers,
		Log:          NewExecutionLog(),
		Logger:       logger,
		outputs:      CopyOf(nil),
		latestInputs: map[string]any{},
	}
}

// Stats is a point-in-time snapshot exposed for metrics/diagnostics.
type Stats struct {
	EventsProcessed int
	QueueLength     int
	CurrentTime     float64
}

func (e *EventDrivenExecutor) Stats() Stats {
	return Stats{
		EventsProcessed: e.eventsProcessed,
		QueueLength:     e.Queue.Len(),
		CurrentTime:     e.Clock.Current(),
	}
}

// seed schedules whatever the queue needs to guarantee progress: a wake-up
// per periodic task at its next due time, a recurring input-generation
// event only if both an InputSource and a positive InputInterval are
// configured, and — only if the queue would otherwise be completely
// empty — a single "start" event, mirroring the source tool's
// "_schedule_periodic_tasks" / "_schedule_input_generation" / fallback
// "start" sequence (spec.md §4.8 initial setup).
func (e *EventDrivenExecutor) seed() {
	now := e.Clock.Current()
	for _, t := range e.Component.Tasks {
		if pt, ok := t.Trigger.(*PeriodicTrigger); ok {
			e.Queue.Push(Event{Time: pt.GetNextTime(now), Name: periodicWakeEvent})
		}
	}
	if e.Inputs != nil && e.InputInterval > 0 {
		e.Queue.Push(Event{Time: now, Name: generateInputEvent})
	}
	if e.Queue.IsEmpty() {
		e.Queue.Push(Event{Time: now, Name: startEvent})
	}
}

func (e *EventDrivenExecutor) termContext() TerminationContext {
	return TerminationContext{
		Round:           e.eventsProcessed,
		CurrentTime:     e.Clock.Current(),
		EventsProcessed: e.eventsProcessed,
		QueueEmpty:      e.Queue.IsEmpty(),
		State:           e.Component.State,
	}
}

// Run processes events until the termination condition is met.
func (e *EventDrivenExecutor) Run() (*ExecutionLog, error) {
	if e.Component.Kind != Asynchronous {
		return e.Log, &ComponentError{Component: e.Component.Name, Message: "the event-driven executor requires an asynchronous component"}
	}
	e.Metrics.SimulationStarted()
	defer e.Metrics.SimulationFinished()

	e.seed()
	e.Metrics.SetQueueDepth(e.Component.Name, e.Queue.Len())

	for {
		ctx := e.termContext()
		met, err := e.Termination.IsMet(ctx)
		if err != nil {
			return e.Log, err
		}
		if met {
			e.Logger.Info("run terminated", "component", e.Component.Name, "events_processed", e.eventsProcessed)
			return e.Log, nil
		}
		if ctx.QueueEmpty {
			e.Logger.Info("event queue drained with no termination condition met", "component", e.Component.Name)
			return e.Log, nil
		}

		ev, _ := e.Queue.Pop()

		// Peek-ahead: if advancing the clock to this event's time would
		// itself satisfy termination (e.g. a MaxTime limit), stop here
		// without advancing the clock or dispatching anything — the
		// event is popped off the queue but never runs (spec.md §8
		// scenario 3: "loop pops the t=6 event but terminates before
		// dispatching").
		peek := ctx
		peek.CurrentTime = ev.Time
		peekMet, err := e.Termination.IsMet(peek)
		if err != nil {
			return e.Log, err
		}
		if peekMet {
			e.Logger.Info("run terminated before dispatching next event", "component", e.Component.Name, "event", ev.Name, "time", ev.Time)
			return e.Log, nil
		}

		if err := e.Clock.AdvanceTo(ev.Time); err != nil {
			return e.Log, err
		}
		e.eventsProcessed++
		e.Metrics.SetQueueDepth(e.Component.Name, e.Queue.Len())

		if ev.Name == generateInputEvent {
			inputs, err := e.Inputs.Next(e.inputRound)
			if err != nil {
				return e.Log, err
			}
			e.inputRound++
			e.latestInputs = inputs
			if e.InputInterval > 0 {
				e.Queue.Push(Event{Time: e.Clock.Current() + e.InputInterval, Name: generateInputEvent})
				e.Metrics.SetQueueDepth(e.Component.Name, e.Queue.Len())
			}
			continue
		}

		activated := e.activatedTasks(ev)
		start := time.Now()
		deltas, err := e.executeBatch(ev, activated)
		e.Metrics.ObserveRoundDuration(e.Component.Name, "async", time.Since(start).Seconds())
		if err != nil {
			if te, ok := err.(*TaskError); ok {
				e.Metrics.RecordTaskError(e.Component.Name, te.Task)
			} else {
				e.Metrics.RecordTaskError(e.Component.Name, "batch")
			}
			return e.Log, err
		}
		e.Metrics.RecordEvent(e.Component.Name, "async")

		e.mergeBatch(deltas)
		e.Metrics.SetQueueDepth(e.Component.Name, e.Queue.Len())

		e.Log.Append(RoundRecord{
			RoundNumber: e.eventsProcessed,
			Inputs:      copyMap(e.latestInputs),
			Outputs:     e.outputs.Snapshot(),
			State:       e.Component.State.Snapshot(),
			TaskOrder:   taskNames(activated),
		})
	}
}

// activatedTasks evaluates every task's trigger/guard against ev, and
// re-arms any PeriodicTrigger that fires — even when the task's guard
// then keeps it from running — before anything executes, so a slow or
// guarded-off task can never suppress its own next tick.
func (e *EventDrivenExecutor) activatedTasks(ev Event) []*Task {
	actx := ActivationContext{
		EventName:   ev.Name,
		EventData:   ev.Data,
		State:       e.Component.State,
		Inputs:      NewRecord(e.latestInputs),
		Outputs:     e.outputs,
		CurrentTime: e.Clock.Current(),
	}

	var activated []*Task
	for _, t := range e.Component.Tasks {
		pt, periodic := t.Trigger.(*PeriodicTrigger)
		var dueBefore float64
		if periodic {
			dueBefore = pt.GetNextTime(actx.CurrentTime)
		}
		run := t.ShouldRun(actx)
		// A periodic trigger that fired has moved its due time forward.
		if periodic && pt.GetNextTime(actx.CurrentTime) != dueBefore {
			e.Queue.Push(Event{Time: pt.GetNextTime(actx.CurrentTime), Name: periodicWakeEvent})
		}
		if run {
			activated = append(activated, t)
		}
	}
	return activated
}

// executeBatch runs every activated task against its own private
// TaskContext, concurrently bounded by MaxWorkers. It returns the
// per-task contexts only if every task in the batch succeeded; any
// single failure discards the whole batch — no deltas, no emitted
// events — and returns a TaskError naming the first task observed to
// fail (spec.md §8 scenario 6: all-or-nothing batch merge).
func (e *EventDrivenExecutor) executeBatch(ev Event, activated []*Task) ([]*TaskContext, error) {
	if len(activated) == 1 {
		t := activated[0]
		ctx := NewTaskContext(e.Component.State.Map(), e.latestInputs, e.outputs.Map(), e.Clock.Current(), ev.Name, ev.Data, t.Name)
		if err := t.Execute(ctx); err != nil {
			return nil, err
		}
		return []*TaskContext{ctx}, nil
	}

	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, e.MaxWorkers)
		mu       sync.Mutex
		firstErr error
		contexts = make([]*TaskContext, len(activated))
	)

	for i, t := range activated {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, t *Task) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = &TaskError{Task: t.Name, Message: fmt.Sprintf("panic: %v", r)}
					}
					mu.Unlock()
				}
			}()

			ctx := NewTaskContext(e.Component.State.Map(), e.latestInputs, e.outputs.Map(), e.Clock.Current(), ev.Name, ev.Data, t.Name)
			if err := t.Execute(ctx); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			contexts[i] = ctx
		}(i, t)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return contexts, nil
}

// mergeBatch applies every task context's delta and drains its emitted
// events into the shared queue. Called only once the whole batch is
// known to have succeeded.
func (e *EventDrivenExecutor) mergeBatch(deltas []*TaskContext) {
	for _, ctx := range deltas {
		e.Component.State.Merge(ctx.State.Snapshot())
		e.outputs.Merge(ctx.Outputs.Snapshot())
	}
	for _, ctx := range deltas {
		for _, pending := range ctx.Emitter.Pending() {
			e.Queue.Push(pending)
		}
	}
}

// taskNames preserves the activation order of tasks (declared order among
// those activated for this event), not a sorted order — spec.md §4.8.1
// requires the activated set and its logged task_order to match the
// order tasks were found to fire in.
func taskNames(tasks []*Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

func copyMap(m map[string]any) map[string]any {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
