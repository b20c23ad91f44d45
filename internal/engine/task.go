package engine

import "github.com/pkg/errors"

// Task is a named, schedulable unit of work within a component: a
// trigger deciding when it's a candidate to run, an optional guard
// further restricting that, a dependency list controlling ordering
// within a round, and a compiled action program mutating state/outputs
// and optionally emitting new events.
type Task struct {
	Name      string
	DependsOn []string
	Trigger   Trigger
	Guard     *Expr // nil means "always runs once triggered"
	Program   *Program
}

// NewTask compiles guardSource (may be empty) and actionSource, and
// returns a Task. A malformed guard or action yields a TaskError at
// construction time, never at execution time (spec.md §4.1).
func NewTask(name string, dependsOn []string, trigger Trigger, guardSource, actionSource string) (*Task, error) {
	var guard *Expr
	if guardSource != "" {
		g, err := CompileExpr(guardSource)
		if err != nil {
			return nil, &TaskError{Task: name, Message: "invalid guard expression", Err: err}
		}
		guard = g
	}

	program, err := CompileProgram(name, actionSource)
	if err != nil {
		return nil, err
	}

	return &Task{
		Name:      name,
		DependsOn: append([]string(nil), dependsOn...),
		Trigger:   trigger,
		Guard:     guard,
		Program:   program,
	}, nil
}

// ShouldRun reports whether this task is activated for the event
// described by actx: its trigger must fire, and if present its guard
// must evaluate true. A guard evaluation error is treated as "does not
// run" rather than propagated — a misbehaving guard should not abort an
// otherwise-healthy round (spec.md §4.1, guard failures are swallowed).
// A task with no trigger at all never activates this way — it defaults
// to false (spec.md §4.8.1); this method is only consulted by the
// event-driven scheduler, which has nothing else to schedule such a
// task on. Synchronous rounds never call it (see Component.ExecuteRound).
func (t *Task) ShouldRun(actx ActivationContext) bool {
	if t.Trigger == nil || !t.Trigger.ShouldActivate(actx) {
		return false
	}
	if t.Guard == nil {
		return true
	}
	vars := activation(actx.State.Map(), actx.Inputs.Map(), actx.Outputs.Map(), actx.CurrentTime, actx.EventName, actx.EventData)
	ok, err := t.Guard.EvalBool(vars)
	if err != nil {
		return false
	}
	return ok
}

// TaskContext is the private, per-execution working set a single task
// invocation operates on: its own copies of state/inputs/outputs so
// concurrent task executions never observe each other's in-flight
// writes (spec.md §5, message-passing over locks-and-snapshot).
type TaskContext struct {
	Inputs      *Record
	Outputs     *Record
	State       *Record
	CurrentTime float64
	EventName   string
	EventData   map[string]any
	Emitter     *EventEmitter
}

// NewTaskContext builds a private copy of the given state/inputs/outputs
// for a single task invocation.
func NewTaskContext(state, inputs, outputs map[string]any, currentTime float64, eventName string, eventData map[string]any, sourceTask string) *TaskContext {
	return &TaskContext{
		Inputs:      CopyOf(inputs),
		Outputs:     CopyOf(outputs),
		State:       CopyOf(state),
		CurrentTime: currentTime,
		EventName:   eventName,
		EventData:   eventData,
		Emitter:     NewEventEmitter(sourceTask, currentTime),
	}
}

func (c *TaskContext) toRuntime() *runtime {
	return &runtime{
		inputs:      c.Inputs,
		outputs:     c.Outputs,
		state:       c.State,
		currentTime: c.CurrentTime,
		eventName:   c.EventName,
		eventData:   c.EventData,
		emitter:     c.Emitter,
	}
}

// Execute runs the task's compiled action against ctx. On error the
// caller must discard ctx entirely rather than merge any part of it —
// partial application within a single task's program is never rolled
// back, but the task-level delta as a whole is all-or-nothing from the
// executor's point of view.
func (t *Task) Execute(ctx *TaskContext) error {
	if err := t.Program.Run(ctx.toRuntime()); err != nil {
		return &TaskError{Task: t.Name, Message: "execution failed", Err: errors.WithStack(err)}
	}
	return nil
}
