package engine

// ActivationContext is what a Trigger sees when deciding whether its
// task should run for the event currently being processed.
type ActivationContext struct {
	EventName   string
	EventData   map[string]any
	State       *Record
	Inputs      *Record
	Outputs     *Record
	CurrentTime float64
}

// Trigger decides, for a single processed event, whether the task it is
// attached to should be considered for execution. Triggers are
// stateful: PeriodicTrigger tracks its next firing time and
// ConditionTrigger latches on a rising edge, so the same Trigger
// instance must be reused across the whole run rather than rebuilt per
// event.
type Trigger interface {
	ShouldActivate(ctx ActivationContext) bool
}

// PeriodicTrigger fires whenever at least Interval units of simulated
// time have elapsed since it last fired — gated purely on elapsed time,
// exactly like the source tool's PeriodicTrigger.should_activate, which
// takes an event_name parameter but never consults it. This means a
// periodic task can fire opportunistically on any event the executor
// happens to be dispatching once it's due, not only on its own
// synthetic wake-up event; the executor's wake-up event exists only to
// guarantee the clock gets a chance to reach the due time at all
// (spec.md §3, §5 "Periodic re-arming happens at selection time").
type PeriodicTrigger struct {
	Interval     float64
	InitialDelay float64

	last        float64
	initialized bool
}

func (t *PeriodicTrigger) ensureInit() {
	if !t.initialized {
		// Equivalent to "last firing time, initially -infinity" for any
		// InitialDelay of 0 (spec.md §3): current_time - last is always
		// >= Interval from the very first non-negative current_time.
		t.last = t.InitialDelay - t.Interval
		t.initialized = true
	}
}

func (t *PeriodicTrigger) ShouldActivate(ctx ActivationContext) bool {
	t.ensureInit()
	if ctx.CurrentTime-t.last >= t.Interval {
		t.last = ctx.CurrentTime
		return true
	}
	return false
}

// GetNextTime returns the time this trigger will next become due, for
// the executor to schedule a wake-up event on.
func (t *PeriodicTrigger) GetNextTime(currentTime float64) float64 {
	t.ensureInit()
	return t.last + t.Interval
}

// EventTrigger fires whenever an event named EventName is processed.
type EventTrigger struct {
	EventName string
}

func (t *EventTrigger) ShouldActivate(ctx ActivationContext) bool {
	return ctx.EventName == t.EventName
}

// ConditionTrigger fires on the rising edge of a CEL boolean expression:
// only on the transition from false (or never-evaluated) to true, not on
// every round the condition remains true.
type ConditionTrigger struct {
	Condition *Expr
	wasTrue   bool
}

func (t *ConditionTrigger) ShouldActivate(ctx ActivationContext) bool {
	vars := activation(ctx.State.Map(), ctx.Inputs.Map(), ctx.Outputs.Map(), ctx.CurrentTime, ctx.EventName, ctx.EventData)
	now, err := t.Condition.EvalBool(vars)
	if err != nil {
		// A condition that fails to evaluate is treated as false; the
		// evaluation error is not reported anywhere.
		now = false
	}
	activated := now && !t.wasTrue
	t.wasTrue = now
	return activated
}

// ImmediateTrigger fires exactly once, on the very first event the
// executor processes (conventionally "start"), regardless of its name.
type ImmediateTrigger struct {
	fired bool
}

func (t *ImmediateTrigger) ShouldActivate(ctx ActivationContext) bool {
	if t.fired {
		return false
	}
	t.fired = true
	return true
}
