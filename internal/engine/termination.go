package engine

import "github.com/pkg/errors"

// TerminationContext is the snapshot a TerminationCondition is evaluated
// against before each round/event. The executors fill State but leave
// Inputs and Outputs nil.
type TerminationContext struct {
	Round           int
	CurrentTime     float64
	EventsProcessed int
	QueueEmpty      bool
	State           *Record
	Inputs          *Record
	Outputs         *Record
}

// TerminationCondition decides whether a run should stop. IsMet returns
// an error when the condition itself could not be evaluated (spec.md
// §4.6: "any evaluation failure is signalled as an error, not silently
// false"); a caller that gets one must abort the run rather than treat
// it as "not yet terminated."
type TerminationCondition interface {
	IsMet(ctx TerminationContext) (bool, error)
}

// MaxRounds stops once Round reaches Limit.
type MaxRounds struct {
	Limit int
}

func (c *MaxRounds) IsMet(ctx TerminationContext) (bool, error) { return ctx.Round >= c.Limit, nil }

// MaxTime stops once CurrentTime reaches Limit.
type MaxTime struct {
	Limit float64
}

func (c *MaxTime) IsMet(ctx TerminationContext) (bool, error) {
	return ctx.CurrentTime >= c.Limit, nil
}

// MaxEvents stops once EventsProcessed reaches Limit.
type MaxEvents struct {
	Limit int
}

func (c *MaxEvents) IsMet(ctx TerminationContext) (bool, error) {
	return ctx.EventsProcessed >= c.Limit, nil
}

// EmptyQueue stops once there is nothing left to schedule.
type EmptyQueue struct{}

func (c *EmptyQueue) IsMet(ctx TerminationContext) (bool, error) { return ctx.QueueEmpty, nil }

// StateCondition stops once a CEL boolean expression over state/inputs/
// outputs evaluates true; a nil Inputs or Outputs record reads as an
// empty map. It never fires on round 0: a run must make at
// least one round of progress before a state-based condition can end it,
// matching the source tool's guard against terminating before anything
// has happened. An expression that fails to evaluate is reported as an
// error rather than swallowed to false, matching original_source's
// StateCondition.should_terminate, which re-raises as a RuntimeError
// (spec.md §4.6).
type StateCondition struct {
	Condition *Expr
}

func (c *StateCondition) IsMet(ctx TerminationContext) (bool, error) {
	if ctx.Round == 0 {
		return false, nil
	}
	var inputs, outputs map[string]any
	if ctx.Inputs != nil {
		inputs = ctx.Inputs.Map()
	}
	if ctx.Outputs != nil {
		outputs = ctx.Outputs.Map()
	}
	vars := activation(ctx.State.Map(), inputs, outputs, ctx.CurrentTime, "", nil)
	met, err := c.Condition.EvalBool(vars)
	if err != nil {
		return false, errors.Wrap(err, "error evaluating termination condition")
	}
	return met, nil
}

// Composite stops once any of its member conditions is met (logical OR).
// The first member to either fire or fail ends evaluation.
type Composite struct {
	Conditions []TerminationCondition
}

func (c *Composite) IsMet(ctx TerminationContext) (bool, error) {
	for _, cond := range c.Conditions {
		met, err := cond.IsMet(ctx)
		if err != nil {
			return false, err
		}
		if met {
			return true, nil
		}
	}
	return false, nil
}
