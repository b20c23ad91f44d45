package engine

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// exprEnv is the single CEL environment shared by task-statement
// right-hand sides, trigger conditions, guard conditions, and
// termination state conditions. Every expression in a component
// definition sees the same six names, so one environment compiles all
// of them — grounded on the CEL environment-per-concern pattern in the
// teacher's server/router/api/v1/user_service_crud.go.
var exprEnv *cel.Env

func init() {
	env, err := cel.NewEnv(
		cel.Variable("state", cel.DynType),
		cel.Variable("inputs", cel.DynType),
		cel.Variable("outputs", cel.DynType),
		cel.Variable("current_time", cel.DoubleType),
		cel.Variable("event_name", cel.StringType),
		cel.Variable("event_data", cel.DynType),
	)
	if err != nil {
		panic(errors.Wrap(err, "failed to build simcore CEL environment"))
	}
	exprEnv = env
}

// Expr is a compiled CEL expression, cached on the Task/Trigger/
// TerminationCondition that owns it so evaluation never re-parses source.
type Expr struct {
	source  string
	program cel.Program
}

// Source returns the original expression text, for error messages.
func (e *Expr) Source() string { return e.source }

// CompileExpr compiles source once. A malformed expression is reported at
// construction time, never at evaluation time.
func CompileExpr(source string) (*Expr, error) {
	ast, issues := exprEnv.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid expression: %s", source)
	}
	prg, err := exprEnv.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build program for expression: %s", source)
	}
	return &Expr{source: source, program: prg}, nil
}

// activation builds the CEL variable bindings visible to any simcore
// expression. Any of the four maps may be nil.
func activation(state, inputs, outputs map[string]any, currentTime float64, eventName string, eventData map[string]any) map[string]any {
	if state == nil {
		state = map[string]any{}
	}
	if inputs == nil {
		inputs = map[string]any{}
	}
	if outputs == nil {
		outputs = map[string]any{}
	}
	if eventData == nil {
		eventData = map[string]any{}
	}
	return map[string]any{
		"state":        state,
		"inputs":       inputs,
		"outputs":      outputs,
		"current_time": currentTime,
		"event_name":   eventName,
		"event_data":   eventData,
	}
}

// Eval evaluates the expression against vars and returns the native Go
// value it produced.
func (e *Expr) Eval(vars map[string]any) (any, error) {
	out, _, err := e.program.Eval(vars)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}

// EvalBool evaluates the expression and coerces the result to bool. A
// non-boolean result is a TaskError-worthy misuse, reported by the caller.
func (e *Expr) EvalBool(vars map[string]any) (bool, error) {
	v, err := e.Eval(vars)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean (got %T)", e.source, v)
	}
	return b, nil
}
