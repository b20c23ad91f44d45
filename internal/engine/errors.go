package engine

import "fmt"

// SimError is the root of the engine's flat error taxonomy. All engine
// errors implement it so callers can type-switch without caring which
// concrete kind they got.
type SimError interface {
	error
	Unwrap() error
}

// ParserError signals a malformed component definition file: bad YAML
// syntax, missing file, wrong extension.
type ParserError struct {
	Message string
	Err     error
}

func (e *ParserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parser error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("parser error: %s", e.Message)
}

func (e *ParserError) Unwrap() error { return e.Err }

// ValidationError signals a structurally valid but semantically invalid
// component definition: missing fields, wrong types, unknown trigger kind.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ComponentError signals a structural problem in a constructed component:
// unknown dependency, cycle, missing input, wrong component type for the
// executor that was asked to drive it.
type ComponentError struct {
	Component string
	Message   string
	Err       error
}

func (e *ComponentError) Error() string {
	prefix := "component error"
	if e.Component != "" {
		prefix = fmt.Sprintf("component %q error", e.Component)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ComponentError) Unwrap() error { return e.Err }

// TaskError signals a task construction failure (malformed action) or a
// runtime failure while executing a task's compiled program.
type TaskError struct {
	Task    string
	Message string
	Err     error
}

func (e *TaskError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %q error: %s: %v", e.Task, e.Message, e.Err)
	}
	return fmt.Sprintf("task %q error: %s", e.Task, e.Message)
}

func (e *TaskError) Unwrap() error { return e.Err }

// ValueError signals misuse of a scalar-valued API or an invalid value:
// negative time deltas, time moving backwards, a cyclic task dependency
// graph.
type ValueError struct {
	Message string
}

func (e *ValueError) Error() string { return fmt.Sprintf("value error: %s", e.Message) }
func (e *ValueError) Unwrap() error { return nil }

var (
	_ SimError = (*ParserError)(nil)
	_ SimError = (*ValidationError)(nil)
	_ SimError = (*ComponentError)(nil)
	_ SimError = (*TaskError)(nil)
	_ SimError = (*ValueError)(nil)
)
