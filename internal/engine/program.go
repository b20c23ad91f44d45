package engine

import (
	"strings"

	"github.com/pkg/errors"
)

// Program is a task's compiled action: an ordered list of statements
// compiled once at Task construction (spec.md §9, design note (a): "a
// small embedded expression language with explicit inputs/outputs/state
// operations"). Each statement is either an assignment into state/outputs
// or an emit() call; the right-hand sides are CEL expressions compiled
// via CompileExpr.
type Program struct {
	source     string
	statements []statement
}

type statement interface {
	exec(rt *runtime) error
}

// runtime is the per-execution namespace a statement sees. It never
// points back at a scheduler; current-time and the emitter are handed in
// per invocation (spec.md §9, "back-references from tasks to the
// scheduler").
type runtime struct {
	inputs      *Record
	outputs     *Record
	state       *Record
	currentTime float64
	eventName   string
	eventData   map[string]any
	emitter     *EventEmitter
}

func (rt *runtime) vars() map[string]any {
	return activation(rt.state.Map(), rt.inputs.Map(), rt.outputs.Map(), rt.currentTime, rt.eventName, rt.eventData)
}

type assignStatement struct {
	target string // "state" or "outputs"
	field  string
	expr   *Expr
}

func (s *assignStatement) exec(rt *runtime) error {
	val, err := s.expr.Eval(rt.vars())
	if err != nil {
		return errors.Wrapf(err, "evaluating %s.%s = %s", s.target, s.field, s.expr.Source())
	}
	switch s.target {
	case "state":
		rt.state.Set(s.field, val)
	case "outputs":
		rt.outputs.Set(s.field, val)
	}
	return nil
}

type emitStatement struct {
	name     *Expr
	delay    *Expr // nil => 0
	priority *Expr // nil => 0
}

func (s *emitStatement) exec(rt *runtime) error {
	nameVal, err := s.name.Eval(rt.vars())
	if err != nil {
		return errors.Wrapf(err, "evaluating emit() event name %s", s.name.Source())
	}
	name, ok := nameVal.(string)
	if !ok {
		return errors.Errorf("emit() event name must be a string, got %T", nameVal)
	}

	delay := 0.0
	if s.delay != nil {
		v, err := s.delay.Eval(rt.vars())
		if err != nil {
			return errors.Wrapf(err, "evaluating emit() delay %s", s.delay.Source())
		}
		delay, err = toFloat(v)
		if err != nil {
			return errors.Wrap(err, "emit() delay")
		}
	}

	priority := 0
	if s.priority != nil {
		v, err := s.priority.Eval(rt.vars())
		if err != nil {
			return errors.Wrapf(err, "evaluating emit() priority %s", s.priority.Source())
		}
		pf, err := toFloat(v)
		if err != nil {
			return errors.Wrap(err, "emit() priority")
		}
		priority = int(pf)
	}

	rt.emitter.Emit(name, delay, priority)
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, errors.Errorf("expected a number, got %T", v)
	}
}

// CompileProgram parses a task's source into a Program. Blank lines and
// lines starting with '#' are ignored. Every remaining line must be an
// assignment (`state.x = expr` / `outputs.x = expr`) or an `emit(...)`
// call; anything else is a ValidationError-worthy TaskError at
// construction time.
func CompileProgram(taskName, source string) (*Program, error) {
	lines := strings.Split(source, "\n")
	statements := make([]statement, 0, len(lines))

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		stmt, err := compileLine(line)
		if err != nil {
			return nil, &TaskError{
				Task:    taskName,
				Message: "syntax error",
				Err:     errors.Wrapf(err, "line %d: %q", i+1, line),
			}
		}
		statements = append(statements, stmt)
	}

	return &Program{source: source, statements: statements}, nil
}

func compileLine(line string) (statement, error) {
	if strings.HasPrefix(line, "emit(") && strings.HasSuffix(line, ")") {
		return compileEmit(line[len("emit(") : len(line)-1])
	}

	for _, target := range [...]string{"state.", "outputs."} {
		if !strings.HasPrefix(line, target) {
			continue
		}
		rest := line[len(target):]
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return nil, errors.New("expected 'target.field = expression'")
		}
		field := strings.TrimSpace(rest[:eq])
		if field == "" {
			return nil, errors.New("missing field name before '='")
		}
		exprSrc := strings.TrimSpace(rest[eq+1:])
		expr, err := CompileExpr(exprSrc)
		if err != nil {
			return nil, err
		}
		return &assignStatement{target: strings.TrimSuffix(target, "."), field: field, expr: expr}, nil
	}

	return nil, errors.New("expected an assignment to state.* / outputs.*, or an emit(...) call")
}

func compileEmit(argsSrc string) (statement, error) {
	args := splitTopLevelCommas(argsSrc)
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, errors.New("emit() requires at least an event name")
	}

	stmt := &emitStatement{}
	nameExpr, err := CompileExpr(strings.TrimSpace(args[0]))
	if err != nil {
		return nil, errors.Wrap(err, "emit() event name")
	}
	stmt.name = nameExpr

	for _, arg := range args[1:] {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		eq := strings.Index(arg, "=")
		if eq < 0 {
			return nil, errors.Errorf("emit() keyword argument must be 'name=expr', got %q", arg)
		}
		key := strings.TrimSpace(arg[:eq])
		valExpr, err := CompileExpr(strings.TrimSpace(arg[eq+1:]))
		if err != nil {
			return nil, errors.Wrapf(err, "emit() argument %q", key)
		}
		switch key {
		case "delay":
			stmt.delay = valExpr
		case "priority":
			stmt.priority = valExpr
		default:
			return nil, errors.Errorf("unknown emit() argument %q (expected delay or priority)", key)
		}
	}

	return stmt, nil
}

// splitTopLevelCommas splits s on commas that are not inside parens,
// brackets, braces, or quotes.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	var quote rune
	start := 0

	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// Run executes the program's statements in order against rt. A failure
// partway through leaves rt's private copies partially mutated — callers
// must treat rt as scratch state and discard it on error, never merge it
// into shared state (spec.md §5: "no partial updates are rolled back —
// the executor is responsible for the isolation discipline").
func (p *Program) Run(rt *runtime) error {
	for _, stmt := range p.statements {
		if err := stmt.exec(rt); err != nil {
			return err
		}
	}
	return nil
}
