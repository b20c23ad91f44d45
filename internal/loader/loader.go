// Package loader parses a YAML component definition file into ready
// engine.Component values, compiling every trigger/guard/action
// expression at load time so a malformed definition fails fast, before
// any executor runs it — mirroring the source tool's ComponentParser.
package loader

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/simcore/internal/engine"
)

type documentYAML struct {
	Components []componentYAML `yaml:"components"`
}

type componentYAML struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	State   map[string]any `yaml:"state"`
	Inputs  []string       `yaml:"inputs"`
	Outputs []string       `yaml:"outputs"`
	Tasks   []taskYAML     `yaml:"tasks"`
}

type taskYAML struct {
	Name      string      `yaml:"name"`
	DependsOn []string    `yaml:"depends_on"`
	Trigger   triggerYAML `yaml:"trigger"`
	Guard     string      `yaml:"guard"`
	Action    string      `yaml:"action"`
}

type triggerYAML struct {
	Type         string  `yaml:"type"`
	Interval     float64 `yaml:"interval"`
	InitialDelay float64 `yaml:"initial_delay"`
	EventName    string  `yaml:"event_name"`
	Condition    string  `yaml:"condition"`
}

// LoadFile reads and parses a component definition file from path.
func LoadFile(path string) ([]*engine.Component, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &engine.ParserError{Message: "reading component file " + path, Err: err}
	}
	if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
		return nil, &engine.ParserError{Message: "component file must have a .yaml or .yml extension: " + path}
	}
	return Parse(data)
}

// Parse parses raw YAML bytes into a slice of validated components.
func Parse(data []byte) ([]*engine.Component, error) {
	var doc documentYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &engine.ParserError{Message: "invalid YAML", Err: err}
	}
	if len(doc.Components) == 0 {
		return nil, &engine.ValidationError{Message: "component file defines no components"}
	}

	components := make([]*engine.Component, 0, len(doc.Components))
	for _, cy := range doc.Components {
		c, err := buildComponent(cy)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, nil
}

func buildComponent(cy componentYAML) (*engine.Component, error) {
	if cy.Name == "" {
		return nil, &engine.ValidationError{Message: "component is missing a name"}
	}

	kind, err := parseKind(cy.Type)
	if err != nil {
		return nil, &engine.ValidationError{Message: "component " + cy.Name, Err: err}
	}

	tasks := make([]*engine.Task, 0, len(cy.Tasks))
	for _, ty := range cy.Tasks {
		t, err := buildTask(ty)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return engine.NewComponent(cy.Name, kind, cy.State, cy.Inputs, cy.Outputs, tasks)
}

func parseKind(raw string) (engine.ComponentKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "synchronous", "":
		return engine.Synchronous, nil
	case "asynchronous":
		return engine.Asynchronous, nil
	default:
		return 0, errors.Errorf("unknown component type %q (expected synchronous or asynchronous)", raw)
	}
}

func buildTask(ty taskYAML) (*engine.Task, error) {
	if ty.Name == "" {
		return nil, &engine.ValidationError{Message: "task is missing a name"}
	}
	trigger, err := buildTrigger(ty.Name, ty.Trigger)
	if err != nil {
		return nil, err
	}
	return engine.NewTask(ty.Name, ty.DependsOn, trigger, ty.Guard, ty.Action)
}

func buildTrigger(taskName string, ty triggerYAML) (engine.Trigger, error) {
	switch strings.ToLower(strings.TrimSpace(ty.Type)) {
	case "":
		// No trigger declared: legal per spec.md §3 ("Optional: ...
		// trigger"). A synchronous round runs the task every round
		// regardless; an event-driven scheduler never selects it,
		// matching the "no tasks activated" boundary case (spec.md §8).
		return nil, nil
	case "periodic":
		if ty.Interval <= 0 {
			return nil, &engine.ValidationError{Message: "task " + taskName + ": periodic trigger requires a positive interval"}
		}
		return &engine.PeriodicTrigger{Interval: ty.Interval, InitialDelay: ty.InitialDelay}, nil
	case "event":
		if ty.EventName == "" {
			return nil, &engine.ValidationError{Message: "task " + taskName + ": event trigger requires event_name"}
		}
		return &engine.EventTrigger{EventName: ty.EventName}, nil
	case "condition":
		if ty.Condition == "" {
			return nil, &engine.ValidationError{Message: "task " + taskName + ": condition trigger requires condition"}
		}
		expr, err := engine.CompileExpr(ty.Condition)
		if err != nil {
			return nil, &engine.ValidationError{Message: "task " + taskName + ": invalid trigger condition", Err: err}
		}
		return &engine.ConditionTrigger{Condition: expr}, nil
	case "immediate":
		return &engine.ImmediateTrigger{}, nil
	default:
		return nil, &engine.ValidationError{Message: "task " + taskName + ": unknown trigger type " + ty.Type}
	}
}
