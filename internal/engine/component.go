package engine

import "sort"

// ComponentKind distinguishes a component driven round-by-round by the
// synchronous executor from one driven event-by-event by the
// event-driven executor. ExecuteRound is defined on every Component but
// returns a ComponentError for an Asynchronous one — the source tool's
// AsynchronousComponent round-execution path was dead, typo-ridden code
// never reached by its own event loop, so there is nothing to port.
type ComponentKind int

const (
	Synchronous ComponentKind = iota
	Asynchronous
)

// Component groups a named state record, its declared input/output
// fields, and the tasks that mutate them. Construction validates the
// task dependency graph up front so a cycle or dangling reference is a
// ComponentError at load time, not a deadlock at run time.
type Component struct {
	Name    string
	Kind    ComponentKind
	State   *Record
	Inputs  []string
	Outputs []string
	Tasks   []*Task

	order []string // deterministic topological execution order, by task name
}

// NewComponent validates the task dependency graph and returns a ready
// Component. Every DependsOn entry must name a task within the same
// component, and the dependency graph must be acyclic.
func NewComponent(name string, kind ComponentKind, state map[string]any, inputs, outputs []string, tasks []*Task) (*Component, error) {
	byName := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		if _, dup := byName[t.Name]; dup {
			return nil, &ComponentError{Component: name, Message: "duplicate task name " + t.Name}
		}
		byName[t.Name] = t
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, &ComponentError{Component: name, Message: "task " + t.Name + " depends on unknown task " + dep}
			}
		}
	}

	order, err := topoSort(tasks)
	if err != nil {
		return nil, &ComponentError{Component: name, Message: "invalid task dependency graph", Err: err}
	}

	return &Component{
		Name:    name,
		Kind:    kind,
		State:   CopyOf(state),
		Inputs:  inputs,
		Outputs: outputs,
		Tasks:   tasks,
		order:   order,
	}, nil
}

// ExecutionOrder returns task names in a deterministic dependency-respecting
// order: Kahn's algorithm with ties broken by task name, so the same
// component definition always produces the same order across runs.
func (c *Component) ExecutionOrder() []string {
	return append([]string(nil), c.order...)
}

// topoSort runs Kahn's algorithm over tasks' DependsOn edges, breaking
// ties alphabetically by task name for reproducibility.
func topoSort(tasks []*Task) ([]string, error) {
	inDegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	byName := make(map[string]*Task, len(tasks))

	for _, t := range tasks {
		byName[t.Name] = t
		if _, ok := inDegree[t.Name]; !ok {
			inDegree[t.Name] = 0
		}
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			inDegree[t.Name]++
			dependents[dep] = append(dependents[dep], t.Name)
		}
	}

	var ready []string
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		for _, n := range next {
			inDegree[n]--
			if inDegree[n] == 0 {
				ready = append(ready, n)
			}
		}
	}

	if len(order) != len(tasks) {
		return nil, &ValueError{Message: "task dependency graph contains a cycle"}
	}
	return order, nil
}

// TaskByName returns the task with the given name, or nil if absent.
func (c *Component) TaskByName(name string) *Task {
	for _, t := range c.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ExecuteRound runs every task in dependency order against a single
// shared working copy of state/outputs, synchronously, merging each
// task's delta immediately before the next task runs. Unlike the
// event-driven path, a round never consults a task's trigger or guard —
// the original tool's SynchronousComponent.execute_round simply calls
// task.execute(context) for every task in topological order, full stop;
// trigger/condition gating is exclusively an event-driven-scheduler
// concept (§4.8.1). Only Synchronous components have a round concept;
// calling it on an Asynchronous component is rejected outright rather
// than ported, since the source tool's equivalent
// (AsynchronousComponent.execute_round) was dead code its own event loop
// never called.
func (c *Component) ExecuteRound(inputs map[string]any, currentTime float64) (map[string]any, error) {
	if c.Kind != Synchronous {
		return nil, &ComponentError{Component: c.Name, Message: "ExecuteRound is only valid for synchronous components"}
	}
	for _, name := range c.Inputs {
		if _, ok := inputs[name]; !ok {
			return nil, &ComponentError{Component: c.Name, Message: "missing required input '" + name + "'"}
		}
	}
	outputs := CopyOf(nil)
	for _, name := range c.order {
		t := c.TaskByName(name)
		ctx := NewTaskContext(c.State.Map(), inputs, outputs.Map(), currentTime, "round", nil, t.Name)
		if err := t.Execute(ctx); err != nil {
			return nil, err
		}
		c.State.Merge(ctx.State.Snapshot())
		outputs.Merge(ctx.Outputs.Snapshot())
	}
	return outputs.Snapshot(), nil
}
