package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// InputSource supplies the input record for each round/event a run
// processes. Its Next method takes the round (or event) index so a
// caller can use it for a fixed or seeded random sequence (see
// internal/inputgen) without internal/engine ever importing that
// package: the interface is satisfied structurally.
type InputSource interface {
	Next(index int) (map[string]any, error)
}

// SynchronousExecutor drives a Component round by round: check
// termination, generate inputs, execute every task in dependency order,
// merge deltas immediately, append to the log.
type SynchronousExecutor struct {
	Component   *Component
	Clock       *SimulationTime
	Termination TerminationCondition
	Inputs      InputSource
	Log         *ExecutionLog
	Logger      *slog.Logger

	// Metrics is optional: a nil value disables Prometheus instrumentation
	// entirely, since every Metrics method is nil-receiver-safe.
	Metrics *Metrics
}

// NewSynchronousExecutor wires a ready-to-run executor. A nil logger
// falls back to slog.Default().
func NewSynchronousExecutor(c *Component, clock *SimulationTime, term TerminationCondition, inputs InputSource, logger *slog.Logger) *SynchronousExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SynchronousExecutor{
		Component:   c,
		Clock:       clock,
		Termination: term,
		Inputs:      inputs,
		Log:         NewExecutionLog(),
		Logger:      logger,
	}
}

// Run executes rounds until the termination condition is met, returning
// the populated execution log.
func (e *SynchronousExecutor) Run() (*ExecutionLog, error) {
	e.Metrics.SimulationStarted()
	defer e.Metrics.SimulationFinished()

	round := 0
	for {
		ctx := TerminationContext{
			Round:       round,
			CurrentTime: e.Clock.Current(),
			State:       e.Component.State,
		}
		met, err := e.Termination.IsMet(ctx)
		if err != nil {
			return e.Log, err
		}
		if met {
			e.Logger.Info("run terminated", "component", e.Component.Name, "round", round)
			return e.Log, nil
		}

		inputs, err := e.Inputs.Next(round)
		if err != nil {
			return e.Log, errors.Wrapf(err, "generating input for round %d", round)
		}

		start := time.Now()
		outputs, err := e.Component.ExecuteRound(inputs, e.Clock.Current())
		e.Metrics.ObserveRoundDuration(e.Component.Name, "sync", time.Since(start).Seconds())
		if err != nil {
			e.Logger.Error("round failed", "component", e.Component.Name, "round", round, "error", err)
			e.Metrics.RecordTaskError(e.Component.Name, "round")
			return e.Log, &ComponentError{Component: e.Component.Name, Message: fmt.Sprintf("error in round %d", round), Err: err}
		}
		e.Metrics.RecordEvent(e.Component.Name, "sync")

		e.Log.Append(RoundRecord{
			RoundNumber: round,
			Inputs:      inputs,
			Outputs:     outputs,
			State:       e.Component.State.Snapshot(),
			TaskOrder:   e.Component.ExecutionOrder(),
		})

		round++
		if err := e.Clock.AdvanceBy(1); err != nil {
			return e.Log, err
		}
	}
}
