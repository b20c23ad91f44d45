package engine

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RoundRecord captures one round's (or, for the event-driven executor,
// one processed-event's) snapshot: the inputs it saw, the outputs it
// produced, and the resulting state. TaskOrder lists the tasks that ran:
// both executors always fill it, and it is left out of the JSON when
// empty.
type RoundRecord struct {
	RoundNumber int            `json:"round"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs"`
	State       map[string]any `json:"state"`
	TaskOrder   []string       `json:"task_order,omitempty"`
}

// ExecutionLog is the append-only record of a single run, stamped with a
// RunID so multiple runs' exported logs can be told apart.
type ExecutionLog struct {
	RunID  string
	Rounds []RoundRecord
}

// NewExecutionLog returns an empty log with a freshly generated RunID.
func NewExecutionLog() *ExecutionLog {
	return &ExecutionLog{RunID: uuid.NewString()}
}

// Append records one more round.
func (l *ExecutionLog) Append(r RoundRecord) {
	l.Rounds = append(l.Rounds, r)
}

// Len returns the number of recorded rounds.
func (l *ExecutionLog) Len() int { return len(l.Rounds) }

type jsonEnvelope struct {
	RunID       string        `json:"run_id"`
	TotalRounds int           `json:"total_rounds"`
	Rounds      []RoundRecord `json:"rounds"`
}

// WriteJSON serializes the log as a single JSON object:
// {run_id, total_rounds, rounds: [...]}.
func (l *ExecutionLog) WriteJSON(w io.Writer) error {
	env := jsonEnvelope{RunID: l.RunID, TotalRounds: len(l.Rounds), Rounds: l.Rounds}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return errors.Wrap(err, "writing execution log as json")
	}
	return nil
}

// WriteCSV serializes the log as a flat table: one row per round, with
// columns "round", then "input_<key>" / "output_<key>" / "state_<key>"
// for every key observed across all rounds, sorted for a stable header.
func (l *ExecutionLog) WriteCSV(w io.Writer) error {
	inputKeys := collectKeys(l.Rounds, func(r RoundRecord) map[string]any { return r.Inputs })
	outputKeys := collectKeys(l.Rounds, func(r RoundRecord) map[string]any { return r.Outputs })
	stateKeys := collectKeys(l.Rounds, func(r RoundRecord) map[string]any { return r.State })

	cw := csv.NewWriter(w)
	header := []string{"round"}
	for _, k := range inputKeys {
		header = append(header, "input_"+k)
	}
	for _, k := range outputKeys {
		header = append(header, "output_"+k)
	}
	for _, k := range stateKeys {
		header = append(header, "state_"+k)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing execution log csv header")
	}

	for _, r := range l.Rounds {
		row := []string{fmt.Sprintf("%d", r.RoundNumber)}
		row = append(row, cellsFor(r.Inputs, inputKeys)...)
		row = append(row, cellsFor(r.Outputs, outputKeys)...)
		row = append(row, cellsFor(r.State, stateKeys)...)
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing execution log csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing execution log csv")
}

func collectKeys(rounds []RoundRecord, pick func(RoundRecord) map[string]any) []string {
	seen := map[string]struct{}{}
	for _, r := range rounds {
		for k := range pick(r) {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cellsFor(values map[string]any, keys []string) []string {
	cells := make([]string, len(keys))
	for i, k := range keys {
		if v, ok := values[k]; ok {
			cells[i] = fmt.Sprintf("%v", v)
		}
	}
	return cells
}
