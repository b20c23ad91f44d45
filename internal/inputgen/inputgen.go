// Package inputgen supplies the input record each round (or each
// "_generate_input" event) of a run, in one of three ways: interactive
// prompts, a fixed pre-recorded sequence, or seeded random values —
// mirroring the source tool's InteractiveInputGenerator, FixedInputGenerator
// and RandomInputGenerator.
package inputgen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FieldKind is the declared type of one input field, used both to parse
// interactive input and to pick a random-generation strategy.
type FieldKind int

const (
	KindInt FieldKind = iota
	KindFloat
	KindBool
	KindString
)

// FieldSpec describes one input field a generator must produce.
type FieldSpec struct {
	Name string
	Kind FieldKind
	// Min/Max bound random generation: [Min, Max] for KindInt,
	// [Min, Max) for KindFloat.
	Min float64
	Max float64
}

// Interactive prompts a human over In/Out for every declared field, in
// declaration order, parsing int before float before bool before string
// (the first successful parse wins).
type Interactive struct {
	Fields []FieldSpec
	In     io.Reader
	Out    io.Writer
}

func (g *Interactive) Next(round int) (map[string]any, error) {
	reader := bufio.NewReader(g.In)
	values := make(map[string]any, len(g.Fields))
	for _, f := range g.Fields {
		fmt.Fprintf(g.Out, "round %d: %s = ", round, f.Name)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "reading input for field %s", f.Name)
		}
		values[f.Name] = parseInteractive(strings.TrimSpace(line))
	}
	return values, nil
}

func parseInteractive(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// Fixed replays a pre-recorded sequence of input records, one per call.
// Once the sequence is exhausted, Next returns a ValueError-equivalent
// so the caller knows to stop rather than silently repeating old inputs.
type Fixed struct {
	Sequence []map[string]any
}

func (g *Fixed) Next(round int) (map[string]any, error) {
	if round >= len(g.Sequence) {
		return nil, errors.Errorf("fixed input sequence exhausted at round %d (have %d records)", round, len(g.Sequence))
	}
	return g.Sequence[round], nil
}

// LoadFixedSequence reads a JSON array of input records (one object per
// round, in order) from path — the file a run's --initial-inputs flag
// points at.
func LoadFixedSequence(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading initial inputs file %s", path)
	}
	var sequence []map[string]any
	if err := json.Unmarshal(data, &sequence); err != nil {
		return nil, errors.Wrapf(err, "parsing initial inputs file %s as a JSON array of objects", path)
	}
	return sequence, nil
}

// Random produces pseudo-random values for every declared field, seeded
// deterministically so a run can be replayed exactly given the same seed.
type Random struct {
	Fields []FieldSpec
	rng    *rand.Rand
}

// NewRandom seeds a Random generator from a single uint64 seed via
// math/rand/v2's PCG source, the generator the standard library itself
// now recommends over the legacy global rand functions.
func NewRandom(fields []FieldSpec, seed uint64) *Random {
	return &Random{
		Fields: fields,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *Random) Next(round int) (map[string]any, error) {
	values := make(map[string]any, len(g.Fields))
	for _, f := range g.Fields {
		switch f.Kind {
		case KindInt:
			lo, hi := int64(f.Min), int64(f.Max)
			if hi <= lo {
				values[f.Name] = lo
				continue
			}
			values[f.Name] = lo + g.rng.Int64N(hi-lo+1)
		case KindFloat:
			values[f.Name] = f.Min + g.rng.Float64()*(f.Max-f.Min)
		case KindBool:
			values[f.Name] = g.rng.IntN(2) == 1
		case KindString:
			values[f.Name] = fmt.Sprintf("%s-%d", f.Name, g.rng.IntN(1_000_000))
		default:
			return nil, errors.Errorf("unknown field kind for field %s", f.Name)
		}
	}
	return values, nil
}
