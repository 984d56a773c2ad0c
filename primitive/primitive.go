// Package primitive is the fixed catalogue of combinational and sequential
// logic primitives described in spec.md §4.3: pure evaluation functions
// over a symbol's declared input pins, plus the one stateful primitive
// (DFF) whose state lives alongside its evaluator instance.
package primitive

// Eval evaluates one primitive's outputs from its current inputs. inputs
// and outputs are keyed by the pin names declared on the owning symbol.
// Implementations read only from inputs and write only to outputs; the
// "snapshot before, diff after" comparison that decides which connected
// peers get re-enqueued is the caller's responsibility (simcore), per
// original_source/loader/components.py's Component.update contract.
type Eval interface {
	// Evaluate computes outputs in place from inputs.
	Evaluate(inputs map[string]int, outputs map[string]int)
}

// EvalFunc adapts a plain function to Eval for the stateless gates.
type EvalFunc func(inputs map[string]int, outputs map[string]int)

func (f EvalFunc) Evaluate(inputs map[string]int, outputs map[string]int) { f(inputs, outputs) }

// NewFactory returns a constructor for a named primitive's evaluator, or
// (nil, false) if name does not match the fixed catalogue. DFF instances
// must not be shared across components since each owns private state.
func NewFactory(name string) (func() Eval, bool) {
	switch name {
	case "NOT":
		return func() Eval { return EvalFunc(evalNot) }, true
	case "AND2":
		return func() Eval { return EvalFunc(evalAnd2) }, true
	case "AND3":
		return func() Eval { return EvalFunc(evalAnd3) }, true
	case "NAND2":
		return func() Eval { return EvalFunc(evalNand2) }, true
	case "NAND3":
		return func() Eval { return EvalFunc(evalNand3) }, true
	case "OR2", "OR3", "OR4", "OR6", "OR8":
		return func() Eval { return EvalFunc(evalOrN) }, true
	case "DFF":
		return func() Eval { return newDFF() }, true
	default:
		return nil, false
	}
}

func evalNot(in map[string]int, out map[string]int) {
	out["OUT"] = 1 - get(in, "IN", 0)
}

func evalAnd2(in map[string]int, out map[string]int) {
	out["OUT"] = get(in, "IN1", 0) * get(in, "IN2", 0)
}

func evalAnd3(in map[string]int, out map[string]int) {
	out["OUT"] = get(in, "IN1", 0) * get(in, "IN2", 0) * get(in, "IN3", 0)
}

func evalNand2(in map[string]int, out map[string]int) {
	out["OUT"] = 1 - get(in, "IN1", 0)*get(in, "IN2", 0)
}

func evalNand3(in map[string]int, out map[string]int) {
	out["OUT"] = 1 - get(in, "IN1", 0)*get(in, "IN2", 0)*get(in, "IN3", 0)
}

// evalOrN implements OR2/3/4/6/8 uniformly: OUT = min(1, sum(inputs)),
// summing over whatever IN* pins the symbol actually declares, per
// spec.md §4.3.
func evalOrN(in map[string]int, out map[string]int) {
	sum := 0
	for name, v := range in {
		if name == "OUT" {
			continue
		}
		sum += v
	}
	if sum > 1 {
		sum = 1
	}
	out["OUT"] = sum
}

func get(m map[string]int, key string, def int) int {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
