package primitive

// dff implements the asynchronous D-flip-flop from spec.md §4.3: active-low
// asynchronous clear and preset, rising-edge capture of D, strict priority
// clear > preset > edge. This resolves the two-version ambiguity noted in
// spec.md §9 in favour of the second Python source (active-low PRN, no
// redundant branch) and drops the "needs_update" hash gate entirely — the
// simulator's per-tick guard already prevents redundant evaluation.
type dff struct {
	internalState int
	prevClk       int
}

func newDFF() Eval {
	return &dff{}
}

func (d *dff) Evaluate(in map[string]int, out map[string]int) {
	dIn := get(in, "D", 0)
	clk := get(in, "CLK", 0)

	// Active-low asynchronous controls: absent inputs default to the
	// inactive level (CLRN/PRN = 1, i.e. not asserted).
	clrn := get(in, "CLRN", 1)
	prn := get(in, "PRN", 1)

	switch {
	case clrn == 0:
		d.internalState = 0
	case prn == 0:
		d.internalState = 1
	case d.prevClk == 0 && clk == 1:
		d.internalState = dIn
	}

	out["Q"] = d.internalState
	d.prevClk = clk
}
