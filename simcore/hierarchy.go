package simcore

import "github.com/sarchlab/bdfsim/netlist"

// childSimulator returns k's nested simulator, building and bootstrapping
// it on first use. A nested simulator bootstraps itself synchronously
// through the startup protocol (there is no external driver for it to
// wait on) and fails with IntegrityError if it has not reached status On
// within the configured bootstrap-cycle cap, per spec.md §7 and
// original_source/loader/simulator2.py's auto_gen constructor flag, which
// loops its own update() internally up to a fixed cycle count.
func (s *Simulator) childSimulator(k *netlist.Component) (*Simulator, error) {
	if child, ok := s.children[k.Index]; ok {
		return child, nil
	}

	child := NewWithClock(k.SubSchematic, s.cfg, s.clock)
	for i := 0; i < s.cfg.MaxBootstrapCycles; i++ {
		if err := child.Update(); err != nil {
			return nil, err
		}
		if child.Built() {
			break
		}
	}
	if !child.Built() {
		return nil, &IntegrityError{Msg: "sub-schematic \"" + k.SubSchematicName + "\" failed to auto-build within the bootstrap cycle limit"}
	}

	s.children[k.Index] = child
	return child, nil
}
