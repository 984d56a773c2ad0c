package simcore

import "github.com/sarchlab/bdfsim/netlist"

// runPropagation performs one synchronous propagation step: inject clock
// edges, drain the dirty set into a FIFO queue, then repeatedly pop a
// component, evaluate it, and enqueue any peer whose input pin actually
// changed, per spec.md §4.5 steps 1-4.
func (s *Simulator) runPropagation() error {
	if s.netlist == nil {
		return nil
	}

	s.updateClocks()

	queue := make([]*netlist.Component, 0, len(s.dirty))
	for idx := range s.dirty {
		s.componentTick[idx] = s.tick
		queue = append(queue, s.netlist.Components[idx])
	}
	s.dirty = map[int]bool{}

	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		if err := s.evaluateAndPropagate(k, &queue); err != nil {
			return err
		}
	}

	s.tick++
	return nil
}

// updateClocks flips any primary input pin configured as a clock generator
// whose period has elapsed, per spec.md §3's "Clock pins" note, using
// wall-clock elapsed time converted to akita's virtual-time unit.
func (s *Simulator) updateClocks() {
	now := s.virtualNow()
	for _, c := range s.clocks {
		pin := c.Outputs[c.Name]
		settings := pin.Settings
		if settings == nil || !settings.IsClock || settings.ClockSpeedHz <= 0 {
			continue
		}
		period := 1.0 / float64(settings.ClockSpeedHz)
		if float64(now-settings.LastToggle) >= period {
			pin.Vcc = 1 - pin.Vcc
			settings.LastToggle = now
			s.markDirty(c.Index)
		}
	}
}

// evaluateAndPropagate evaluates k, determines which of its output pins
// changed, and enqueues any peer not yet processed this tick whose input
// pin value actually changes as a result, per spec.md §4.5 steps a-g.
func (s *Simulator) evaluateAndPropagate(k *netlist.Component, queue *[]*netlist.Component) error {
	var changed []*netlist.Pin

	switch k.Origin {
	case netlist.OriginHierarchical:
		child, err := s.childSimulator(k)
		if err != nil {
			return err
		}
		copyInputsToChild(k, child)
		if err := child.runPropagation(); err != nil {
			return err
		}
		changed = syncHierarchicalOutputs(k, child)

	case netlist.OriginPrimitive:
		before := snapshotOutputs(k)
		in := make(map[string]int, len(k.Inputs))
		for name, p := range k.Inputs {
			in[name] = p.Vcc
		}
		out := make(map[string]int, len(k.Outputs))
		for name, p := range k.Outputs {
			out[name] = p.Vcc
		}
		k.Primitive.Evaluate(in, out)
		for name, v := range out {
			if p, ok := k.Outputs[name]; ok {
				p.Vcc = v
			}
		}
		changed = diffOutputs(k, before)

	case netlist.OriginPrimaryInput:
		// A primary input has no Evaluate step of its own: its output was
		// already written externally by UpdateInputPin or updateClocks
		// before it was marked dirty. Queueing it here is what actually
		// drives that value onto the net it feeds.
		for _, p := range k.Outputs {
			changed = append(changed, p)
		}

	default:
		// Primary output pins and unknown symbols never change as a result
		// of evaluation: nothing reads a primary output's own value back
		// out, and an unknown symbol has no behaviour to run.
	}

	s.enqueuePeers(changed, queue)
	return nil
}

func snapshotOutputs(k *netlist.Component) map[string]int {
	snap := make(map[string]int, len(k.Outputs))
	for name, p := range k.Outputs {
		snap[name] = p.Vcc
	}
	return snap
}

func diffOutputs(k *netlist.Component, before map[string]int) []*netlist.Pin {
	var changed []*netlist.Pin
	for name, p := range k.Outputs {
		if before[name] != p.Vcc {
			changed = append(changed, p)
		}
	}
	return changed
}

// copyInputsToChild copies k's external input pin values into its nested
// simulator's matching primary-input components and marks them dirty,
// per spec.md §4.5 step b.
func copyInputsToChild(k *netlist.Component, child *Simulator) {
	for name, extPin := range k.Inputs {
		innerComp, ok := child.inputIndex[name]
		if !ok {
			continue
		}
		innerOut := innerComp.Outputs[name]
		if innerOut == nil {
			continue
		}
		if innerOut.Vcc != extPin.Vcc {
			innerOut.Vcc = extPin.Vcc
		}
		child.markDirty(innerComp.Index)
	}
}

// syncHierarchicalOutputs compares k's external output pins against its
// nested simulator's primary-output components and copies across any
// difference, per spec.md §4.5 step f: the changed set for a hierarchical
// symbol is recomputed this way rather than by snapshotting k's own
// outputs, which evaluation never touches directly.
func syncHierarchicalOutputs(k *netlist.Component, child *Simulator) []*netlist.Pin {
	var changed []*netlist.Pin
	for name, extOut := range k.Outputs {
		innerComp, ok := child.outputIndex[name]
		if !ok {
			continue
		}
		innerIn := innerComp.Inputs[name]
		if innerIn == nil {
			continue
		}
		if extOut.Vcc != innerIn.Vcc {
			extOut.Vcc = innerIn.Vcc
			changed = append(changed, extOut)
		}
	}
	return changed
}

// enqueuePeers walks each changed output pin's recorded connections and
// applies the new value to every peer's input pin. A peer not yet
// processed this tick is enqueued immediately, its tick guard set to
// prevent a second, duplicate enqueue later in the same step. A peer that
// has already been evaluated this tick still receives the new value — it
// is deferred to the next propagation step instead of being re-evaluated
// now, which is what lets a combinational feedback loop (a latch) settle
// over a few ticks rather than looping forever within one.
func (s *Simulator) enqueuePeers(changed []*netlist.Pin, queue *[]*netlist.Component) {
	for _, pin := range changed {
		v := pin.Vcc
		for _, conn := range pin.Connections {
			d := conn.Peer
			target := d.Inputs[conn.PeerPinName]
			if target == nil || target.Vcc == v {
				continue
			}
			target.Vcc = v

			if s.componentTick[d.Index] >= s.tick {
				s.markDirty(d.Index)
				continue
			}
			s.componentTick[d.Index] = s.tick
			*queue = append(*queue, d)
		}
	}
}
