package simcore

import "github.com/sarchlab/akita/v4/sim"

// ClockedDriver adapts a Simulator's Update loop to akita's
// sim.TickingComponent contract, grounded on core/builder.go's
// sim.NewTickingComponent(name, engine, freq, handler) and core/core.go's
// Tick(now sim.VTimeInSec) (madeProgress bool) signature. This is the
// headless analogue of spec.md §5's alternating-frame loop, letting a CLI
// drive Update() off an akita engine instead of a bespoke ticker.
type ClockedDriver struct {
	*sim.TickingComponent

	target   *Simulator
	ticks    int
	maxTicks int // 0 means unbounded
}

// NewClockedDriver wires target's Update into an akita engine at freq.
// maxTicks<=0 runs until the engine itself stops.
func NewClockedDriver(name string, engine sim.Engine, freq sim.Freq, target *Simulator, maxTicks int) *ClockedDriver {
	d := &ClockedDriver{target: target, maxTicks: maxTicks}
	d.TickingComponent = sim.NewTickingComponent(name, engine, freq, d)
	return d
}

// Tick drives one Simulator.Update() call per akita cycle.
func (d *ClockedDriver) Tick(now sim.VTimeInSec) (madeProgress bool) {
	if d.maxTicks > 0 && d.ticks >= d.maxTicks {
		return false
	}
	if err := d.target.Update(); err != nil {
		panic(err)
	}
	d.ticks++
	return true
}

// Ticks reports how many Update() calls this driver has issued.
func (d *ClockedDriver) Ticks() int { return d.ticks }
