// Package simcore is the event-driven propagation engine described in
// spec.md §4.5: a synchronous dirty-queue simulator built over one
// netlist.Netlist, with lazily-built nested simulators for hierarchical
// symbols. It is grounded almost 1:1 on
// original_source/loader/simulator2.py's Simulator class (update,
// update_simulation, update_inputs, __update_pin, __update_component),
// transliterated into the arena/index model spec.md §9 calls for: integer
// component indices instead of object identity, an explicit FIFO queue
// instead of recursive calls, and an integer tick guard instead of a
// boolean "already visited" set.
package simcore

import (
	"fmt"
	"time"

	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bdfsim/internal/config"
	"github.com/sarchlab/bdfsim/internal/obslog"
	"github.com/sarchlab/bdfsim/netlist"
	"github.com/sarchlab/bdfsim/schematic"
)

// phase tracks the four-stage startup protocol of spec.md §4.5.
type phase int

const (
	phaseOff phase = iota
	phaseBuilding
	phaseBuilt
	phaseOn
)

// IntegrityError reports a structural defect the simulator cannot recover
// from at runtime, per spec.md §7.
type IntegrityError struct{ Msg string }

func (e *IntegrityError) Error() string { return "simcore: integrity error: " + e.Msg }

// Simulator drives one schematic's netlist through the startup protocol
// and, once built, through repeated propagation steps.
type Simulator struct {
	schematic *schematic.Schematic
	cfg       *config.RuntimeConfig

	netlist *netlist.Netlist
	phase   phase
	status  string

	clock   Clock
	started time.Time

	tick          int
	dirty         map[int]bool
	componentTick []int

	inputIndex  map[string]*netlist.Component
	outputIndex map[string]*netlist.Component
	clocks      []*netlist.Component

	children map[int]*Simulator
}

// New constructs a Simulator over s. The netlist itself is not built until
// Update is called, per the startup protocol.
func New(s *schematic.Schematic, cfg *config.RuntimeConfig) *Simulator {
	return NewWithClock(s, cfg, wallClock{})
}

// NewWithClock is New with an injectable Clock, letting tests drive clock
// pins without sleeping in real time.
func NewWithClock(s *schematic.Schematic, cfg *config.RuntimeConfig, clock Clock) *Simulator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Simulator{
		schematic: s,
		cfg:       cfg,
		status:    "Off",
		clock:     clock,
		started:   time.Now(),
		dirty:     map[int]bool{},
		children:  map[int]*Simulator{},
	}
}

// Netlist exposes the built component graph for renderers, or nil before
// the simulator has finished building.
func (s *Simulator) Netlist() *netlist.Netlist { return s.netlist }

// Status returns the current overlay status string, one of "Off",
// "Building", "Building (built in Nms)", or "On (restarted in Nms)",
// matching spec.md §6's renderer overlay.
func (s *Simulator) Status() string { return s.status }

// Built reports whether the simulator has completed its startup protocol.
func (s *Simulator) Built() bool { return s.phase == phaseOn }

// Update advances the startup protocol by one call, or — once built — runs
// one propagation step. Callers drive this from an outer tick source (a
// CLI loop, or ClockedDriver's akita Tick).
func (s *Simulator) Update() error {
	switch s.phase {
	case phaseOff:
		s.phase = phaseBuilding
		s.status = "Building"
		return nil

	case phaseBuilding:
		start := time.Now()
		nl, err := netlist.Build(s.schematic)
		if err != nil {
			return err
		}
		s.netlist = nl
		s.indexPins()
		s.phase = phaseBuilt
		s.status = obslog.FormatStatus("Building", fmt.Sprintf("built in %dms", time.Since(start).Milliseconds()))
		return nil

	case phaseBuilt:
		start := time.Now()
		s.FullRescan()
		if err := s.runPropagation(); err != nil {
			return err
		}
		s.phase = phaseOn
		s.status = obslog.FormatStatus("On", fmt.Sprintf("restarted in %dms", time.Since(start).Milliseconds()))
		return nil

	default:
		return s.runPropagation()
	}
}

// indexPins rebuilds the primary input/output name indices and the
// per-component tick guard slice after a (re)build.
func (s *Simulator) indexPins() {
	s.inputIndex = make(map[string]*netlist.Component, len(s.netlist.PrimaryInputs))
	for _, c := range s.netlist.PrimaryInputs {
		s.inputIndex[c.Name] = c
	}
	s.outputIndex = make(map[string]*netlist.Component, len(s.netlist.PrimaryOutputs))
	for _, c := range s.netlist.PrimaryOutputs {
		s.outputIndex[c.Name] = c
	}
	s.componentTick = make([]int, len(s.netlist.Components))
	s.tick = 1
	s.clocks = nil
}

// FullRescan marks every component dirty, used at the end of startup, on
// reload, and on operator request per spec.md §4.5.
func (s *Simulator) FullRescan() {
	if s.netlist == nil {
		return
	}
	for i := range s.netlist.Components {
		s.markDirty(i)
	}
}

func (s *Simulator) markDirty(idx int) {
	if s.dirty == nil {
		s.dirty = map[int]bool{}
	}
	s.dirty[idx] = true
}

// Reload re-parses the backing schematic from disk and rebuilds the
// simulator from scratch, driving it synchronously back to status On.
func (s *Simulator) Reload() error {
	if err := s.schematic.Reload(); err != nil {
		return err
	}

	s.netlist = nil
	s.phase = phaseOff
	s.status = "Off"
	s.dirty = map[int]bool{}
	s.children = map[int]*Simulator{}

	for s.phase != phaseOn {
		if err := s.Update(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateInputPin applies an external press/release (1/0) to a primary
// input pin, honouring its toggle-mode setting per spec.md §3's "Toggle vs
// hold input" scenario: in toggle mode only the press edge (pressed==1)
// flips the stored value; in hold mode the pin tracks pressed directly.
func (s *Simulator) UpdateInputPin(name string, pressed int) error {
	c, ok := s.inputIndex[name]
	if !ok {
		return fmt.Errorf("simcore: no primary input pin named %q", name)
	}
	pin := c.Outputs[name]
	if pin == nil {
		return &IntegrityError{Msg: fmt.Sprintf("primary input %q has no output pin", name)}
	}

	if pin.Settings != nil && pin.Settings.IsToggle {
		if pressed != 1 {
			return nil
		}
		pin.Vcc = 1 - pin.Vcc
		s.markDirty(c.Index)
		return nil
	}

	if pin.Vcc != pressed {
		pin.Vcc = pressed
		s.markDirty(c.Index)
	}
	return nil
}

// SetClock toggles a primary input pin's clock-generator status. hz<=0
// keeps the pin's existing rate, or falls back to the configured default
// when none was set yet.
func (s *Simulator) SetClock(name string, enabled bool, hz int) error {
	c, ok := s.inputIndex[name]
	if !ok {
		return fmt.Errorf("simcore: no primary input pin named %q", name)
	}
	pin := c.Outputs[name]
	if pin == nil || pin.Settings == nil {
		return &IntegrityError{Msg: fmt.Sprintf("primary input %q has no settings", name)}
	}

	pin.Settings.IsClock = enabled
	if enabled {
		if hz > 0 {
			pin.Settings.ClockSpeedHz = hz
		} else if pin.Settings.ClockSpeedHz <= 0 {
			pin.Settings.ClockSpeedHz = s.cfg.DefaultClockSpeedHz
		}
		pin.Settings.LastToggle = s.virtualNow()
		s.addClock(c)
	} else {
		s.removeClock(c)
	}
	return nil
}

// SetToggleMode switches a primary input pin between momentary (hold) and
// toggle (press-to-flip) input semantics.
func (s *Simulator) SetToggleMode(name string, isToggle bool) error {
	c, ok := s.inputIndex[name]
	if !ok {
		return fmt.Errorf("simcore: no primary input pin named %q", name)
	}
	pin := c.Outputs[name]
	if pin == nil || pin.Settings == nil {
		return &IntegrityError{Msg: fmt.Sprintf("primary input %q has no settings", name)}
	}
	pin.Settings.IsToggle = isToggle
	return nil
}

func (s *Simulator) addClock(c *netlist.Component) {
	for _, existing := range s.clocks {
		if existing == c {
			return
		}
	}
	s.clocks = append(s.clocks, c)
}

func (s *Simulator) removeClock(c *netlist.Component) {
	for i, existing := range s.clocks {
		if existing == c {
			s.clocks = append(s.clocks[:i], s.clocks[i+1:]...)
			return
		}
	}
}

// GetWireVCC answers a renderer's voltage query for a wire position, per
// spec.md §4.4 step 5's wire_vcc_lookup.
func (s *Simulator) GetWireVCC(pos netlist.Position) (int, bool) {
	if s.netlist == nil {
		return 0, false
	}
	pin, ok := s.netlist.WireVccLookup[pos]
	if !ok {
		return 0, false
	}
	return pin.Vcc, true
}

func (s *Simulator) virtualNow() akitasim.VTimeInSec {
	return akitasim.VTimeInSec(s.clock.Since(s.started).Seconds())
}
