// Package netlist builds the component/pin/connection graph from a loaded
// schematic by geometric wire tracing, per spec.md §4.4.
package netlist

import (
	"fmt"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bdfsim/bdf"
	"github.com/sarchlab/bdfsim/internal/obslog"
	"github.com/sarchlab/bdfsim/primitive"
	"github.com/sarchlab/bdfsim/schematic"
)

// Position is an integer 2-tuple in schematic coordinates.
type Position struct{ X, Y int }

// Direction discriminates a Pin's electrical role.
type Direction int

const (
	Input Direction = iota
	Output
)

// Origin discriminates how a Component's behaviour is determined.
type Origin int

const (
	// OriginPrimaryInput is a top-level "pin" record with direction=input:
	// it exposes one output Pin carrying the user-driven value.
	OriginPrimaryInput Origin = iota
	// OriginPrimaryOutput is a top-level "pin" record with direction=output.
	OriginPrimaryOutput
	// OriginPrimitive is a symbol resolved against the primitive library.
	OriginPrimitive
	// OriginHierarchical is a symbol backed by a nested schematic.
	OriginHierarchical
	// OriginUnknown is a symbol matching neither a sub-schematic file nor a
	// known primitive: present but inert, per spec.md §4.3/§7.
	OriginUnknown
)

// Connection is one directed half of a symmetric pin-to-pin wire, recorded
// on the pin that owns it: the peer component/pin this pin's net reaches.
type Connection struct {
	Peer        *Component
	SelfPin     string
	PeerPinName string
}

// PinSettings is only meaningful for primary input pins, per spec.md §3.
// LastToggle uses akita's virtual-time unit rather than a parallel clock
// type (SPEC_FULL.md §4.5), converted from time.Now() at the boundary.
type PinSettings struct {
	IsToggle     bool
	IsClock      bool
	ClockSpeedHz int
	LastToggle   sim.VTimeInSec
}

// Pin is a named electrical port belonging to one Component.
type Pin struct {
	Name      string
	Direction Direction
	Position  Position
	Vcc       int

	Connections []Connection

	// Settings is non-nil only for a primary input pin.
	Settings *PinSettings
}

// Component is one of the three variants from spec.md §3, discriminated by
// Origin. Index is this component's position in the owning Netlist's
// Components slice, used as its stable identity for the tick guard and for
// addressing pins as (index, name) per spec.md §9's arena design.
type Component struct {
	Index int
	Name  string // symbol instance id, or the pin's own label for primary pins
	Rect  []int

	Origin Origin

	Inputs  map[string]*Pin
	Outputs map[string]*Pin

	// Primitive is set when Origin == OriginPrimitive.
	Primitive primitive.Eval

	// SubSchematicName/SubSchematic are set when Origin == OriginHierarchical; the
	// nested Netlist itself is built lazily by simcore on first use so
	// that simulator construction order matches spec.md §3's
	// "Nested simulators are built lazily" lifecycle note.
	SubSchematicName string
	SubSchematic     *schematic.Schematic
}

// Netlist is the component graph built from one Schematic: concrete Pin
// objects with pin-to-pin connections resolved by wire tracing.
type Netlist struct {
	Schematic  *schematic.Schematic
	Components []*Component

	// WireVccLookup maps a wire position to the driving pin, for the
	// renderer's voltage read per spec.md §4.4 step 5.
	WireVccLookup map[Position]*Pin

	// Junctions carries through junction render data untouched.
	Junctions []*bdf.Node

	PrimaryInputs  []*Component
	PrimaryOutputs []*Component
}

// ComponentRows flattens every component's pins into table rows for
// internal/obslog.DumpNetlist, implementing obslog.NetlistView.
func (nl *Netlist) ComponentRows() [][]any {
	var rows [][]any
	for _, c := range nl.Components {
		for _, p := range c.Inputs {
			rows = append(rows, []any{c.Index, c.Name, p.Name, "IN", p.Vcc})
		}
		for _, p := range c.Outputs {
			rows = append(rows, []any{c.Index, c.Name, p.Name, "OUT", p.Vcc})
		}
	}
	return rows
}

func posOf(pt []int) Position {
	if len(pt) < 2 {
		return Position{}
	}
	return Position{X: pt[0], Y: pt[1]}
}

func addPos(rect []int, pt []int) Position {
	if len(rect) < 2 || len(pt) < 2 {
		return Position{}
	}
	return Position{X: rect[0] + pt[0], Y: rect[1] + pt[1]}
}

// Build constructs the component graph for s, per the five steps of
// spec.md §4.4.
func Build(s *schematic.Schematic) (*Netlist, error) {
	start := time.Now()

	nl := &Netlist{
		Schematic:     s,
		WireVccLookup: map[Position]*Pin{},
		Junctions:     s.Junctions,
	}

	pinAt := map[Position][]pinRef{}
	for i, sc := range s.Components {
		comp, err := instantiate(i, sc)
		if err != nil {
			return nil, err
		}
		nl.Components = append(nl.Components, comp)

		if err := registerPinPositions(comp, sc, pinAt); err != nil {
			return nil, err
		}

		switch comp.Origin {
		case OriginPrimaryInput:
			nl.PrimaryInputs = append(nl.PrimaryInputs, comp)
		case OriginPrimaryOutput:
			nl.PrimaryOutputs = append(nl.PrimaryOutputs, comp)
		}
	}

	wireAt := buildWireAdjacency(s.Wires)

	for _, comp := range nl.Components {
		for _, pin := range allPins(comp) {
			if err := traceNet(comp, pin, pinAt, wireAt, nl.WireVccLookup); err != nil {
				return nil, err
			}
		}
	}

	obslog.Trace("netlist: built", "components", len(nl.Components), "elapsed_ms", time.Since(start).Milliseconds())
	return nl, nil
}

func allPins(c *Component) []*Pin {
	pins := make([]*Pin, 0, len(c.Inputs)+len(c.Outputs))
	for _, p := range c.Inputs {
		pins = append(pins, p)
	}
	for _, p := range c.Outputs {
		pins = append(pins, p)
	}
	return pins
}

type pinRef struct {
	Component *Component
	Pin       *Pin
}

func instantiate(index int, sc *schematic.Component) (*Component, error) {
	comp := &Component{
		Index:   index,
		Inputs:  map[string]*Pin{},
		Outputs: map[string]*Pin{},
	}

	switch sc.Kind {
	case schematic.ComponentPin:
		return instantiatePrimaryPin(index, sc, comp)
	case schematic.ComponentSymbol:
		return instantiateSymbol(index, sc, comp)
	default:
		return nil, fmt.Errorf("netlist: unrecognised component kind")
	}
}

func instantiatePrimaryPin(index int, sc *schematic.Component, comp *Component) (*Component, error) {
	p := sc.Node.Pin
	if p == nil || p.Rect == nil {
		return nil, fmt.Errorf("netlist: pin component missing rect/direction data")
	}
	name := schematic.PortName(sc.Node)
	comp.Name = name

	// A primary pin at direction=input exposes one OUTPUT pin (the
	// user-driven value); a primary pin at direction=output exposes one
	// INPUT pin (reflecting the driving net). §3 invariant: "is then
	// inverted" in the Python source — the component's externally visible
	// pin direction is the opposite of the schematic pin's own declared
	// direction, since a schematic "input" pin supplies a value to drive
	// into the net.
	pos := position(p)

	if p.IsInput {
		comp.Origin = OriginPrimaryInput
		comp.Outputs[name] = &Pin{
			Name: name, Direction: Output, Position: pos,
			Settings: &PinSettings{},
		}
	} else {
		comp.Origin = OriginPrimaryOutput
		comp.Inputs[name] = &Pin{Name: name, Direction: Input, Position: pos}
	}
	return comp, nil
}

func position(p *bdf.PinData) Position {
	if p.HasPoint {
		return addPos(p.Rect, p.Point)
	}
	return posOf(p.Rect)
}

func instantiateSymbol(index int, sc *schematic.Component, comp *Component) (*Component, error) {
	comp.Name = sc.Instance
	if comp.Name == "" {
		comp.Name = fmt.Sprintf("%s#%d", sc.Name, index)
	}
	comp.Rect = schematic.SymbolRect(sc.Node)
	if comp.Rect == nil {
		return nil, &IntegrityError{Msg: fmt.Sprintf("symbol %q declares no rect", comp.Name)}
	}

	if sc.SubSchematic != nil {
		comp.Origin = OriginHierarchical
		comp.SubSchematicName = sc.Name
		comp.SubSchematic = sc.SubSchematic
	} else if _, ok := primitive.NewFactory(sc.Name); ok {
		comp.Origin = OriginPrimitive
		factory, _ := primitive.NewFactory(sc.Name)
		comp.Primitive = factory()
	} else {
		comp.Origin = OriginUnknown
		obslog.Warn("netlist: unknown primitive, component will never propagate", "name", sc.Name)
	}

	ports := schematic.SymbolPorts(sc.Node)
	seenIn, seenOut := map[string]bool{}, map[string]bool{}
	for _, port := range ports {
		name := schematic.PortName(port)
		if name == "" {
			continue
		}

		pos := addPos(comp.Rect, port.Pin.Point)
		if port.Pin.IsInput {
			if seenIn[name] {
				return nil, &IntegrityError{Msg: fmt.Sprintf("symbol %q declares duplicate input pin name %q", comp.Name, name)}
			}
			seenIn[name] = true
			comp.Inputs[name] = &Pin{Name: name, Direction: Input, Position: pos}
		} else {
			if seenOut[name] {
				return nil, &IntegrityError{Msg: fmt.Sprintf("symbol %q declares duplicate output pin name %q", comp.Name, name)}
			}
			seenOut[name] = true
			comp.Outputs[name] = &Pin{Name: name, Direction: Output, Position: pos}
		}
	}

	return comp, nil
}

func registerPinPositions(comp *Component, sc *schematic.Component, pinAt map[Position][]pinRef) error {
	for _, p := range comp.Inputs {
		pinAt[p.Position] = append(pinAt[p.Position], pinRef{comp, p})
	}
	for _, p := range comp.Outputs {
		pinAt[p.Position] = append(pinAt[p.Position], pinRef{comp, p})
	}
	return nil
}

// IntegrityError reports a structural defect in the netlist, per spec.md §7.
type IntegrityError struct{ Msg string }

func (e *IntegrityError) Error() string { return "netlist: integrity error: " + e.Msg }
