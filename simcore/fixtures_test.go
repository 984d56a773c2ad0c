package simcore_test

import (
	"github.com/sarchlab/bdfsim/bdf"
	"github.com/sarchlab/bdfsim/netlist"
	"github.com/sarchlab/bdfsim/schematic"
	"github.com/sarchlab/bdfsim/simcore"
)

// findComponent looks up a built component by its netlist name (a primary
// pin's label, or a symbol instance id).
func findComponent(sim *simcore.Simulator, name string) *netlist.Component {
	for _, c := range sim.Netlist().Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func pinNode(isInput bool, rect []int, name string) *bdf.Node {
	return &bdf.Node{
		Kind:   bdf.KindRecord,
		Record: bdf.RecordPin,
		Pin: &bdf.PinData{
			IsInput:  isInput,
			IsOutput: !isInput,
			Rect:     rect,
			Text:     []*bdf.TextData{{Text: "kind"}, {Text: name}},
		},
	}
}

func portNode(isInput bool, pt []int, name string) *bdf.Node {
	return &bdf.Node{
		Kind:   bdf.KindRecord,
		Record: bdf.RecordPort,
		Pin: &bdf.PinData{
			IsInput:  isInput,
			IsOutput: !isInput,
			Point:    pt,
			HasPoint: true,
			Text:     []*bdf.TextData{{Text: "kind"}, {Text: name}},
		},
	}
}

func rectNode(rect []int) *bdf.Node {
	return &bdf.Node{Kind: bdf.KindRecord, Record: bdf.RecordRect, Rect: rect}
}

func connector(x1, y1, x2, y2 int) *bdf.Node {
	return &bdf.Node{
		Kind:      bdf.KindRecord,
		Record:    bdf.RecordConnector,
		Connector: &bdf.LineData{From: [2]int{x1, y1}, To: [2]int{x2, y2}},
	}
}

func symbolNode(rect []int, ports ...*bdf.Node) *bdf.Node {
	list := append([]*bdf.Node{rectNode(rect)}, ports...)
	return &bdf.Node{Kind: bdf.KindRecord, Record: bdf.RecordSymbol, List: list}
}

// primaryPin builds a top-level primary pin component at rect, named name.
func primaryPin(isInput bool, rect []int, name string) *schematic.Component {
	return &schematic.Component{Kind: schematic.ComponentPin, Node: pinNode(isInput, rect, name)}
}

// gateSymbol builds a primitive-gate symbol instance: cellName must match
// one of primitive.NewFactory's names, ports are (isInput, point, name)
// triples placed relative to rect's origin.
func gateSymbol(cellName, instance string, rect []int, ports ...*bdf.Node) *schematic.Component {
	return &schematic.Component{
		Kind:     schematic.ComponentSymbol,
		Node:     symbolNode(rect, ports...),
		Name:     cellName,
		Instance: instance,
	}
}

// hierarchicalSymbol builds a symbol instance backed by an already-built
// nested Schematic, standing in for a sibling "<name>.bdf" resolution.
func hierarchicalSymbol(cellName, instance string, rect []int, sub *schematic.Schematic, ports ...*bdf.Node) *schematic.Component {
	c := gateSymbol(cellName, instance, rect, ports...)
	c.SubSchematic = sub
	return c
}

// notSchematic is a minimal I -> NOT -> O schematic, reused standalone and
// as a nested sub-schematic for hierarchical symbol tests.
func notSchematic() *schematic.Schematic {
	return &schematic.Schematic{
		Wires: []*bdf.Node{
			connector(0, 0, 40, 5),
			connector(60, 5, 100, 0),
		},
		Components: []*schematic.Component{
			primaryPin(true, []int{0, 0, 10, 10}, "IN"),
			gateSymbol("NOT", "u1", []int{40, 0, 60, 20},
				portNode(true, []int{0, 5}, "IN"),
				portNode(false, []int{20, 5}, "OUT")),
			primaryPin(false, []int{100, 0, 110, 10}, "OUT"),
		},
	}
}

// and2Schematic is an A,B -> AND2 -> O schematic.
func and2Schematic() *schematic.Schematic {
	return &schematic.Schematic{
		Wires: []*bdf.Node{
			connector(0, 0, 40, 5),
			connector(0, 20, 40, 15),
			connector(60, 10, 100, 0),
		},
		Components: []*schematic.Component{
			primaryPin(true, []int{0, 0, 10, 10}, "A"),
			primaryPin(true, []int{0, 20, 10, 30}, "B"),
			gateSymbol("AND2", "u1", []int{40, 0, 60, 20},
				portNode(true, []int{0, 5}, "IN1"),
				portNode(true, []int{0, 15}, "IN2"),
				portNode(false, []int{20, 10}, "OUT")),
			primaryPin(false, []int{100, 0, 110, 10}, "O"),
		},
	}
}

// crossCoupledLatch is an S,R -> two cross-coupled NAND2 gates SR latch,
// exercising the tick guard's cycle-handling: each gate evaluates at most
// once per propagation step, so the latch settles over a few Update calls
// rather than looping forever within one.
func crossCoupledLatch() *schematic.Schematic {
	return &schematic.Schematic{
		Wires: []*bdf.Node{
			connector(0, 0, 40, 5),
			connector(0, 40, 40, 45),
			connector(60, 10, 40, 55),
			connector(60, 50, 40, 15),
		},
		Components: []*schematic.Component{
			primaryPin(true, []int{0, 0, 10, 10}, "S"),
			primaryPin(true, []int{0, 40, 10, 50}, "R"),
			gateSymbol("NAND2", "u1", []int{40, 0, 60, 20},
				portNode(true, []int{0, 5}, "IN1"),
				portNode(true, []int{0, 15}, "IN2"),
				portNode(false, []int{20, 10}, "OUT")),
			gateSymbol("NAND2", "u2", []int{40, 40, 60, 60},
				portNode(true, []int{0, 5}, "IN1"),
				portNode(true, []int{0, 15}, "IN2"),
				portNode(false, []int{20, 10}, "OUT")),
		},
	}
}

// dffSchematic is a D,CLK -> DFF -> Q schematic.
func dffSchematic() *schematic.Schematic {
	return &schematic.Schematic{
		Wires: []*bdf.Node{
			connector(0, 0, 40, 5),
			connector(0, 20, 40, 15),
			connector(60, 10, 100, 0),
		},
		Components: []*schematic.Component{
			primaryPin(true, []int{0, 0, 10, 10}, "D"),
			primaryPin(true, []int{0, 20, 10, 30}, "CLK"),
			gateSymbol("DFF", "u1", []int{40, 0, 60, 20},
				portNode(true, []int{0, 5}, "D"),
				portNode(true, []int{0, 15}, "CLK"),
				portNode(false, []int{20, 10}, "Q")),
			primaryPin(false, []int{100, 0, 110, 10}, "Q"),
		},
	}
}
