// Package schematic walks a parsed BDF layout tree and classifies its
// top-level records into junctions, wires, and components, resolving
// hierarchical sub-schematics recursively per spec.md §4.2.
package schematic

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/bdfsim/bdf"
	"github.com/sarchlab/bdfsim/internal/obslog"
)

// IntegrityError reports a structural defect in a schematic or its
// hierarchy that the simulator cannot safely ignore, per spec.md §7.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return "schematic: integrity error: " + e.Msg }

// ComponentKind discriminates the two record types the loader promotes to
// components: primary pins and symbols (primitive or hierarchical).
type ComponentKind int

const (
	ComponentPin ComponentKind = iota
	ComponentSymbol
)

// Component is a classified top-level schematic element awaiting
// instantiation by the netlist builder.
type Component struct {
	Kind ComponentKind
	Node *bdf.Node

	// Name/Instance are populated for symbols: the first two text children
	// are the symbol's cell name and its instance id, per spec.md §4.2.
	Name     string
	Instance string

	// SubSchematic is non-nil exactly when this symbol is hierarchical
	// (a sibling "<Name>.bdf" file exists).
	SubSchematic *Schematic
}

// Schematic is one loaded BDF file: its raw layout tree plus the
// classified junctions/wires/components, with sub-schematics resolved and
// cached eagerly.
type Schematic struct {
	Path       string
	workingDir string

	Layout []*bdf.Node

	Junctions []*bdf.Node
	Wires     []*bdf.Node

	Components []*Component
}

// Load parses path and recursively resolves any hierarchical sub-schematic
// symbols it references. visiting tracks the chain of absolute paths
// currently being loaded so reference cycles are rejected rather than
// recursing forever.
func Load(path string) (*Schematic, error) {
	return load(path, map[string]bool{})
}

func load(path string, visiting map[string]bool) (*Schematic, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if visiting[abs] {
		return nil, &IntegrityError{Msg: "cyclic sub-schematic reference: " + abs}
	}
	visiting[abs] = true
	defer delete(visiting, abs)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	layout, err := bdf.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("schematic: %s: %w", path, err)
	}

	s := &Schematic{
		Path:       path,
		workingDir: filepath.Dir(path),
		Layout:     layout,
	}
	if err := s.classify(visiting); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-parses the schematic from disk and rebuilds its classified
// views from scratch, per spec.md §4.5's reload() operation.
func (s *Schematic) Reload() error {
	fresh, err := load(s.Path, map[string]bool{})
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

func (s *Schematic) classify(visiting map[string]bool) error {
	for _, node := range s.Layout {
		switch node.Record {
		case bdf.RecordJunction:
			s.Junctions = append(s.Junctions, node)

		case bdf.RecordConnector:
			s.Wires = append(s.Wires, node)

		case bdf.RecordPin:
			s.Components = append(s.Components, &Component{Kind: ComponentPin, Node: node})

		case bdf.RecordSymbol:
			comp, err := s.classifySymbol(node, visiting)
			if err != nil {
				return err
			}
			s.Components = append(s.Components, comp)

		default:
			obslog.Trace("schematic: skipping unrecognised record", "type", node.Record)
		}
	}
	return nil
}

func (s *Schematic) classifySymbol(node *bdf.Node, visiting map[string]bool) (*Component, error) {
	name, instance := symbolIdentity(node)

	comp := &Component{
		Kind:     ComponentSymbol,
		Node:     node,
		Name:     name,
		Instance: instance,
	}

	if name == "" {
		return comp, nil
	}

	subPath := filepath.Join(s.workingDir, name+".bdf")
	if _, err := os.Stat(subPath); err != nil {
		return comp, nil // primitive or unknown symbol, resolved by primitive.NewFactory in the netlist builder
	}

	sub, err := load(subPath, visiting)
	if err != nil {
		return nil, err
	}
	comp.SubSchematic = sub
	return comp, nil
}

// symbolIdentity extracts a symbol's cell name and instance id from its
// first two text children, per spec.md §4.2.
func symbolIdentity(node *bdf.Node) (name, instance string) {
	var texts []string
	for _, child := range node.List {
		if child.Kind == bdf.KindRecord && child.Record == bdf.RecordText {
			texts = append(texts, child.Text.Text)
			if len(texts) == 2 {
				break
			}
		}
	}
	switch len(texts) {
	case 0:
		return "", ""
	case 1:
		return texts[0], ""
	default:
		return texts[0], texts[1]
	}
}

// SymbolRect returns the symbol's drawn rectangle, the anchor for its ports'
// absolute pin positions, or nil if the symbol declares none (an
// integrity error the caller should surface).
func SymbolRect(node *bdf.Node) []int {
	for _, child := range node.List {
		if child.Kind == bdf.KindRecord && child.Record == bdf.RecordRect {
			return child.Rect
		}
	}
	return nil
}

// SymbolPorts returns the "port" children of a symbol record, in document
// order, the declared input/output pins that its netlist Pins are derived
// from.
func SymbolPorts(node *bdf.Node) []*bdf.Node {
	var ports []*bdf.Node
	for _, child := range node.List {
		if child.Kind == bdf.KindRecord && child.Record == bdf.RecordPort {
			ports = append(ports, child)
		}
	}
	return ports
}

// PortName returns a port or pin record's declared name: the second text
// child for a port (the first is typically the bus/type annotation), or
// the second text child for a "pin" record — matching
// original_source/loader/simulator2.py's `chunk["data"]["text"][1]["text"]`.
// A record with only one text child uses that child; one with none
// yields "".
func PortName(p *bdf.Node) string {
	if p.Pin == nil || len(p.Pin.Text) < 2 {
		if p.Pin != nil && len(p.Pin.Text) == 1 {
			return p.Pin.Text[0].Text
		}
		return ""
	}
	return p.Pin.Text[1].Text
}
