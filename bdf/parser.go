package bdf

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Parse performs recursive-descent parsing of a BDF stream into a flat list
// of top-level Nodes, per spec.md §4.1. A record's first token is its type;
// remaining tokens are numeric leaves (kept as-is), quoted strings
// (unwrapped to their bare text), or nested parenthesised text reparsed
// recursively. Malformed input is a
// fatal ParseError.
func Parse(r io.Reader) ([]*Node, error) {
	br, ok := r.(io.RuneScanner)
	if !ok {
		br = bufio.NewReader(r)
	}

	var nodes []*Node
	for {
		chunk, err := ReadNextRecord(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		node, err := parseRecordText(chunk)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func parseRecordText(text string) (*Node, error) {
	tokens := SplitTokens(text)
	if len(tokens) == 0 {
		return nil, &ParseError{Msg: "empty record body"}
	}

	typ, argTokens := tokens[0], tokens[1:]
	if len(argTokens) == 0 {
		return &Node{Kind: KindAtom, Atom: typ}, nil
	}

	args := make([]*Node, len(argTokens))
	for i, tok := range argTokens {
		arg, err := parseArg(tok)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	return buildRecord(RecordKind(typ), args)
}

// parseArg decodes a single depth-zero token from SplitTokens into a Node:
// a numeric leaf is kept literally, a quoted string is unwrapped to its
// bare text, and a parenthesised group is reparsed recursively as a record.
func parseArg(tok string) (*Node, error) {
	switch {
	case isNumericToken(tok):
		return &Node{Kind: KindAtom, Atom: tok}, nil

	case len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`):
		return &Node{Kind: KindAtom, Atom: tok[1 : len(tok)-1]}, nil

	case len(tok) >= 2 && strings.HasPrefix(tok, "(") && strings.HasSuffix(tok, ")"):
		return parseRecordText(tok[1 : len(tok)-1])

	default:
		return &Node{Kind: KindAtom, Atom: tok}, nil
	}
}

func buildRecord(typ RecordKind, args []*Node) (*Node, error) {
	switch typ {
	case RecordVersion:
		if len(args) < 1 {
			return nil, &ParseError{Msg: "version record missing value"}
		}
		return &Node{Kind: KindRecord, Record: RecordVersion, RawVersion: args[0].Atom}, nil

	case RecordJunction:
		v, err := parseRequiredInt(args, 0, "junction")
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindRecord, Record: RecordJunction, Junction: int64(v)}, nil

	case RecordHeader:
		if len(args) < 2 {
			return nil, &ParseError{Msg: "header record missing fields"}
		}
		h := &HeaderData{Kind: args[0].Atom}
		if args[1].Kind == KindRecord && args[1].Record == RecordVersion {
			h.Version = args[1].RawVersion
		} else {
			h.Version = args[1].Atom
		}
		return &Node{Kind: KindRecord, Record: RecordHeader, Header: h}, nil

	case RecordRect, RecordPoint:
		ints, err := parseIntList(args)
		if err != nil {
			return nil, err
		}
		if typ == RecordRect {
			return &Node{Kind: KindRecord, Record: RecordRect, Rect: ints}, nil
		}
		return &Node{Kind: KindRecord, Record: RecordPoint, Point: ints}, nil

	case RecordFontSize:
		v, err := parseRequiredInt(args, 0, "font_size")
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindRecord, Record: RecordFontSize, FontSize: v}, nil

	case RecordFont:
		if len(args) < 1 {
			return nil, &ParseError{Msg: "font record missing name"}
		}
		f := &FontData{Name: args[0].Atom}
		for _, a := range args[1:] {
			if a.Kind == KindRecord && a.Record == RecordFontSize {
				f.FontSize = a.FontSize
				f.HasSize = true
			}
		}
		return &Node{Kind: KindRecord, Record: RecordFont, Font: f}, nil

	case RecordText:
		if len(args) < 1 {
			return nil, &ParseError{Msg: "text record missing value"}
		}
		t := &TextData{Text: args[0].Atom, Flags: map[string]bool{}}
		for _, a := range args[1:] {
			switch {
			case a.Kind == KindRecord && a.Record == RecordRect:
				t.Rect = a.Rect
			case a.Kind == KindRecord && a.Record == RecordFont:
				t.Font = a.Font
			case a.Kind == KindAtom:
				t.Flags[a.Atom] = true
			}
		}
		return &Node{Kind: KindRecord, Record: RecordText, Text: t}, nil

	case RecordLine, RecordConnector:
		if len(args) < 2 {
			return nil, &ParseError{Msg: string(typ) + " record needs two points"}
		}
		p1, err := pointOf(args[0])
		if err != nil {
			return nil, err
		}
		p2, err := pointOf(args[1])
		if err != nil {
			return nil, err
		}
		ld := &LineData{From: p1, To: p2}
		if typ == RecordLine {
			return &Node{Kind: KindRecord, Record: RecordLine, Line: ld}, nil
		}
		return &Node{Kind: KindRecord, Record: RecordConnector, Connector: ld}, nil

	case RecordPin, RecordPort:
		p := &PinData{}
		for _, a := range args {
			switch {
			case a.Kind == KindAtom && a.Atom == "input":
				p.IsInput = true
			case a.Kind == KindAtom && a.Atom == "output":
				p.IsOutput = true
			case a.Kind == KindRecord && a.Record == RecordRect:
				p.Rect = a.Rect
			case a.Kind == KindRecord && a.Record == RecordPoint:
				p.Point = a.Point
				p.HasPoint = true
			case a.Kind == KindRecord && a.Record == RecordLine:
				p.Line = a.Line
			case a.Kind == KindRecord && a.Record == RecordText:
				p.Text = append(p.Text, a.Text)
			case a.Kind == KindRecord && a.Record == "drawing" && p.Drawing == nil:
				p.Drawing = a
			}
		}
		return &Node{Kind: KindRecord, Record: typ, Pin: p}, nil

	case RecordSymbol:
		// A symbol's children (rect, ports, text, drawing) are left as a
		// generic List for the schematic loader to walk by record type,
		// rather than decoded into a fielded shape here.
		return &Node{Kind: KindRecord, Record: RecordSymbol, List: args}, nil

	default:
		// Unknown record types are preserved opaquely, per §4.1.
		return &Node{Kind: KindRecord, Record: typ, List: args, Unknown: true}, nil
	}
}

func pointOf(n *Node) ([2]int, error) {
	if n.Kind == KindRecord && n.Record == RecordPoint && len(n.Point) >= 2 {
		return [2]int{n.Point[0], n.Point[1]}, nil
	}
	return [2]int{}, &ParseError{Msg: "expected a pt record"}
}

func parseIntList(args []*Node) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		if a.Kind != KindAtom {
			return nil, &ParseError{Msg: "expected integer leaf"}
		}
		v, err := strconv.Atoi(a.Atom)
		if err != nil {
			f, ferr := strconv.ParseFloat(a.Atom, 64)
			if ferr != nil {
				return nil, &ParseError{Msg: "invalid integer token: " + a.Atom}
			}
			v = int(f)
		}
		out[i] = v
	}
	return out, nil
}

func parseRequiredInt(args []*Node, idx int, what string) (int, error) {
	if idx >= len(args) || args[idx].Kind != KindAtom {
		return 0, &ParseError{Msg: what + " record missing integer value"}
	}
	v, err := strconv.Atoi(args[idx].Atom)
	if err != nil {
		return 0, &ParseError{Msg: "invalid " + what + " value: " + args[idx].Atom}
	}
	return v, nil
}
