package netlist

import "github.com/sarchlab/bdfsim/bdf"

// buildWireAdjacency turns the schematic's flat connector list into a
// bidirectional position adjacency map, per spec.md §4.4 step 2.
func buildWireAdjacency(wires []*bdf.Node) map[Position][]Position {
	adj := map[Position][]Position{}
	for _, w := range wires {
		if w.Connector == nil {
			continue
		}
		a := Position{X: w.Connector.From[0], Y: w.Connector.From[1]}
		b := Position{X: w.Connector.To[0], Y: w.Connector.To[1]}
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	return adj
}

// traceNet performs the depth-first wire trace for one pin, per spec.md
// §4.4 step 3, using an explicit work stack rather than language recursion
// so long wire chains cannot overflow the call stack (spec.md §9 Design
// Notes / §4.4 edge cases).
func traceNet(
	comp *Component,
	pin *Pin,
	pinAt map[Position][]pinRef,
	wireAt map[Position][]Position,
	wireVccLookup map[Position]*Pin,
) error {
	visited := map[Position]bool{pin.Position: true}
	stack := []Position{pin.Position}
	var wirePositions []Position

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		wirePositions = append(wirePositions, cur)

		for _, ref := range pinAt[cur] {
			if ref.Component == comp {
				continue // only pins on other components are peers, per §4.4
			}
			pin.Connections = append(pin.Connections, Connection{
				Peer:        ref.Component,
				SelfPin:     pin.Name,
				PeerPinName: ref.Pin.Name,
			})
		}

		for _, next := range wireAt[cur] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}

	for _, w := range wirePositions {
		wireVccLookup[w] = pin
	}
	return nil
}
