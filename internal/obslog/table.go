package obslog

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NetlistView is the minimal shape DumpNetlist needs, satisfied by
// netlist.Netlist without this package importing netlist (which itself
// imports obslog) and creating a cycle.
type NetlistView interface {
	ComponentRows() [][]any
}

// DumpNetlist renders a component/pin/vcc table and returns it as a
// string (it prints nothing itself), the textual
// analogue of the renderer's visual overlay, grounded on core/util.go's
// PrintState (table.NewWriter / SetTitle / AppendHeader / AppendRow / Render).
func DumpNetlist(title string, nl NetlistView) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Component", "Pin", "Dir", "VCC"})

	for _, row := range nl.ComponentRows() {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = v
		}
		t.AppendRow(cells)
	}

	return t.Render()
}

// FormatStatus renders a one-line status string in the overlay format
// described by spec.md §4.5 / §6: "Off" | "Building..." | "On (...)".
func FormatStatus(phase string, detail string) string {
	if detail == "" {
		return phase
	}
	return fmt.Sprintf("%s (%s)", phase, detail)
}
