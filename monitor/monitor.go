// Package monitor wires a simcore.Simulator into an optional akita
// monitoring dashboard, grounded on samples/2Dpassthrough/main.go's
// monitoring.NewMonitor / RegisterEngine / RegisterComponent / StartServer
// sequence.
package monitor

import (
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bdfsim/simcore"
)

// Dashboard owns the akita engine and monitor backing a ClockedDriver, for
// CLIs that want a live web view of the simulation's progress.
type Dashboard struct {
	Engine  sim.Engine
	Monitor *monitoring.Monitor
	Driver  *simcore.ClockedDriver
}

// Start builds an akita serial engine and monitor, registers target under
// a ClockedDriver ticking at freq, and starts the monitor's HTTP server.
// maxTicks<=0 runs until the caller stops the engine.
func Start(target *simcore.Simulator, freq sim.Freq, maxTicks int) *Dashboard {
	mon := monitoring.NewMonitor()

	engine := sim.NewSerialEngine()
	mon.RegisterEngine(engine)

	driver := simcore.NewClockedDriver("Driver", engine, freq, target, maxTicks)
	mon.RegisterComponent(driver)

	mon.StartServer()

	return &Dashboard{Engine: engine, Monitor: mon, Driver: driver}
}

// Run drives the engine until the driver stops producing progress.
func (d *Dashboard) Run() error {
	return d.Engine.Run()
}
