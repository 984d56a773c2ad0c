// Command bdfsim loads a BDF schematic, drives its simulator to the On
// state, and runs a headless update loop, optionally backed by an akita
// monitoring dashboard. Flag handling follows the stdlib flag package
// rather than a third-party CLI framework: see DESIGN.md for why.
package main

import (
	"flag"
	"fmt"
	"os"

	akitasim "github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/bdfsim/internal/config"
	"github.com/sarchlab/bdfsim/internal/obslog"
	"github.com/sarchlab/bdfsim/monitor"
	"github.com/sarchlab/bdfsim/schematic"
	"github.com/sarchlab/bdfsim/simcore"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a runtime config YAML file")
		withMonitor = flag.Bool("monitor", false, "serve an akita monitoring dashboard")
		ticks       = flag.Int("ticks", 0, "total Update() calls to run, including startup (0 = stop once built; with -monitor, 0 = run until stopped)")
		hz          = flag.Float64("hz", 60, "driver frequency, in Hz, for the monitored loop")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bdfsim [flags] <schematic.bdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bdfsim: load config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	obslog.Init(cfg.LogLevel)

	sch, err := schematic.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bdfsim: load schematic:", err)
		os.Exit(1)
	}

	sim := simcore.New(sch, cfg)

	if *withMonitor {
		dash := monitor.Start(sim, akitasim.Freq(*hz), *ticks)
		fmt.Println(obslog.FormatStatus(sim.Status(), ""))
		if err := dash.Run(); err != nil {
			fmt.Fprintln(os.Stderr, "bdfsim: run:", err)
			os.Exit(1)
		}
	} else {
		runHeadless(sim, *ticks)
	}

	fmt.Println(obslog.DumpNetlist(path, sim.Netlist()))
	atexit.Exit(0)
}

func runHeadless(s *simcore.Simulator, ticks int) {
	for i := 0; ticks <= 0 || i < ticks; i++ {
		if err := s.Update(); err != nil {
			fmt.Fprintln(os.Stderr, "bdfsim: update:", err)
			os.Exit(1)
		}
		if s.Built() && ticks <= 0 {
			break
		}
	}
}
