package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/distfluid/internal/config"
	"github.com/sarchlab/distfluid/internal/distif"
	"github.com/sarchlab/distfluid/internal/engine"
	"github.com/sarchlab/distfluid/internal/fluid"
	"github.com/sarchlab/distfluid/internal/monitoring"
	"github.com/sarchlab/distfluid/internal/recorder"
	"github.com/sarchlab/distfluid/internal/simside"
	"github.com/sarchlab/distfluid/internal/transport"
)

var (
	envFile   string
	ticks     uint64
	aVolume   float64
	bVolume   float64
	aPressure float64
	bPressure float64
	verbose   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the two-sided distributed fluid interface demo.",
	RunE:  runDemo,
}

var opts *config.Options

func init() {
	runCmd.Flags().StringVar(&envFile, "env", "", "path to a .env file of flag overrides (default: ./.env if present)")
	runCmd.Flags().Uint64Var(&ticks, "ticks", 200, "number of solver ticks to run, per side (0 runs without a tick limit)")
	runCmd.Flags().Float64Var(&aVolume, "a-volume", 1.0, "side A's node volume")
	runCmd.Flags().Float64Var(&bVolume, "b-volume", 1.0, "side B's node volume")
	runCmd.Flags().Float64Var(&aPressure, "a-pressure", 101.325, "side A's initial pressure, kPa")
	runCmd.Flags().Float64Var(&bPressure, "b-pressure", 101.325, "side B's initial pressure, kPa")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "log every tick's frame state to stderr")

	opts = config.RegisterFlags(runCmd)
}

func demoFluidConfig() *fluid.Config {
	return &fluid.Config{
		Bulk: []fluid.Species{
			{Name: "O2", MolecularWeight: 32, SpecificHeatCp: 918},
			{Name: "N2", MolecularWeight: 28, SpecificHeatCp: 1040},
		},
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return fmt.Errorf("distfluidsim: load .env: %w", err)
	}

	eng := engine.NewSerialEngine()
	freq := engine.Freq(opts.TickFrequency)
	dt := float64(freq.Period())

	fluidCfg := demoFluidConfig()

	a, err := simside.New(simside.Config{
		Name: "a", PeerName: "b",
		Volume: aVolume, Pressure: aPressure, Temperature: 294,
		FluidConfig: fluidCfg, BulkMoleFrac: []float64{0.21, 0.79},
		Compliance: 0.02, DT: dt, MaxTicks: ticks,
		LinkConfig: withPairMaster(opts.ConfigData, true),
	})
	if err != nil {
		return err
	}

	b, err := simside.New(simside.Config{
		Name: "b", PeerName: "a",
		Volume: bVolume, Pressure: bPressure, Temperature: 294,
		FluidConfig: fluidCfg, BulkMoleFrac: []float64{0.21, 0.79},
		Compliance: 0.02, DT: dt, MaxTicks: ticks,
		LinkConfig: withPairMaster(opts.ConfigData, false),
	})
	if err != nil {
		return err
	}

	if verbose {
		a.AcceptHook(simside.NewLogHook("a: "))
		b.AcceptHook(simside.NewLogHook("b: "))
	}

	if opts.RecordPath != "" {
		rec, err := recorder.New(opts.RecordPath)
		if err != nil {
			return err
		}
		defer func() { _ = rec.Close() }()

		a.AcceptHook(rec)
		b.AcceptHook(rec)
	}

	conn := transport.NewLatencyConnection("a-b", eng, freq, opts.LatencyTicks)
	conn.DropRate = opts.DropRate
	conn.PlugIn(a.Port())
	conn.PlugIn(b.Port())

	if opts.MonitorPort > 0 || opts.OpenBrowser {
		mon := monitoring.New(eng).WithPortNumber(opts.MonitorPort)
		mon.RegisterComponent(a)
		mon.RegisterComponent(b)

		addr, err := mon.StartServer(opts.OpenBrowser)
		if err != nil {
			return fmt.Errorf("distfluidsim: start monitor: %w", err)
		}

		fmt.Printf("monitoring on http://%s\n", addr)
	}

	tickA := engine.NewTickingComponent("a.ticker", eng, freq, a)
	tickB := engine.NewTickingComponent("b.ticker", eng, freq, b)
	tickA.TickLater()
	tickB.TickLater()

	if err := eng.Run(); err != nil {
		return fmt.Errorf("distfluidsim: run: %w", err)
	}

	modeA, modeB := a.Link().Mode(), b.Link().Mode()
	fmt.Printf("done: a=%s b=%s\n", modeA, modeB)

	return nil
}

func withPairMaster(cfg distif.ConfigData, isMaster bool) distif.ConfigData {
	cfg.IsPairMaster = isMaster
	return cfg
}
