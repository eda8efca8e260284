package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

// loadScenario resolves the system and run parameters. Precedence, lowest
// first: defaults, preset, config file, body file, explicitly set flags.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, *dynamo.System, string, error) {
	cfg := config.DefaultConfig()
	source := "defaults"

	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, nil, "", fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg, source = p, preset
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, source = c, configFile
		if !cmd.Flags().Changed("data") {
			dataDir = cfg.DataDir
		}
		if !cmd.Flags().Changed("log-level") {
			l, err := newLogger(cfg.LogLevel)
			if err != nil {
				return nil, nil, "", err
			}
			logger = l
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("g") {
		cfg.G = gConst
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("validate") {
		cfg.ValidateState = validate
	}

	if len(args) > 0 {
		records, err := storage.ReadFile(args[0])
		if err != nil {
			return nil, nil, "", err
		}
		cfg.Bodies = cfg.Bodies[:0:0]
		for _, r := range records {
			cfg.Bodies = append(cfg.Bodies, config.BodyConfig{ID: r.ID, Mass: r.Mass, Position: r.Position, Velocity: r.Velocity})
		}
		source = args[0]
	}

	sys, err := cfg.BuildSystem()
	if err != nil {
		return nil, nil, "", err
	}
	if sys.Len() == 0 {
		return nil, nil, "", fmt.Errorf("%w: pass a body file, --preset or --config", sim.ErrNoBodies)
	}
	return cfg, sys, source, nil
}

// maxKeptSamples bounds the samples held in memory by a run that is not
// recorded. Only recorded runs need every step.
const maxKeptSamples = 5000

func newSimulator(logger *slog.Logger) *sim.Simulator {
	s := sim.New(logger)
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	return s
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, sys, source, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	initial := storage.Snapshot(sys)

	s := newSimulator(logger)
	if every > 0 {
		s.AddObserver(sim.ObserverFunc(func(_ *dynamo.System, smp sim.Sample) {
			if (smp.Step-1)%every == 0 {
				fmt.Println(viz.FormatSample(smp))
			}
		}))
	}

	var trails [][]dynamo.Vector
	if trace || svgFile != "" {
		trails = make([][]dynamo.Vector, sys.Len())
		s.AddObserver(sim.ObserverFunc(func(sys *dynamo.System, _ sim.Sample) {
			for i, b := range sys.Bodies() {
				trails[i] = append(trails[i], b.Position)
			}
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d bodies from %s (dt=%gs, total time=%gs)\n", sys.Len(), source, cfg.Dt, cfg.Duration)

	simCfg := cfg.SimConfig()
	if !record {
		simCfg = simCfg.LimitSamples(maxKeptSamples)
	}

	result, err := s.Run(ctx, sys, simCfg)
	if result == nil {
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if trace {
		fmt.Println()
		fmt.Print(viz.PlotOrbits(trails, 40, 20).String())
	}
	if svgFile != "" {
		if err := writeSVG(svgFile, trails, sys.IDs()); err != nil {
			return err
		}
		fmt.Printf("orbits written to %s\n", svgFile)
	}

	fmt.Println()
	fmt.Printf("completed %d steps in %v\n", result.StepsTaken, result.Elapsed)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Printf("center of mass: %s m\n", viz.FormatVector(sys.CenterOfMass()))
	printMetrics(result.Metrics)

	if record {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Source:      source,
			G:           sys.G(),
			Dt:          cfg.Dt,
			Duration:    cfg.Duration,
			Bodies:      sys.Len(),
			Steps:       result.StepsTaken,
			EnergyDrift: result.EnergyDrift,
			Metrics:     result.Metrics,
		}, initial, result.Samples)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if outFile != "" {
		if err := storage.Save(sys, outFile); err != nil {
			return err
		}
		fmt.Printf("final state saved to %s\n", outFile)
	}

	return err
}

func writeSVG(path string, trails [][]dynamo.Vector, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.OrbitsSVG(f, trails, labels, 800, 800); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6e\n", name, m[name])
	}
}

func compareTimeSteps(cmd *cobra.Command, args []string) error {
	cfg, sys, _, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := sim.NewEnsemble(sim.New(logger),
		func() sim.Metric { return metrics.NewEnergyDrift() },
		func() sim.Metric { return metrics.NewMomentumDrift() },
	)
	results, err := e.Run(ctx, sys, cfg.SimConfig().LimitSamples(maxKeptSamples), dts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tENERGY DRIFT\tMAX ENERGY DRIFT\tMOMENTUM DRIFT\tELAPSED")
	for i, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\t%.3e\t%v\n",
			dts[i],
			r.StepsTaken,
			r.EnergyDrift,
			r.Metrics["energy_drift"],
			r.Metrics["momentum_drift"],
			r.Elapsed,
		)
	}
	return w.Flush()
}
