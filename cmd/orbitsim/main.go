package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/tui"
)

var (
	dataDir  string
	logLevel string

	dt         float64
	duration   float64
	gConst     float64
	workers    int
	every      int
	validate   bool
	record     bool
	trace      bool
	outFile    string
	svgFile    string
	configFile string
	preset     string
	dts        []float64

	bodyID   string
	bodyMass float64
	bodyPos  []float64
	bodyVel  []float64

	plotField string
)

var logger = slog.New(slog.DiscardHandler)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbitsim",
		Short: "n-body newtonian gravity simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// the menu owns the terminal, so the run log is discarded
			return tui.Run(dynamo.NewSystem(), newSimulator(nil))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for recorded runs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "run a simulation from a body file, preset or config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&every, "every", 1, "print diagnostics every N steps (0 disables)")
	runCmd.Flags().BoolVar(&record, "record", false, "record the run in the data directory")
	runCmd.Flags().BoolVar(&trace, "trace", false, "draw the body trails on the XY plane")
	runCmd.Flags().StringVar(&outFile, "out", "", "save the final bodies to a .json or .csv file")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the body trails to an svg file")

	compareCmd := &cobra.Command{
		Use:   "compare [file]",
		Short: "compare energy drift across time steps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareTimeSteps,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&dts, "dts", []float64{60, 600, 3600}, "time steps to compare")

	listCmd := &cobra.Command{
		Use:   "list [file]",
		Short: "list the bodies in a file",
		Args:  cobra.ExactArgs(1),
		RunE:  listBodies,
	}

	addCmd := &cobra.Command{
		Use:   "add [file]",
		Short: "append a body to a file, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE:  addBody,
	}
	addCmd.Flags().StringVar(&bodyID, "id", "", "body id")
	addCmd.Flags().Float64Var(&bodyMass, "mass", 0, "mass in kg")
	addCmd.Flags().Float64SliceVar(&bodyPos, "pos", []float64{0, 0, 0}, "position x,y,z in m")
	addCmd.Flags().Float64SliceVar(&bodyVel, "vel", []float64{0, 0, 0}, "velocity x,y,z in m/s")
	_ = addCmd.MarkFlagRequired("id")
	_ = addCmd.MarkFlagRequired("mass")

	convertCmd := &cobra.Command{
		Use:   "convert [in] [out]",
		Short: "convert a body file between json and csv",
		Args:  cobra.ExactArgs(2),
		RunE:  convertBodies,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the diagnostics of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "all", "kinetic, potential, total or all")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write a recorded run as json to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, addCmd, convertCmd, presetsCmd, runsCmd, plotCmd, analyzeCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step in s")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "total simulated time in s")
	cmd.Flags().Float64Var(&gConst, "g", dynamo.DefaultG, "gravitational constant")
	cmd.Flags().IntVar(&workers, "workers", 1, "force loop workers (0 uses every CPU)")
	cmd.Flags().BoolVar(&validate, "validate", false, "stop when a position or velocity stops being finite")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scenario")
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
