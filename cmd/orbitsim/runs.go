package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tBODIES\tDURATION\tDT\tSTEPS\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%gs\t%gs\t%d\t%.3e\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Duration,
			run.Dt,
			run.Steps,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func series(samples []sim.Sample, field string) ([]float64, error) {
	data := make([]float64, len(samples))
	for i, s := range samples {
		switch field {
		case "kinetic":
			data[i] = s.Kinetic
		case "potential":
			data[i] = s.Potential
		case "total":
			data[i] = s.Total
		default:
			return nil, fmt.Errorf("unknown field %q (kinetic, potential, total)", field)
		}
	}
	return data, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fields := []string{plotField}
	if plotField == "all" {
		fields = []string{"kinetic", "potential", "total"}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, field := range fields {
		data, err := series(samples, field)
		if err != nil {
			return err
		}
		fmt.Println(viz.PlotSeries(data, field+" energy (J) vs step", 80, 10))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	spacing := meta.Dt
	if len(samples) > 1 {
		spacing = samples[1].Time - samples[0].Time
	}

	kinetic, _ := series(samples, "kinetic")
	ps := analysis.PowerSpectrum(kinetic)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("source: %s\n\n", meta.Source)
	if len(ps) > 1 {
		fmt.Println(viz.PlotSeries(ps[1:len(ps)/4+1], "power spectrum (kinetic energy)", 80, 15))
		fmt.Println()
	}

	period, err := analysis.DominantPeriod(kinetic, spacing)
	if err != nil {
		return err
	}
	fmt.Printf("dominant period: %.6g s\n", period)
	fmt.Printf("energy drift: %.3e\n", meta.EnergyDrift)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).Export(os.Stdout, args[0])
}
