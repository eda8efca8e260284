package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

func listBodies(cmd *cobra.Command, args []string) error {
	sys := dynamo.NewSystem()
	if err := storage.Load(sys, args[0]); err != nil {
		return err
	}

	if sys.Len() == 0 {
		fmt.Println("no bodies in", args[0])
		return nil
	}
	return viz.WriteBodyTable(os.Stdout, sys.Bodies())
}

func addBody(cmd *cobra.Command, args []string) error {
	path := args[0]

	sys := dynamo.NewSystem()
	if err := storage.Load(sys, path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	pos, err := dynamo.VectorFromSlice(bodyPos)
	if err != nil {
		return fmt.Errorf("--pos: %w", err)
	}
	vel, err := dynamo.VectorFromSlice(bodyVel)
	if err != nil {
		return fmt.Errorf("--vel: %w", err)
	}

	if err := sys.AddBody(bodyID, bodyMass, pos, vel); err != nil {
		return err
	}
	if err := storage.Save(sys, path); err != nil {
		return err
	}

	logger.Info("body added", "id", bodyID, "file", path, "bodies", sys.Len())
	b, _ := sys.Body(bodyID)
	fmt.Println(viz.FormatBody(b))
	fmt.Printf("saved to %s (%d bodies)\n", path, sys.Len())
	return nil
}

func convertBodies(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	// validate the output extension before reading anything
	if _, err := storage.FormatFromPath(out); err != nil {
		return err
	}

	sys := dynamo.NewSystem()
	if err := storage.Load(sys, in); err != nil {
		return err
	}
	if err := storage.Save(sys, out); err != nil {
		return err
	}

	fmt.Printf("converted %d bodies: %s -> %s\n", sys.Len(), in, out)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tG\tDT\tTIME")

	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%gs\t%gs\n", name, len(p.Bodies), p.G, p.Dt, p.Duration)
	}
	return w.Flush()
}
