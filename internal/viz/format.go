package viz

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

func FormatVector(v dynamo.Vector) string {
	return v.String()
}

func FormatBody(b *dynamo.Body) string {
	return b.String()
}

// FormatSample renders the diagnostics of one step in SI units.
func FormatSample(s sim.Sample) string {
	return fmt.Sprintf("t = %.2f s: kinetic %.6e J, potential %.6e J, momentum %s kg·m/s",
		s.Time, s.Kinetic, s.Potential, FormatVector(s.Momentum))
}

// WriteBodyTable writes one aligned row per body, numbered from 1.
func WriteBodyTable(w io.Writer, bodies []*dynamo.Body) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tMASS (kg)\tPOSITION (m)\tVELOCITY (m/s)")
	for i, b := range bodies {
		fmt.Fprintf(tw, "%d\t%s\t%.2e\t%s\t%s\n", i+1, b.ID(), b.Mass(), FormatVector(b.Position), FormatVector(b.Velocity))
	}
	return tw.Flush()
}
