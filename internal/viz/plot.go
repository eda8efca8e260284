package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

const (
	DefaultPlotWidth  = 60
	DefaultPlotHeight = 12
)

// PlotSeries draws values as an ASCII line chart. Non-finite values are
// dropped; long series are resampled to width points.
func PlotSeries(values []float64, caption string, width, height int) string {
	if width <= 0 {
		width = DefaultPlotWidth
	}
	if height <= 0 {
		height = DefaultPlotHeight
	}

	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Subtle.Render("(no finite data)")
	}

	return asciigraph.Plot(finite,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
}
