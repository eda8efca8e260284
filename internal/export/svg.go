package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

var palette = []string{"#00ffff", "#ff00ff", "#ffcc00", "#00ff88", "#ff4444", "#8888ff"}

// OrbitsSVG writes each trail as a path projected onto the XY plane. Both
// axes share one scale with a 10% margin. Non-finite points break the path.
func OrbitsSVG(w io.Writer, trails [][]dynamo.Vector, labels []string, width, height int) error {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, trail := range trails {
		for _, p := range trail {
			if !p.IsFinite() {
				continue
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if !math.IsInf(minX, 1) {
		span := math.Max(maxX-minX, maxY-minY)
		if span == 0 {
			span = 1
		}
		span *= 1.2
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		scale := math.Min(float64(width), float64(height)) / span

		for i, trail := range trails {
			color := palette[i%len(palette)]
			d := pathData(trail, func(p dynamo.Vector) (float64, float64) {
				return float64(width)/2 + (p.X-cx)*scale, float64(height)/2 - (p.Y-cy)*scale
			})
			if d == "" {
				continue
			}

			label := ""
			if i < len(labels) {
				label = labels[i]
			}
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="%s"><title>%s</title></path>
`, color, d, escape(label))
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func pathData(trail []dynamo.Vector, project func(dynamo.Vector) (float64, float64)) string {
	var sb strings.Builder
	move := true
	for _, p := range trail {
		if !p.IsFinite() {
			move = true
			continue
		}
		x, y := project(p)
		if move {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			move = false
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
