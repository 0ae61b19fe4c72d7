package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Plot charts one series. An empty series yields an empty string.
func Plot(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return ""
	}
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotMany charts several series on shared axes with one color each.
func PlotMany(series [][]float64, caption string, width, height int) string {
	var nonEmpty [][]float64
	for _, s := range series {
		if len(s) > 1 {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	colors := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Yellow, asciigraph.Red, asciigraph.Blue}
	return asciigraph.PlotMany(nonEmpty,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors[:min(len(colors), len(nonEmpty))]...),
	)
}
