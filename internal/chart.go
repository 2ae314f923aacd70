package internal

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	seriesColor = color.RGBA{R: 0, G: 128, B: 255, A: 255}
	meanColor   = color.RGBA{R: 220, G: 50, B: 47, A: 255}
	rangeColor  = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

const (
	chartWidth     = 10 * vg.Inch
	chartRowHeight = 3 * vg.Inch
)

// RenderFunctionCharts draws one panel per function: elapsed time of every call with the mean, min and max as
// horizontal lines. The image is written as PNG to filename, replacing any earlier content.
func RenderFunctionCharts(stats TraceDataset, filename string) error {
	ordered := stats.Ordered()
	if len(ordered) == 0 {
		return fmt.Errorf("no function calls to chart")
	}

	plots := make([][]*plot.Plot, len(ordered))
	for i, fn := range ordered {
		p, err := functionPlot(fn)
		if err != nil {
			return err
		}
		plots[i] = []*plot.Plot{p}
	}

	return saveGrid(plots, chartWidth, chartRowHeight*vg.Length(len(ordered)), filename)
}

func functionPlot(fn NamedStats) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fn.Name
	p.X.Label.Text = "call"
	p.Y.Label.Text = "elapsed"

	pts := make(plotter.XYs, len(fn.Stats.Samples))
	for i, sample := range fn.Stats.Samples {
		pts[i].X = float64(i)
		pts[i].Y = sample.InexactFloat64()
	}

	series, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create series for %s: %w", fn.Name, err)
	}
	series.Color = seriesColor
	series.Width = vg.Points(1)
	p.Add(series)
	p.Legend.Add("elapsed", series)

	last := float64(len(pts) - 1)
	if last < 1 {
		last = 1
	}
	levels := []struct {
		name  string
		value float64
		color color.Color
		dash  []vg.Length
	}{
		{"mean", fn.Stats.Mean.InexactFloat64(), meanColor, nil},
		{"min", fn.Stats.Min.InexactFloat64(), rangeColor, []vg.Length{vg.Points(4), vg.Points(2)}},
		{"max", fn.Stats.Max.InexactFloat64(), rangeColor, []vg.Length{vg.Points(4), vg.Points(2)}},
	}
	for _, level := range levels {
		line, err := plotter.NewLine(plotter.XYs{{X: 0, Y: level.value}, {X: last, Y: level.value}})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s line for %s: %w", level.name, fn.Name, err)
		}
		line.Color = level.color
		line.Width = vg.Points(1)
		line.Dashes = level.dash
		p.Add(line)
		p.Legend.Add(level.name, line)
	}
	p.Legend.Top = true

	return p, nil
}

// RenderTargetChart draws the 3x2 overview of one function from a report: iteration count, elapsed time and
// state norm per call, and the state norm against elapsed time, iteration count and call index.
func RenderTargetChart(report Report, function string, filename string) error {
	elapsed, found := report.Series[function]
	if !found {
		return fmt.Errorf("function %s not found in report", function)
	}

	norms := make([]float64, len(report.States))
	for i, state := range report.States {
		norms[i] = euclideanNorm(state)
	}
	elapsedF := make([]float64, len(elapsed))
	for i, e := range elapsed {
		elapsedF[i] = e.InexactFloat64()
	}
	iterations := make([]float64, len(report.IterationCounts))
	for i, n := range report.IterationCounts {
		iterations[i] = float64(n)
	}

	panels := []struct {
		title, xLabel, yLabel string
		pts                   plotter.XYs
		scatter               bool
	}{
		{"Iterations per call", "call", "iterations", indexed(iterations), false},
		{"Elapsed per call", "call", "elapsed", indexed(elapsedF), false},
		{"State norm per call", "call", "norm", indexed(norms), false},
		{"Elapsed vs state norm", "norm", "elapsed", paired(norms, elapsedF), true},
		{"Iterations vs state norm", "norm", "iterations", paired(norms, iterations), true},
		{"Call vs state norm", "norm", "call", paired(norms, indexes(len(norms))), true},
	}

	plots := make([][]*plot.Plot, 3)
	for i, panel := range panels {
		p := plot.New()
		p.Title.Text = panel.title
		p.X.Label.Text = panel.xLabel
		p.Y.Label.Text = panel.yLabel

		if len(panel.pts) > 0 {
			if panel.scatter {
				s, err := plotter.NewScatter(panel.pts)
				if err != nil {
					return fmt.Errorf("failed to create %q panel: %w", panel.title, err)
				}
				s.GlyphStyle.Color = seriesColor
				s.GlyphStyle.Radius = vg.Points(2)
				p.Add(s)
			} else {
				l, err := plotter.NewLine(panel.pts)
				if err != nil {
					return fmt.Errorf("failed to create %q panel: %w", panel.title, err)
				}
				l.Color = seriesColor
				p.Add(l)
			}
		}
		plots[i/2] = append(plots[i/2], p)
	}

	return saveGrid(plots, chartWidth, 3*chartRowHeight, filename)
}

func indexes(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = float64(i)
	}
	return res
}

func indexed(values []float64) plotter.XYs {
	return paired(indexes(len(values)), values)
}

// paired zips xs and ys, dropping the tail of the longer one.
func paired(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func saveGrid(plots [][]*plot.Plot, width, height vg.Length, filename string) error {
	cols := 0
	for _, row := range plots {
		cols = max(cols, len(row))
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j, p := range plots[i] {
			p.Draw(canvases[i][j])
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create chart file %s: %w", filename, err)
	}
	defer file.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write chart to %s: %w", filename, err)
	}
	return file.Close()
}
