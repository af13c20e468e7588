package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"PriceLabeler/internal/model"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	DefaultTitle = "Price Data with Long and Short Positions"
	DefaultPath  = "output/positions.png"
)

var (
	closeColor = color.NRGBA{R: 128, G: 128, B: 128, A: 178}
	longColor  = color.NRGBA{G: 128, A: 255}
	shortColor = color.NRGBA{R: 255, A: 255}
)

// Renderer draws a labeled price series.
type Renderer interface {
	Render(series *model.PriceSeries) error
}

// PlotRenderer renders with gonum/plot to an image file. The format follows
// the file extension (png, svg, pdf, ...).
type PlotRenderer struct {
	Path   string
	Title  string
	Width  vg.Length
	Height vg.Length
}

// NewPlotRenderer creates a renderer writing a 14x7 inch chart to path.
func NewPlotRenderer(path string) *PlotRenderer {
	if path == "" {
		path = DefaultPath
	}
	return &PlotRenderer{
		Path:   path,
		Title:  DefaultTitle,
		Width:  14 * vg.Inch,
		Height: 7 * vg.Inch,
	}
}

// Build assembles the plot without writing it. A series with no drawable
// close yields an empty frame with title, axes and grid.
func (r *PlotRenderer) Build(series *model.PriceSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = r.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Price"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	pts := closeXYs(series, nil)
	if len(pts) == 0 {
		p.X.Tick.Marker = plot.DefaultTicks{}
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		return p, nil
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("close line: %w", err)
	}
	line.LineStyle.Color = closeColor
	line.LineStyle.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("Close", line)

	markers := []struct {
		label model.Label
		color color.Color
		shape draw.GlyphDrawer
	}{
		{model.LabelLong, longColor, upTriangle{}},
		{model.LabelShort, shortColor, downTriangle{}},
	}
	for _, m := range markers {
		idx := series.Indices(m.label)
		if len(idx) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(closeXYs(series, idx))
		if err != nil {
			return nil, fmt.Errorf("%s markers: %w", m.label, err)
		}
		sc.GlyphStyle.Color = m.color
		sc.GlyphStyle.Shape = m.shape
		sc.GlyphStyle.Radius = vg.Points(5)
		p.Add(sc)
		p.Legend.Add(string(m.label), sc)
	}
	return p, nil
}

// Render builds the plot and saves it to r.Path.
func (r *PlotRenderer) Render(series *model.PriceSeries) error {
	p, err := r.Build(series)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	if err := p.Save(r.Width, r.Height, r.Path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	log.Info().Str("component", "chart").Str("path", r.Path).Msg("chart written")
	return nil
}

// closeXYs returns (unix seconds, close) points; idx nil means every bar.
// NaN closes are dropped since plotter rejects them.
func closeXYs(series *model.PriceSeries, idx []int) plotter.XYs {
	if idx == nil {
		idx = make([]int, series.Len())
		for i := range idx {
			idx[i] = i
		}
	}
	pts := make(plotter.XYs, 0, len(idx))
	for _, i := range idx {
		b := series.Bars[i]
		if math.IsNaN(b.Close) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(b.Time.Unix()), Y: b.Close})
	}
	return pts
}
