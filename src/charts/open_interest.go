package charts

import (
	"fmt"
	"image/color"
	"io"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

// OpenInterest draws two stacked panels for the records of one expiry: open interest
// (calls up, puts down) and change in open interest. Strikes are laid out as categories.
func (r *Renderer) OpenInterest(records []eventmodels.OptionRecord, underlyingPrice float64, title string) (io.WriterTo, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("Renderer.OpenInterest: %w", eventmodels.ErrEmptyOptionChain)
	}

	data := make([]eventmodels.OptionRecord, len(records))
	copy(data, records)
	sort.SliceStable(data, func(i, j int) bool {
		return data[i].Strike < data[j].Strike
	})

	if title == "" {
		title = "Open Interest Distribution"
	}

	n := len(data)
	labels := make([]string, n)
	strikes := make([]float64, n)
	callOI := make(plotter.Values, n)
	putOI := make(plotter.Values, n)
	callChange := make(plotter.Values, n)
	putChange := make(plotter.Values, n)

	for i, rec := range data {
		labels[i] = fmt.Sprintf("%.0f", rec.Strike)
		strikes[i] = rec.Strike
		call, put := rec.Leg(eventmodels.Call), rec.Leg(eventmodels.Put)
		callOI[i] = float64(call.OpenInterest)
		putOI[i] = -float64(put.OpenInterest)
		callChange[i] = float64(call.ChangeInOpenInterest)
		putChange[i] = -float64(put.ChangeInOpenInterest)
	}

	barWidth := r.Width * 0.8 / vg.Length(n)
	if barWidth < vg.Points(1) {
		barWidth = vg.Points(1)
	}

	oiPlot, err := barPanel(title, "Open Interest", callOI, putOI, "Call OI", "Put OI", callBarColor, putBarColor, barWidth)
	if err != nil {
		return nil, fmt.Errorf("Renderer.OpenInterest: %w", err)
	}

	changePlot, err := barPanel("Change in Open Interest", "Change in OI", callChange, putChange, "Call ΔOI", "Put ΔOI", callChangeColor, putChangeColor, barWidth)
	if err != nil {
		return nil, fmt.Errorf("Renderer.OpenInterest: %w", err)
	}
	changePlot.X.Label.Text = "Strike Price"

	oiPlot.NominalX(labels...)
	changePlot.NominalX(labels...)

	zero, err := referenceLine(-0.5, 0, float64(n)-0.5, 0, zeroLineColor, false)
	if err != nil {
		return nil, fmt.Errorf("Renderer.OpenInterest: %w", err)
	}
	changePlot.Add(zero)

	if underlyingPrice > 0 {
		pos := categoryPosition(strikes, underlyingPrice)
		for _, p := range []*plot.Plot{oiPlot, changePlot} {
			ref, err := referenceLine(pos, p.Y.Min, pos, p.Y.Max, underlyingColor, true)
			if err != nil {
				return nil, fmt.Errorf("Renderer.OpenInterest: %w", err)
			}

			p.Add(ref)
		}
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Points(16),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}

	canvases := plot.Align([][]*plot.Plot{{oiPlot}, {changePlot}}, tiles, dc)
	oiPlot.Draw(canvases[0][0])
	changePlot.Draw(canvases[1][0])

	return vgimg.PngCanvas{Canvas: img}, nil
}

func barPanel(title, yLabel string, up, down plotter.Values, upLabel, downLabel string, upColor, downColor color.Color, width vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	upBars, err := plotter.NewBarChart(up, width)
	if err != nil {
		return nil, fmt.Errorf("barPanel: %s: %w", upLabel, err)
	}
	upBars.Color = upColor
	upBars.LineStyle.Width = 0

	downBars, err := plotter.NewBarChart(down, width)
	if err != nil {
		return nil, fmt.Errorf("barPanel: %s: %w", downLabel, err)
	}
	downBars.Color = downColor
	downBars.LineStyle.Width = 0

	p.Add(upBars, downBars)
	p.Legend.Add(upLabel, upBars)
	p.Legend.Add(downLabel, downBars)

	return p, nil
}

// categoryPosition maps a price onto the category axis by interpolating between the
// neighbouring strikes. strikes must be sorted ascending.
func categoryPosition(strikes []float64, price float64) float64 {
	if len(strikes) == 0 {
		return 0
	}

	if price <= strikes[0] {
		return 0
	}

	last := len(strikes) - 1
	if price >= strikes[last] {
		return float64(last)
	}

	i := sort.SearchFloat64s(strikes, price)
	lo, hi := strikes[i-1], strikes[i]
	if hi == lo {
		return float64(i)
	}

	return float64(i-1) + (price-lo)/(hi-lo)
}
