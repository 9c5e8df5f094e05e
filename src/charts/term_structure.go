package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

// TermStructure plots call and put implied volatility across expiries for one strike.
func (r *Renderer) TermStructure(records []eventmodels.OptionRecord, strike float64, title string) (io.WriterTo, error) {
	var data []eventmodels.OptionRecord
	for _, rec := range records {
		if rec.HasIV() {
			data = append(data, rec)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("Renderer.TermStructure: strike %.2f: %w", strike, eventmodels.ErrNoValidIVData)
	}

	sort.SliceStable(data, func(i, j int) bool {
		return data[i].Expiry.Before(data[j].Expiry)
	})

	if title == "" {
		title = fmt.Sprintf("IV Term Structure - Strike %.2f", strike)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Expiry Date"
	p.Y.Label.Text = "Implied Volatility (%)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	callXYs := make(plotter.XYs, len(data))
	putXYs := make(plotter.XYs, len(data))
	for i, rec := range data {
		x := float64(rec.Expiry.Unix())
		callXYs[i] = plotter.XY{X: x, Y: rec.Leg(eventmodels.Call).ImpliedVolatility}
		putXYs[i] = plotter.XY{X: x, Y: rec.Leg(eventmodels.Put).ImpliedVolatility}
	}

	callLine, callPoints, err := plotter.NewLinePoints(callXYs)
	if err != nil {
		return nil, fmt.Errorf("Renderer.TermStructure: call series: %w", err)
	}
	styleSeries(callLine, callPoints, callColor)

	putLine, putPoints, err := plotter.NewLinePoints(putXYs)
	if err != nil {
		return nil, fmt.Errorf("Renderer.TermStructure: put series: %w", err)
	}
	styleSeries(putLine, putPoints, putColor)

	p.Add(callLine, callPoints, putLine, putPoints)
	p.Legend.Add("Call Term Structure", callLine, callPoints)
	p.Legend.Add("Put Term Structure", putLine, putPoints)
	p.Y.Min = 0

	return p.WriterTo(r.Width, r.Height, "png")
}

func styleSeries(line *plotter.Line, points *plotter.Scatter, c color.Color) {
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(2)
	points.GlyphStyle.Color = c
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)
}
