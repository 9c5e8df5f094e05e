package charts

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

// VolatilitySkew plots call and put implied volatility against strike for the records of
// a single expiry. Rows without a positive IV on both sides are skipped.
func (r *Renderer) VolatilitySkew(records []eventmodels.OptionRecord, underlyingPrice float64, title string) (io.WriterTo, error) {
	var data []eventmodels.OptionRecord
	for _, rec := range records {
		if rec.HasIV() {
			data = append(data, rec)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("Renderer.VolatilitySkew: %w", eventmodels.ErrNoValidIVData)
	}

	sort.SliceStable(data, func(i, j int) bool {
		return data[i].Strike < data[j].Strike
	})

	if title == "" {
		title = "Implied Volatility Skew"
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Strike Price"
	p.Y.Label.Text = "Implied Volatility (%)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	callXYs := make(plotter.XYs, len(data))
	putXYs := make(plotter.XYs, len(data))
	for i, rec := range data {
		callXYs[i] = plotter.XY{X: rec.Strike, Y: rec.Leg(eventmodels.Call).ImpliedVolatility}
		putXYs[i] = plotter.XY{X: rec.Strike, Y: rec.Leg(eventmodels.Put).ImpliedVolatility}
	}

	callLine, err := plotter.NewLine(callXYs)
	if err != nil {
		return nil, fmt.Errorf("Renderer.VolatilitySkew: call line: %w", err)
	}
	callLine.LineStyle.Color = callColor
	callLine.LineStyle.Width = vg.Points(2)

	putLine, err := plotter.NewLine(putXYs)
	if err != nil {
		return nil, fmt.Errorf("Renderer.VolatilitySkew: put line: %w", err)
	}
	putLine.LineStyle.Color = putColor
	putLine.LineStyle.Width = vg.Points(2)

	p.Add(callLine, putLine)
	p.Legend.Add("Call IV", callLine)
	p.Legend.Add("Put IV", putLine)
	p.Y.Min = 0

	if underlyingPrice > 0 {
		ref, err := referenceLine(underlyingPrice, p.Y.Min, underlyingPrice, p.Y.Max, underlyingColor, true)
		if err != nil {
			return nil, fmt.Errorf("Renderer.VolatilitySkew: %w", err)
		}

		p.Add(ref)
		p.Legend.Add(fmt.Sprintf("Underlying: %.2f", underlyingPrice), ref)
	}

	return p.WriterTo(r.Width, r.Height, "png")
}
