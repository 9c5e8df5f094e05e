package charts

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultWidth  = 16 * vg.Inch
	DefaultHeight = 9 * vg.Inch
)

var (
	callColor       = color.RGBA{B: 255, A: 255}
	putColor        = color.RGBA{R: 255, A: 255}
	underlyingColor = color.RGBA{G: 128, A: 178}
	callBarColor    = color.NRGBA{B: 255, A: 178}
	putBarColor     = color.NRGBA{R: 255, A: 178}
	callChangeColor = color.NRGBA{R: 173, G: 216, B: 230, A: 178}
	putChangeColor  = color.NRGBA{R: 240, G: 128, B: 128, A: 178}
	zeroLineColor   = color.NRGBA{A: 128}
)

// Renderer draws option chain charts as PNG images of a fixed figure size.
type Renderer struct {
	Width     vg.Length
	Height    vg.Length
	OutputDir string
}

func NewRenderer(outputDir string) *Renderer {
	return &Renderer{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		OutputDir: outputDir,
	}
}

// Save writes the chart to OutputDir/filename and returns the path written.
func (r *Renderer) Save(filename string, chart io.WriterTo) (string, error) {
	outDir := r.OutputDir
	if outDir == "" {
		outDir = "."
	}

	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
			return "", fmt.Errorf("Renderer.Save: failed to create directory: %w", err)
		}
	}

	outFilePath := filepath.Join(outDir, filename)

	file, err := os.Create(outFilePath)
	if err != nil {
		return "", fmt.Errorf("Renderer.Save: failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := chart.WriteTo(file); err != nil {
		return "", fmt.Errorf("Renderer.Save: failed to write chart: %w", err)
	}

	log.Infof("saved chart to %s", outFilePath)

	return outFilePath, nil
}

func referenceLine(x1, y1, x2, y2 float64, c color.Color, dashed bool) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: x1, Y: y1}, {X: x2, Y: y2}})
	if err != nil {
		return nil, fmt.Errorf("referenceLine: %w", err)
	}

	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.5)
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}

	return line, nil
}
