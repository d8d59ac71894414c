package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/pkg/browser"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no data to plot")

const (
	currentTitle  = "Temperatures of Different Cities"
	currentXLabel = "Cities"
	currentYLabel = "Temperatures (°C)"

	forecastTitle  = "Temperature Forecast for the next five days."
	forecastXLabel = "Dates"
	forecastYLabel = "Temperature (°C)"

	titleFontSize = 24
	labelFontSize = 14

	width  = 12 * vg.Inch
	height = 7 * vg.Inch
)

var (
	barWidth = vg.Points(12)

	colorCurrent = color.RGBA{R: 0xee, G: 0x82, B: 0xee, A: 0xff} // violet
	colorMin     = color.RGBA{R: 0xff, A: 0xff}
	colorMax     = color.RGBA{B: 0xff, A: 0xff}
)

// BarGroup is one city on the temperature bar chart.
type BarGroup struct {
	Label   string
	Current float64
	Min     float64
	Max     float64
}

// Point is one sample of a forecast line.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is one city on the forecast line chart.
type Series struct {
	Label  string
	Points []Point
}

// TemperatureBars draws current, minimum and maximum temperature side by side for every city.
func TemperatureBars(groups []BarGroup) (*plot.Plot, error) {
	if len(groups) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	darkTheme(p)
	p.Title.Text = currentTitle
	p.X.Label.Text = currentXLabel
	p.Y.Label.Text = currentYLabel

	names := make([]string, len(groups))
	current := make(plotter.Values, len(groups))
	minimum := make(plotter.Values, len(groups))
	maximum := make(plotter.Values, len(groups))
	for i, g := range groups {
		names[i] = g.Label
		current[i] = g.Current
		minimum[i] = g.Min
		maximum[i] = g.Max
	}

	sets := []struct {
		label  string
		values plotter.Values
		color  color.Color
	}{
		{"Current Temperature", current, colorCurrent},
		{"Minimum Temperature", minimum, colorMin},
		{"Maximum Temperature", maximum, colorMax},
	}
	for i, s := range sets {
		bars, err := plotter.NewBarChart(s.values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("chart: %s: %w", s.label, err)
		}
		bars.Color = s.color
		bars.LineStyle.Width = 0
		// middle set sits on the tick
		bars.Offset = vg.Length(i-1) * barWidth
		p.Add(bars)
		p.Legend.Add(s.label, bars)
	}

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.Legend.Top = true

	return p, nil
}

// ForecastLines draws one temperature line per city against time.
// Series without points are skipped.
func ForecastLines(series []Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = forecastTitle
	p.Title.TextStyle.Font.Size = vg.Points(titleFontSize)
	p.X.Label.Text = forecastXLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(labelFontSize)
	p.Y.Label.Text = forecastYLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(labelFontSize)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = text.XRight
	p.Add(plotter.NewGrid())

	drawn := 0
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i].X = float64(pt.Time.Unix())
			xys[i].Y = pt.Value
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: %s: %w", s.Label, err)
		}
		line.Color = plotutil.Color(drawn)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Label, line)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	p.Legend.Top = true

	return p, nil
}

// Save renders p to path; the format follows the file extension.
func Save(p *plot.Plot, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}

// WritePNG renders p as PNG into w.
func WritePNG(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write png: %w", err)
	}
	return nil
}

// Open shows the rendered file in the desktop's default viewer.
func Open(path string) error {
	return browser.OpenFile(path)
}

func darkTheme(p *plot.Plot) {
	p.BackgroundColor = color.Black
	p.Title.TextStyle.Color = color.White
	p.Legend.TextStyle.Color = color.White
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = color.White
		ax.Label.TextStyle.Color = color.White
		ax.Tick.Label.Color = color.White
		ax.Tick.LineStyle.Color = color.White
	}
}
