// Package chart draws the filtered vehicle view with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Kind selects the chart type.
type Kind string

const (
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
	KindHist    Kind = "hist"
)

// ParseKind validates a chart kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBar, KindScatter, KindHist:
		return k, nil
	case "histogram":
		return KindHist, nil
	default:
		return "", fmt.Errorf("unsupported chart kind %q (use bar|scatter|hist)", s)
	}
}

// Options configures a chart.
type Options struct {
	Kind Kind
	// LabelColumn names the bars of a bar chart.
	LabelColumn string
	// XColumn is the horizontal axis of a scatter chart.
	XColumn string
	// ValueColumn is the plotted measure, MSRP unless set.
	ValueColumn string
	Bins        int
	WidthIn     float64
	HeightIn    float64
	Title       string
}

// DefaultOptions returns a 20-bin, 8x5 inch chart of MSRP.
func DefaultOptions() Options {
	return Options{
		Kind:        KindBar,
		LabelColumn: dataset.ColModel,
		XColumn:     dataset.ColHorsepower,
		ValueColumn: dataset.ColMSRP,
		Bins:        20,
		WidthIn:     8,
		HeightIn:    5,
	}
}

var (
	barColor     = color.RGBA{R: 50, G: 90, B: 200, A: 255}
	scatterColor = color.RGBA{R: 50, G: 50, B: 255, A: 255}
)

var saveFormats = map[string]bool{".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true, ".eps": true, ".tif": true, ".tiff": true}

// Build constructs the plot without saving it.
func Build(records []dataset.Record, opt Options) (*plot.Plot, error) {
	opt = withDefaults(opt)
	if len(records) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	switch opt.Kind {
	case KindBar:
		if err := addBars(p, records, opt); err != nil {
			return nil, err
		}
	case KindScatter:
		if err := addScatter(p, records, opt); err != nil {
			return nil, err
		}
	case KindHist:
		if err := addHist(p, records, opt); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", opt.Kind)
	}
	if opt.Title != "" {
		p.Title.Text = opt.Title
	}
	return p, nil
}

// Render builds the chart and saves it; the image format follows the file
// extension.
func Render(records []dataset.Record, opt Options, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !saveFormats[ext] {
		return fmt.Errorf("unsupported image format %q (use .png, .svg, .pdf or .jpg)", ext)
	}
	opt = withDefaults(opt)
	p, err := Build(records, opt)
	if err != nil {
		return err
	}
	if err := p.Save(vg.Length(opt.WidthIn)*vg.Inch, vg.Length(opt.HeightIn)*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

func withDefaults(opt Options) Options {
	d := DefaultOptions()
	if opt.Kind == "" {
		opt.Kind = d.Kind
	}
	if opt.LabelColumn == "" {
		opt.LabelColumn = d.LabelColumn
	}
	if opt.XColumn == "" {
		opt.XColumn = d.XColumn
	}
	if opt.ValueColumn == "" {
		opt.ValueColumn = d.ValueColumn
	}
	if opt.Bins <= 0 {
		opt.Bins = d.Bins
	}
	if opt.WidthIn <= 0 {
		opt.WidthIn = d.WidthIn
	}
	if opt.HeightIn <= 0 {
		opt.HeightIn = d.HeightIn
	}
	return opt
}

func addBars(p *plot.Plot, records []dataset.Record, opt Options) error {
	var vals plotter.Values
	var labels []string
	for _, r := range records {
		v, ok := r.Number(opt.ValueColumn)
		if !ok {
			continue
		}
		label, ok := r.Value(opt.LabelColumn)
		if !ok {
			label = fmt.Sprintf("#%d", r.Index+1)
		}
		vals = append(vals, v)
		labels = append(labels, label)
	}
	if len(vals) == 0 {
		return ErrNoData
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(barWidth(len(vals), opt.WidthIn)))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Title.Text = fmt.Sprintf("%s by %s", opt.ValueColumn, opt.LabelColumn)
	p.Y.Label.Text = opt.ValueColumn
	return nil
}

// barWidth spreads bars over the plot width, capped so a handful of bars do
// not become blocks.
func barWidth(n int, widthIn float64) float64 {
	w := widthIn * 72 * 0.8 / float64(n)
	if w > 40 {
		w = 40
	}
	if w < 1 {
		w = 1
	}
	return w
}

func addScatter(p *plot.Plot, records []dataset.Record, opt Options) error {
	pts := make(plotter.XYs, 0, len(records))
	for _, r := range records {
		x, ok := r.Number(opt.XColumn)
		if !ok {
			continue
		}
		y, ok := r.Number(opt.ValueColumn)
		if !ok {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return fmt.Errorf("%w: no rows with numeric %s and %s", ErrNoData, opt.XColumn, opt.ValueColumn)
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter chart: %w", err)
	}
	s.Color = scatterColor
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(3)
	p.Add(s)
	p.Title.Text = fmt.Sprintf("%s vs %s", opt.ValueColumn, opt.XColumn)
	p.X.Label.Text = opt.XColumn
	p.Y.Label.Text = opt.ValueColumn
	return nil
}

func addHist(p *plot.Plot, records []dataset.Record, opt Options) error {
	var vals plotter.Values
	for _, r := range records {
		if v, ok := r.Number(opt.ValueColumn); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return ErrNoData
	}
	p.Title.Text = fmt.Sprintf("Distribution of %s", opt.ValueColumn)
	p.X.Label.Text = opt.ValueColumn
	p.Y.Label.Text = "Count"

	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		// a single distinct value has no bin width; draw one bar
		bars, err := plotter.NewBarChart(plotter.Values{float64(len(vals))}, vg.Points(40))
		if err != nil {
			return fmt.Errorf("histogram: %w", err)
		}
		bars.Color = barColor
		p.Add(bars)
		p.NominalX(strconv.FormatFloat(lo, 'f', -1, 64))
		return nil
	}
	h, err := plotter.NewHist(vals, opt.Bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	h.FillColor = barColor
	p.Add(h)
	return nil
}
