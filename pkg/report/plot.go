package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// DefaultFormats are the figure formats saved when none are given.
var DefaultFormats = []string{"png", "pdf"}

// Figure names a figure and how it is saved. Each format is written to
// <Dir>/<ext>/<Name>.<ext>.
type Figure struct {
	Dir       string
	Name      string
	Title     string
	XLabel    string
	YLabel    string
	Formats   []string
	Overwrite bool
	Width     vg.Length // default 12in
	Height    vg.Length // default 8in
}

func (f Figure) formats() []string {
	if len(f.Formats) == 0 {
		return DefaultFormats
	}
	return f.Formats
}

// Paths returns the file written for each format.
func (f Figure) Paths() []string {
	var out []string
	for _, ext := range f.formats() {
		out = append(out, filepath.Join(f.Dir, ext, f.Name+"."+ext))
	}
	return out
}

// Exists reports whether every format of f is already on disk.
func (f Figure) Exists() bool {
	for _, p := range f.Paths() {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// skip reports whether drawing f can be avoided.
func (f Figure) skip() bool {
	return !f.Overwrite && f.Exists()
}

func (f Figure) newPlot() *plot.Plot {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.Y.Tick.Marker = humanTicks{}
	return p
}

func (f Figure) save(p *plot.Plot) error {
	w, h := f.Width, f.Height
	if w == 0 {
		w = 12 * vg.Inch
	}
	if h == 0 {
		h = 8 * vg.Inch
	}
	for _, path := range f.Paths() {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Wrap(err, "report: create figure folder")
		}
		if err := p.Save(w, h, path); err != nil {
			return errors.Wrapf(err, "report: save %s", path)
		}
	}
	return nil
}

// CatData is a grouped bar chart: Values[g][c] is the height of group g
// (hue) in category c (x).
type CatData struct {
	Categories []string
	Groups     []string
	Values     [][]float64

	// ValueFormat formats the label drawn on top of each bar, e.g. "%.2f".
	// Empty draws no labels.
	ValueFormat string
}

// CatPlot draws one bar per group inside every category. It returns false
// when the figure was skipped because it already exists.
func CatPlot(f Figure, data CatData) (bool, error) {
	if len(data.Categories) == 0 || len(data.Groups) == 0 {
		return false, errors.New("report: catplot needs categories and groups")
	}
	if len(data.Values) != len(data.Groups) {
		return false, errors.Errorf("report: catplot has %d groups but %d value rows", len(data.Groups), len(data.Values))
	}
	if f.skip() {
		return false, nil
	}

	p := f.newPlot()
	n := len(data.Groups)
	w := vg.Points(math.Max(4, 60/float64(n)))
	for g, name := range data.Groups {
		if len(data.Values[g]) != len(data.Categories) {
			return false, errors.Errorf("report: group %q has %d values, want %d", name, len(data.Values[g]), len(data.Categories))
		}
		bars, err := plotter.NewBarChart(plotter.Values(data.Values[g]), w)
		if err != nil {
			return false, errors.Wrapf(err, "report: group %q", name)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(g)
		bars.Offset = vg.Length(float64(g)-float64(n-1)/2) * w
		p.Add(bars)
		p.Legend.Add(name, bars)

		if data.ValueFormat != "" {
			labels, err := valueLabels(data.Values[g], data.ValueFormat)
			if err != nil {
				return false, errors.Wrapf(err, "report: group %q labels", name)
			}
			labels.Offset = vg.Point{X: bars.Offset, Y: vg.Points(2)}
			p.Add(labels)
		}
	}
	p.Legend.Top = true
	p.NominalX(data.Categories...)

	if err := f.save(p); err != nil {
		return false, err
	}
	return true, nil
}

// valueLabels places one centred label above each value, at x = index.
func valueLabels(values []float64, format string) (*plotter.Labels, error) {
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(values)),
		Labels: make([]string, len(values)),
	}
	for i, v := range values {
		xyl.XYs[i] = plotter.XY{X: float64(i), Y: v}
		xyl.Labels[i] = fmt.Sprintf(format, v)
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YBottom
	}
	return labels, nil
}

// BarPlot draws one bar per label.
func BarPlot(f Figure, labels []string, values []float64) (bool, error) {
	if len(labels) == 0 || len(labels) != len(values) {
		return false, errors.Errorf("report: barplot has %d labels and %d values", len(labels), len(values))
	}
	if f.skip() {
		return false, nil
	}

	p := f.newPlot()
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(math.Max(2, 400/float64(len(values)))))
	if err != nil {
		return false, errors.Wrap(err, "report: barplot")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	if err := f.save(p); err != nil {
		return false, err
	}
	return true, nil
}

// Histogram draws the distribution of values. A bins value of 0 picks
// Sturges' rule.
func Histogram(f Figure, values []float64, bins int) (bool, error) {
	if len(values) == 0 {
		return false, errors.New("report: histogram of no values")
	}
	if f.skip() {
		return false, nil
	}
	if bins <= 0 {
		bins = SturgesBins(len(values))
	}

	p := f.newPlot()
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return false, errors.Wrap(err, "report: histogram")
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)

	if err := f.save(p); err != nil {
		return false, err
	}
	return true, nil
}

// SturgesBins returns ceil(log2(n)) + 1.
func SturgesBins(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// humanTicks labels large axis values as 1.5K, 2M and so on.
type humanTicks struct{}

func (humanTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" && math.Abs(ticks[i].Value) >= 1000 {
			ticks[i].Label = HumanFormat(ticks[i].Value)
		}
	}
	return ticks
}

// HumanFormat abbreviates x with K, M, B or T.
func HumanFormat(x float64) string {
	suffixes := []string{"", "K", "M", "B", "T"}
	mag := 0
	for math.Abs(x) >= 1000 && mag < len(suffixes)-1 {
		x /= 1000
		mag++
	}
	s := strconv.FormatFloat(x, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + suffixes[mag]
}
