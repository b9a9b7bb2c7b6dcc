package report

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot/vg"

	"github.com/ha1tch/nmtlab/pkg/vocab"
)

// ErrMetricNotFound is returned when no row carries the requested metric.
var ErrMetricNotFound = errors.New("report: metric not found")

// MetricLabel turns a metric id into an axis label:
// "beam1__sacrebleu_bleu_score" becomes "Sacrebleu Bleu (beam=1)".
func MetricLabel(id string) (string, error) {
	parts := strings.Split(id, "__")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.Errorf("report: metric id %q is not <beam>__<metric>", id)
	}
	beam := strings.TrimPrefix(parts[0], "beam")
	if beam == parts[0] {
		return "", errors.Errorf("report: metric id %q has no beam prefix", id)
	}
	if _, err := strconv.Atoi(beam); err != nil {
		return "", errors.Errorf("report: metric id %q has a bad beam width", id)
	}

	name := strings.ReplaceAll(parts[1], "_", " ")
	name = strings.TrimSpace(strings.ReplaceAll(name, "score", ""))
	name = cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
	return name + " (beam=" + beam + ")", nil
}

// RunAlias shortens a run name for axis labels by breaking it at underscores.
func RunAlias(run string) string {
	return strings.ReplaceAll(run, "_", "\n")
}

// MetricData arranges the rows of one metric for CatPlot: runs along x,
// evaluation datasets as groups. Repeated (run, eval) values are averaged.
func MetricData(rows []Row, metric string) (CatData, error) {
	var runs, evals []string
	runIdx := make(map[string]int)
	evalIdx := make(map[string]int)
	type cell struct{ sum, n float64 }
	cells := make(map[[2]int]*cell)

	for _, r := range rows {
		if r.Metric != metric {
			continue
		}
		ri, ok := runIdx[r.RunName]
		if !ok {
			ri = len(runs)
			runIdx[r.RunName] = ri
			runs = append(runs, r.RunName)
		}
		ei, ok := evalIdx[r.EvalDataset]
		if !ok {
			ei = len(evals)
			evalIdx[r.EvalDataset] = ei
			evals = append(evals, r.EvalDataset)
		}
		c := cells[[2]int{ei, ri}]
		if c == nil {
			c = &cell{}
			cells[[2]int{ei, ri}] = c
		}
		c.sum += r.Value
		c.n++
	}
	if len(runs) == 0 {
		return CatData{}, errors.Wrapf(ErrMetricNotFound, "%q", metric)
	}

	data := CatData{Groups: evals, Values: make([][]float64, len(evals)), ValueFormat: "%.2f"}
	for _, run := range runs {
		data.Categories = append(data.Categories, RunAlias(run))
	}
	for ei := range evals {
		data.Values[ei] = make([]float64, len(runs))
		for ri := range runs {
			if c := cells[[2]int{ei, ri}]; c != nil {
				data.Values[ei][ri] = c.sum / c.n
			}
		}
	}
	return data, nil
}

// PlotMetrics draws a model comparison of one metric into dir. The figure
// is named report__<metric> and always overwritten.
func PlotMetrics(dir string, rows []Row, metric string, formats []string) (Figure, error) {
	ylabel, err := MetricLabel(metric)
	if err != nil {
		return Figure{}, err
	}
	data, err := MetricData(rows, metric)
	if err != nil {
		return Figure{}, err
	}

	f := Figure{
		Dir:       dir,
		Name:      "report__" + metric,
		Title:     "Model comparison",
		XLabel:    "Models",
		YLabel:    ylabel,
		Formats:   formats,
		Overwrite: true,
		Width:     8 * vg.Inch,
		Height:    4 * vg.Inch,
	}
	_, err = CatPlot(f, data)
	return f, err
}

// TopTokens returns the n most frequent non-special tokens of v and their
// frequencies, most frequent first. Tokens whose frequency is not a number
// are left out.
func TopTokens(v *vocab.Vocabulary, n int) ([]string, []float64) {
	sp := v.Specials()
	type tf struct {
		tok  string
		freq float64
	}
	var all []tf
	for _, tok := range v.Tokens() {
		switch tok {
		case sp.Unk, sp.Sos, sp.Eos, sp.Pad:
			continue
		}
		f, err := strconv.ParseFloat(v.Freq(tok), 64)
		if err != nil {
			continue
		}
		all = append(all, tf{tok, f})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].freq > all[j].freq })
	if n > 0 && len(all) > n {
		all = all[:n]
	}

	toks := make([]string, len(all))
	freqs := make([]float64, len(all))
	for i, e := range all {
		toks[i], freqs[i] = e.tok, e.freq
	}
	return toks, freqs
}

// VocabDistribution draws the top-n token frequencies and the token
// length histogram of v into dir, as vocab_distr_<lang>_top<n> and
// vocab_lengths_<lang>, without the language part when v has none.
// It returns the figures that were drawn; existing ones are kept unless
// overwrite is set.
func VocabDistribution(dir string, v *vocab.Vocabulary, n int, formats []string, overwrite bool) ([]Figure, error) {
	toks, freqs := TopTokens(v, n)
	if len(toks) == 0 {
		return nil, errors.New("report: vocabulary has no token frequencies")
	}
	lang := ""
	if v.Lang() != "" {
		lang = "_" + v.Lang()
	}

	var drawn []Figure
	top := Figure{
		Dir:       dir,
		Name:      "vocab_distr" + lang + "_top" + strconv.Itoa(n),
		Title:     "Vocabulary distribution (" + v.Lang() + ")",
		XLabel:    "Tokens",
		YLabel:    "Frequency",
		Formats:   formats,
		Overwrite: overwrite,
	}
	ok, err := BarPlot(top, toks, freqs)
	if err != nil {
		return nil, err
	}
	if ok {
		drawn = append(drawn, top)
	}

	var lengths []float64
	sp := v.Specials()
	for _, tok := range v.Tokens() {
		switch tok {
		case sp.Unk, sp.Sos, sp.Eos, sp.Pad:
			continue
		}
		lengths = append(lengths, float64(utf8.RuneCountInString(tok)))
	}
	hist := Figure{
		Dir:       dir,
		Name:      "vocab_lengths" + lang,
		Title:     "Token lengths (" + v.Lang() + ")",
		XLabel:    "Characters",
		YLabel:    "Tokens",
		Formats:   formats,
		Overwrite: overwrite,
	}
	ok, err = Histogram(hist, lengths, 0)
	if err != nil {
		return drawn, err
	}
	if ok {
		drawn = append(drawn, hist)
	}
	return drawn, nil
}
