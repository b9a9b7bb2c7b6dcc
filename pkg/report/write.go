package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"train_dataset", "eval_dataset", "run_name", "metric", "value"})
	for _, r := range rows {
		cw.Write([]string{r.TrainDataset, r.EvalDataset, r.RunName, r.Metric, formatFloat(r.Value)})
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: write csv")
}

// WriteSummaryCSV writes summaries with a header line.
func WriteSummaryCSV(w io.Writer, summary []Summary) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"train_dataset", "eval_dataset", "metric", "runs", "mean", "std", "min", "max", "best_run"})
	for _, s := range summary {
		cw.Write([]string{
			s.TrainDataset, s.EvalDataset, s.Metric, strconv.Itoa(s.Runs),
			formatFloat(s.Mean), formatFloat(s.Std), formatFloat(s.Min), formatFloat(s.Max), s.Best,
		})
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: write summary csv")
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "report: marshal")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteFile creates path and writes to it with fn.
func WriteFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "report: create")
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// HTMLData is the input of WriteHTML. Figures are paths relative to the
// HTML file.
type HTMLData struct {
	Report
	Figures []string
}

// WriteHTML writes a standalone page with the summary table and figures.
func WriteHTML(w io.Writer, data HTMLData) error {
	tmpl := template.Must(template.New("report").Funcs(template.FuncMap{
		"num":   func(f float64) string { return fmt.Sprintf("%.2f", f) },
		"label": label,
	}).Parse(htmlTemplate))
	return tmpl.Execute(w, data)
}

// label is MetricLabel for templates; ids it cannot parse are shown as is.
func label(id string) string {
	l, err := MetricLabel(id)
	if err != nil {
		return strings.ReplaceAll(id, "_", " ")
	}
	return l
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Translation Report</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #0d1117;
            color: #c9d1d9;
            margin: 0;
            padding: 2rem;
        }
        .container { max-width: 1400px; margin: 0 auto; }
        .meta { color: #8b949e; font-size: 0.9rem; }
        table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
        th, td { border: 1px solid #30363d; padding: 0.4rem 0.8rem; text-align: left; }
        th { background: #161b22; }
        td.num { text-align: right; font-variant-numeric: tabular-nums; }
        img { max-width: 100%; background: #fff; margin: 1rem 0; }
    </style>
</head>
<body>
<div class="container">
    <h1>Translation Report</h1>
    <p class="meta">Generated {{.Generated.Format "2006-01-02 15:04:05 UTC"}}, {{len .Scores}} scores</p>

    <h2>Summary</h2>
    <table>
        <tr><th>Train</th><th>Eval</th><th>Metric</th><th>Runs</th><th>Mean</th><th>Std</th><th>Best run</th></tr>
        {{range .Summary}}
        <tr>
            <td>{{.TrainDataset}}</td><td>{{.EvalDataset}}</td><td>{{label .Metric}}</td>
            <td class="num">{{.Runs}}</td><td class="num">{{num .Mean}}</td><td class="num">{{num .Std}}</td>
            <td>{{.Best}}</td>
        </tr>
        {{end}}
    </table>

    {{if .Figures}}
    <h2>Figures</h2>
    {{range .Figures}}<img src="{{.}}" alt="{{.}}">
    {{end}}
    {{end}}
</div>
</body>
</html>
`
