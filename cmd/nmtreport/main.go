// Command nmtreport collects the evaluation scores of trained runs and
// writes comparison tables and figures.
//
// Usage:
//
//	nmtreport [-c config.yaml] [-root dir] [-o output_dir] [-metric beam1__sacrebleu_bleu_score]
//
// Output files:
//   - report.json: scores, flattened rows and summary
//   - report.csv: one row per run, evaluation dataset and metric
//   - summary.csv: mean and std per train/eval dataset and metric
//   - report.html: summary table with the figures (with -html)
//   - scores history in a SQLite file (with -db)
//   - plots/<ext>/report__<metric>.<ext>: model comparison figure
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ha1tch/nmtlab/pkg/config"
	"github.com/ha1tch/nmtlab/pkg/report"
)

var (
	configPath = flag.String("c", "", "experiment config (YAML); built-in default if empty")
	rootDir    = flag.String("root", "", "folder searched for scores (default: config base_path)")
	outputDir  = flag.String("o", ".", "output directory for reports")
	metric     = flag.String("metric", "", "metric id to plot (default from config)")
	formats    = flag.String("formats", "", "comma-separated figure formats (default from config)")
	writeHTML  = flag.Bool("html", false, "also write report.html")
	noPlots    = flag.Bool("no-plots", false, "skip figures")
	dbPath     = flag.String("db", "", "SQLite file accumulating scores across runs")
	help       = flag.Bool("h", false, "display this help")
)

type options struct {
	root    string
	out     string
	metric  string
	formats []string
	html    bool
	plots   bool
	db      string
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal("%v", err)
		}
	}

	opts := options{
		root:    *rootDir,
		out:     *outputDir,
		metric:  *metric,
		formats: cfg.Report.Formats,
		html:    *writeHTML,
		plots:   !*noPlots,
		db:      *dbPath,
	}
	if opts.root == "" {
		opts.root = cfg.BasePath
	}
	if opts.metric == "" {
		opts.metric = cfg.Report.Metric
	}
	if *formats != "" {
		opts.formats = strings.Split(*formats, ",")
	}

	fmt.Printf("Translation Report Generator\n")
	fmt.Printf("============================\n")
	fmt.Printf("Scores: %s\n", opts.root)
	fmt.Printf("Metric: %s\n\n", opts.metric)

	r, err := generate(opts, os.Stdout)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Printf("\n=== Summary ===\n")
	printSummary(os.Stdout, r.Summary, opts.metric)
}

// generate loads every score below opts.root and writes the reports.
// Written files are listed on w.
func generate(opts options, w io.Writer) (report.Report, error) {
	scores, err := report.LoadAll(opts.root)
	if err != nil {
		return report.Report{}, err
	}
	if len(scores) == 0 {
		return report.Report{}, errors.Errorf("no score files below %s", opts.root)
	}

	r := report.New(scores, opts.metric)
	if opts.db != "" {
		rows, err := syncStore(opts.db, r.Rows)
		if err != nil {
			return r, err
		}
		r.Rows = rows
		r.Summary = report.Summarize(rows)
		fmt.Fprintf(w, "Stored: %s (%d rows)\n", opts.db, len(rows))
	}
	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return r, err
	}

	written := func(path string) { fmt.Fprintf(w, "Written: %s\n", path) }

	jsonPath := filepath.Join(opts.out, "report.json")
	if err := report.WriteFile(jsonPath, func(f io.Writer) error { return report.WriteJSON(f, r) }); err != nil {
		return r, err
	}
	written(jsonPath)

	csvPath := filepath.Join(opts.out, "report.csv")
	if err := report.WriteFile(csvPath, func(f io.Writer) error { return report.WriteCSV(f, r.Rows) }); err != nil {
		return r, err
	}
	written(csvPath)

	summaryPath := filepath.Join(opts.out, "summary.csv")
	if err := report.WriteFile(summaryPath, func(f io.Writer) error { return report.WriteSummaryCSV(f, r.Summary) }); err != nil {
		return r, err
	}
	written(summaryPath)

	var figures []string
	if opts.plots {
		fig, err := report.PlotMetrics(filepath.Join(opts.out, "plots"), r.Rows, opts.metric, opts.formats)
		if errors.Cause(err) == report.ErrMetricNotFound {
			return r, errors.Wrapf(err, "available metrics: %s", strings.Join(report.Metrics(r.Rows), ", "))
		}
		if err != nil {
			return r, err
		}
		for _, p := range fig.Paths() {
			written(p)
			if rel, err := filepath.Rel(opts.out, p); err == nil && isImage(p) {
				figures = append(figures, filepath.ToSlash(rel))
			}
		}
	}

	if opts.html {
		htmlPath := filepath.Join(opts.out, "report.html")
		data := report.HTMLData{Report: r, Figures: figures}
		if err := report.WriteFile(htmlPath, func(f io.Writer) error { return report.WriteHTML(f, data) }); err != nil {
			return r, err
		}
		written(htmlPath)
	}
	return r, nil
}

// syncStore saves rows into the store at path and returns every stored row.
func syncStore(path string, rows []report.Row) ([]report.Row, error) {
	store, err := report.OpenStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Save(ctx, rows); err != nil {
		return nil, err
	}
	return store.Rows(ctx, "")
}

func isImage(path string) bool {
	switch filepath.Ext(path) {
	case ".png", ".svg", ".jpg", ".jpeg":
		return true
	}
	return false
}

func printSummary(w io.Writer, summary []report.Summary, metric string) {
	for _, s := range summary {
		if s.Metric != metric {
			continue
		}
		fmt.Fprintf(w, "%s -> %s: mean %.2f, std %.2f over %d runs (best: %s)\n",
			s.TrainDataset, s.EvalDataset, s.Mean, s.Std, s.Runs, s.Best)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: nmtreport [-c config.yaml] [-root dir] [-o dir] [-metric id] [-html]

Collect the scores/*.json files of every run below a folder and write
report.json, report.csv and summary.csv, plus a model comparison figure.

Options:
  -c file        experiment config (YAML); built-in default if empty
  -root dir      folder searched for scores (default: config base_path)
  -o dir         output directory (default .)
  -metric id     metric to plot, <beam>__<metric> (default from config)
  -formats list  figure formats, e.g. png,pdf,svg
  -html          also write report.html
  -no-plots      skip figures
  -db file       keep scores in a SQLite file and report all stored runs
  -h             display this help

Examples:
  nmtreport -c multi30k.yaml -o reports/
  nmtreport -root datasets/ -metric beam5__sacrebleu_chrf_score -html
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "nmtreport: "+format+"\n", args...)
	os.Exit(1)
}
