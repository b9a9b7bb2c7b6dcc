// Package report collects evaluation scores of trained runs and turns
// them into tables and figures.
package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/yargevad/filepathx"
)

// Score holds the metrics of one run evaluated on one dataset.
// Beams maps a beam id ("beam1", "beam5") to metric values.
type Score struct {
	TrainDataset string                        `json:"train_dataset"`
	EvalDataset  string                        `json:"eval_dataset"`
	RunName      string                        `json:"run_name"`
	Beams        map[string]map[string]float64 `json:"beams"`
}

// LoadScores reads a score file holding one Score or a list of them.
func LoadScores(path string) ([]Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "report: read scores")
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var scores []Score
		if err := json.Unmarshal(data, &scores); err != nil {
			return nil, errors.Wrapf(err, "report: parse %s", path)
		}
		return scores, nil
	}

	var s Score
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "report: parse %s", path)
	}
	return []Score{s}, nil
}

// FindScores returns every score file below root, i.e. the *.json files
// inside a "scores" folder at any depth, sorted.
func FindScores(root string) ([]string, error) {
	paths, err := filepathx.Glob(filepath.Join(root, "**", "scores", "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "report: glob scores")
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadAll reads every score file below root.
func LoadAll(root string) ([]Score, error) {
	paths, err := FindScores(root)
	if err != nil {
		return nil, err
	}
	var all []Score
	for _, p := range paths {
		scores, err := LoadScores(p)
		if err != nil {
			return nil, err
		}
		all = append(all, scores...)
	}
	return all, nil
}

// Row is one metric value of one run, as written to report.csv.
type Row struct {
	TrainDataset string  `json:"train_dataset"`
	EvalDataset  string  `json:"eval_dataset"`
	RunName      string  `json:"run_name"`
	Metric       string  `json:"metric"`
	Value        float64 `json:"value"`
}

// MetricID joins a beam id and a metric name, e.g. "beam1__sacrebleu_bleu_score".
func MetricID(beam, metric string) string {
	return beam + "__" + metric
}

// Flatten expands scores into rows. Rows keep score order; beams and
// metrics within a score are sorted.
func Flatten(scores []Score) []Row {
	var rows []Row
	for _, s := range scores {
		beams := make([]string, 0, len(s.Beams))
		for b := range s.Beams {
			beams = append(beams, b)
		}
		sort.Strings(beams)

		for _, b := range beams {
			metrics := make([]string, 0, len(s.Beams[b]))
			for m := range s.Beams[b] {
				metrics = append(metrics, m)
			}
			sort.Strings(metrics)

			for _, m := range metrics {
				rows = append(rows, Row{
					TrainDataset: s.TrainDataset,
					EvalDataset:  s.EvalDataset,
					RunName:      s.RunName,
					Metric:       MetricID(b, m),
					Value:        s.Beams[b][m],
				})
			}
		}
	}
	return rows
}

// Metrics returns the distinct metric ids of rows in first-seen order.
func Metrics(rows []Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Metric] {
			seen[r.Metric] = true
			out = append(out, r.Metric)
		}
	}
	return out
}
