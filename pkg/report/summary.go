package report

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates one metric of every run trained on one dataset and
// evaluated on another.
type Summary struct {
	TrainDataset string  `json:"train_dataset"`
	EvalDataset  string  `json:"eval_dataset"`
	Metric       string  `json:"metric"`
	Runs         int     `json:"runs"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Best         string  `json:"best_run"`
}

type summaryKey struct {
	train, eval, metric string
}

// Summarize groups rows by (train dataset, eval dataset, metric) in
// first-seen order. Std is the sample standard deviation, 0 for a single run.
func Summarize(rows []Row) []Summary {
	var keys []summaryKey
	values := make(map[summaryKey][]float64)
	best := make(map[summaryKey]Row)

	for _, r := range rows {
		k := summaryKey{r.TrainDataset, r.EvalDataset, r.Metric}
		if _, ok := values[k]; !ok {
			keys = append(keys, k)
			best[k] = r
		}
		values[k] = append(values[k], r.Value)
		if r.Value > best[k].Value {
			best[k] = r
		}
	}

	out := make([]Summary, 0, len(keys))
	for _, k := range keys {
		x := values[k]
		s := Summary{
			TrainDataset: k.train,
			EvalDataset:  k.eval,
			Metric:       k.metric,
			Runs:         len(x),
			Min:          x[0],
			Max:          x[0],
			Best:         best[k].RunName,
		}
		if len(x) > 1 {
			s.Mean, s.Std = stat.MeanStdDev(x, nil)
		} else {
			s.Mean = x[0]
		}
		for _, v := range x {
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		out = append(out, s)
	}
	return out
}

// Report is the machine-readable result of a report run.
type Report struct {
	Generated time.Time `json:"generated"`
	Metric    string    `json:"metric,omitempty"`
	Scores    []Score   `json:"scores"`
	Rows      []Row     `json:"rows"`
	Summary   []Summary `json:"summary"`
}

// New builds a report from scores.
func New(scores []Score, metric string) Report {
	rows := Flatten(scores)
	return Report{
		Generated: time.Now().UTC(),
		Metric:    metric,
		Scores:    scores,
		Rows:      rows,
		Summary:   Summarize(rows),
	}
}
