package dataset

import (
	"strconv"

	"github.com/pkg/errors"
)

// Size is one size variant of a dataset, e.g. {"100k", 100000}.
type Size struct {
	Name  string `yaml:"name"`
	Lines int    `yaml:"lines"`
}

// Entry lists the language pairs and sizes built for a dataset name.
type Entry struct {
	Name      string   `yaml:"name"`
	Languages []string `yaml:"languages"`
	Sizes     []Size   `yaml:"sizes"`
}

// Encoding pairs subword models with the vocabulary sizes to build.
type Encoding struct {
	SubwordModels []string `yaml:"subword_models"`
	VocabSizes    []int    `yaml:"vocab_sizes"`
}

// Grid is the cross product of datasets and encodings of an experiment.
type Grid struct {
	BasePath    string
	Entries     []Entry
	Encodings   []Encoding
	MergeVocabs bool
	Layout      Layout
}

// Expand returns one Dataset per (entry, language pair, size, subword
// model, vocabulary size) in grid order. Models without a vocabulary
// ("none", "bytes") are emitted once regardless of vocabulary sizes, and
// repeated configurations are dropped.
func (g Grid) Expand() ([]*Dataset, error) {
	var out []*Dataset
	seen := make(map[string]bool)

	add := func(p Params) error {
		ds, err := New(p)
		if err != nil {
			return errors.Wrapf(err, "dataset %s", p.Name)
		}
		key := ds.String()
		if seen[key] {
			return nil
		}
		seen[key] = true
		out = append(out, ds)
		return nil
	}

	for _, e := range g.Entries {
		if len(e.Sizes) == 0 {
			return nil, errors.Errorf("dataset %s: no sizes", e.Name)
		}
		for _, pair := range e.Languages {
			for _, size := range e.Sizes {
				base := Params{
					BasePath:    g.BasePath,
					Name:        e.Name,
					LangPair:    pair,
					SizeName:    size.Name,
					Lines:       size.Lines,
					MergeVocabs: g.MergeVocabs,
					Layout:      g.Layout,
				}
				for _, enc := range g.Encodings {
					for _, model := range enc.SubwordModels {
						sw := ParseSubword(model)
						if !sw.Known() {
							return nil, errors.Errorf("dataset %s: unknown subword model %q", e.Name, model)
						}
						p := base
						p.Subword = string(sw)
						if sw.IsNone() || sw.IsBytes() || len(enc.VocabSizes) == 0 {
							if err := add(p); err != nil {
								return nil, err
							}
							continue
						}
						for _, vs := range enc.VocabSizes {
							p.VocabSize = strconv.Itoa(vs)
							if err := add(p); err != nil {
								return nil, err
							}
						}
					}
				}
			}
		}
	}
	return out, nil
}
