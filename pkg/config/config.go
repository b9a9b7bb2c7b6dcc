// Package config loads experiment configuration files.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/nmtlab/pkg/dataset"
	"github.com/ha1tch/nmtlab/pkg/normalize"
)

// Config describes one experiment: the dataset grid and how to report it.
type Config struct {
	BasePath    string             `yaml:"base_path"`
	Datasets    []dataset.Entry    `yaml:"datasets"`
	Encodings   []dataset.Encoding `yaml:"encodings"`
	MergeVocabs bool               `yaml:"merge_vocabs"`
	Normalizers []string           `yaml:"normalizers"`
	Layout      dataset.Layout     `yaml:"layout"`
	Vocab       VocabConfig        `yaml:"vocab"`
	Report      ReportConfig       `yaml:"report"`
}

// VocabConfig holds vocabulary building and encoding options.
type VocabConfig struct {
	MaxTokens int `yaml:"max_tokens"`
	// MinFreq drops trained tokens seen fewer times.
	MinFreq int `yaml:"min_freq"`
}

// ReportConfig holds report and figure options.
type ReportConfig struct {
	Metric    string   `yaml:"metric"`
	Formats   []string `yaml:"formats"`
	Overwrite bool     `yaml:"overwrite"`
	Toolkit   string   `yaml:"toolkit"`
}

// Default returns a configuration for a single multi30k de-en grid.
func Default() *Config {
	return &Config{
		BasePath: "datasets",
		Datasets: []dataset.Entry{
			{
				Name:      "multi30k",
				Languages: []string{"de-en"},
				Sizes:     []dataset.Size{{Name: "original", Lines: 0}},
			},
		},
		Encodings: []dataset.Encoding{
			{SubwordModels: []string{"word"}, VocabSizes: []int{8000}},
		},
		Normalizers: []string{"nfkc", "strip", "lowercase"},
		Layout:      dataset.DefaultLayout(),
		Vocab: VocabConfig{
			MaxTokens: 150,
			MinFreq:   1,
		},
		Report: ReportConfig{
			Metric:  "beam1__sacrebleu_bleu_score",
			Formats: []string{"png", "pdf"},
			Toolkit: "autonmt",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default values; lists present in the file replace them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: read")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Validate checks that the grid can be expanded and the options are sane.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return errors.New("config: base_path is empty")
	}
	if len(c.Datasets) == 0 {
		return errors.New("config: no datasets")
	}
	if len(c.Encodings) == 0 {
		return errors.New("config: no encodings")
	}
	if c.Vocab.MaxTokens < 0 {
		return errors.Errorf("config: max_tokens must be >= 0, got %d", c.Vocab.MaxTokens)
	}
	if _, err := normalize.ByName(c.Normalizers); err != nil {
		return errors.Wrap(err, "config")
	}
	for _, f := range c.Report.Formats {
		switch f {
		case "png", "pdf", "svg", "eps", "jpg", "jpeg", "tif", "tiff":
		default:
			return errors.Errorf("config: unsupported figure format %q", f)
		}
	}
	if _, err := c.Grid().Expand(); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// Grid returns the dataset grid described by c.
func (c *Config) Grid() dataset.Grid {
	return dataset.Grid{
		BasePath:    c.BasePath,
		Entries:     c.Datasets,
		Encodings:   c.Encodings,
		MergeVocabs: c.MergeVocabs,
		Layout:      c.Layout,
	}
}

// Normalizer returns the configured normaliser sequence.
func (c *Config) Normalizer() (normalize.Func, error) {
	return normalize.ByName(c.Normalizers)
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "config: marshal")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "config: write")
}

// Dataset returns the dataset of the grid named name (see
// dataset.Dataset.String). An empty name selects the only dataset of a
// single-entry grid.
func (c *Config) Dataset(name string) (*dataset.Dataset, error) {
	dss, err := c.Grid().Expand()
	if err != nil {
		return nil, err
	}
	if name == "" {
		if len(dss) == 1 {
			return dss[0], nil
		}
		return nil, errors.Errorf("config: %d datasets, choose one by name", len(dss))
	}
	for _, ds := range dss {
		if ds.String() == strings.ToLower(name) {
			return ds, nil
		}
	}
	return nil, errors.Errorf("config: no dataset named %q", name)
}
