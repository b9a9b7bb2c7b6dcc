// Package dataset derives the on-disk layout of translation datasets.
//
// A Dataset is a read-only description of one configuration (name,
// language pair, size, subword model and vocabulary size). Every artifact
// the pipeline produces for it lives under a path computed here, so two
// configurations never write to the same place. Accessors only build
// strings; creating folders is left to the caller (see MakeDirs).
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrLangPair is returned when a language pair is not "src-trg".
var ErrLangPair = errors.New("dataset: language pair must have exactly two components")

// Layout holds the sub-folder names used below a dataset identity.
type Layout struct {
	Raw          string `yaml:"raw"`
	Splits       string `yaml:"splits"`
	Encoded      string `yaml:"encoded"`
	Pretokenized string `yaml:"pretokenized"`
	Models       string `yaml:"models"`
	DataBin      string `yaml:"data_bin"`
	Runs         string `yaml:"runs"`
	Checkpoints  string `yaml:"checkpoints"`
	Logs         string `yaml:"logs"`
	Eval         string `yaml:"eval"`
	Beams        string `yaml:"beams"`
	Scores       string `yaml:"scores"`
	Vocabs       string `yaml:"vocabs"`
	Plots        string `yaml:"plots"`
}

// DefaultLayout returns the standard folder names.
func DefaultLayout() Layout {
	return Layout{
		Raw:          filepath.Join("data", "raw"),
		Splits:       filepath.Join("data", "splits"),
		Encoded:      filepath.Join("data", "encoded"),
		Pretokenized: filepath.Join("data", "pretokenized"),
		Models:       "models",
		DataBin:      "data-bin",
		Runs:         "runs",
		Checkpoints:  "checkpoints",
		Logs:         "logs",
		Eval:         "eval",
		Beams:        "beams",
		Scores:       "scores",
		Vocabs:       "vocabs",
		Plots:        "plots",
	}
}

// withDefaults fills empty names from DefaultLayout.
func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&l.Raw, d.Raw)
	fill(&l.Splits, d.Splits)
	fill(&l.Encoded, d.Encoded)
	fill(&l.Pretokenized, d.Pretokenized)
	fill(&l.Models, d.Models)
	fill(&l.DataBin, d.DataBin)
	fill(&l.Runs, d.Runs)
	fill(&l.Checkpoints, d.Checkpoints)
	fill(&l.Logs, d.Logs)
	fill(&l.Eval, d.Eval)
	fill(&l.Beams, d.Beams)
	fill(&l.Scores, d.Scores)
	fill(&l.Vocabs, d.Vocabs)
	fill(&l.Plots, d.Plots)
	return l
}

// Params are the constructor arguments of a Dataset.
type Params struct {
	BasePath    string
	Parent      *Dataset
	Name        string
	LangPair    string
	SizeName    string
	Lines       int // 0 means "all lines"
	Subword     string
	VocabSize   string
	MergeVocabs bool

	TrainName string
	ValName   string
	TestName  string

	Layout Layout
}

// Dataset identifies one dataset configuration.
type Dataset struct {
	basePath    string
	parent      *Dataset
	name        string
	langPair    string
	srcLang     string
	trgLang     string
	sizeName    string
	lines       int
	subword     Subword
	vocabSize   string
	mergeVocabs bool
	splitNames  [3]string
	layout      Layout
}

// New validates p and returns the dataset it describes.
func New(p Params) (*Dataset, error) {
	pair := strings.ToLower(strings.TrimSpace(p.LangPair))
	langs := strings.Split(pair, "-")
	if len(langs) != 2 || langs[0] == "" || langs[1] == "" {
		return nil, errors.Wrapf(ErrLangPair, "%q", p.LangPair)
	}

	ds := &Dataset{
		basePath:    p.BasePath,
		parent:      p.Parent,
		name:        strings.TrimSpace(p.Name),
		langPair:    pair,
		srcLang:     langs[0],
		trgLang:     langs[1],
		sizeName:    strings.TrimSpace(p.SizeName),
		lines:       p.Lines,
		subword:     ParseSubword(p.Subword),
		vocabSize:   strings.ToLower(strings.TrimSpace(p.VocabSize)),
		mergeVocabs: p.MergeVocabs,
		splitNames:  [3]string{p.TrainName, p.ValName, p.TestName},
		layout:      p.Layout.withDefaults(),
	}
	defaults := [3]string{"train", "val", "test"}
	for i := range ds.splitNames {
		if ds.splitNames[i] == "" {
			ds.splitNames[i] = defaults[i]
		}
	}
	return ds, nil
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// LangPair returns the lowercased "src-trg" pair.
func (d *Dataset) LangPair() string { return d.langPair }

// SrcLang returns the source language code.
func (d *Dataset) SrcLang() string { return d.srcLang }

// TrgLang returns the target language code.
func (d *Dataset) TrgLang() string { return d.trgLang }

// Langs returns source and target codes in order.
func (d *Dataset) Langs() []string { return []string{d.srcLang, d.trgLang} }

// SizeName returns the size label, e.g. "100k" or "original".
func (d *Dataset) SizeName() string { return d.sizeName }

// Lines returns the number of lines the size label stands for.
func (d *Dataset) Lines() int { return d.lines }

// Subword returns the subword model kind.
func (d *Dataset) Subword() Subword { return d.subword }

// VocabSize returns the vocabulary size label.
func (d *Dataset) VocabSize() string { return d.vocabSize }

// MergeVocabs reports whether source and target share one vocabulary.
func (d *Dataset) MergeVocabs() bool { return d.mergeVocabs }

// Parent returns the dataset this one was derived from, if any.
func (d *Dataset) Parent() *Dataset { return d.parent }

// Layout returns the folder names in use.
func (d *Dataset) Layout() Layout { return d.layout }

// SplitNames returns the train, val and test names.
func (d *Dataset) SplitNames() []string {
	return []string{d.splitNames[0], d.splitNames[1], d.splitNames[2]}
}

// TrainName returns the name of the training split.
func (d *Dataset) TrainName() string { return d.splitNames[0] }

// SplitNamesLang returns "<split>.<lang>" for every split and language.
func (d *Dataset) SplitNamesLang() []string {
	out := make([]string, 0, 6)
	for _, split := range d.splitNames {
		for _, lang := range d.Langs() {
			out = append(out, split+"."+lang)
		}
	}
	return out
}

// SplitFiles returns the split file names in train/val/test, src/trg order.
func (d *Dataset) SplitFiles() []string {
	return d.SplitNamesLang()
}

// ID returns the (name, lang pair, size) tuple that prefixes every path.
func (d *Dataset) ID() []string {
	return []string{d.name, d.langPair, d.sizeName}
}

// String names the dataset. Derived datasets are named by identity only.
func (d *Dataset) String() string {
	parts := d.ID()
	if d.parent == nil {
		parts = append(parts, d.subword.String(), noneIfEmpty(d.vocabSize))
	}
	return strings.ToLower(strings.Join(parts, "_"))
}

// VocabSizeID namespaces vocabulary-dependent artifacts.
//
// It is ["none"] without a subword model, ["bytes"] for raw bytes and
// [kind, size] otherwise.
func (d *Dataset) VocabSizeID() []string {
	switch {
	case d.subword.IsNone():
		return []string{"none"}
	case d.subword.IsBytes():
		return []string{"bytes"}
	default:
		return []string{string(d.subword), noneIfEmpty(d.vocabSize)}
	}
}

func noneIfEmpty(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func (d *Dataset) join(parts ...[]string) string {
	all := []string{d.basePath}
	all = append(all, d.ID()...)
	for _, p := range parts {
		all = append(all, p...)
	}
	return filepath.Join(all...)
}

func elems(parts ...string) []string { return parts }

// Path returns the dataset root.
func (d *Dataset) Path() string {
	return d.join()
}

// RawPath returns a path inside the raw data folder.
func (d *Dataset) RawPath(fname string) string {
	return d.join(elems(d.layout.Raw, fname))
}

// PretokPath returns a path inside the pretokenized data folder.
func (d *Dataset) PretokPath(fname string) string {
	return d.join(elems(d.layout.Pretokenized, fname))
}

// SplitPath returns a path inside the splits folder.
func (d *Dataset) SplitPath(fname string) string {
	return d.join(elems(d.layout.Splits, fname))
}

// EncodedPath returns a path inside the encoded folder. Encoded data is
// namespaced by VocabSizeID unless no subword model applies.
func (d *Dataset) EncodedPath(fname string) string {
	if d.subword.IsNone() {
		return d.join(elems(d.layout.Encoded, fname))
	}
	return d.join(elems(d.layout.Encoded), d.VocabSizeID(), elems(fname))
}

// VocabPath returns a path inside the vocabulary folder. With base set
// the VocabSizeID level is omitted.
func (d *Dataset) VocabPath(fname string, base bool) string {
	if base {
		return d.join(elems(d.layout.Vocabs, fname))
	}
	return d.join(elems(d.layout.Vocabs), d.VocabSizeID(), elems(fname))
}

// VocabFile returns the vocabulary file prefix for lang, or false when
// no vocabulary applies. Merged vocabularies are named "src-trg" and
// ignore lang.
func (d *Dataset) VocabFile(lang string) (string, bool) {
	if d.subword.IsNone() {
		return "", false
	}
	if d.mergeVocabs {
		return d.VocabPath(d.srcLang+"-"+d.trgLang, false), true
	}
	return d.VocabPath(lang, false), true
}

// VocabLang returns the file prefix used for lang's vocabulary.
func (d *Dataset) VocabLang(lang string) string {
	if d.mergeVocabs {
		return d.srcLang + "-" + d.trgLang
	}
	return lang
}

// ModelDataBin returns the binarised data folder of a toolkit.
func (d *Dataset) ModelDataBin(toolkit, fname string) string {
	return d.join(elems(d.layout.Models, toolkit, d.layout.DataBin), d.VocabSizeID(), elems(fname))
}

func (d *Dataset) runPath(toolkit, runName string, rest ...string) string {
	return d.join(elems(d.layout.Models, toolkit, d.layout.Runs, runName), rest)
}

// ModelEvalPath returns the folder of one evaluation of a run.
func (d *Dataset) ModelEvalPath(toolkit, runName, evalName string) string {
	return d.runPath(toolkit, runName, d.layout.Eval, evalName)
}

// ModelEvalDataSplitPath returns a split file copied for an evaluation.
func (d *Dataset) ModelEvalDataSplitPath(toolkit, runName, evalName, fname string) string {
	return d.runPath(toolkit, runName, d.layout.Eval, evalName, d.layout.Splits, fname)
}

// ModelEvalDataPretokPath returns a pretokenized file of an evaluation.
func (d *Dataset) ModelEvalDataPretokPath(toolkit, runName, evalName, fname string) string {
	return d.runPath(toolkit, runName, d.layout.Eval, evalName, d.layout.Pretokenized, fname)
}

// ModelEvalDataEncodedPath returns an encoded file of an evaluation.
func (d *Dataset) ModelEvalDataEncodedPath(toolkit, runName, evalName, fname string) string {
	return d.runPath(toolkit, runName, d.layout.Eval, evalName, d.layout.Encoded, fname)
}

// ModelEvalDataBinPath returns a binarised file of an evaluation.
func (d *Dataset) ModelEvalDataBinPath(toolkit, runName, evalName, fname string) string {
	return d.runPath(toolkit, runName, d.layout.Eval, evalName, d.layout.DataBin, fname)
}

// ModelBeamPath returns the folder of one beam width. A beam of 0 yields
// the beams folder itself.
func (d *Dataset) ModelBeamPath(toolkit, runName, evalName string, beam int) string {
	beamN := ""
	if beam != 0 {
		beamN = fmt.Sprintf("beam%d", beam)
	}
	return d.runPath(toolkit, runName, d.layout.Eval, evalName, d.layout.Beams, beamN)
}

// ModelScoresPath returns the scores folder of one beam width.
func (d *Dataset) ModelScoresPath(toolkit, runName, evalName string, beam int) string {
	return filepath.Join(d.ModelBeamPath(toolkit, runName, evalName, beam), d.layout.Scores)
}

// ModelLogsPath returns the logs folder of a run.
func (d *Dataset) ModelLogsPath(toolkit, runName string) string {
	return d.runPath(toolkit, runName, d.layout.Logs)
}

// ModelCheckpointsPath returns a path inside the checkpoints folder of a run.
func (d *Dataset) ModelCheckpointsPath(toolkit, runName, fname string) string {
	return d.runPath(toolkit, runName, d.layout.Checkpoints, fname)
}

// PlotsPath returns the plots folder of this dataset version.
func (d *Dataset) PlotsPath() string {
	return d.join(elems(d.layout.Plots), d.VocabSizeID())
}
