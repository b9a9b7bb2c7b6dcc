package vocab

import (
	"os"

	"github.com/pkg/errors"

	"github.com/ha1tch/nmtlab/pkg/bpe"
	"github.com/ha1tch/nmtlab/pkg/dataset"
	"github.com/ha1tch/nmtlab/pkg/spm"
)

// Vocabulary files are named "<prefix>.vocab", sentencepiece models
// "<prefix>.model", where prefix comes from Dataset.VocabFile.
const (
	VocabExt = ".vocab"
	ModelExt = ".model"
)

// BuildFromDataset builds the vocabulary a dataset version uses for lang.
// lang may be empty for merged vocabularies.
//
// Without a subword model only the special tokens are known; "bytes"
// builds the byte table. Other models read "<prefix>.vocab" and, when a
// "<prefix>.model" sits next to it, load it for segmenting raw text.
// Without a model file, raw text is segmented with the vocabulary's own
// pieces ("word" splits on whitespace).
func (v *Vocabulary) BuildFromDataset(ds *dataset.Dataset, lang string) error {
	sw := ds.Subword()
	if !sw.Known() {
		return errors.Wrapf(ErrUnknownSubword, "%q", string(sw))
	}

	if lang == "" && !ds.MergeVocabs() && !sw.IsNone() && !sw.IsBytes() {
		return errors.Errorf("vocab: dataset %s has one vocabulary per language, lang is required", ds)
	}
	tag := ds.LangPair()
	if lang != "" {
		tag = lang
	}

	// Build into a copy so a failed build leaves v as it was.
	next := *v
	switch {
	case sw.IsNone():
		if err := next.build(next.base.Entries(), next.base); err != nil {
			return err
		}
		next.segment = nil

	case sw.IsBytes():
		if err := next.BuildFromBytes(); err != nil {
			return err
		}

	default:
		prefix, _ := ds.VocabFile(lang)
		if err := next.BuildFromVocab(prefix+VocabExt, true); err != nil {
			return err
		}
		seg, err := next.segmenterFor(sw, prefix+ModelExt)
		if err != nil {
			return err
		}
		next.segment = seg
	}

	next.lang = tag
	next.subword = sw
	*v = next
	return nil
}

func (v *Vocabulary) segmenterFor(sw dataset.Subword, modelPath string) (func(string) []string, error) {
	if _, err := os.Stat(modelPath); err == nil {
		m, err := spm.Load(modelPath)
		if err != nil {
			return nil, err
		}
		if n := m.VocabSize(); n != v.Len() {
			return nil, errors.Wrapf(ErrMalformedVocab, "model %s has %d pieces, vocabulary has %d", modelPath, n, v.Len())
		}
		return m.Pieces, nil
	}

	if sw.Base() == dataset.SubwordWord {
		return nil, nil
	}
	seg := bpe.NewSegmenter(v.Tokens(), sw.ByteFallback())
	return seg.Segment, nil
}
