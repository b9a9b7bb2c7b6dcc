// Command mkvocab builds the vocabulary file of a dataset.
//
// The vocabulary is trained on the dataset's train split (word, char and
// bpe models), imported from a sentencepiece .vocab file, or set to the
// 256-value byte table. The result is written where the codec looks for
// it, with the special tokens first.
//
// Usage:
//
//	mkvocab [-c config.yaml] [-d dataset] [-lang en] [-spm file.vocab] [-o out.vocab]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ha1tch/nmtlab/pkg/bpe"
	"github.com/ha1tch/nmtlab/pkg/config"
	"github.com/ha1tch/nmtlab/pkg/dataset"
	"github.com/ha1tch/nmtlab/pkg/normalize"
	"github.com/ha1tch/nmtlab/pkg/report"
	"github.com/ha1tch/nmtlab/pkg/vocab"
)

var (
	configPath = flag.String("c", "", "experiment config (YAML); built-in default if empty")
	dsName     = flag.String("d", "", "dataset name (required when the config has several)")
	lang       = flag.String("lang", "", "language of the vocabulary (ignored for merged vocabularies)")
	spmVocab   = flag.String("spm", "", "import pieces from a sentencepiece .vocab file")
	output     = flag.String("o", "", "output file (default: the dataset's vocabulary path)")
	size       = flag.Int("size", 0, "vocabulary size including specials (default: the dataset's)")
	plots      = flag.Bool("plots", false, "also draw the vocabulary distribution")
	verbose    = flag.Bool("v", false, "verbose output")
	help       = flag.Bool("h", false, "display this help")
)

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
	ds, err := cfg.Dataset(*dsName)
	if err != nil {
		fatal("%v", err)
	}
	norm, err := cfg.Normalizer()
	if err != nil {
		fatal("%v", err)
	}

	sw := ds.Subword()
	if sw.IsNone() {
		fatal("%s: subword model none has no vocabulary", ds)
	}
	if !ds.MergeVocabs() && !sw.IsBytes() && *lang == "" {
		fatal("-lang is required for per-language vocabularies")
	}

	vocabSize := *size
	if vocabSize == 0 && ds.VocabSize() != "" {
		if vocabSize, err = strconv.Atoi(ds.VocabSize()); err != nil {
			fatal("%s: bad vocabulary size %q", ds, ds.VocabSize())
		}
	}

	v := vocab.New(vocab.Options{Lang: ds.VocabLang(*lang), MaxTokens: cfg.Vocab.MaxTokens})
	switch {
	case sw.IsBytes():
		err = v.BuildFromBytes()

	case *spmVocab != "":
		var entries []vocab.Entry
		entries, err = importEntries(*spmVocab, v.Specials(), norm)
		if err == nil {
			err = v.BuildFromTokens(entries)
		}

	default:
		var lines []string
		files := trainFiles(ds, *lang)
		lines, err = readLines(files, norm)
		if err != nil {
			break
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "mkvocab: %d lines from %v\n", len(lines), files)
		}
		var entries []vocab.Entry
		entries, err = trainEntries(sw, lines, vocabSize, cfg.Vocab.MinFreq, v.Specials())
		if err == nil {
			err = v.BuildFromTokens(entries)
		}
	}
	if err != nil {
		fatal("%s: %v", ds, err)
	}

	out := *output
	if out == "" {
		prefix, _ := ds.VocabFile(*lang)
		out = prefix + vocab.VocabExt
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		fatal("%v", err)
	}
	if err := v.Save(out, true); err != nil {
		fatal("%v", err)
	}
	fmt.Fprintf(os.Stderr, "mkvocab: %s: %d tokens -> %s\n", ds, v.Len(), out)

	if *plots && !sw.IsBytes() {
		figs, err := report.VocabDistribution(ds.PlotsPath(), v, 150, cfg.Report.Formats, cfg.Report.Overwrite)
		if err != nil {
			fatal("%v", err)
		}
		for _, f := range figs {
			fmt.Fprintf(os.Stderr, "mkvocab: figure %s\n", f.Paths()[0])
		}
	}
}

// trainFiles returns the train split files a vocabulary learns from.
// Merged vocabularies read both languages.
func trainFiles(ds *dataset.Dataset, lang string) []string {
	langs := []string{lang}
	if ds.MergeVocabs() {
		langs = ds.Langs()
	}
	var files []string
	for _, l := range langs {
		files = append(files, ds.SplitPath(ds.TrainName()+"."+l))
	}
	return files
}

// readLines reads and normalises every line of files.
func readLines(files []string, norm normalize.Func) ([]string, error) {
	var lines []string
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, norm(scanner.Text()))
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
	}
	return lines, nil
}

// trainEntries learns the pieces of a subword model from lines. size
// counts the special tokens too; 0 keeps every piece. Unigram models are
// approximated with byte-pair merges. With byte fallback the 256 byte
// pieces are appended after the learned ones.
func trainEntries(sw dataset.Subword, lines []string, size, minFreq int, sp vocab.Specials) ([]vocab.Entry, error) {
	limit := 0
	if size > 0 {
		limit = size - len(sp.Entries())
		if sw.ByteFallback() {
			limit -= 256
		}
		if limit <= 0 {
			return nil, errors.Errorf("vocabulary size %d leaves no room for pieces", size)
		}
	}

	var learned []bpe.Entry
	switch sw.Base() {
	case dataset.SubwordWord:
		learned = bpe.CountWords(lines, limit)
	case dataset.SubwordChar:
		learned = bpe.CountChars(lines, limit)
	case dataset.SubwordBPE, dataset.SubwordUnigram:
		learned = bpe.Train(lines, limit)
	default:
		return nil, errors.Wrapf(vocab.ErrUnknownSubword, "%q", sw)
	}

	entries := sp.Entries()
	seen := map[string]bool{sp.Unk: true, sp.Sos: true, sp.Eos: true, sp.Pad: true}
	add := func(e bpe.Entry) {
		if seen[e.Token] {
			return
		}
		seen[e.Token] = true
		entries = append(entries, vocab.Entry{Token: e.Token, Freq: e.FreqString()})
	}
	for _, e := range learned {
		if e.Freq >= minFreq {
			add(e)
		}
	}
	if sw.ByteFallback() {
		for _, e := range bpe.ByteEntries() {
			add(e)
		}
	}
	return entries, nil
}

// importEntries reads a sentencepiece .vocab file. Its special pieces are
// dropped and the vocabulary's specials are put first; other pieces keep
// their order and score.
func importEntries(path string, sp vocab.Specials, norm normalize.Func) ([]vocab.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parsed, err := vocab.ParseEntries(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	entries := sp.Entries()
	seen := map[string]bool{sp.Unk: true, sp.Sos: true, sp.Eos: true, sp.Pad: true}
	for _, e := range parsed {
		tok := norm(e.Token)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		entries = append(entries, vocab.Entry{Token: tok, Freq: e.Freq})
	}
	return entries, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: mkvocab [-c config.yaml] [-d dataset] [-lang l] [-spm file.vocab] [-o out]

Build the vocabulary file of a dataset. Word, char and bpe vocabularies
are trained on the train split; unigram falls back to bpe merges. A
sentencepiece .vocab file can be imported instead with -spm. Bytes
datasets get the 256-value byte table.

Options:
  -c file      experiment config (YAML); built-in default if empty
  -d name      dataset name, e.g. multi30k_de-en_original_bpe_8000
  -lang l      language of the vocabulary (not needed when merged)
  -spm file    import pieces from a sentencepiece .vocab file
  -size n      vocabulary size including specials
  -o file      output file (default: dataset vocabulary path)
  -plots       draw the vocabulary distribution into the plots folder
  -v           verbose output
  -h           display this help

Examples:
  mkvocab -c multi30k.yaml -d multi30k_de-en_original_word_8000 -lang en
  mkvocab -c multi30k.yaml -lang de -spm spm_de.vocab
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "mkvocab: "+format+"\n", args...)
	os.Exit(1)
}
