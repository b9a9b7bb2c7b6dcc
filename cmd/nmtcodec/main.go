// Command nmtcodec encodes text lines to token ids and decodes them back
// through a dataset's vocabulary.
//
// Usage:
//
//	nmtcodec [-c config.yaml] [-d dataset] [-lang en] encode [file]
//	nmtcodec [-c config.yaml] [-d dataset] [-lang en] decode [file]
//	nmtcodec -raw-bytes encode|decode [file]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ha1tch/nmtlab/pkg/config"
	"github.com/ha1tch/nmtlab/pkg/detect"
	"github.com/ha1tch/nmtlab/pkg/normalize"
	"github.com/ha1tch/nmtlab/pkg/spm"
	"github.com/ha1tch/nmtlab/pkg/vocab"
)

var (
	configPath   = flag.String("c", "", "experiment config (YAML); built-in default if empty")
	dsName       = flag.String("d", "", "dataset name (required when the config has several)")
	lang         = flag.String("lang", "", "vocabulary language (ignored for merged vocabularies)")
	maxTokens    = flag.Int("max", -1, "truncate to this many ids including <s> and </s> (default from config, 0 disables)")
	rawBytes     = flag.Bool("raw-bytes", false, "use the 259-id byte codec, no dataset needed")
	hexMode      = flag.String("hex", "auto", "raw-bytes input/output as 0xNN tokens: auto, yes or no")
	segMode      = flag.String("segmented", "auto", "input is already segmented into pieces: auto, yes or no")
	noSpecials   = flag.Bool("no-specials", false, "encode without <s> and </s>")
	keepSpecials = flag.Bool("keep-specials", false, "decode without removing specials")
	spmModel     = flag.String("spm", "", "segment input with this sentencepiece model")
	detok        = flag.Bool("detok", false, "join decoded pieces into plain text")
	output       = flag.String("o", "", "output file (default stdout)")
	help         = flag.Bool("h", false, "display this help")
)

// codec turns one line into ids and back.
type codec interface {
	encode(line string) ([]int, error)
	decode(ids []int) (string, error)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}
	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "nmtcodec: expected encode or decode and an optional file")
		fmt.Fprintln(os.Stderr, "Try 'nmtcodec -h' for more information.")
		os.Exit(1)
	}
	mode := flag.Arg(0)
	if mode != "encode" && mode != "decode" {
		fatal("unknown mode %q", mode)
	}

	in := os.Stdin
	if flag.NArg() == 2 && flag.Arg(1) != "-" {
		f, err := os.Open(flag.Arg(1))
		if err != nil {
			fatal("%v", err)
		}
		defer f.Close()
		in = f
	}
	r := bufio.NewReaderSize(in, 64*1024)
	sample, _ := r.Peek(8192)
	profile := detect.Detect(sample)

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fatal("%v", err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	c, err := newCodec(mode, profile)
	if err != nil {
		fatal("%v", err)
	}

	var n int
	if mode == "encode" {
		n, err = encodeLines(r, w, c)
	} else {
		n, err = decodeLines(r, w, c)
	}
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		fatal("%v", err)
	}
	fmt.Fprintf(os.Stderr, "nmtcodec: %sd %d lines (input looks like %s)\n", mode, n, profile.Format)
}

// newCodec builds the codec selected by the flags. profile describes the
// input and settles -hex auto.
func newCodec(mode string, profile detect.Profile) (codec, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	max := *maxTokens
	if max < 0 {
		max = cfg.Vocab.MaxTokens
	}

	if *rawBytes {
		hex, err := hexFlag(*hexMode, mode, profile)
		if err != nil {
			return nil, err
		}
		return &byteCodec{
			bv:     vocab.BytesVocabulary{HexInput: hex, MaxTokens: max},
			add:    !*noSpecials,
			remove: !*keepSpecials,
		}, nil
	}

	ds, err := cfg.Dataset(*dsName)
	if err != nil {
		return nil, err
	}
	norm, err := cfg.Normalizer()
	if err != nil {
		return nil, err
	}
	v := vocab.New(vocab.Options{MaxTokens: max})
	if err := v.BuildFromDataset(ds, *lang); err != nil {
		return nil, err
	}

	seg, err := segmentedFlag(*segMode)
	if err != nil {
		return nil, err
	}
	c := &vocabCodec{
		v:         v,
		add:       !*noSpecials,
		remove:    !*keepSpecials,
		max:       max,
		norm:      norm,
		segmented: seg,
		detok:     *detok,
	}
	if *spmModel != "" {
		if c.model, err = spm.Load(*spmModel); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// hexFlag resolves -hex. In auto mode encoding reads hex when the input
// is hex tokens; decoding writes text.
func hexFlag(value, mode string, profile detect.Profile) (bool, error) {
	switch value {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	case "auto":
		return mode == "encode" && profile.Format == detect.FormatHexBytes, nil
	}
	return false, errors.Errorf("bad -hex value %q", value)
}

// segmentation says whether input lines are already pieces.
type segmentation int

const (
	segAuto segmentation = iota // decided per line
	segYes
	segNo
)

func segmentedFlag(value string) (segmentation, error) {
	switch value {
	case "auto":
		return segAuto, nil
	case "yes", "true", "1":
		return segYes, nil
	case "no", "false", "0":
		return segNo, nil
	}
	return segAuto, errors.Errorf("bad -segmented value %q", value)
}

type byteCodec struct {
	bv          vocab.BytesVocabulary
	add, remove bool
}

func (c *byteCodec) encode(line string) ([]int, error) {
	return c.bv.Encode(line, c.add)
}

func (c *byteCodec) decode(ids []int) (string, error) {
	return c.bv.Decode(ids, c.remove)
}

type vocabCodec struct {
	v           *vocab.Vocabulary
	add, remove bool
	max         int
	norm        normalize.Func
	model       *spm.Model
	segmented   segmentation
	detok       bool
}

// isSegmented reports whether line is encoded as is. In auto mode that is
// a line of subword pieces, or of hex tokens for a byte vocabulary.
func (c *vocabCodec) isSegmented(line string) bool {
	switch c.segmented {
	case segYes:
		return true
	case segNo:
		return false
	}
	if detect.Segmented(line) {
		return true
	}
	return c.v.Subword().IsBytes() && detect.DetectLine(line) == detect.FormatHexBytes
}

func (c *vocabCodec) encode(line string) ([]int, error) {
	var pieces string
	switch {
	case c.isSegmented(line):
		pieces = line
	case c.model != nil:
		pieces = c.model.EncodeLine(c.norm(line))
	case c.v.Subword().IsBytes():
		pieces = vocab.HexLine([]byte(c.norm(line)))
	default:
		pieces = strings.Join(c.v.Segment(c.norm(line)), " ")
	}
	return c.v.EncodeMax(pieces, c.add, c.max), nil
}

func (c *vocabCodec) decode(ids []int) (string, error) {
	s := c.v.Decode(ids, c.remove)
	if c.detok && !c.v.Subword().IsBytes() {
		s = spm.DecodeLine(s)
	}
	return s, nil
}

// encodeLines writes the ids of every input line, space separated.
func encodeLines(r io.Reader, w io.Writer, c codec) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		ids, err := c.encode(scanner.Text())
		if err != nil {
			return n, errors.Wrapf(err, "line %d", n)
		}
		strs := make([]string, len(ids))
		for i, id := range ids {
			strs[i] = strconv.Itoa(id)
		}
		if _, err := fmt.Fprintln(w, strings.Join(strs, " ")); err != nil {
			return n, err
		}
	}
	return n, scanner.Err()
}

// decodeLines reads lines of space separated ids and writes their text.
func decodeLines(r io.Reader, w io.Writer, c codec) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		fields := strings.Fields(scanner.Text())
		ids := make([]int, len(fields))
		for i, f := range fields {
			id, err := strconv.Atoi(f)
			if err != nil {
				return n, errors.Errorf("line %d: bad id %q", n, f)
			}
			ids[i] = id
		}
		text, err := c.decode(ids)
		if err != nil {
			return n, errors.Wrapf(err, "line %d", n)
		}
		if _, err := fmt.Fprintln(w, text); err != nil {
			return n, err
		}
	}
	return n, scanner.Err()
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: nmtcodec [options] encode|decode [file]

Encode lines of text into token ids, or decode ids back into text, with
the vocabulary of a dataset. Reads stdin when file is omitted or "-".

Options:
  -c file          experiment config (YAML); built-in default if empty
  -d name          dataset name, e.g. multi30k_de-en_original_bpe_8000
  -lang l          vocabulary language (not needed when merged)
  -max n           truncate to n ids including <s> and </s>
  -no-specials     encode without <s> and </s>
  -keep-specials   decode without removing specials
  -spm file        segment raw text with a sentencepiece model
  -detok           join decoded pieces into plain text
  -segmented mode  input is already pieces: auto (per line), yes or no
  -raw-bytes       use the byte codec (ids 0-255, <s>=256 </s>=257 <pad>=258)
  -hex mode        byte codec uses 0xNN tokens: auto, yes or no
  -o file          output file (default stdout)
  -h               display this help

Lines that are already segmented (pieces starting with ▁, or 0xNN tokens
for a byte vocabulary) are detected and encoded as is; raw text is
normalised and segmented first.

Examples:
  nmtcodec -c multi30k.yaml -lang en encode train.en > train.ids
  nmtcodec -c multi30k.yaml -lang en -detok decode hyp.ids
  echo "hola" | nmtcodec -raw-bytes encode
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "nmtcodec: "+format+"\n", args...)
	os.Exit(1)
}
