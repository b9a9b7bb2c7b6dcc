package dataset

import "strings"

// Subword identifies the segmentation model of a dataset version.
//
// The zero value means "no subword model". Kinds may carry a byte
// fallback suffix, e.g. "unigram+bytes".
type Subword string

const (
	SubwordNone    Subword = "none"
	SubwordBytes   Subword = "bytes"
	SubwordWord    Subword = "word"
	SubwordChar    Subword = "char"
	SubwordBPE     Subword = "bpe"
	SubwordUnigram Subword = "unigram"
)

const byteFallbackSuffix = "+bytes"

// ParseSubword normalises a subword model name.
func ParseSubword(s string) Subword {
	return Subword(strings.ToLower(strings.TrimSpace(s)))
}

// IsNone reports whether no vocabulary applies.
func (s Subword) IsNone() bool {
	return s == "" || s == SubwordNone
}

// IsBytes reports whether the dataset is encoded as raw bytes.
func (s Subword) IsBytes() bool {
	return s == SubwordBytes
}

// Pretok reports whether the text is pretokenized into words.
func (s Subword) Pretok() bool {
	return s == SubwordWord
}

// Base returns the model without the byte fallback suffix.
func (s Subword) Base() Subword {
	return Subword(strings.TrimSuffix(string(s), byteFallbackSuffix))
}

// ByteFallback reports whether out-of-vocabulary text falls back to bytes.
func (s Subword) ByteFallback() bool {
	return s != SubwordBytes && strings.HasSuffix(string(s), byteFallbackSuffix)
}

// Known reports whether the base model is one the pipeline understands.
func (s Subword) Known() bool {
	switch s.Base() {
	case "", SubwordNone, SubwordBytes, SubwordWord, SubwordChar, SubwordBPE, SubwordUnigram:
		return true
	}
	return false
}

func (s Subword) String() string {
	if s == "" {
		return "none"
	}
	return string(s)
}
