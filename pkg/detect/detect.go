// Package detect guesses how an encoded dataset file was produced, so
// tools can pick the matching codec without being told.
package detect

import (
	"bytes"
	"strings"

	"github.com/ha1tch/nmtlab/pkg/bpe"
	"github.com/ha1tch/nmtlab/pkg/vocab"
)

// Format is the detected encoding of a file's lines.
type Format int

const (
	FormatEmpty    Format = iota // No tokens
	FormatWords                  // Whitespace tokens (word model or raw text)
	FormatPieces                 // Subword pieces, every word starting with a boundary marker
	FormatHexBytes               // 0xNN byte tokens
)

func (f Format) String() string {
	switch f {
	case FormatWords:
		return "words"
	case FormatPieces:
		return "pieces"
	case FormatHexBytes:
		return "hex-bytes"
	default:
		return "empty"
	}
}

// Profile contains statistics about a sample of encoded lines.
type Profile struct {
	Format         Format
	Lines          int     // lines sampled
	Tokens         int     // tokens sampled
	UniqueTokens   int     // distinct tokens
	TokensPerLine  float64 // average line length in tokens
	ASCIIRatio     float64 // fraction of printable ASCII bytes
	HexRatio       float64 // fraction of tokens that are 0xNN
	PieceRatio     float64 // fraction of tokens carrying a boundary marker
	SegmentedLines int     // lines that look like segmenter output
	ByteFallback   bool    // <0xNN> pieces seen
}

// sampleSize bounds how much of the input is analysed.
const sampleSize = 8192

// Detect analyzes data and returns its profile.
// Uses the first 8KB, cut at a line boundary, if data is larger.
func Detect(data []byte) Profile {
	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
		if i := bytes.LastIndexByte(sample, '\n'); i > 0 {
			sample = sample[:i]
		}
	}

	var p Profile
	if len(sample) == 0 {
		return p
	}

	// Count ASCII printable characters (0x20-0x7E, plus \t, \n, \r)
	asciiCount := 0
	for _, b := range sample {
		if (b >= 0x20 && b <= 0x7E) || b == '\t' || b == '\n' || b == '\r' {
			asciiCount++
		}
	}
	p.ASCIIRatio = float64(asciiCount) / float64(len(sample))

	seen := make(map[string]bool)
	hex, pieces := 0, 0
	for _, line := range strings.Split(string(sample), "\n") {
		toks := strings.Fields(line)
		if len(toks) == 0 {
			continue
		}
		p.Lines++
		if segmented(toks) {
			p.SegmentedLines++
		}
		for _, tok := range toks {
			p.Tokens++
			seen[tok] = true
			switch {
			case strings.HasPrefix(tok, "0x") && isHex(tok):
				hex++
			case strings.Contains(tok, bpe.Boundary):
				pieces++
			}
			if _, ok := bpe.ParseBytePiece(tok); ok {
				p.ByteFallback = true
			}
		}
	}

	if p.Tokens == 0 {
		return p
	}
	p.UniqueTokens = len(seen)
	p.TokensPerLine = float64(p.Tokens) / float64(p.Lines)
	p.HexRatio = float64(hex) / float64(p.Tokens)
	p.PieceRatio = float64(pieces) / float64(p.Tokens)

	// Classify
	switch {
	case p.HexRatio > 0.95:
		p.Format = FormatHexBytes
	case p.SegmentedLines*2 > p.Lines:
		p.Format = FormatPieces
	default:
		p.Format = FormatWords
	}
	return p
}

func isHex(tok string) bool {
	_, ok := vocab.ParseHexToken(tok)
	return ok
}

// Segmented reports whether line looks like the output of a subword
// segmenter: its first token starts with the boundary marker and no token
// carries the marker anywhere but at its start.
func Segmented(line string) bool {
	return segmented(strings.Fields(line))
}

func segmented(toks []string) bool {
	if len(toks) == 0 || !strings.HasPrefix(toks[0], bpe.Boundary) {
		return false
	}
	for _, tok := range toks {
		if strings.Contains(strings.TrimPrefix(tok, bpe.Boundary), bpe.Boundary) {
			return false
		}
	}
	return true
}

// DetectLine classifies a single line.
func DetectLine(line string) Format {
	return Detect([]byte(line)).Format
}
