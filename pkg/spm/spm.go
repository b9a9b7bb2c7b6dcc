// Package spm segments text with a trained sentencepiece model.
//
// Encoded datasets store one sentence per line as space-separated pieces;
// the vocabulary codec maps those pieces to ids.
package spm

import (
	"strings"

	sentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/pkg/errors"

	"github.com/ha1tch/nmtlab/pkg/bpe"
)

// WordBoundary is the piece prefix sentencepiece uses for a leading space.
const WordBoundary = bpe.Boundary

// Model wraps a loaded sentencepiece processor.
type Model struct {
	proc *sentencepiece.Processor
	path string
}

// Load reads a sentencepiece .model file.
func Load(path string) (*Model, error) {
	proc, err := sentencepiece.NewProcessorFromPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load sentencepiece model %s", path)
	}
	return &Model{proc: proc, path: path}, nil
}

// Path returns the file the model was loaded from.
func (m *Model) Path() string {
	return m.path
}

// VocabSize returns the number of pieces known to the model.
func (m *Model) VocabSize() int {
	return m.proc.ModelInfo().VocabularySize
}

// Pieces segments text into sentencepiece pieces.
func (m *Model) Pieces(text string) []string {
	tokens := m.proc.Encode(text)
	pieces := make([]string, len(tokens))
	for i, tok := range tokens {
		pieces[i] = tok.Text
	}
	return pieces
}

// EncodeLine returns text as a line of space-separated pieces.
func (m *Model) EncodeLine(text string) string {
	return strings.Join(m.Pieces(text), " ")
}

// DecodePieces joins pieces back into text. Word boundaries become spaces
// and byte-fallback pieces become the bytes they stand for.
func DecodePieces(pieces []string) string {
	var buf []byte
	for _, p := range pieces {
		if b, ok := bpe.ParseBytePiece(p); ok {
			buf = append(buf, b)
			continue
		}
		buf = append(buf, p...)
	}
	s := strings.ToValidUTF8(string(buf), "\uFFFD")
	s = strings.ReplaceAll(s, WordBoundary, " ")
	return strings.TrimSpace(s)
}

// DecodeLine is DecodePieces for a space-separated line.
func DecodeLine(line string) string {
	return DecodePieces(strings.Fields(line))
}
