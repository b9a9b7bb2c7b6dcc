package vocab

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Fixed ids of the raw byte codec. There is no unknown id: every byte
// value is representable.
const (
	ByteSosID = 256
	ByteEosID = 257
	BytePadID = 258
)

// BytesVocabulary encodes text as its UTF-8 bytes without a vocabulary
// file. With HexInput set, input and output are lines of "0xNN" tokens
// instead of text.
type BytesVocabulary struct {
	HexInput  bool
	MaxTokens int
}

// Len returns the alphabet size, 256 bytes plus <s>, </s> and <pad>.
func (BytesVocabulary) Len() int {
	return 256 + 3
}

// PadID returns the padding id.
func (BytesVocabulary) PadID() int {
	return BytePadID
}

// Encode is EncodeMax with the codec's MaxTokens.
func (b BytesVocabulary) Encode(text string, addSpecials bool) ([]int, error) {
	return b.EncodeMax(text, addSpecials, 0)
}

// EncodeMax returns the byte values of text, truncated and wrapped like
// Vocabulary.EncodeMax. Hex input that does not parse is an error.
func (b BytesVocabulary) EncodeMax(text string, addSpecials bool, maxLength int) ([]int, error) {
	var idxs []int
	if b.HexInput {
		for _, tok := range splitTokens(text) {
			v, ok := ParseHexToken(tok)
			if !ok {
				return nil, errors.Errorf("vocab: invalid hex token %q", tok)
			}
			idxs = append(idxs, int(v))
		}
	} else {
		idxs = make([]int, len(text))
		for i := 0; i < len(text); i++ {
			idxs[i] = int(text[i])
		}
	}
	if maxLength <= 0 {
		maxLength = b.MaxTokens
	}
	return wrap(idxs, addSpecials, maxLength, ByteSosID, ByteEosID), nil
}

// Decode strips the first <s> and everything from the first </s> when
// removeSpecials is set, then returns the bytes as text. Any remaining
// id outside 0..255 is an error wrapping ErrOutOfRange; bytes that are
// not valid UTF-8 give ErrInvalidUTF8 unless HexInput is set.
func (b BytesVocabulary) Decode(idxs []int, removeSpecials bool) (string, error) {
	if removeSpecials {
		idxs = stripSpecials(idxs, ByteSosID, ByteEosID)
	}

	buf := make([]byte, len(idxs))
	for i, id := range idxs {
		if id < 0 || id > 255 {
			return "", errors.Wrapf(ErrOutOfRange, "id %d at position %d", id, i)
		}
		buf[i] = byte(id)
	}

	if b.HexInput {
		return HexLine(buf), nil
	}
	if !utf8.Valid(buf) {
		return "", errors.Wrapf(ErrInvalidUTF8, "%s", HexLine(buf))
	}
	return string(buf), nil
}
