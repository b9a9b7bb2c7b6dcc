// Package vocab maps subword pieces to integer ids and back.
//
// A Vocabulary is built from a tab-separated vocabulary file, from an
// in-memory token list, or from the 256-value byte alphabet. Ids follow
// the order of the source and are never re-sorted, so an artifact built
// once keeps the same ids across runs.
package vocab

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/ha1tch/nmtlab/pkg/dataset"
)

var (
	// ErrMalformedVocab is returned when the special ids of a built
	// vocabulary do not hold the special pieces.
	ErrMalformedVocab = errors.New("vocab: special tokens are not at their ids")

	// ErrUnknownSubword is returned for subword models the codec cannot load.
	ErrUnknownSubword = errors.New("vocab: unknown subword model")

	// ErrOutOfRange is returned when a byte codec meets an id that is not a byte.
	ErrOutOfRange = errors.New("vocab: id out of byte range")

	// ErrInvalidUTF8 is returned when decoded bytes are not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("vocab: bytes are not valid UTF-8")
)

// Specials holds the ids and pieces of the reserved tokens.
type Specials struct {
	UnkID, SosID, EosID, PadID int
	Unk, Sos, Eos, Pad         string
}

// DefaultSpecials returns <unk>=0, <s>=1, </s>=2, <pad>=3.
func DefaultSpecials() Specials {
	return Specials{
		UnkID: 0, SosID: 1, EosID: 2, PadID: 3,
		Unk: "<unk>", Sos: "<s>", Eos: "</s>", Pad: "<pad>",
	}
}

// Shift returns a copy with every id moved by n.
func (s Specials) Shift(n int) Specials {
	s.UnkID += n
	s.SosID += n
	s.EosID += n
	s.PadID += n
	return s
}

// Entries returns the specials as vocabulary lines in unk, sos, eos, pad
// order with frequency "0".
func (s Specials) Entries() []Entry {
	return []Entry{
		{Token: s.Unk, Freq: "0"},
		{Token: s.Sos, Freq: "0"},
		{Token: s.Eos, Freq: "0"},
		{Token: s.Pad, Freq: "0"},
	}
}

func (s Specials) pieces() map[string]bool {
	return map[string]bool{s.Unk: true, s.Sos: true, s.Eos: true, s.Pad: true}
}

// Entry is one vocabulary line. Freq is kept as read (frequency or log
// probability) and is informational only.
type Entry struct {
	Token string
	Freq  string
}

// Options configure a Vocabulary. Zero values select the defaults.
type Options struct {
	Specials  Specials
	MaxTokens int    // truncation length including <s> and </s>; 0 disables
	Lang      string // language tag, e.g. "en" or "de-en"
}

// Vocabulary is a token<->id mapping.
type Vocabulary struct {
	base      Specials // as configured, before any byte offset
	specials  Specials // in effect for the current build
	maxTokens int
	lang      string
	subword   dataset.Subword

	voc2idx  map[string]int
	idx2voc  map[int]string
	voc2freq map[string]string
	built    bool

	segment func(string) []string
}

// New returns an unbuilt vocabulary.
func New(opts Options) *Vocabulary {
	sp := opts.Specials
	if sp == (Specials{}) {
		sp = DefaultSpecials()
	}
	return &Vocabulary{
		base:      sp,
		specials:  sp,
		maxTokens: opts.MaxTokens,
		lang:      opts.Lang,
		voc2idx:   map[string]int{},
		idx2voc:   map[int]string{},
		voc2freq:  map[string]string{},
	}
}

// Specials returns the special tokens in effect.
func (v *Vocabulary) Specials() Specials { return v.specials }

// Lang returns the language tag.
func (v *Vocabulary) Lang() string { return v.lang }

// Subword returns the subword model the vocabulary was built for.
func (v *Vocabulary) Subword() dataset.Subword { return v.subword }

// MaxTokens returns the default truncation length.
func (v *Vocabulary) MaxTokens() int { return v.maxTokens }

// Built reports whether a build has completed.
func (v *Vocabulary) Built() bool { return v.built }

// Len returns the number of ids.
func (v *Vocabulary) Len() int { return len(v.idx2voc) }

// ID returns the id of token.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.voc2idx[token]
	return id, ok
}

// Token returns the piece of id.
func (v *Vocabulary) Token(id int) (string, bool) {
	tok, ok := v.idx2voc[id]
	return tok, ok
}

// Freq returns the frequency string read for token.
func (v *Vocabulary) Freq(token string) string {
	return v.voc2freq[token]
}

// Tokens returns all pieces in id order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.idx2voc))
	for i := range out {
		out[i] = v.idx2voc[i]
	}
	return out
}

// BuildFromTokens assigns ids by position in tokens. The list must
// already contain the special tokens at their ids. A failed build leaves
// the vocabulary unchanged.
func (v *Vocabulary) BuildFromTokens(tokens []Entry) error {
	if err := v.build(tokens, v.base); err != nil {
		return err
	}
	if v.subword.IsBytes() {
		v.subword = ""
	}
	return nil
}

func (v *Vocabulary) build(tokens []Entry, sp Specials) error {
	voc2idx := make(map[string]int, len(tokens))
	idx2voc := make(map[int]string, len(tokens))
	voc2freq := make(map[string]string, len(tokens))
	for idx, e := range tokens {
		voc2idx[e.Token] = idx
		idx2voc[idx] = e.Token
		voc2freq[e.Token] = strings.TrimSpace(e.Freq)
	}

	if err := checkSpecials(idx2voc, sp); err != nil {
		return err
	}
	v.voc2idx, v.idx2voc, v.voc2freq = voc2idx, idx2voc, voc2freq
	v.specials = sp
	v.built = true
	return nil
}

func checkSpecials(idx2voc map[int]string, sp Specials) error {
	want := []struct {
		id    int
		piece string
	}{
		{sp.UnkID, sp.Unk},
		{sp.SosID, sp.Sos},
		{sp.EosID, sp.Eos},
		{sp.PadID, sp.Pad},
	}
	for _, w := range want {
		if got, ok := idx2voc[w.id]; !ok || got != w.piece {
			return errors.Wrapf(ErrMalformedVocab, "id %d: got %q, want %q", w.id, got, w.piece)
		}
	}
	return nil
}

// BuildFromBytes builds the 256 byte tokens 0x00..0xff followed by the
// special tokens, so byte b has id b and the specials start at 256.
func (v *Vocabulary) BuildFromBytes() error {
	tokens := make([]Entry, 0, 256+4)
	for b := 0; b < 256; b++ {
		tokens = append(tokens, Entry{Token: HexToken(byte(b)), Freq: "0"})
	}

	sp := v.base.Shift(256)
	tokens = append(tokens, sp.Entries()...)
	if err := v.build(tokens, sp); err != nil {
		return err
	}
	v.subword = dataset.SubwordBytes
	v.segment = nil
	return nil
}

// HexToken formats b as a byte-vocabulary token, e.g. "0x0a".
func HexToken(b byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{'0', 'x', hex[b>>4], hex[b&0x0f]})
}

// ParseHexToken parses "0xNN" (any case, prefix optional).
func ParseHexToken(tok string) (byte, bool) {
	t := strings.TrimPrefix(strings.ToLower(tok), "0x")
	if t == "" || len(t) > 2 {
		return 0, false
	}
	n, err := strconv.ParseUint(t, 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(n), true
}

func (v *Vocabulary) maxFor(maxLength int) int {
	if maxLength > 0 {
		return maxLength
	}
	return v.maxTokens
}

// Encode maps a line of space-separated pieces to ids, truncating to
// MaxTokens. See EncodeMax.
func (v *Vocabulary) Encode(text string, addSpecials bool) []int {
	return v.EncodeMax(text, addSpecials, 0)
}

// EncodeMax maps a line of space-separated pieces to ids. Unknown pieces
// map to the unknown id. With maxLength > 0 the output holds at most
// maxLength ids, two of which are reserved for <s> and </s> when
// addSpecials is set. A maxLength of 0 falls back to MaxTokens.
func (v *Vocabulary) EncodeMax(text string, addSpecials bool, maxLength int) []int {
	tokens := splitTokens(text)
	idxs := make([]int, 0, len(tokens)+2)
	if v.subword.IsBytes() {
		for _, tok := range tokens {
			if b, ok := ParseHexToken(tok); ok {
				idxs = append(idxs, v.voc2idx[HexToken(b)])
			} else {
				idxs = append(idxs, v.specials.UnkID)
			}
		}
	} else {
		for _, tok := range tokens {
			id, ok := v.voc2idx[tok]
			if !ok {
				id = v.specials.UnkID
			}
			idxs = append(idxs, id)
		}
	}
	return wrap(idxs, addSpecials, v.maxFor(maxLength), v.specials.SosID, v.specials.EosID)
}

// splitTokens splits on single spaces after trimming surrounding
// whitespace. An empty line has no tokens.
func splitTokens(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

// wrap truncates idxs and surrounds them with sos/eos.
func wrap(idxs []int, addSpecials bool, maxLength, sos, eos int) []int {
	if maxLength > 0 {
		limit := maxLength
		if addSpecials {
			limit -= 2
		}
		if limit < 0 {
			limit = 0
		}
		if len(idxs) > limit {
			idxs = idxs[:limit]
		}
	}
	if !addSpecials {
		return idxs
	}
	out := make([]int, 0, len(idxs)+2)
	out = append(out, sos)
	out = append(out, idxs...)
	return append(out, eos)
}

// stripSpecials drops everything up to and including the first sos and
// everything from the first eos on. Missing markers are ignored.
func stripSpecials(idxs []int, sos, eos int) []int {
	for i, id := range idxs {
		if id == sos {
			idxs = idxs[i+1:]
			break
		}
	}
	for i, id := range idxs {
		if id == eos {
			idxs = idxs[:i]
			break
		}
	}
	return idxs
}

// Decode maps ids back to text. Byte vocabularies decode to raw text
// (see DecodeBytes); others join pieces with single spaces, using the
// unknown piece for ids outside the vocabulary.
func (v *Vocabulary) Decode(idxs []int, removeSpecials bool) string {
	if v.subword.IsBytes() {
		return v.DecodeBytes(idxs, removeSpecials)
	}
	return v.DecodeText(idxs, removeSpecials)
}

// DecodeText joins the pieces of idxs with single spaces.
func (v *Vocabulary) DecodeText(idxs []int, removeSpecials bool) string {
	if removeSpecials {
		idxs = stripSpecials(idxs, v.specials.SosID, v.specials.EosID)
	}
	tokens := make([]string, len(idxs))
	for i, id := range idxs {
		tok, ok := v.idx2voc[id]
		if !ok {
			tok = v.specials.Unk
		}
		tokens[i] = tok
	}
	return strings.Join(tokens, " ")
}

// DecodeBytes turns hex tokens back into bytes and returns them as UTF-8
// text, replacing invalid sequences with U+FFFD. Ids that are not byte
// tokens are dropped.
func (v *Vocabulary) DecodeBytes(idxs []int, removeSpecials bool) string {
	if removeSpecials {
		idxs = stripSpecials(idxs, v.specials.SosID, v.specials.EosID)
	}
	buf := make([]byte, 0, len(idxs))
	for _, id := range idxs {
		tok, ok := v.idx2voc[id]
		if !ok {
			continue
		}
		if b, ok := ParseHexToken(tok); ok && strings.HasPrefix(tok, "0x") {
			buf = append(buf, b)
		}
	}
	if utf8.Valid(buf) {
		return string(buf)
	}
	return strings.ToValidUTF8(string(buf), string(utf8.RuneError))
}

// Segment splits raw text into pieces with the model attached by
// BuildFromDataset, or on whitespace when there is none.
func (v *Vocabulary) Segment(text string) []string {
	if v.segment != nil {
		return v.segment(text)
	}
	return strings.Fields(text)
}

// EncodeRaw segments raw text and encodes the pieces.
func (v *Vocabulary) EncodeRaw(text string, addSpecials bool) []int {
	if v.subword.IsBytes() {
		return v.Encode(HexLine([]byte(text)), addSpecials)
	}
	return v.Encode(strings.Join(v.Segment(text), " "), addSpecials)
}

// HexLine formats data as space-separated hex tokens.
func HexLine(data []byte) string {
	toks := make([]string, len(data))
	for i, b := range data {
		toks[i] = HexToken(b)
	}
	return strings.Join(toks, " ")
}
