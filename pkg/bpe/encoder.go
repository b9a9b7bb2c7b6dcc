package bpe

import (
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru"
)

// SegmentCacheSize is the number of segmented words a Segmenter keeps.
const SegmentCacheSize = 1 << 16

// FastTrie is a byte trie used for longest-prefix piece matching.
type FastTrie struct {
	root *fastTrieNode
}

type fastTrieNode struct {
	children [256]*fastTrieNode // direct array for O(1) child lookup
	isPiece  bool
}

// NewFastTrie creates a new fast trie.
func NewFastTrie() *FastTrie {
	return &FastTrie{root: &fastTrieNode{}}
}

// Insert adds a piece to the trie.
func (t *FastTrie) Insert(piece string) {
	node := t.root
	for i := 0; i < len(piece); i++ {
		b := piece[i]
		if node.children[b] == nil {
			node.children[b] = &fastTrieNode{}
		}
		node = node.children[b]
	}
	node.isPiece = true
}

// LongestMatch returns the byte length of the longest piece that prefixes
// text, or 0 if none does.
func (t *FastTrie) LongestMatch(text string) int {
	node := t.root
	best := 0
	for i := 0; i < len(text); i++ {
		child := node.children[text[i]]
		if child == nil {
			break
		}
		node = child
		if node.isPiece {
			best = i + 1
		}
	}
	return best
}

// Segmenter splits sentences into the pieces of a trained vocabulary
// using greedy longest match.
type Segmenter struct {
	trie         *FastTrie
	byteFallback bool
	cache        *lru.Cache
}

// NewSegmenter builds a segmenter over pieces. With byteFallback set,
// characters not covered by any piece are emitted as <0xNN> byte pieces;
// otherwise they are emitted as-is and map to the unknown id downstream.
func NewSegmenter(pieces []string, byteFallback bool) *Segmenter {
	trie := NewFastTrie()
	for _, p := range pieces {
		if p != "" {
			trie.Insert(p)
		}
	}
	cache, _ := lru.New(SegmentCacheSize)
	return &Segmenter{trie: trie, byteFallback: byteFallback, cache: cache}
}

// Segment returns the pieces of text. Every word starts with Boundary.
func (s *Segmenter) Segment(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	result := make([]string, 0, len(text)/2+1)
	for _, w := range words {
		result = append(result, s.segmentWord(w)...)
	}
	return result
}

func (s *Segmenter) segmentWord(word string) []string {
	if pieces, ok := s.cache.Get(word); ok {
		return pieces.([]string)
	}

	w := Boundary + word
	var pieces []string
	pos := 0
	for pos < len(w) {
		n := s.trie.LongestMatch(w[pos:])
		if n > 0 {
			pieces = append(pieces, w[pos:pos+n])
			pos += n
			continue
		}

		// No match - fall back to a single character
		_, size := utf8.DecodeRuneInString(w[pos:])
		if s.byteFallback {
			for i := pos; i < pos+size; i++ {
				pieces = append(pieces, BytePiece(w[i]))
			}
		} else {
			pieces = append(pieces, w[pos:pos+size])
		}
		pos += size
	}
	s.cache.Add(word, pieces)
	return pieces
}

// SegmentLine returns Segment(text) joined by single spaces.
func (s *Segmenter) SegmentLine(text string) string {
	return strings.Join(s.Segment(text), " ")
}
