package bpe

import (
	"reflect"
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	lines := []string{"the cat sat", "the dog", "a cat"}
	got := CountWords(lines, 0)
	want := []Entry{{"cat", 2}, {"the", 2}, {"a", 1}, {"dog", 1}, {"sat", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountWords: got %v, want %v", got, want)
	}

	if got := CountWords(lines, 2); len(got) != 2 || got[0].Token != "cat" {
		t.Errorf("CountWords limit: got %v", got)
	}
}

func TestCountChars(t *testing.T) {
	got := CountChars([]string{"ab a"}, 0)
	want := []Entry{{"a", 2}, {Boundary, 2}, {"b", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountChars: got %v, want %v", got, want)
	}
}

func TestTrain(t *testing.T) {
	lines := []string{"low low low lower lowest", "low lower"}
	entries := Train(lines, 0)

	tokens := make(map[string]bool)
	for _, e := range entries {
		if tokens[e.Token] {
			t.Errorf("duplicate piece %q", e.Token)
		}
		tokens[e.Token] = true
	}

	// Base characters are always present
	for _, c := range []string{Boundary, "l", "o", "w", "e", "r", "s", "t"} {
		if !tokens[c] {
			t.Errorf("missing base piece %q", c)
		}
	}

	// The most frequent word should be learned as one piece
	if !tokens[Boundary+"low"] {
		t.Errorf("expected merged piece %q in %v", Boundary+"low", entries)
	}
}

func TestTrainSizeLimit(t *testing.T) {
	lines := []string{strings.Repeat("abc abd abe ", 20)}

	testCases := []struct {
		name string
		size int
		max  int
	}{
		{"below base", 3, 3},
		{"few merges", 9, 9},
		{"unbounded", 0, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries := Train(lines, tc.size)
			if len(entries) > tc.max {
				t.Errorf("too many pieces: got %d, want <= %d", len(entries), tc.max)
			}
			if len(entries) == 0 {
				t.Error("no pieces")
			}
		})
	}
}

func TestTrainDeterministic(t *testing.T) {
	lines := []string{"ab ba ab ba cd dc cd dc"}
	a := Train(lines, 20)
	b := Train(lines, 20)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Train not deterministic:\n%v\n%v", a, b)
	}
}

func TestTrainEmpty(t *testing.T) {
	if got := Train(nil, 10); len(got) != 0 {
		t.Errorf("Train(nil): got %v", got)
	}
}

func TestBytePiece(t *testing.T) {
	for i := 0; i < 256; i++ {
		p := BytePiece(byte(i))
		b, ok := ParseBytePiece(p)
		if !ok || b != byte(i) {
			t.Errorf("ParseBytePiece(%q): got %d, %v", p, b, ok)
		}
	}

	for _, p := range []string{"<0x>", "0x41", "<0xZZ>", "<0x4142>", "a"} {
		if _, ok := ParseBytePiece(p); ok {
			t.Errorf("ParseBytePiece(%q) should fail", p)
		}
	}

	if n := len(ByteEntries()); n != 256 {
		t.Errorf("ByteEntries: got %d, want 256", n)
	}
}

func TestFastTrie(t *testing.T) {
	trie := NewFastTrie()
	trie.Insert("a")
	trie.Insert("ab")
	trie.Insert("abcd")

	testCases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"x", 0},
		{"a", 1},
		{"abc", 2},
		{"abcd", 4},
		{"abcde", 4},
	}

	for _, tc := range testCases {
		if got := trie.LongestMatch(tc.text); got != tc.want {
			t.Errorf("LongestMatch(%q): got %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestSegmenter(t *testing.T) {
	pieces := []string{Boundary + "hel", "lo", Boundary, "w", "o", "r", "l", "d"}

	testCases := []struct {
		name     string
		fallback bool
		text     string
		want     []string
	}{
		{"empty", false, "  ", nil},
		{"known", false, "hello world", []string{Boundary + "hel", "lo", Boundary, "w", "o", "r", "l", "d"}},
		{"unknown char", false, "hex", []string{Boundary, "h", "e", "x"}},
		{"byte fallback", true, "wé", []string{Boundary, "w", "<0xC3>", "<0xA9>"}},
		{"no fallback", false, "wé", []string{Boundary, "w", "é"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seg := NewSegmenter(pieces, tc.fallback)
			got := seg.Segment(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Segment(%q): got %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestSegmentLineTrained(t *testing.T) {
	lines := []string{"the cat", "the hat", "the mat"}
	entries := Train(lines, 0)
	pieces := make([]string, len(entries))
	for i, e := range entries {
		pieces[i] = e.Token
	}

	seg := NewSegmenter(pieces, false)
	line := seg.SegmentLine("the cat")
	if strings.Join(strings.Fields(line), "") != Boundary+"the"+Boundary+"cat" {
		t.Errorf("SegmentLine: got %q", line)
	}
}

func TestSegmenterCache(t *testing.T) {
	seg := NewSegmenter([]string{Boundary + "a", "b"}, false)
	first := seg.SegmentLine("ab ab b")
	second := seg.SegmentLine("ab ab b")
	if first != second {
		t.Errorf("cached: got %q, want %q", second, first)
	}
	if got := seg.cache.Len(); got != 2 {
		t.Errorf("cache entries: got %d, want 2", got)
	}
}
