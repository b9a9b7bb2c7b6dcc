package vocab

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestBytesVocabularyEncode(t *testing.T) {
	testCases := []struct {
		name  string
		codec BytesVocabulary
		text  string
		add   bool
		max   int
		want  []int
	}{
		{"text", BytesVocabulary{}, "Hi", true, 0, []int{256, 72, 105, 257}},
		{"no specials", BytesVocabulary{}, "Hi", false, 0, []int{72, 105}},
		{"utf-8", BytesVocabulary{}, "é", false, 0, []int{0xc3, 0xa9}},
		{"hex", BytesVocabulary{HexInput: true}, "0x48 0x69", true, 0, []int{256, 72, 105, 257}},
		{"truncate", BytesVocabulary{}, "abcdef", true, 4, []int{256, 97, 98, 257}},
		{"truncate no specials", BytesVocabulary{}, "abcdef", false, 4, []int{97, 98, 99, 100}},
		{"codec max", BytesVocabulary{MaxTokens: 3}, "abc", true, 0, []int{256, 97, 257}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.codec.EncodeMax(tc.text, tc.add, tc.max)
			if err != nil {
				t.Fatalf("EncodeMax: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("EncodeMax(%q): got %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestBytesVocabularyBadHex(t *testing.T) {
	codec := BytesVocabulary{HexInput: true}
	if _, err := codec.Encode("0x48 nope", true); err == nil {
		t.Error("expected error for invalid hex token")
	}
}

func TestBytesVocabularyDecode(t *testing.T) {
	codec := BytesVocabulary{}

	got, err := codec.Decode([]int{256, 72, 105, 257, 33}, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "Hi" {
		t.Errorf("Decode: got %q, want %q", got, "Hi")
	}

	// Padding left after stripping is not a byte
	_, err = codec.Decode([]int{72, 258}, true)
	if errors.Cause(err) != ErrOutOfRange {
		t.Errorf("pad id: got %v, want ErrOutOfRange", err)
	}

	_, err = codec.Decode([]int{256, 72}, false)
	if errors.Cause(err) != ErrOutOfRange {
		t.Errorf("kept sos: got %v, want ErrOutOfRange", err)
	}

	// "é" cut after its first byte
	_, err = codec.Decode([]int{256, 0xc3, 257}, true)
	if errors.Cause(err) != ErrInvalidUTF8 {
		t.Errorf("partial rune: got %v, want ErrInvalidUTF8", err)
	}

	hex := BytesVocabulary{HexInput: true}
	if got, err := hex.Decode([]int{0xc3}, true); err != nil || got != "0xc3" {
		t.Errorf("hex partial rune: got %q, %v", got, err)
	}
}

func TestBytesVocabularyRoundTrip(t *testing.T) {
	for _, codec := range []BytesVocabulary{{}, {HexInput: true}} {
		text := "Hello world! 🌱"
		if codec.HexInput {
			text = HexLine([]byte(text))
		}
		ids, err := codec.Encode(text, true)
		if err != nil {
			t.Fatal(err)
		}
		got, err := codec.Decode(ids, true)
		if err != nil {
			t.Fatal(err)
		}
		if got != text {
			t.Errorf("round trip (hex=%v): got %q, want %q", codec.HexInput, got, text)
		}
	}

	if (BytesVocabulary{}).Len() != 259 {
		t.Errorf("Len: got %d, want 259", BytesVocabulary{}.Len())
	}
}
