package detect

import (
	"strings"
	"testing"

	"github.com/ha1tch/nmtlab/pkg/bpe"
)

func TestDetectFormats(t *testing.T) {
	testCases := []struct {
		name string
		data string
		want Format
	}{
		{"empty", "", FormatEmpty},
		{"blank lines", "\n  \n", FormatEmpty},
		{"words", "the cat sat on the mat\na dog\n", FormatWords},
		{"pieces", "▁the ▁c at ▁sat\n▁a ▁do g\n", FormatPieces},
		{"hex", "0x48 0x65 0x6c 0x6c 0x6f\n0x0a\n", FormatHexBytes},
		{"mostly words", "0x48 is a hex number\n", FormatWords},
		{"char pieces", "▁d i e ▁s c h n e l l e ▁b r a u n e ▁k a t z e\n▁s p r i n g t ▁ü b e r\n", FormatPieces},
		{"marker inside words", "the ca▁t sat\n▁a b▁c\n", FormatWords},
		{"text without markers", "▁the cat\nthe ▁cat\nthe cat\n", FormatWords},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Detect([]byte(tc.data))
			if p.Format != tc.want {
				t.Errorf("format: got %v, want %v", p.Format, tc.want)
			}
		})
	}
}

func TestSegmented(t *testing.T) {
	testCases := []struct {
		line string
		want bool
	}{
		{"", false},
		{"▁the ▁c at", true},
		{"▁d i e ▁s c h n e l l e", true},
		{"▁caf <0xC3> <0xA9>", true},
		{"▁", true},
		{"the ▁cat", false},
		{"▁the c▁at", false},
		{"▁▁the", false},
	}
	for _, tc := range testCases {
		if got := Segmented(tc.line); got != tc.want {
			t.Errorf("Segmented(%q): got %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestDetectStats(t *testing.T) {
	p := Detect([]byte("a b\nb c d\n"))

	if p.Lines != 2 {
		t.Errorf("lines: got %d, want 2", p.Lines)
	}
	if p.Tokens != 5 {
		t.Errorf("tokens: got %d, want 5", p.Tokens)
	}
	if p.UniqueTokens != 4 {
		t.Errorf("unique: got %d, want 4", p.UniqueTokens)
	}
	if p.TokensPerLine != 2.5 {
		t.Errorf("tokens per line: got %f, want 2.5", p.TokensPerLine)
	}
	if p.ASCIIRatio != 1 {
		t.Errorf("ASCII ratio: got %f, want 1", p.ASCIIRatio)
	}
}

func TestDetectByteFallback(t *testing.T) {
	p := Detect([]byte("▁caf <0xC3> <0xA9>\n"))
	if !p.ByteFallback {
		t.Error("byte fallback pieces not detected")
	}
	if p.Format != FormatPieces {
		t.Errorf("format: got %v, want pieces", p.Format)
	}
}

func TestDetectLargeInputSampled(t *testing.T) {
	line := "0x41 0x42 0x43 0x44\n"
	data := strings.Repeat(line, 2000)

	p := Detect([]byte(data))
	if p.Format != FormatHexBytes {
		t.Errorf("format: got %v, want hex-bytes", p.Format)
	}
	if p.Lines >= 2000 {
		t.Errorf("expected sampling, analysed %d lines", p.Lines)
	}
	// Sample is cut at a line boundary
	if p.Tokens != p.Lines*4 {
		t.Errorf("partial line sampled: %d tokens in %d lines", p.Tokens, p.Lines)
	}
}

func TestFormatString(t *testing.T) {
	for f, want := range map[Format]string{
		FormatEmpty:    "empty",
		FormatWords:    "words",
		FormatPieces:   "pieces",
		FormatHexBytes: "hex-bytes",
	} {
		if f.String() != want {
			t.Errorf("%d: got %q, want %q", f, f.String(), want)
		}
	}
	if DetectLine("0xff 0x00") != FormatHexBytes {
		t.Error("DetectLine: hex line not detected")
	}
}

func TestDetectCharSegmentation(t *testing.T) {
	// Long words put few markers among many tokens; the line shape decides
	line := bpe.NewSegmenter(nil, false).SegmentLine("die schnelle braune katze springt über den faulen hund")
	p := Detect([]byte(line + "\n"))
	if p.PieceRatio > 0.2 {
		t.Fatalf("piece ratio: got %f, expected a low ratio", p.PieceRatio)
	}
	if p.Format != FormatPieces {
		t.Errorf("format: got %v, want pieces", p.Format)
	}
	if p.SegmentedLines != 1 {
		t.Errorf("segmented lines: got %d, want 1", p.SegmentedLines)
	}
}
