package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func mustNew(t *testing.T, p Params) *Dataset {
	t.Helper()
	ds, err := New(p)
	if err != nil {
		t.Fatalf("New(%+v): %v", p, err)
	}
	return ds
}

func testParams(subword, vocabSize string) Params {
	return Params{
		BasePath:  "/data",
		Name:      " multi30k ",
		LangPair:  " DE-En ",
		SizeName:  "original",
		Subword:   subword,
		VocabSize: vocabSize,
	}
}

func TestNewNormalises(t *testing.T) {
	ds := mustNew(t, testParams("Unigram", "8000"))

	if ds.Name() != "multi30k" {
		t.Errorf("name: got %q, want %q", ds.Name(), "multi30k")
	}
	if ds.LangPair() != "de-en" {
		t.Errorf("lang pair: got %q, want %q", ds.LangPair(), "de-en")
	}
	if ds.SrcLang() != "de" || ds.TrgLang() != "en" {
		t.Errorf("langs: got %s/%s, want de/en", ds.SrcLang(), ds.TrgLang())
	}
	if ds.Subword() != SubwordUnigram {
		t.Errorf("subword: got %q, want %q", ds.Subword(), SubwordUnigram)
	}
	if got := ds.SplitNames(); !reflect.DeepEqual(got, []string{"train", "val", "test"}) {
		t.Errorf("split names: got %v", got)
	}
}

func TestNewBadLangPair(t *testing.T) {
	for _, pair := range []string{"de", "de-en-fr", "-en", ""} {
		p := testParams("none", "")
		p.LangPair = pair
		_, err := New(p)
		if errors.Cause(err) != ErrLangPair {
			t.Errorf("New(%q): got %v, want ErrLangPair", pair, err)
		}
	}
}

func TestVocabSizeID(t *testing.T) {
	testCases := []struct {
		subword string
		size    string
		want    []string
	}{
		{"", "8000", []string{"none"}},
		{"none", "8000", []string{"none"}},
		{"NONE", "", []string{"none"}},
		{"bytes", "8000", []string{"bytes"}},
		{"unigram", "8000", []string{"unigram", "8000"}},
		{"word+bytes", "4000", []string{"word+bytes", "4000"}},
	}

	for _, tc := range testCases {
		ds := mustNew(t, testParams(tc.subword, tc.size))
		if got := ds.VocabSizeID(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("VocabSizeID(%q, %q): got %v, want %v", tc.subword, tc.size, got, tc.want)
		}
	}
}

func TestString(t *testing.T) {
	ds := mustNew(t, testParams("BPE", "16000"))
	if got, want := ds.String(), "multi30k_de-en_original_bpe_16000"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}

	p := testParams("bpe", "16000")
	p.Parent = ds
	child := mustNew(t, p)
	if got, want := child.String(), "multi30k_de-en_original"; got != want {
		t.Errorf("String with parent: got %q, want %q", got, want)
	}

	none := mustNew(t, testParams("", ""))
	if got, want := none.String(), "multi30k_de-en_original_none_none"; got != want {
		t.Errorf("String without subword: got %q, want %q", got, want)
	}
}

func TestPaths(t *testing.T) {
	ds := mustNew(t, testParams("unigram", "8000"))
	root := filepath.Join("/data", "multi30k", "de-en", "original")

	testCases := []struct {
		name string
		got  string
		want string
	}{
		{"path", ds.Path(), root},
		{"raw", ds.RawPath("data.de"), filepath.Join(root, "data", "raw", "data.de")},
		{"split", ds.SplitPath("train.de"), filepath.Join(root, "data", "splits", "train.de")},
		{"pretok", ds.PretokPath("train.de"), filepath.Join(root, "data", "pretokenized", "train.de")},
		{"encoded", ds.EncodedPath("train.de"), filepath.Join(root, "data", "encoded", "unigram", "8000", "train.de")},
		{"vocab", ds.VocabPath("de", false), filepath.Join(root, "vocabs", "unigram", "8000", "de")},
		{"vocab base", ds.VocabPath("de", true), filepath.Join(root, "vocabs", "de")},
		{"data-bin", ds.ModelDataBin("fairseq", ""), filepath.Join(root, "models", "fairseq", "data-bin", "unigram", "8000")},
		{"eval", ds.ModelEvalPath("fairseq", "run1", "europarl"), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "europarl")},
		{"eval split", ds.ModelEvalDataSplitPath("fairseq", "run1", "ev", "test.en"), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "ev", "data", "splits", "test.en")},
		{"eval pretok", ds.ModelEvalDataPretokPath("fairseq", "run1", "ev", "x"), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "ev", "data", "pretokenized", "x")},
		{"eval encoded", ds.ModelEvalDataEncodedPath("fairseq", "run1", "ev", "x"), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "ev", "data", "encoded", "x")},
		{"eval bin", ds.ModelEvalDataBinPath("fairseq", "run1", "ev", "x"), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "ev", "data-bin", "x")},
		{"beam", ds.ModelBeamPath("fairseq", "run1", "ev", 5), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "ev", "beams", "beam5")},
		{"beams", ds.ModelBeamPath("fairseq", "run1", "ev", 0), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "ev", "beams")},
		{"scores", ds.ModelScoresPath("fairseq", "run1", "ev", 1), filepath.Join(root, "models", "fairseq", "runs", "run1", "eval", "ev", "beams", "beam1", "scores")},
		{"logs", ds.ModelLogsPath("autonmt", "run1"), filepath.Join(root, "models", "autonmt", "runs", "run1", "logs")},
		{"checkpoints", ds.ModelCheckpointsPath("autonmt", "run1", "best.pt"), filepath.Join(root, "models", "autonmt", "runs", "run1", "checkpoints", "best.pt")},
		{"plots", ds.PlotsPath(), filepath.Join(root, "plots", "unigram", "8000")},
	}

	for _, tc := range testCases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestEncodedPathWithoutSubword(t *testing.T) {
	ds := mustNew(t, testParams("none", ""))
	want := filepath.Join("/data", "multi30k", "de-en", "original", "data", "encoded", "train.en")
	if got := ds.EncodedPath("train.en"); got != want {
		t.Errorf("EncodedPath: got %q, want %q", got, want)
	}
}

func TestVocabFile(t *testing.T) {
	none := mustNew(t, testParams("none", ""))
	if _, ok := none.VocabFile("en"); ok {
		t.Error("VocabFile should not apply without a subword model")
	}

	split := mustNew(t, testParams("bpe", "8000"))
	got, ok := split.VocabFile("en")
	want := filepath.Join("/data", "multi30k", "de-en", "original", "vocabs", "bpe", "8000", "en")
	if !ok || got != want {
		t.Errorf("VocabFile(en): got %q, %v, want %q", got, ok, want)
	}

	p := testParams("bpe", "8000")
	p.MergeVocabs = true
	merged := mustNew(t, p)
	got, ok = merged.VocabFile("en")
	want = filepath.Join("/data", "multi30k", "de-en", "original", "vocabs", "bpe", "8000", "de-en")
	if !ok || got != want {
		t.Errorf("merged VocabFile: got %q, %v, want %q", got, ok, want)
	}
	if merged.VocabLang("en") != "de-en" {
		t.Errorf("merged VocabLang: got %q", merged.VocabLang("en"))
	}
}

func TestCustomLayout(t *testing.T) {
	p := testParams("bytes", "")
	p.Layout = Layout{Encoded: "enc", Vocabs: "v"}
	ds := mustNew(t, p)

	root := filepath.Join("/data", "multi30k", "de-en", "original")
	if got, want := ds.EncodedPath("a"), filepath.Join(root, "enc", "bytes", "a"); got != want {
		t.Errorf("EncodedPath: got %q, want %q", got, want)
	}
	if got, want := ds.RawPath("a"), filepath.Join(root, "data", "raw", "a"); got != want {
		t.Errorf("RawPath falls back to default: got %q, want %q", got, want)
	}
}

func TestSplitFiles(t *testing.T) {
	ds := mustNew(t, testParams("none", ""))
	want := []string{"train.de", "train.en", "val.de", "val.en", "test.de", "test.en"}
	if got := ds.SplitFiles(); !reflect.DeepEqual(got, want) {
		t.Errorf("SplitFiles: got %v, want %v", got, want)
	}
}

func TestMakeDirs(t *testing.T) {
	p := testParams("word", "4000")
	p.BasePath = t.TempDir()
	ds := mustNew(t, p)

	if err := MakeDirs(ds); err != nil {
		t.Fatalf("MakeDirs: %v", err)
	}
	for _, dir := range ds.Dirs() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("missing dir %s", dir)
		}
	}
}

func TestSubword(t *testing.T) {
	testCases := []struct {
		in       string
		base     Subword
		fallback bool
		known    bool
	}{
		{"unigram+bytes", SubwordUnigram, true, true},
		{"Word", SubwordWord, false, true},
		{"bytes", SubwordBytes, false, true},
		{"", "", false, true},
		{"wordpiece", "wordpiece", false, false},
	}

	for _, tc := range testCases {
		sw := ParseSubword(tc.in)
		if sw.Base() != tc.base {
			t.Errorf("%q base: got %q, want %q", tc.in, sw.Base(), tc.base)
		}
		if sw.ByteFallback() != tc.fallback {
			t.Errorf("%q fallback: got %v, want %v", tc.in, sw.ByteFallback(), tc.fallback)
		}
		if sw.Known() != tc.known {
			t.Errorf("%q known: got %v, want %v", tc.in, sw.Known(), tc.known)
		}
	}
}
