package report

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")

	s, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := s.Save(ctx, Flatten(sampleScores())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A second report run updates values in place
	updated := []Row{{"multi30k_de-en_original", "multi30k_de-en_original", "transformer_bytes", "beam1__sacrebleu_bleu_score", 33}}
	if err := s.Save(ctx, updated); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = OpenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	all, err := s.Rows(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("rows: got %d, want 5", len(all))
	}

	bleu, err := s.Rows(ctx, "beam1__sacrebleu_bleu_score")
	if err != nil {
		t.Fatal(err)
	}
	if len(bleu) != 3 {
		t.Fatalf("bleu rows: got %d, want 3", len(bleu))
	}
	// ordered by train, eval, run
	if bleu[0].EvalDataset != "europarl_de-en_100k" {
		t.Errorf("first row: got %+v", bleu[0])
	}
	if bleu[1].RunName != "transformer_bytes" || bleu[1].Value != 33 {
		t.Errorf("updated row: got %+v", bleu[1])
	}
}
