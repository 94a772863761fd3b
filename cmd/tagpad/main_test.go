package main

import (
	"context"
	"testing"

	"github.com/dshills/taggable/internal/config"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/logging"
)

func TestScoringWeights(t *testing.T) {
	if got, want := scoringWeights(config.Default().Lookup.Scoring), directory.DefaultWeights(); got != want {
		t.Errorf("default scoring = %+v, want %+v", got, want)
	}

	sc := config.Default().Lookup.Scoring
	sc.Prefix = 0
	sc.ExactPrefix = 0
	got := scoringWeights(sc)
	if got.Prefix != 0 || got.ExactPrefix != 0 {
		t.Errorf("weights = %+v, want prefix bonuses off", got)
	}
	if got.Base != directory.DefaultWeights().Base {
		t.Errorf("Base = %d, want the default", got.Base)
	}
}

func TestOpenDirectoryUsesLookupConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Lookup.Limit = 1
	cfg.Lookup.CacheSize = 0

	dir, err := openDirectory(context.Background(), cfg, logging.NullLogger)
	if err != nil {
		t.Fatalf("openDirectory: %v", err)
	}
	dir.Replace([]directory.Entity{
		{ID: "alice", Name: "Alice", Kind: "person"},
		{ID: "alan", Name: "Alan", Kind: "person"},
	})

	got, err := dir.Search(context.Background(), "@", "al")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Search = %v, want one result", got)
	}
}
