package main

import (
	"testing"

	"github.com/dshills/taggable/internal/config"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/logging"
)

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	dir := directory.New(directory.WithLogger(logging.NullLogger))
	dir.Replace([]directory.Entity{
		{ID: "alice", Name: "Alice", Kind: "person"},
		{ID: "ada", Name: "Ada Lovelace", Kind: "person"},
		{ID: "golang", Name: "golang", Kind: "topic"},
	})
	return dir
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Lookup.AutoComplete = false
	return cfg
}
