package directory_test

import (
	"context"
	"testing"

	"github.com/dshills/taggable/internal/convert"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/session"
	"github.com/dshills/taggable/internal/tag"
)

func TestDirectoryBacksSession(t *testing.T) {
	dir := directory.New(directory.WithLogger(logging.NullLogger))
	dir.Replace([]directory.Entity{
		{ID: "alice", Name: "Alice", Kind: "person"},
		{ID: "bob", Name: "Bob", Kind: "person"},
	})

	set := tag.MustPolicySet([]tag.Policy{
		{Prefix: "@", Pattern: `[A-Za-z0-9_-]+`, Style: "mention"},
	})
	s := session.New(set, session.Host[directory.Entity]{
		Converter: dir.Converter(),
		Search:    dir.Search,
		Pick:      session.PickFirst[directory.Entity],
	}, session.WithLogger(logging.NullLogger))
	defer func() { _ = s.Close() }()

	s.Insert("Hi @Al")
	ok, err := s.Complete(context.Background())
	if err != nil || !ok {
		t.Fatalf("Complete = %v, %v", ok, err)
	}
	canonical := s.CanonicalText()
	if canonical != "Hi @alice " {
		t.Fatalf("CanonicalText = %q", canonical)
	}

	decoded, err := convert.FromCanonical(context.Background(), canonical, set, dir.Converter(), dir.Resolve)
	if err != nil {
		t.Fatalf("FromCanonical: %v", err)
	}
	if len(decoded.Tags) != 1 || decoded.Tags[0].Entity.ID != "alice" {
		t.Errorf("decoded tags = %+v", decoded.Tags)
	}
	if decoded.Text != s.Text() {
		t.Errorf("decoded text = %q, want %q", decoded.Text, s.Text())
	}
}
