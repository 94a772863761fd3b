package session

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/taggable/internal/engine/buffer"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/tag"
)

const (
	ts = string(tag.TagStart)
	te = string(tag.TagEnd)
	fl = string(tag.Filler)
)

type person struct {
	ID   string
	Name string
}

var (
	ada      = person{ID: "ada", Name: "Ada"}
	alice    = person{ID: "alice", Name: "Alice"}
	alan     = person{ID: "alan", Name: "Alan"}
	countess = person{ID: "adalovelace", Name: "Ada"} // canonical longer than display
)

var personConv = tag.Converter[person]{
	Display:   func(p person) string { return p.Name },
	Canonical: func(p person) string { return p.ID },
}

func testPolicies(t testing.TB) *tag.PolicySet {
	t.Helper()
	set, err := tag.NewPolicySet([]tag.Policy{
		{Prefix: "@", Pattern: `[A-Za-z]+`, Style: "mention"},
		{Prefix: "#", Pattern: `[a-z0-9]+`, Style: "topic"},
	})
	if err != nil {
		t.Fatalf("NewPolicySet: %v", err)
	}
	return set
}

func newTestSession(t testing.TB, host Host[person], opts ...Option) *Session[person] {
	t.Helper()
	if host.Converter.Display == nil {
		host.Converter = personConv
	}
	opts = append([]Option{WithLogger(logging.NullLogger)}, opts...)
	s := New(testPolicies(t), host, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func searchPeople(people ...person) SearchFunc[person] {
	return func(_ context.Context, _ string, query string) ([]person, error) {
		var out []person
		for _, p := range people {
			if strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(query)) {
				out = append(out, p)
			}
		}
		return out, nil
	}
}

// bufferForm returns the buffer text of p tagged with "@".
func bufferForm(t testing.TB, p person) string {
	t.Helper()
	pol, _ := testPolicies(t).ByPrefix("@")
	return tag.Encode(p, pol, personConv).BufferForm()
}

// wrote returns the edited range [lo, hi).
func wrote(lo, hi int) *buffer.Range {
	r := buffer.NewRange(lo, hi)
	return &r
}

func runeLen(s string) int {
	return len([]rune(s))
}

// checkInvariants fails the test if v breaks a session invariant.
func checkInvariants(t testing.TB, s *Session[person], v Value) {
	t.Helper()
	runes := []rune(v.Text)
	if d := tag.FindDangling(runes); len(d) > 0 {
		t.Fatalf("dangling markers %v in %q", d, v.Text)
	}
	spans := tag.FindSpans(runes)
	reg := s.Registry()
	for _, sp := range spans {
		if sp.StrictlyContains(v.Selection.Anchor) || sp.StrictlyContains(v.Selection.Head) {
			t.Fatalf("selection %s inside tag %s of %q", v.Selection, sp, v.Text)
		}
		if !reg.Has(sp.Key(runes)) {
			t.Fatalf("unregistered tag %q in %q", sp.Key(runes), v.Text)
		}
	}
	for i, r := range runes {
		if r != tag.Filler {
			continue
		}
		if _, ok := tag.SpanAt(spans, i); !ok {
			t.Fatalf("filler outside tag at %d in %q", i, v.Text)
		}
	}
}
