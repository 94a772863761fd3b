package tag

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

type person struct {
	Name string
	ID   string
}

var personConv = Converter[person]{
	Display:   func(p person) string { return p.Name },
	Canonical: func(p person) string { return p.ID },
}

var mention = Policy{Prefix: "@", Pattern: `[\w-]+`, Style: "mention"}

func TestEncodeLengthInvariant(t *testing.T) {
	tests := []struct {
		name           string
		p              person
		wantDisplay    string
		wantCanonical  string
		displayFillers int
	}{
		{"canonical longer", person{"Ada", "user-0001"}, "@Ada", "@user-0001", 6},
		{"display longer", person{"Grace Hopper", "g7"}, "@Grace Hopper", "@g7", 0},
		{"equal length", person{"Bob", "b42"}, "@Bob", "@b42", 0},
		{"multibyte display", person{"Zoë", "zoe1"}, "@Zoë", "@zoe1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := Encode(tt.p, mention, personConv)

			dl := utf8.RuneCountInString(enc.PaddedDisplay)
			cl := utf8.RuneCountInString(enc.PaddedCanonical)
			if dl != cl {
				t.Fatalf("padded lengths differ: display %d, canonical %d", dl, cl)
			}

			if got := StripFiller(enc.PaddedDisplay); got != tt.wantDisplay {
				t.Errorf("display = %q, want %q", got, tt.wantDisplay)
			}
			if got := StripFiller(enc.PaddedCanonical); got != tt.wantCanonical {
				t.Errorf("canonical = %q, want %q", got, tt.wantCanonical)
			}
			if n := strings.Count(enc.PaddedDisplay, string(Filler)); n != tt.displayFillers {
				t.Errorf("display fillers = %d, want %d", n, tt.displayFillers)
			}
			if !strings.HasSuffix(enc.PaddedDisplay, tt.wantDisplay) {
				t.Errorf("display padding must lead: %q", enc.PaddedDisplay)
			}
			if !strings.HasPrefix(enc.PaddedCanonical, mention.Prefix) {
				t.Errorf("canonical must start with the prefix: %q", enc.PaddedCanonical)
			}
		})
	}
}

func TestEncodeEqualLengthHasNoPadding(t *testing.T) {
	enc := Encode(person{"Bob", "b42"}, mention, personConv)
	if ContainsMarker(enc.PaddedDisplay) || ContainsMarker(enc.PaddedCanonical) {
		t.Errorf("equal lengths should not be padded: %q / %q", enc.PaddedDisplay, enc.PaddedCanonical)
	}
}

func TestEncodedForms(t *testing.T) {
	enc := Encode(person{"Ada", "a1"}, mention, personConv)

	if enc.Plain() != "@Ada" {
		t.Errorf("Plain() = %q", enc.Plain())
	}
	if enc.CanonicalForm() != "@a1" {
		t.Errorf("CanonicalForm() = %q", enc.CanonicalForm())
	}
	form := []rune(enc.BufferForm())
	if form[0] != TagStart || form[len(form)-1] != TagEnd {
		t.Errorf("BufferForm() must be marker delimited: %q", enc.BufferForm())
	}
	if enc.Len() != len(form) {
		t.Errorf("Len() = %d, want %d", enc.Len(), len(form))
	}
}

func TestEncodeStripsMarkersFromHostStrings(t *testing.T) {
	conv := Converter[person]{
		Display:   func(p person) string { return p.Name + string(TagEnd) },
		Canonical: func(p person) string { return p.ID },
	}
	enc := Encode(person{"Eve", "e1"}, mention, conv)
	if enc.Display != "Eve" {
		t.Errorf("markers must not leak into display, got %q", enc.Display)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry[person]()
	ada := Encode(person{"Ada", "a1"}, mention, personConv)
	bob := Encode(person{"Bob", "b1"}, mention, personConv)

	reg.Put(ada)
	reg.Put(bob)
	reg.Put(Encode(person{"Ada", "a1"}, mention, personConv))

	if reg.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", reg.Len())
	}
	if keys := reg.Keys(); keys[0] != ada.Key() || keys[1] != bob.Key() {
		t.Errorf("insertion order not kept: %q", keys)
	}

	got, ok := Decode(ada.Key(), reg)
	if !ok || got.Entity.ID != "a1" {
		t.Errorf("Decode(%q) = %v, %v", ada.Key(), got, ok)
	}
	if _, ok := Decode("@Nobody", reg); ok {
		t.Error("unknown key should not decode")
	}
	if _, ok := Decode[person](ada.Key(), nil); ok {
		t.Error("nil registry should not decode")
	}

	if !reg.HasKeyWithPrefix(strings.TrimSuffix(ada.Key(), "a")) {
		t.Error("tail-truncated key should be detected")
	}
	if !reg.HasKeyWithSuffix("Ada") {
		t.Error("head-truncated key should be detected")
	}
	if reg.HasKeyWithPrefix(ada.Key()) || reg.HasKeyWithSuffix(ada.Key()) {
		t.Error("a whole key is not a truncation")
	}

	reg.Clear()
	if reg.Len() != 0 || reg.Has(ada.Key()) {
		t.Error("Clear should remove everything")
	}
}

func TestPolicySetValidation(t *testing.T) {
	tests := []struct {
		name     string
		policies []Policy
		wantErr  error
	}{
		{"none", nil, ErrNoPolicies},
		{"empty prefix", []Policy{{Prefix: "", Pattern: `\w+`}}, ErrEmptyPrefix},
		{"empty pattern", []Policy{{Prefix: "@", Pattern: ""}}, ErrEmptyPattern},
		{"marker", []Policy{{Prefix: string(Filler), Pattern: `\w+`}}, ErrMarkerInPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicySet(tt.policies)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := NewPolicySet([]Policy{{Prefix: "@", Pattern: `(\w+`}}); err == nil {
		t.Error("expected compile error for unbalanced pattern")
	}
}

func TestPolicySetByPrefix(t *testing.T) {
	set := MustPolicySet([]Policy{mention, {Prefix: "#", Pattern: `\w+`}})

	p, ok := set.ByPrefix("#")
	if !ok || p.Prefix != "#" {
		t.Errorf("ByPrefix(#) = %v, %v", p, ok)
	}
	if _, ok := set.ByPrefix("$"); ok {
		t.Error("unknown prefix should not resolve")
	}
	if set.Len() != 2 || len(set.Policies()) != 2 {
		t.Errorf("expected 2 policies, got %d", set.Len())
	}
}

func TestMatchesPartial(t *testing.T) {
	set := MustPolicySet([]Policy{mention})

	tests := []struct {
		partial string
		want    bool
	}{
		{"", true},
		{"Al", true},
		{"al-b", true},
		{"Al ice", false},
		{"Al!", false},
	}
	for _, tt := range tests {
		if got := set.MatchesPartial(0, tt.partial); got != tt.want {
			t.Errorf("MatchesPartial(%q) = %v, want %v", tt.partial, got, tt.want)
		}
	}
}

func TestFindCanonical(t *testing.T) {
	set := MustPolicySet([]Policy{mention, {Prefix: "#", Pattern: `[a-z]+`}})

	got := set.FindCanonical("Hi @ada-1 and #go, @ bye")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(got), got)
	}
	if got[0].Span != (Span{Start: 3, End: 9}) || got[0].ID != "ada-1" || got[0].Prefix() != "@" {
		t.Errorf("first match = %+v", got[0])
	}
	if got[1].Span != (Span{Start: 14, End: 17}) || got[1].ID != "go" || got[1].Index != 1 {
		t.Errorf("second match = %+v", got[1])
	}
}

func TestFindCanonicalTieBreak(t *testing.T) {
	double := Policy{Prefix: "@@", Pattern: `\w+`, Style: "team"}
	single := Policy{Prefix: "@", Pattern: `[@\w]+`, Style: "user"}

	tests := []struct {
		name      string
		policies  []Policy
		wantStyle Style
		wantID    string
	}{
		{"double first", []Policy{double, single}, "team", "bob"},
		{"single first", []Policy{single, double}, "user", "@bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := MustPolicySet(tt.policies)
			got := set.FindCanonical("@@bob")
			if len(got) != 1 {
				t.Fatalf("expected 1 match, got %+v", got)
			}
			if got[0].Policy.Style != tt.wantStyle || got[0].ID != tt.wantID {
				t.Errorf("match = %+v", got[0])
			}
			if got[0].Span != (Span{Start: 0, End: 5}) {
				t.Errorf("span = %s", got[0].Span)
			}
		})
	}
}

func TestFindCanonicalIdempotent(t *testing.T) {
	set := MustPolicySet([]Policy{mention})
	text := "@a @b c @d"

	first := set.FindCanonical(text)
	second := set.FindCanonical(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated scans differ: %+v vs %+v", first, second)
	}
}

func TestFindSpans(t *testing.T) {
	ada := Encode(person{"Ada", "user-0001"}, mention, personConv)
	text := []rune("Hi " + ada.BufferForm() + " there")

	spans := FindSpans(text)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %v", spans)
	}
	if spans[0].Start != 3 || spans[0].End != 3+ada.Len() {
		t.Errorf("span = %s", spans[0])
	}
	if spans[0].Key(text) != ada.Key() {
		t.Errorf("key = %q, want %q", spans[0].Key(text), ada.Key())
	}
	if !reflect.DeepEqual(spans, FindSpans(text)) {
		t.Error("FindSpans is not idempotent")
	}

	if s, ok := SpanAt(spans, 5); !ok || s != spans[0] {
		t.Errorf("SpanAt(5) = %v, %v", s, ok)
	}
	if _, ok := SpanAt(spans, 3); ok {
		t.Error("a boundary is not inside the span")
	}
}

func TestFindDangling(t *testing.T) {
	s, e := string(TagStart), string(TagEnd)

	tests := []struct {
		name string
		text string
		want []Dangling
	}{
		{"balanced", s + "@a" + e, nil},
		{"missing end", "x " + s + "@a", []Dangling{{Offset: 2, Kind: DanglingStart}}},
		{"missing start", "@a" + e + " x", []Dangling{{Offset: 2, Kind: DanglingEnd}}},
		{"restart", s + "@a" + s + "@b" + e, []Dangling{{Offset: 0, Kind: DanglingStart}}},
		{"both", "@a" + e + " " + s + "@b", []Dangling{{Offset: 2, Kind: DanglingEnd}, {Offset: 4, Kind: DanglingStart}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindDangling([]rune(tt.text))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindDangling = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStripMarkers(t *testing.T) {
	in := string(TagStart) + string(Filler) + "@Ada" + string(TagEnd) + " hi"
	if got := StripMarkers(in); got != "@Ada hi" {
		t.Errorf("StripMarkers = %q", got)
	}
	if got := StripFiller(in); ContainsMarker(got) == false || strings.ContainsRune(got, Filler) {
		t.Errorf("StripFiller = %q", got)
	}
	if StripMarkers("plain") != "plain" {
		t.Error("plain text should pass through")
	}
}
