package main

import (
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/taggable/internal/convert"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/tag"
)

// jsonDoc builds a JSON document path by path, keeping the first error.
type jsonDoc struct {
	raw string
	err error
}

func newJSONDoc() *jsonDoc {
	return &jsonDoc{raw: "{}"}
}

func (d *jsonDoc) set(path string, value any) {
	if d.err != nil {
		return
	}
	d.raw, d.err = sjson.Set(d.raw, path, value)
}

// bytes returns the indented document, colorized for terminals when
// color is set.
func (d *jsonDoc) bytes(color bool) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := pretty.Pretty([]byte(d.raw))
	if color {
		out = pretty.Color(out, nil)
	}
	return out, nil
}

// report describes one piece of tagged text.
type report struct {
	Session   string
	Canonical string
	Display   string
	Tags      []tag.Encoded[directory.Entity]
	Segments  []convert.Segment
}

// document renders r. colors maps style tokens to their hex colors.
func (r report) document(colors map[string]string) *jsonDoc {
	d := newJSONDoc()
	if r.Session != "" {
		d.set("session", r.Session)
	}
	d.set("canonical", r.Canonical)
	d.set("display", r.Display)

	d.set("tags", []any{})
	for _, t := range r.Tags {
		d.set("tags.-1", map[string]any{
			"prefix":    t.Policy.Prefix,
			"id":        t.Entity.ID,
			"name":      t.Entity.Name,
			"kind":      t.Entity.Kind,
			"canonical": t.CanonicalForm(),
		})
	}

	d.set("segments", []any{})
	for _, s := range r.Segments {
		seg := map[string]any{"text": s.Text, "tagged": s.Tagged}
		if s.Style != "" {
			seg["style"] = string(s.Style)
			if c, ok := colors[string(s.Style)]; ok {
				seg["color"] = c
			}
		}
		d.set("segments.-1", seg)
	}
	return d
}

// spanTags returns the recognizable tags of buffer text in order.
func spanTags(text string, reg *tag.Registry[directory.Entity]) []tag.Encoded[directory.Entity] {
	runes := []rune(text)
	var out []tag.Encoded[directory.Entity]
	for _, sp := range tag.FindSpans(runes) {
		if enc, ok := tag.Decode(sp.Key(runes), reg); ok {
			out = append(out, enc)
		}
	}
	return out
}
