package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dshills/taggable/internal/config"
	"github.com/dshills/taggable/internal/convert"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/tag"
)

// runBatch decodes the canonical text read from in against the directory
// and writes its tags and styled segments to out as JSON.
func runBatch(ctx context.Context, cfg config.Config, dir *directory.Directory, in io.Reader, out io.Writer, color bool) error {
	set, err := cfg.PolicySet()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	text := string(data)
	conv := dir.Converter()

	decoded, err := convert.FromCanonical(ctx, text, set, conv, dir.Resolve)
	if err != nil {
		return err
	}
	segs, err := convert.SegmentsFromCanonical(ctx, text, set, dir.Resolve, convert.DefaultSegmenter(conv, nil))
	if err != nil {
		return err
	}

	r := report{
		Canonical: text,
		Display:   tag.StripMarkers(decoded.Text),
		Tags:      decoded.Tags,
		Segments:  segs,
	}
	doc, err := r.document(cfg.Styles).bytes(color)
	if err != nil {
		return fmt.Errorf("building output: %w", err)
	}
	_, err = out.Write(doc)
	return err
}
