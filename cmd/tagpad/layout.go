package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/taggable/internal/convert"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/tag"
)

// cell is one drawn rune and its buffer offset.
type cell struct {
	r      rune
	width  int
	style  tcell.Style
	offset int
}

// line is the laid out edit line. cursor is the screen column of the
// caret; queryCol is where an active query starts, or -1.
type line struct {
	cells    []cell
	cursor   int
	queryCol int
}

// width returns the total column count.
func (l line) width() int {
	w := 0
	for _, c := range l.cells {
		w += c.width
	}
	return w
}

// layout turns buffer text into cells. Markers and filler take no
// columns, and runes inside a recognizable tag take the tag's style.
// caret and query are buffer rune offsets; query is -1 when no query is
// active.
func layout(text []rune, caret, query int, reg *tag.Registry[directory.Entity], th theme) line {
	styles := make([]tcell.Style, len(text))
	for i := range styles {
		styles[i] = th.text
	}
	for _, sp := range tag.FindSpans(text) {
		enc, ok := tag.Decode(sp.Key(text), reg)
		if !ok {
			continue
		}
		st := th.tagStyle(convert.StyleOf(enc, nil))
		for i := sp.Start; i < sp.End; i++ {
			styles[i] = st
		}
	}

	ln := line{queryCol: -1}
	col := 0
	for i, r := range text {
		if i == caret {
			ln.cursor = col
		}
		if i == query {
			ln.queryCol = col
		}
		if tag.IsMarker(r) {
			continue
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		ln.cells = append(ln.cells, cell{r: r, width: w, style: styles[i], offset: i})
		col += w
	}
	if caret >= len(text) {
		ln.cursor = col
	}
	if query >= len(text) {
		ln.queryCol = col
	}
	return ln
}

// scroll returns the first column to draw so the cursor stays visible in
// a view of the given width.
func scroll(ln line, width int) int {
	if width <= 0 || ln.cursor < width {
		return 0
	}
	return ln.cursor - width + 1
}

// truncate shortens s to at most width columns, marking the cut with an
// ellipsis.
func truncate(s string, width int) string {
	if uniseg.StringWidth(s) <= width {
		return s
	}
	switch {
	case width <= 0:
		return ""
	case width == 1:
		return "…"
	}

	out := make([]byte, 0, len(s))
	used := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+w > width-1 {
			break
		}
		out = append(out, cluster...)
		used += w
	}
	return string(out) + "…"
}
