package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/taggable/internal/tag"
)

const (
	popupBackground = "#303030"
	statusColor     = "#8a8a8a"
)

// theme maps tag styles to terminal styles.
type theme struct {
	tags     map[tag.Style]tcell.Style
	text     tcell.Style
	popup    tcell.Style
	selected tcell.Style
	status   tcell.Style
}

// newTheme parses the configured hex colors. Each tag is drawn in its
// color over a darkened tint of the same color.
func newTheme(styles map[string]string) (theme, error) {
	bg, err := colorful.Hex(popupBackground)
	if err != nil {
		return theme{}, err
	}
	status, err := colorful.Hex(statusColor)
	if err != nil {
		return theme{}, err
	}

	th := theme{
		tags:     make(map[tag.Style]tcell.Style, len(styles)),
		text:     tcell.StyleDefault,
		popup:    tcell.StyleDefault.Background(toTcell(bg)),
		selected: tcell.StyleDefault.Background(toTcell(bg)).Reverse(true),
		status:   tcell.StyleDefault.Foreground(toTcell(status)),
	}

	black := colorful.Color{}
	for name, hex := range styles {
		c, err := colorful.Hex(hex)
		if err != nil {
			return theme{}, fmt.Errorf("style %q: %w", name, err)
		}
		tint := c.BlendLab(black, 0.75).Clamped()
		th.tags[tag.Style(name)] = tcell.StyleDefault.
			Foreground(toTcell(c)).
			Background(toTcell(tint)).
			Bold(true)
	}
	return th, nil
}

// tagStyle returns the style for a tag, falling back to underlined text
// for styles without a color.
func (th theme) tagStyle(s tag.Style) tcell.Style {
	if st, ok := th.tags[s]; ok {
		return st
	}
	return th.text.Underline(true)
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
