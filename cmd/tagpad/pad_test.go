package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/taggable/internal/config"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/session"
)

func newTestPad(t *testing.T, cfg config.Config) (*pad, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	th, err := newTheme(cfg.Styles)
	if err != nil {
		t.Fatalf("newTheme: %v", err)
	}
	p, err := newPad(context.Background(), screen, cfg, testDirectory(t), th, logging.NullLogger)
	if err != nil {
		t.Fatalf("newPad: %v", err)
	}
	t.Cleanup(p.close)
	return p, screen
}

func typeText(t *testing.T, p *pad, s string) {
	t.Helper()
	for _, r := range s {
		if err := p.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)); err != nil {
			t.Fatalf("handleKey(%q): %v", r, err)
		}
	}
}

func press(t *testing.T, p *pad, k tcell.Key) error {
	t.Helper()
	return p.handleKey(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func resolvedRequest(t *testing.T, p *pad, items ...directory.Entity) *pickRequest {
	t.Helper()
	q, ok := p.sess.ActiveQuery()
	if !ok {
		t.Fatal("no active query")
	}
	return &pickRequest{
		cands: session.ResolvedCandidates(q, items, nil),
		reply: make(chan pickReply, 1),
	}
}

func TestPadEditing(t *testing.T) {
	p, _ := newTestPad(t, testConfig())

	typeText(t, p, "Hello")
	if err := press(t, p, tcell.KeyBackspace2); err != nil {
		t.Fatal(err)
	}
	_ = press(t, p, tcell.KeyHome)
	_ = press(t, p, tcell.KeyDelete)
	_ = press(t, p, tcell.KeyEnd)
	typeText(t, p, "!")

	if got := p.sess.DisplayText(); got != "ell!" {
		t.Errorf("text = %q, want ell!", got)
	}

	_ = press(t, p, tcell.KeyCtrlU)
	if got := p.sess.Text(); got != "" {
		t.Errorf("text after clear = %q", got)
	}

	if err := press(t, p, tcell.KeyCtrlQ); !errors.Is(err, errQuit) {
		t.Errorf("Ctrl-Q = %v, want errQuit", err)
	}
}

func TestPadPopupPick(t *testing.T) {
	p, _ := newTestPad(t, testConfig())
	typeText(t, p, "Hi @Al")

	alice := directory.Entity{ID: "alice", Name: "Alice", Kind: "person"}
	ada := directory.Entity{ID: "ada", Name: "Ada Lovelace", Kind: "person"}
	req := resolvedRequest(t, p, ada, alice)
	p.openPopup(req)

	if p.popup == nil || len(p.popup.items) != 2 {
		t.Fatalf("popup = %+v", p.popup)
	}
	p.draw()

	_ = press(t, p, tcell.KeyDown)
	if err := press(t, p, tcell.KeyEnter); err != nil {
		t.Fatal(err)
	}
	if p.popup != nil {
		t.Error("Enter should close the popup")
	}

	select {
	case r := <-req.reply:
		if !r.ok || r.entity != alice {
			t.Errorf("reply = %+v, want alice", r)
		}
	default:
		t.Fatal("no reply sent")
	}
}

func TestPadPopupDeclines(t *testing.T) {
	alice := directory.Entity{ID: "alice", Name: "Alice", Kind: "person"}

	tests := []struct {
		name string
		act  func(t *testing.T, p *pad)
	}{
		{"escape", func(t *testing.T, p *pad) { _ = press(t, p, tcell.KeyEscape) }},
		{"query ends", func(t *testing.T, p *pad) { typeText(t, p, " ") }},
		{"superseded", func(t *testing.T, p *pad) {
			typeText(t, p, "i")
			p.openPopup(resolvedRequest(t, p, alice))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPad(t, testConfig())
			typeText(t, p, "@Al")
			req := resolvedRequest(t, p, alice)
			p.openPopup(req)

			tt.act(t, p)

			select {
			case r := <-req.reply:
				if r.ok {
					t.Errorf("reply = %+v, want decline", r)
				}
			default:
				t.Fatal("request was not answered")
			}
			if p.sess.Text() == "" {
				t.Error("declining must not clear the text")
			}
		})
	}
}

func TestPadEmptyResultsCloses(t *testing.T) {
	p, _ := newTestPad(t, testConfig())
	typeText(t, p, "@zz")
	req := resolvedRequest(t, p)
	p.openPopup(req)

	if p.popup != nil {
		t.Error("popup should close without candidates")
	}
	if p.status == "" {
		t.Error("status should report no matches")
	}
	if r := <-req.reply; r.ok {
		t.Errorf("reply = %+v", r)
	}
}

func TestPadLoopAutoComplete(t *testing.T) {
	cfg := testConfig()
	cfg.Lookup.AutoComplete = true
	p, screen := newTestPad(t, cfg)

	done := make(chan error, 1)
	go func() { done <- p.loop() }()

	for _, r := range "Hi @Al" {
		screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}

	deadline := time.After(5 * time.Second)
	for p.sess.CanonicalText() != "Hi @alice " {
		select {
		case <-deadline:
			t.Fatalf("canonical = %q", p.sess.CanonicalText())
		case <-time.After(20 * time.Millisecond):
			// Enter is ignored until the candidates arrive.
			screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
		}
	}

	screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModNone)
	select {
	case err := <-done:
		if !errors.Is(err, errQuit) {
			t.Errorf("loop = %v, want errQuit", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not quit")
	}
}
