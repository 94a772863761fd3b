package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/taggable/internal/config"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/session"
)

// errQuit ends the event loop normally.
var errQuit = errors.New("quit")

const (
	editRow     = 2
	popupRow    = 3
	popupWidth  = 40
	popupHeight = 8
	editPrompt  = "> "
)

type pickReply struct {
	entity directory.Entity
	ok     bool
}

// pickRequest is a picker call waiting for the user.
type pickRequest struct {
	cands *session.Candidates[directory.Entity]
	reply chan pickReply
}

// Events posted to the screen from session goroutines.
type (
	pickEvent struct {
		tcell.EventTime
		req *pickRequest
	}
	refreshEvent struct {
		tcell.EventTime
	}
	errorEvent struct {
		tcell.EventTime
		err error
	}
)

// popup is the open candidate list.
type popup struct {
	req      *pickRequest
	items    []directory.Entity
	selected int
}

// pad is the interactive editor.
type pad struct {
	ctx    context.Context
	cancel context.CancelFunc
	screen tcell.Screen
	sess   *session.Session[directory.Entity]
	theme  theme
	log    *logging.Logger

	popup  *popup
	status string
}

// runPad edits one line of tagged text until the user quits and returns
// the JSON report of the result.
func runPad(ctx context.Context, cfg config.Config, dir *directory.Directory, log *logging.Logger) ([]byte, error) {
	th, err := newTheme(cfg.Styles)
	if err != nil {
		return nil, err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()

	p, err := newPad(ctx, screen, cfg, dir, th, log)
	if err != nil {
		return nil, err
	}
	defer p.close()

	go func() {
		<-p.ctx.Done()
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	loopErr := p.loop()

	r := report{
		Session:   p.sess.ID(),
		Canonical: p.sess.CanonicalText(),
		Display:   p.sess.DisplayText(),
		Tags:      spanTags(p.sess.Text(), p.sess.Registry()),
		Segments:  p.sess.Segments(),
	}
	doc, err := r.document(cfg.Styles).bytes(false)
	if err != nil {
		return nil, err
	}
	return doc, loopErr
}

func newPad(ctx context.Context, screen tcell.Screen, cfg config.Config, dir *directory.Directory, th theme, log *logging.Logger) (*pad, error) {
	set, err := cfg.PolicySet()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &pad{
		ctx:    ctx,
		cancel: cancel,
		screen: screen,
		theme:  th,
		log:    log.WithComponent("pad"),
	}
	p.sess = session.New(set, session.Host[directory.Entity]{
		Converter: dir.Converter(),
		Search:    dir.Search,
		Pick:      p.pick,
	},
		session.WithLogger(log),
		session.WithContext(ctx),
		session.WithAutoComplete(cfg.Lookup.AutoComplete),
		session.WithChangeHandler(func(session.Value) { p.post(&refreshEvent{}) }),
		session.WithErrorHandler(func(err error) { p.post(&errorEvent{err: err}) }),
	)
	return p, nil
}

// close declines any open popup, stops pending lookups and waits for them.
func (p *pad) close() {
	p.closePopup(false)
	p.cancel()
	_ = p.sess.Close()
	p.sess.Wait()
}

// post queues ev for the event loop. It is safe from any goroutine.
func (p *pad) post(ev interface {
	tcell.Event
	SetEventNow()
}) {
	ev.SetEventNow()
	if err := p.screen.PostEvent(ev); err != nil {
		p.log.Debug("dropping event: %v", err)
	}
}

// pick is the session's picker: it hands the candidates to the event loop
// and waits for the user to choose or decline.
func (p *pad) pick(ctx context.Context, c *session.Candidates[directory.Entity]) (directory.Entity, bool, error) {
	req := &pickRequest{cands: c, reply: make(chan pickReply, 1)}
	p.post(&pickEvent{req: req})

	select {
	case r := <-req.reply:
		return r.entity, r.ok, nil
	case <-ctx.Done():
		return directory.Entity{}, false, ctx.Err()
	}
}

func (p *pad) loop() error {
	for {
		p.draw()

		ev := p.screen.PollEvent()
		if ev == nil {
			return errQuit
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			p.screen.Sync()
		case *tcell.EventKey:
			if err := p.handleKey(ev); err != nil {
				return err
			}
		case *pickEvent:
			p.openPopup(ev.req)
		case *refreshEvent:
			p.syncPopup()
		case *errorEvent:
			p.status = "lookup failed: " + ev.err.Error()
		case *tcell.EventInterrupt:
			if p.ctx.Err() != nil {
				return errQuit
			}
		}
	}
}

func (p *pad) handleKey(ev *tcell.EventKey) error {
	if p.popup != nil && p.popupKey(ev) {
		return nil
	}
	p.status = ""

	v := p.sess.Value()
	head := v.Selection.Head
	shift := ev.Modifiers()&tcell.ModShift != 0

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ, tcell.KeyEscape:
		return errQuit
	case tcell.KeyRune:
		p.sess.Insert(string(ev.Rune()))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		p.sess.Backspace()
	case tcell.KeyDelete:
		p.sess.DeleteForward()
	case tcell.KeyLeft:
		p.moveTo(v, head-1, shift)
	case tcell.KeyRight:
		p.moveTo(v, head+1, shift)
	case tcell.KeyHome, tcell.KeyCtrlA:
		p.moveTo(v, 0, shift)
	case tcell.KeyEnd, tcell.KeyCtrlE:
		p.moveTo(v, utf8.RuneCountInString(v.Text), shift)
	case tcell.KeyCtrlU:
		p.sess.Clear()
	case tcell.KeyTab:
		p.completeAsync()
	}
	p.syncPopup()
	return nil
}

func (p *pad) moveTo(v session.Value, head int, extend bool) {
	if extend {
		p.sess.Select(v.Selection.Anchor, head)
		return
	}
	p.sess.MoveCursor(head)
}

// completeAsync looks up the active query. The picker needs the event
// loop, so the lookup cannot run on it.
func (p *pad) completeAsync() {
	go func() {
		ok, err := p.sess.Complete(p.ctx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			p.post(&errorEvent{err: err})
		case !ok:
			p.log.Debug("nothing completed")
		}
	}()
}

// popupKey handles keys while candidates are shown. It reports whether
// the key was consumed.
func (p *pad) popupKey(ev *tcell.EventKey) bool {
	pp := p.popup
	switch ev.Key() {
	case tcell.KeyUp, tcell.KeyCtrlP:
		if pp.selected > 0 {
			pp.selected--
		}
	case tcell.KeyDown, tcell.KeyCtrlN:
		if pp.selected < len(pp.items)-1 {
			pp.selected++
		}
	case tcell.KeyEnter, tcell.KeyTab:
		if len(pp.items) == 0 {
			return true
		}
		p.closePopup(true)
	case tcell.KeyEscape:
		p.closePopup(false)
	default:
		return false
	}
	return true
}

// openPopup shows a new picker request, declining the previous one.
func (p *pad) openPopup(req *pickRequest) {
	p.closePopup(false)
	p.popup = &popup{req: req}

	go func() {
		select {
		case <-req.cands.Done():
			p.post(&refreshEvent{})
		case <-p.ctx.Done():
		}
	}()
	p.syncPopup()
}

// closePopup answers the open request with the selected candidate when
// chosen is set, or declines it.
func (p *pad) closePopup(chosen bool) {
	pp := p.popup
	if pp == nil {
		return
	}
	p.popup = nil

	var r pickReply
	if chosen && pp.selected < len(pp.items) {
		r = pickReply{entity: pp.items[pp.selected], ok: true}
	}
	pp.req.reply <- r
}

// syncPopup closes the popup once its query is gone and fills it in when
// the search finishes.
func (p *pad) syncPopup() {
	pp := p.popup
	if pp == nil {
		return
	}
	q, ok := p.sess.ActiveQuery()
	if !ok || q != pp.req.cands.Query() {
		p.closePopup(false)
		return
	}

	select {
	case <-pp.req.cands.Done():
	default:
		return
	}
	items, err := pp.req.cands.Wait(context.Background())
	switch {
	case err != nil:
		p.status = "lookup failed: " + err.Error()
		p.closePopup(false)
	case len(items) == 0:
		p.status = "no matches for " + q.Text()
		p.closePopup(false)
	default:
		pp.items = items
		pp.selected = min(pp.selected, len(items)-1)
	}
}

func (p *pad) draw() {
	p.screen.Clear()
	w, h := p.screen.Size()

	status := p.status
	if status == "" {
		status = "tagpad  Tab complete  ↑↓ choose  Enter pick  Esc cancel/quit"
	}
	p.text(0, 0, truncate(status, w), p.theme.status)

	v := p.sess.Value()
	query := -1
	if q, ok := p.sess.ActiveQuery(); ok {
		query = q.Start
	}
	ln := layout([]rune(v.Text), v.Selection.Head, query, p.sess.Registry(), p.theme)

	x0 := p.text(0, editRow, editPrompt, p.theme.status)
	offset := scroll(ln, w-x0)
	lo, hi := v.Selection.Start(), v.Selection.End()
	col := 0
	for _, c := range ln.cells {
		if col >= offset && x0+col-offset+c.width <= w {
			st := c.style
			if c.offset >= lo && c.offset < hi {
				st = st.Reverse(true)
			}
			p.screen.SetContent(x0+col-offset, editRow, c.r, nil, st)
		}
		col += c.width
	}
	p.screen.ShowCursor(x0+ln.cursor-offset, editRow)

	if p.popup != nil {
		p.drawPopup(max(x0+ln.queryCol-offset, 0), w)
	}

	if h > editRow+2 {
		canonical := "canonical: " + strings.ReplaceAll(p.sess.CanonicalText(), "\n", " ")
		p.text(0, h-1, truncate(canonical, w), p.theme.status)
	}
	p.screen.Show()
}

func (p *pad) drawPopup(x, screenWidth int) {
	pp := p.popup
	width := min(popupWidth, screenWidth)
	if x+width > screenWidth {
		x = max(screenWidth-width, 0)
	}

	if pp.items == nil {
		p.fill(x, popupRow, width, p.theme.popup)
		p.text(x, popupRow, truncate(" searching…", width), p.theme.popup)
		return
	}

	first := 0
	if pp.selected >= popupHeight {
		first = pp.selected - popupHeight + 1
	}
	for i := first; i < len(pp.items) && i < first+popupHeight; i++ {
		e := pp.items[i]
		st := p.theme.popup
		if i == pp.selected {
			st = p.theme.selected
		}
		row := popupRow + i - first
		p.fill(x, row, width, st)
		p.text(x, row, truncate(" "+e.Name+"  "+e.ID, width), st)
	}
}

// text draws s at (x, y) and returns the column after it.
func (p *pad) text(x, y int, s string, st tcell.Style) int {
	ln := layout([]rune(s), 0, -1, nil, theme{text: st})
	for _, c := range ln.cells {
		p.screen.SetContent(x, y, c.r, nil, st)
		x += c.width
	}
	return x
}

func (p *pad) fill(x, y, width int, st tcell.Style) {
	for i := 0; i < width; i++ {
		p.screen.SetContent(x+i, y, ' ', nil, st)
	}
}
