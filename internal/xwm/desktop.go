package xwm

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/mosaic"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
	"github.com/ItsNotGoodName/x-tabstack/internal/tabbar"
	"github.com/google/uuid"
)

var (
	ErrStackNotFound = errors.New("stack not found")
	ErrNoStacks      = errors.New("no stacks")
	ErrTabNotFound   = errors.New("tab not found")
)

// Output is the single output the canvas represents.
var Output = stack.Output{Name: "X11", Scale: 1}

type DesktopOptions struct {
	Layout     mosaic.Layout
	Accent     render.Color
	Style      tabbar.Style
	Background render.Color
	Logger     *slog.Logger
}

// Entry is a stack placed on the desktop together with its tab bar.
type Entry struct {
	Stack *stack.Stack
	Bar   *tabbar.Bar
	Rect  geom.Rect
}

// Desktop tiles stacks over an area and routes input between them. It is not
// safe for concurrent use; every method runs on the loop goroutine.
type Desktop struct {
	log  *slog.Logger
	loop stack.Loop
	opts DesktopOptions
	seat *input.Seat

	area     geom.Rect
	entries  []*Entry
	focused  *Entry
	hovered  *Entry
	keyboard bool
	mods     input.Modifiers

	dirty   bool
	version uint64
	last    []StackInfo
}

func NewDesktop(loop stack.Loop, area geom.Rect, opts DesktopOptions) *Desktop {
	if opts.Layout == nil {
		opts.Layout = mosaic.LayoutGrid{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Desktop{
		log:   opts.Logger,
		loop:  loop,
		opts:  opts,
		seat:  &input.Seat{Name: "seat0"},
		area:  area,
		dirty: true,
	}
}

func (d *Desktop) Seat() *input.Seat {
	return d.seat
}

func (d *Desktop) Entries() []*Entry {
	return slices.Clone(d.entries)
}

func (d *Desktop) Focused() *Entry {
	return d.focused
}

func (d *Desktop) Lookup(id uuid.UUID) (*Entry, error) {
	for _, e := range d.entries {
		if e.Stack.ID() == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStackNotFound, id)
}

func (d *Desktop) index(e *Entry) int {
	return slices.Index(d.entries, e)
}

// AddStack appends a stack holding windows.
func (d *Desktop) AddStack(windows []stack.Window) (*Entry, error) {
	return d.insertStack(windows, len(d.entries))
}

func (d *Desktop) insertStack(windows []stack.Window, index int) (*Entry, error) {
	bar := tabbar.New(d.opts.Style, d.log)
	accent := d.opts.Accent
	s, err := stack.New(windows, d.loop, stack.Options{
		Header:        bar,
		Accent:        &accent,
		Logger:        d.log,
		OnMoveRequest: d.tearOff,
	})
	if err != nil {
		return nil, err
	}

	e := &Entry{Stack: s, Bar: bar}
	index = min(max(index, 0), len(d.entries))
	d.entries = slices.Insert(d.entries, index, e)
	d.relayout()
	s.OutputEnter(Output, e.Rect)

	if d.focused == nil {
		d.FocusEntry(e)
	} else {
		s.SetActivated(false)
	}
	d.syncVisible(e)
	d.dirty = true

	d.log.Debug("Added stack", "stack", s.ID(), "windows", len(windows))
	return e, nil
}

func (d *Desktop) removeEntry(e *Entry) {
	idx := d.index(e)
	if idx == -1 {
		return
	}

	if d.hovered == e {
		e.Stack.PointerLeave(d.seat, 0, 0)
		d.hovered = nil
	}
	if d.focused == e {
		if d.keyboard {
			e.Stack.KeyboardLeave(d.seat, 0)
		}
		d.focused = nil
	}
	e.Stack.OutputLeave(Output)
	d.entries = slices.Delete(d.entries, idx, idx+1)
	d.relayout()

	if d.focused == nil && len(d.entries) > 0 {
		d.FocusEntry(d.entries[min(idx, len(d.entries)-1)])
	}
	d.dirty = true
}

func (d *Desktop) SetArea(area geom.Rect) {
	if area == d.area {
		return
	}
	d.area = area
	d.relayout()
	d.dirty = true
}

func (d *Desktop) relayout() {
	if len(d.entries) == 0 {
		return
	}

	rects := d.opts.Layout.Place(len(d.entries), geom.Rect{Size: d.area.Size})
	for i, e := range d.entries {
		e.Rect = rects[i].Translate(d.area.Loc)
		e.Stack.SetGeometry(e.Rect)
		for _, w := range e.Stack.Windows() {
			w.SendConfigure()
		}
	}
}

// FocusEntry moves keyboard focus and activation to e.
func (d *Desktop) FocusEntry(e *Entry) {
	if e == d.focused {
		return
	}

	if old := d.focused; old != nil {
		if d.keyboard {
			old.Stack.KeyboardLeave(d.seat, 0)
		}
		old.Stack.SetActivated(false)
	}

	d.focused = e
	if e != nil {
		e.Stack.SetActivated(true)
		if d.keyboard {
			e.Stack.KeyboardEnter(d.seat, nil, 0)
		}
	}
	d.dirty = true
}

// CycleFocus focuses the next stack in layout order.
func (d *Desktop) CycleFocus() {
	if len(d.entries) == 0 {
		return
	}
	d.FocusEntry(d.entries[(d.index(d.focused)+1)%len(d.entries)])
}

// Focus moves focus inside the focused stack, or to the neighbouring stack
// when the stack cannot handle dir.
func (d *Desktop) Focus(dir stack.Direction) bool {
	e := d.focused
	if e == nil {
		return false
	}
	return d.FocusStack(e, dir)
}

func (d *Desktop) FocusStack(e *Entry, dir stack.Direction) bool {
	if e != d.focused {
		d.FocusEntry(e)
	}
	if e.Stack.HandleFocus(dir) {
		d.dirty = true
		return true
	}

	n := d.neighbour(e, dir)
	if n == nil {
		return false
	}
	d.FocusEntry(n)
	return true
}

// neighbour returns the closest stack lying entirely on the dir side of e.
func (d *Desktop) neighbour(e *Entry, dir stack.Direction) *Entry {
	var (
		best     *Entry
		bestDist = math.Inf(1)
	)
	from := center(e.Rect)
	for _, c := range d.entries {
		if c == e {
			continue
		}

		var ok bool
		switch dir {
		case stack.DirLeft:
			ok = c.Rect.Right() <= e.Rect.Loc.X
		case stack.DirRight:
			ok = c.Rect.Loc.X >= e.Rect.Right()
		case stack.DirUp:
			ok = c.Rect.Bottom() <= e.Rect.Loc.Y
		case stack.DirDown:
			ok = c.Rect.Loc.Y >= e.Rect.Bottom()
		}
		if !ok {
			continue
		}

		to := center(c.Rect)
		if dist := math.Hypot(to.X-from.X, to.Y-from.Y); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}

func center(r geom.Rect) geom.PointF {
	return geom.PointF{
		X: float64(r.Loc.X) + float64(r.Size.W)/2,
		Y: float64(r.Loc.Y) + float64(r.Size.H)/2,
	}
}

// Move moves the focused stack's active member. An ejected member becomes a
// stack of its own next to the old one and takes focus.
func (d *Desktop) Move(dir stack.Direction) (stack.MoveKind, error) {
	e := d.focused
	if e == nil {
		return stack.MoveNotApplicable, ErrNoStacks
	}
	return d.MoveStack(e, dir)
}

func (d *Desktop) MoveStack(e *Entry, dir stack.Direction) (stack.MoveKind, error) {
	res := e.Stack.HandleMove(dir)
	switch res.Kind {
	case stack.MoveHandled:
		d.dirty = true
	case stack.MoveEjected:
		index := d.index(e)
		if dir == stack.DirRight || dir == stack.DirDown {
			index++
		}
		n, err := d.insertStack([]stack.Window{res.Window}, index)
		if err != nil {
			return res.Kind, err
		}
		d.syncVisible(e)
		d.FocusEntry(n)
	}
	return res.Kind, nil
}

// tearOff handles a drag started on a header by ejecting the active member.
func (d *Desktop) tearOff(seat *input.Seat, serial input.Serial, s *stack.Stack) {
	e, err := d.Lookup(s.ID())
	if err != nil {
		return
	}
	d.log.Debug("Tearing off window", "stack", s.ID(), "serial", serial)
	if _, err := d.MoveStack(e, stack.DirDown); err != nil {
		d.log.Error("Failed to tear off window", "error", err)
	}
}

// SetActive activates the member at index through the stack's message path.
func (d *Desktop) SetActive(e *Entry, index int) error {
	if index < 0 || index >= e.Stack.Len() {
		return fmt.Errorf("%w: %d", ErrTabNotFound, index)
	}
	e.Stack.HandleMessage(stack.MsgActivate{Index: index})
	d.syncVisible(e)
	d.dirty = true
	return nil
}

// syncVisible shows the active member of e and hides the others.
func (d *Desktop) syncVisible(e *Entry) {
	active := e.Stack.Active()
	for _, w := range e.Stack.Windows() {
		if v, ok := w.(Visible); ok {
			v.SetVisible(w == active)
		}
	}
}

func (d *Desktop) entryAt(p geom.PointF) *Entry {
	for _, e := range d.entries {
		if e.Rect.Contains(p) {
			return e
		}
	}
	return nil
}

func local(ev input.PointerEvent, e *Entry) input.PointerEvent {
	ev.Location = ev.Location.Sub(e.Rect.Loc.ToF())
	return ev
}

func (d *Desktop) Hovered() *Entry {
	return d.hovered
}

// PointerMotion routes an absolute pointer position to the stack under it.
func (d *Desktop) PointerMotion(ev input.PointerEvent) {
	e := d.entryAt(ev.Location)
	if e != d.hovered {
		if d.hovered != nil {
			d.hovered.Stack.PointerLeave(d.seat, ev.Serial, ev.Time)
		}
		d.hovered = e
		if e != nil {
			e.Stack.PointerEnter(d.seat, local(ev, e))
		}
		return
	}
	if e != nil {
		e.Stack.PointerMotion(d.seat, local(ev, e))
	}
}

// PointerButton focuses the hovered stack on press and forwards the button.
func (d *Desktop) PointerButton(ev input.ButtonEvent) {
	e := d.hovered
	if e == nil {
		return
	}
	if ev.State == input.Pressed && e != d.focused {
		d.FocusEntry(e)
	}
	e.Stack.PointerButton(d.seat, ev)
	d.dirty = true
}

func (d *Desktop) PointerAxis(ev input.AxisEvent) {
	if d.hovered != nil {
		d.hovered.Stack.PointerAxis(d.seat, ev)
	}
}

func (d *Desktop) PointerLeave(serial input.Serial, time uint32) {
	if d.hovered != nil {
		d.hovered.Stack.PointerLeave(d.seat, serial, time)
		d.hovered = nil
	}
}

func (d *Desktop) KeyboardEnter(serial input.Serial) {
	if d.keyboard {
		return
	}
	d.keyboard = true
	if d.focused != nil {
		d.focused.Stack.KeyboardEnter(d.seat, nil, serial)
	}
}

func (d *Desktop) KeyboardLeave(serial input.Serial) {
	if !d.keyboard {
		return
	}
	d.keyboard = false
	if d.focused != nil {
		d.focused.Stack.KeyboardLeave(d.seat, serial)
	}
}

func (d *Desktop) Key(ev input.KeyEvent) {
	if d.focused != nil {
		d.focused.Stack.Key(d.seat, ev)
	}
}

func (d *Desktop) ModifiersChanged(mods input.Modifiers, serial input.Serial) {
	if mods == d.mods {
		return
	}
	d.mods = mods
	if d.focused != nil {
		d.focused.Stack.ModifiersChanged(d.seat, mods, serial)
	}
}

// Refresh runs once per frame. It drops dead members and stacks, applies
// header messages and updates headers. Windows of dropped stacks are
// returned so the caller can destroy them.
func (d *Desktop) Refresh() []stack.Window {
	var dropped []stack.Window
	for _, e := range slices.Clone(d.entries) {
		before := e.Stack.Windows()
		e.Stack.Refresh()
		if !e.Stack.Alive() {
			d.log.Debug("Dropping dead stack", "stack", e.Stack.ID())
			d.removeEntry(e)
			dropped = append(dropped, before...)
			continue
		}
		if after := e.Stack.Windows(); len(after) != len(before) {
			for _, w := range before {
				if !slices.Contains(after, w) {
					dropped = append(dropped, w)
				}
			}
			d.dirty = true
		}
	}

	for _, e := range d.entries {
		d.handleMessages(e)
		e.Stack.UpdateHeader()
		// Scrolling reported by UpdateHeader.
		d.handleMessages(e)
		d.syncVisible(e)
	}

	if snap := d.Snapshot(); !reflect.DeepEqual(snap, d.last) {
		d.last = snap
		d.version++
		d.dirty = true
	}

	return dropped
}

func (d *Desktop) handleMessages(e *Entry) {
	for {
		select {
		case msg := <-e.Bar.Messages():
			e.Stack.HandleMessage(msg)
			d.dirty = true
		default:
			return
		}
	}
}

// Version increases whenever a Refresh observes a different Snapshot.
func (d *Desktop) Version() uint64 {
	return d.version
}

// Dirty reports and clears whether the desktop needs to be drawn again.
func (d *Desktop) Dirty() bool {
	dirty := d.dirty
	d.dirty = false
	return dirty
}

func (d *Desktop) Damage() {
	d.dirty = true
}

// RenderElements returns every stack's elements over a background fill.
func (d *Desktop) RenderElements() []render.Element {
	elements := []render.Element{render.Solid{Rect: d.area, Color: d.opts.Background}}
	for _, e := range d.entries {
		elements = append(elements, e.Stack.RenderElements(e.Rect.Loc, Output.Scale, 1).All()...)
	}
	return elements
}

type TabInfo struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	AppID string    `json:"app_id"`
}

type StackInfo struct {
	ID           uuid.UUID `json:"id"`
	Focused      bool      `json:"focused"`
	GroupFocused bool      `json:"group_focused"`
	Active       int       `json:"active"`
	X            int32     `json:"x"`
	Y            int32     `json:"y"`
	Width        int32     `json:"width"`
	Height       int32     `json:"height"`
	Tabs         []TabInfo `json:"tabs"`
}

func (d *Desktop) Snapshot() []StackInfo {
	infos := make([]StackInfo, 0, len(d.entries))
	for _, e := range d.entries {
		desc := e.Stack.Description()
		tabs := make([]TabInfo, len(desc.Tabs))
		for i, tab := range desc.Tabs {
			tabs[i] = TabInfo{ID: tab.ID, Title: tab.Title, AppID: tab.AppID}
		}
		infos = append(infos, StackInfo{
			ID:           e.Stack.ID(),
			Focused:      e == d.focused,
			GroupFocused: desc.GroupFocused,
			Active:       desc.Active,
			X:            e.Rect.Loc.X,
			Y:            e.Rect.Loc.Y,
			Width:        e.Rect.Size.W,
			Height:       e.Rect.Size.H,
			Tabs:         tabs,
		})
	}
	return infos
}
