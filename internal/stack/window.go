package stack

import (
	"sync"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/google/uuid"
)

// Window is a client surface that can be a member of a stack.
type Window interface {
	input.PointerTarget
	input.KeyboardTarget

	// Geometry returns the window geometry in its own surface space. Loc is
	// the offset of the content inside the surface (e.g. client shadows).
	Geometry() geom.Rect
	// SetGeometry assigns the outer rectangle used by the next configure.
	SetGeometry(rect geom.Rect)
	SendConfigure()

	Title() string
	AppID() string

	Activated() bool
	SetActivated(activated bool)
	ForceUndecorated(force bool)
	SetTiled(tiled bool)

	Alive() bool
	Close()
	Refresh()

	OutputEnter(output Output, overlap geom.Rect)
	OutputLeave(output Output)

	IsInInputRegion(p geom.PointF) bool
	RenderElements(loc geom.Point, scale geom.Scale, alpha float32) []render.Element

	UserData() *SideData
}

type Output struct {
	Name  string
	Scale geom.Scale
}

// Loop runs deferred work after the current input pass returns.
type Loop interface {
	Post(fn func())
}

type LoopFunc func(fn func())

func (f LoopFunc) Post(fn func()) {
	f(fn)
}

// CaptureHooks is implemented by screen-capture sessions that need to know
// where the cursor is relative to the captured window.
type CaptureHooks interface {
	CursorEnter(seat *input.Seat)
	CursorInfo(seat *input.Seat, location geom.PointF)
	CursorLeave(seat *input.Seat)
}

// SideData is the per-window slot shared between the stack and the rest of
// the compositor.
type SideData struct {
	ID uuid.UUID

	mu    sync.Mutex
	hooks map[int]CaptureHooks
	next  int
}

func NewSideData() *SideData {
	return &SideData{
		ID:    uuid.New(),
		hooks: make(map[int]CaptureHooks),
	}
}

// AddCaptureHooks registers hooks and returns a function removing them.
func (d *SideData) AddCaptureHooks(hooks CaptureHooks) func() {
	d.mu.Lock()
	d.next++
	id := d.next
	d.hooks[id] = hooks
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.hooks, id)
		d.mu.Unlock()
	}
}

func (d *SideData) captureHooks() []CaptureHooks {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	hooks := make([]CaptureHooks, 0, len(d.hooks))
	for i := 1; i <= d.next; i++ {
		if h, ok := d.hooks[i]; ok {
			hooks = append(hooks, h)
		}
	}
	return hooks
}

func cursorEnter(w Window, seat *input.Seat, location geom.PointF) {
	for _, h := range w.UserData().captureHooks() {
		h.CursorEnter(seat)
		h.CursorInfo(seat, location)
	}
}

func cursorInfo(w Window, seat *input.Seat, location geom.PointF) {
	for _, h := range w.UserData().captureHooks() {
		h.CursorInfo(seat, location)
	}
}

func cursorLeave(w Window, seat *input.Seat) {
	for _, h := range w.UserData().captureHooks() {
		h.CursorLeave(seat)
	}
}
