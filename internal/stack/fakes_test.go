package stack

import (
	"fmt"
	"sync"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
)

// eventLog is shared by every fake so tests can assert global ordering.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *eventLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := l.events
	l.events = nil
	return events
}

type fakeWindow struct {
	name string
	log  *eventLog
	data *SideData

	mu          sync.Mutex
	geo         geom.Rect
	assigned    geom.Rect
	activated   bool
	undecorated bool
	tiled       bool
	alive       bool
	closed      bool
	configures  int
	refreshes   int
}

func newFakeWindow(name string, log *eventLog) *fakeWindow {
	return &fakeWindow{
		name:      name,
		log:       log,
		data:      NewSideData(),
		geo:       geom.NewRect(0, 0, 800, 600),
		activated: true,
		alive:     true,
	}
}

func (w *fakeWindow) PointerEnter(seat *input.Seat, ev input.PointerEvent) {
	w.log.add("%s:pointer-enter(%g,%g)", w.name, ev.Location.X, ev.Location.Y)
}

func (w *fakeWindow) PointerMotion(seat *input.Seat, ev input.PointerEvent) {
	w.log.add("%s:pointer-motion(%g,%g)", w.name, ev.Location.X, ev.Location.Y)
}

func (w *fakeWindow) RelativeMotion(seat *input.Seat, ev input.RelativeMotionEvent) {
	w.log.add("%s:relative-motion", w.name)
}

func (w *fakeWindow) PointerButton(seat *input.Seat, ev input.ButtonEvent) {
	w.log.add("%s:button(%d)", w.name, ev.Button)
}

func (w *fakeWindow) PointerAxis(seat *input.Seat, ev input.AxisEvent) {
	w.log.add("%s:axis", w.name)
}

func (w *fakeWindow) PointerLeave(seat *input.Seat, serial input.Serial, time uint32) {
	w.log.add("%s:pointer-leave", w.name)
}

func (w *fakeWindow) KeyboardEnter(seat *input.Seat, keys []uint32, serial input.Serial) {
	w.log.add("%s:keyboard-enter", w.name)
}

func (w *fakeWindow) KeyboardLeave(seat *input.Seat, serial input.Serial) {
	w.log.add("%s:keyboard-leave", w.name)
}

func (w *fakeWindow) Key(seat *input.Seat, ev input.KeyEvent) {
	w.log.add("%s:key(%d)", w.name, ev.Keycode)
}

func (w *fakeWindow) ModifiersChanged(seat *input.Seat, mods input.Modifiers, serial input.Serial) {
	w.log.add("%s:modifiers", w.name)
}

func (w *fakeWindow) Geometry() geom.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.geo
}

func (w *fakeWindow) SetGeometry(rect geom.Rect) {
	w.mu.Lock()
	w.assigned = rect
	w.mu.Unlock()
}

func (w *fakeWindow) SendConfigure() {
	w.mu.Lock()
	w.configures++
	w.mu.Unlock()
}

func (w *fakeWindow) Title() string { return w.name }
func (w *fakeWindow) AppID() string { return "fake." + w.name }

func (w *fakeWindow) Activated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activated
}

func (w *fakeWindow) SetActivated(activated bool) {
	w.mu.Lock()
	w.activated = activated
	w.mu.Unlock()
}

func (w *fakeWindow) ForceUndecorated(force bool) {
	w.mu.Lock()
	w.undecorated = force
	w.mu.Unlock()
}

func (w *fakeWindow) SetTiled(tiled bool) {
	w.mu.Lock()
	w.tiled = tiled
	w.mu.Unlock()
}

func (w *fakeWindow) Alive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alive
}

func (w *fakeWindow) kill() {
	w.mu.Lock()
	w.alive = false
	w.mu.Unlock()
}

func (w *fakeWindow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

func (w *fakeWindow) Refresh() {
	w.mu.Lock()
	w.refreshes++
	w.mu.Unlock()
}

func (w *fakeWindow) OutputEnter(output Output, overlap geom.Rect) {
	w.log.add("%s:output-enter(%s)", w.name, output.Name)
}

func (w *fakeWindow) OutputLeave(output Output) {
	w.log.add("%s:output-leave(%s)", w.name, output.Name)
}

func (w *fakeWindow) IsInInputRegion(p geom.PointF) bool {
	geo := w.Geometry()
	return geom.Rect{Size: geo.Size}.Translate(geo.Loc).Contains(p)
}

func (w *fakeWindow) RenderElements(loc geom.Point, scale geom.Scale, alpha float32) []render.Element {
	geo := w.Geometry()
	return []render.Element{render.Text{
		Rect: geom.Rect{Loc: loc, Size: geom.Size{W: scale.Px(geo.Size.W), H: scale.Px(geo.Size.H)}},
		Text: w.name,
	}}
}

func (w *fakeWindow) UserData() *SideData { return w.data }

type fakeHeader struct {
	log *eventLog

	mu       sync.Mutex
	desc     Description
	size     geom.Size
	scrolled []int
	scrollBy []int
}

func (h *fakeHeader) PointerEnter(seat *input.Seat, ev input.PointerEvent) {
	h.log.add("header:pointer-enter(%g,%g)", ev.Location.X, ev.Location.Y)
}

func (h *fakeHeader) PointerMotion(seat *input.Seat, ev input.PointerEvent) {
	h.log.add("header:pointer-motion(%g,%g)", ev.Location.X, ev.Location.Y)
}

func (h *fakeHeader) RelativeMotion(seat *input.Seat, ev input.RelativeMotionEvent) {
	h.log.add("header:relative-motion")
}

func (h *fakeHeader) PointerButton(seat *input.Seat, ev input.ButtonEvent) {
	h.log.add("header:button(%d)", ev.Button)
}

func (h *fakeHeader) PointerAxis(seat *input.Seat, ev input.AxisEvent) {
	h.log.add("header:axis")
}

func (h *fakeHeader) PointerLeave(seat *input.Seat, serial input.Serial, time uint32) {
	h.log.add("header:pointer-leave")
}

func (h *fakeHeader) Update(desc Description) {
	h.mu.Lock()
	h.desc = desc
	h.mu.Unlock()
}

func (h *fakeHeader) ScrollTo(index int) {
	h.mu.Lock()
	h.scrolled = append(h.scrolled, index)
	h.mu.Unlock()
}

func (h *fakeHeader) ScrollBy(tabs int) {
	h.mu.Lock()
	h.scrollBy = append(h.scrollBy, tabs)
	h.mu.Unlock()
}

func (h *fakeHeader) SetSize(size geom.Size) {
	h.mu.Lock()
	h.size = size
	h.mu.Unlock()
}

func (h *fakeHeader) RenderElements(loc geom.Point, scale geom.Scale, alpha float32) []render.Element {
	h.mu.Lock()
	defer h.mu.Unlock()
	return []render.Element{render.Solid{Rect: geom.Rect{Loc: loc, Size: geom.Size{W: scale.Px(h.size.W), H: scale.Px(h.size.H)}}}}
}

type fakeLoop struct {
	mu    sync.Mutex
	tasks []func()
}

func (l *fakeLoop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

func (l *fakeLoop) run() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

type fakeHooks struct {
	name string
	log  *eventLog
}

func (h fakeHooks) CursorEnter(seat *input.Seat) {
	h.log.add("%s:cursor-enter", h.name)
}

func (h fakeHooks) CursorInfo(seat *input.Seat, location geom.PointF) {
	h.log.add("%s:cursor-info(%g,%g)", h.name, location.X, location.Y)
}

func (h fakeHooks) CursorLeave(seat *input.Seat) {
	h.log.add("%s:cursor-leave", h.name)
}

type fixture struct {
	log     *eventLog
	header  *fakeHeader
	loop    *fakeLoop
	windows []*fakeWindow
	stack   *Stack
	seat    *input.Seat
}

func newFixture(names ...string) *fixture {
	log := &eventLog{}
	f := &fixture{
		log:    log,
		header: &fakeHeader{log: log},
		loop:   &fakeLoop{},
		seat:   &input.Seat{Name: "seat0"},
	}

	windows := make([]Window, len(names))
	for i, name := range names {
		w := newFakeWindow(name, log)
		f.windows = append(f.windows, w)
		windows[i] = w
	}

	s, err := New(windows, f.loop, Options{Header: f.header})
	if err != nil {
		panic(err)
	}
	f.stack = s

	return f
}

func (f *fixture) names() []string {
	var names []string
	for _, w := range f.stack.Windows() {
		names = append(names, w.Title())
	}
	return names
}

func (f *fixture) motion(x, y float64) {
	f.stack.PointerMotion(f.seat, input.PointerEvent{Location: geom.PointF{X: x, Y: y}})
}

func (f *fixture) enter(x, y float64) {
	f.stack.PointerEnter(f.seat, input.PointerEvent{Location: geom.PointF{X: x, Y: y}})
}

func (f *fixture) press() {
	f.stack.PointerButton(f.seat, input.ButtonEvent{Button: input.ButtonLeft, State: input.Pressed, Serial: 7})
}

func (f *fixture) key(code uint32) {
	f.stack.Key(f.seat, input.KeyEvent{Keycode: code, State: input.KeyPressed})
}
