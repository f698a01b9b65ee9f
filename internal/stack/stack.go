// Package stack implements a tabbed window stack: several member windows
// grouped under one tab header, with only the active member visible and
// eligible for input.
package stack

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/google/uuid"
)

// HeaderHeight is the height of the tab strip in logical units.
const HeaderHeight int32 = 24

var ErrEmpty = errors.New("stack needs at least one window")

// DefaultAccent is used for the group focus indicator when no accent is set.
var DefaultAccent = render.Color{R: 0x94, G: 0xeb, B: 0xeb, A: 0xff}

type Options struct {
	Header Header
	Accent *render.Color
	Logger *slog.Logger
	// OnMoveRequest is called from the loop after a drag starts on the header.
	OnMoveRequest func(seat *input.Seat, serial input.Serial, s *Stack)
}

type Stack struct {
	id            uuid.UUID
	loop          Loop
	header        Header
	accent        render.Color
	log           *slog.Logger
	onMoveRequest func(seat *input.Seat, serial input.Serial, s *Stack)

	active        atomic.Int64
	groupFocused  atomic.Bool
	scrollToFocus atomic.Bool
	// Last index that received focus, per device. -1 means the member that
	// had it was removed and already got its leave.
	prevKeyboard  atomic.Int64
	prevPointer   atomic.Int64
	pointerFocus  focusState
	keyboardFocus atomic.Bool

	mu           sync.Mutex
	windows      []Window
	geometry     *geom.Rect
	mask         *geom.Rect
	lastPointer  *pointerContext
	lastSeat     *seatContext
	keyboardSeat *input.Seat
}

type pointerContext struct {
	seat  *input.Seat
	event input.PointerEvent
}

type seatContext struct {
	seat   *input.Seat
	serial input.Serial
}

func New(windows []Window, loop Loop, opts Options) (*Stack, error) {
	if len(windows) == 0 {
		return nil, ErrEmpty
	}

	header := opts.Header
	if header == nil {
		header = nopHeader{}
	}
	accent := DefaultAccent
	if opts.Accent != nil {
		accent = *opts.Accent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	s := &Stack{
		id:            id,
		loop:          loop,
		header:        header,
		accent:        accent,
		log:           logger.With("stack", id.String()),
		onMoveRequest: opts.OnMoveRequest,
		windows:       slices.Clone(windows),
	}

	for _, w := range windows {
		w.ForceUndecorated(true)
		w.SetTiled(true)
	}

	header.SetSize(geom.Size{W: windows[0].Geometry().Size.W, H: HeaderHeight})
	s.UpdateHeader()

	return s, nil
}

func (s *Stack) ID() uuid.UUID {
	return s.id
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Windows returns a snapshot of the members in tab order.
func (s *Stack) Windows() []Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.windows)
}

func (s *Stack) Contains(w Window) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.windows, w)
}

func (s *Stack) Active() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows[s.activeIndexLocked()]
}

func (s *Stack) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIndexLocked()
}

func (s *Stack) Title() string {
	return s.Active().Title()
}

func (s *Stack) GroupFocused() bool {
	return s.groupFocused.Load()
}

// activeIndexLocked clamps the stored index so a racing reader never indexes
// out of bounds.
func (s *Stack) activeIndexLocked() int {
	return clamp(int(s.active.Load()), len(s.windows))
}

func (s *Stack) windowAt(index int) Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.windows) {
		return nil
	}
	return s.windows[index]
}

// Add appends w and makes it active.
func (s *Stack) Add(w Window) {
	s.Insert(w, -1)
}

// Insert places w at index, or at the end when index is out of range, and
// makes it active.
func (s *Stack) Insert(w Window, index int) {
	w.ForceUndecorated(true)
	w.SetTiled(true)
	if s.groupFocused.Load() {
		w.SetActivated(false)
	}

	if geo, ok := s.OuterGeometry(); ok {
		w.SetGeometry(contentRect(geo))
	}

	s.mu.Lock()
	if index < 0 || index > len(s.windows) {
		index = len(s.windows)
	}
	s.windows = slices.Insert(s.windows, index, w)
	shiftUp(&s.prevKeyboard, index)
	shiftUp(&s.prevPointer, index)
	s.active.Store(int64(index))
	s.mu.Unlock()

	w.SendConfigure()
	s.scrollToFocus.Store(true)
	s.log.Debug("Added window", "index", index, "title", w.Title())
}

// Remove removes w unless it is the last member. It reports whether w was
// removed.
func (s *Stack) Remove(w Window) bool {
	s.mu.Lock()
	idx := slices.Index(s.windows, w)
	s.mu.Unlock()
	if idx == -1 {
		return false
	}
	return s.RemoveIndex(idx) != nil
}

// RemoveIndex removes the member at index and returns it. It returns nil when
// index is out of range or the stack would become empty.
func (s *Stack) RemoveIndex(index int) Window {
	s.mu.Lock()
	if index < 0 || index >= len(s.windows) || len(s.windows) == 1 {
		s.mu.Unlock()
		return nil
	}

	w, leaves := s.removeLocked(index)
	s.mu.Unlock()

	s.release(w, leaves)
	s.log.Debug("Removed window", "index", index, "title", w.Title())

	return w
}

type pendingLeaves struct {
	pointer      *pointerContext
	keyboardSeat *input.Seat
}

func (s *Stack) removeLocked(index int) (Window, pendingLeaves) {
	w := s.windows[index]
	s.windows = slices.Delete(s.windows, index, index+1)

	var leaves pendingLeaves
	if shiftDown(&s.prevPointer, index) && s.pointerFocus.Load() == FocusWindow {
		leaves.pointer = s.lastPointer
	}
	if shiftDown(&s.prevKeyboard, index) && s.keyboardFocus.Load() {
		leaves.keyboardSeat = s.keyboardSeat
	}

	active := int(s.active.Load())
	if index < active || active >= len(s.windows) {
		active--
	}
	s.active.Store(int64(clamp(active, len(s.windows))))
	s.scrollToFocus.Store(true)

	return w, leaves
}

// release restores the member's own presentation and takes away any focus the
// stack delivered to it.
func (s *Stack) release(w Window, leaves pendingLeaves) {
	if leaves.pointer != nil {
		cursorLeave(w, leaves.pointer.seat)
		w.PointerLeave(leaves.pointer.seat, leaves.pointer.event.Serial, leaves.pointer.event.Time)
	}
	if leaves.keyboardSeat != nil {
		w.KeyboardLeave(leaves.keyboardSeat, 0)
	}
	w.ForceUndecorated(false)
	w.SetTiled(false)
}

// SetActive makes w the active member if it belongs to the stack.
func (s *Stack) SetActive(w Window) {
	s.mu.Lock()
	idx := slices.Index(s.windows, w)
	s.mu.Unlock()
	if idx == -1 {
		return
	}
	s.setActiveIndex(idx)
}

// setActiveIndex switches the active member. The per-device trackers keep
// the last delivered index so the next event for each device emits exactly
// one leave/enter pair.
func (s *Stack) setActiveIndex(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.windows) {
		s.mu.Unlock()
		return false
	}
	s.active.Store(int64(index))
	s.mu.Unlock()

	s.scrollToFocus.Store(true)
	return true
}

// SetGeometry places the stack. Every member receives the content rectangle so
// switching tabs needs no relayout.
func (s *Stack) SetGeometry(rect geom.Rect) {
	content := contentRect(rect)

	s.mu.Lock()
	s.geometry = &rect
	s.mask = nil
	windows := slices.Clone(s.windows)
	s.mu.Unlock()

	s.header.SetSize(geom.Size{W: rect.Size.W, H: HeaderHeight})
	for _, w := range windows {
		w.SetGeometry(content)
	}
}

// OuterGeometry returns the rectangle last passed to SetGeometry.
func (s *Stack) OuterGeometry() (geom.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.geometry == nil {
		return geom.Rect{}, false
	}
	return *s.geometry, true
}

// Geometry is the active member's geometry grown by the header.
func (s *Stack) Geometry() geom.Rect {
	geo := s.Active().Geometry()
	geo.Size.H += HeaderHeight
	return geo
}

// IsInInputRegion reports whether p, relative to the stack origin, hits the
// stack.
func (s *Stack) IsInInputRegion(p geom.PointF) bool {
	if p.Y < float64(HeaderHeight) {
		return true
	}
	return s.Active().IsInInputRegion(p.Sub(geom.PointF{Y: float64(HeaderHeight)}))
}

// Alive reports whether any member is alive.
func (s *Stack) Alive() bool {
	for _, w := range s.Windows() {
		if w.Alive() {
			return true
		}
	}
	return false
}

// Refresh drops dead members. If none survive, the former active member stays
// as a placeholder until the owner discards the stack.
func (s *Stack) Refresh() {
	dead := make(map[Window]bool)
	for _, w := range s.Windows() {
		if !w.Alive() {
			dead[w] = true
		}
	}

	s.mu.Lock()
	active := s.windows[s.activeIndexLocked()]
	prevPointer := s.windowAtTracker(&s.prevPointer)
	prevKeyboard := s.windowAtTracker(&s.prevKeyboard)

	// Members added since the snapshot are not in dead and are kept.
	alive := make([]Window, 0, len(s.windows))
	for _, w := range s.windows {
		if !dead[w] {
			alive = append(alive, w)
		}
	}
	if len(alive) == 0 {
		alive = append(alive, active)
	}
	dropped := len(s.windows) - len(alive)
	s.windows = alive

	if idx := slices.Index(alive, active); idx != -1 {
		s.active.Store(int64(idx))
	} else {
		s.active.Store(int64(clamp(int(s.active.Load()), len(alive))))
	}
	s.prevPointer.Store(int64(indexOrNone(alive, prevPointer)))
	s.prevKeyboard.Store(int64(indexOrNone(alive, prevKeyboard)))
	if dropped > 0 {
		s.scrollToFocus.Store(true)
	}
	windows := slices.Clone(alive)
	s.mu.Unlock()

	if dropped > 0 {
		s.log.Debug("Dropped dead windows", "count", dropped)
	}

	for _, w := range windows {
		w.Refresh()
	}
}

func (s *Stack) windowAtTracker(tracker *atomic.Int64) Window {
	idx := int(tracker.Load())
	if idx < 0 || idx >= len(s.windows) {
		return nil
	}
	return s.windows[idx]
}

// SetActivated forwards activation to every member unless the header holds
// group focus.
func (s *Stack) SetActivated(activated bool) {
	if s.groupFocused.Load() {
		return
	}
	for _, w := range s.Windows() {
		w.SetActivated(activated)
	}
}

func (s *Stack) Activated() bool {
	return s.Active().Activated()
}

func (s *Stack) OutputEnter(output Output, overlap geom.Rect) {
	for _, w := range s.Windows() {
		w.OutputEnter(output, overlap)
	}
}

func (s *Stack) OutputLeave(output Output) {
	for _, w := range s.Windows() {
		w.OutputLeave(output)
	}
}

func contentRect(rect geom.Rect) geom.Rect {
	rect.Loc.Y += HeaderHeight
	rect.Size.H = max(rect.Size.H-HeaderHeight, 0)
	return rect
}

func clamp(index, length int) int {
	return min(max(index, 0), length-1)
}

func indexOrNone(windows []Window, w Window) int {
	if w == nil {
		return -1
	}
	return slices.Index(windows, w)
}

// shiftUp keeps a tracker on the same member after an insert at index.
func shiftUp(tracker *atomic.Int64, index int) {
	if t := tracker.Load(); t >= int64(index) {
		tracker.Store(t + 1)
	}
}

// shiftDown keeps a tracker on the same member after a removal at index. It
// reports whether the tracker pointed at the removed member.
func shiftDown(tracker *atomic.Int64, index int) bool {
	t := tracker.Load()
	switch {
	case t == int64(index):
		tracker.Store(-1)
		return true
	case t > int64(index):
		tracker.Store(t - 1)
	}
	return false
}
