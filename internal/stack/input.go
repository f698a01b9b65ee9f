package stack

import (
	"sync/atomic"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
)

var (
	_ input.PointerTarget  = (*Stack)(nil)
	_ input.KeyboardTarget = (*Stack)(nil)
)

// PointerFocus returns the current pointer target.
func (s *Stack) PointerFocus() Focus {
	return s.pointerFocus.Load()
}

// sync aligns tracker with the active index. old is the member that last
// received focus for the device when it differs from the active member, or
// nil when that member is gone.
func (s *Stack) sync(tracker *atomic.Int64) (old, active Window, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndexLocked()
	prev := int(tracker.Swap(int64(idx)))
	active = s.windows[idx]
	if prev == idx {
		return nil, active, false
	}
	if prev >= 0 && prev < len(s.windows) {
		old = s.windows[prev]
	}
	return old, active, true
}

// flushPointer delivers a pending active member change to the pointer, using
// the last location seen inside a member.
func (s *Stack) flushPointer(seat *input.Seat) {
	if s.pointerFocus.Load() != FocusWindow {
		return
	}

	old, active, changed := s.sync(&s.prevPointer)
	if !changed {
		return
	}

	s.mu.Lock()
	ev := input.PointerEvent{}
	if s.lastPointer != nil {
		ev = s.lastPointer.event
	}
	s.mu.Unlock()

	if old != nil {
		cursorLeave(old, seat)
		old.PointerLeave(seat, ev.Serial, ev.Time)
	}
	active.PointerEnter(seat, ev)
	cursorEnter(active, seat, ev.Location)
}

// flushKeyboard delivers a pending active member change to the keyboard.
func (s *Stack) flushKeyboard(seat *input.Seat, serial input.Serial) {
	old, active, changed := s.sync(&s.prevKeyboard)
	if !changed {
		return
	}

	if old != nil {
		old.KeyboardLeave(seat, serial)
	}
	active.KeyboardEnter(seat, nil, serial)
}

func (s *Stack) PointerEnter(seat *input.Seat, ev input.PointerEvent) {
	s.mu.Lock()
	s.prevPointer.Store(int64(s.activeIndexLocked()))
	s.mu.Unlock()
	s.pointerFocus.Store(FocusNone)

	s.PointerMotion(seat, ev)
}

func (s *Stack) PointerMotion(seat *input.Seat, ev input.PointerEvent) {
	local := ev.Location.Sub(geom.PointF{Y: float64(HeaderHeight)})
	geo := s.Active().Geometry()

	if local.Y < float64(geo.Loc.Y) {
		s.pointerToHeader(seat, ev, local, geo)
	} else {
		s.pointerToWindow(seat, ev, local)
	}
}

func (s *Stack) pointerToHeader(seat *input.Seat, ev input.PointerEvent, local geom.PointF, geo geom.Rect) {
	prev := s.pointerFocus.Swap(FocusHeader)
	if prev == FocusWindow {
		old, active, changed := s.sync(&s.prevPointer)
		target := active
		if changed {
			target = old
		}
		if target != nil {
			cursorLeave(target, seat)
			target.PointerLeave(seat, ev.Serial, ev.Time)
		}
	}

	hev := ev
	hev.Location = local.Add(geom.PointF{Y: float64(HeaderHeight)}).Sub(geo.Loc.ToF())
	if prev == FocusHeader {
		s.header.PointerMotion(seat, hev)
	} else {
		s.header.PointerEnter(seat, hev)
	}
}

func (s *Stack) pointerToWindow(seat *input.Seat, ev input.PointerEvent, local geom.PointF) {
	prev := s.pointerFocus.Swap(FocusWindow)
	if prev == FocusHeader {
		s.header.PointerLeave(seat, ev.Serial, ev.Time)
	}

	wev := ev
	wev.Location = local

	s.mu.Lock()
	s.lastPointer = &pointerContext{seat: seat, event: wev}
	s.mu.Unlock()

	old, active, changed := s.sync(&s.prevPointer)
	switch {
	case prev != FocusWindow:
		// The member that had the pointer already got its leave when the
		// pointer left the window area.
		active.PointerEnter(seat, wev)
		cursorEnter(active, seat, wev.Location)
	case changed:
		if old != nil {
			cursorLeave(old, seat)
			old.PointerLeave(seat, ev.Serial, ev.Time)
		}
		active.PointerEnter(seat, wev)
		cursorEnter(active, seat, wev.Location)
	default:
		active.PointerMotion(seat, wev)
		cursorInfo(active, seat, wev.Location)
	}
}

func (s *Stack) RelativeMotion(seat *input.Seat, ev input.RelativeMotionEvent) {
	s.flushPointer(seat)
	if s.pointerFocus.Load() == FocusWindow {
		s.Active().RelativeMotion(seat, ev)
	}
}

func (s *Stack) PointerButton(seat *input.Seat, ev input.ButtonEvent) {
	s.flushPointer(seat)

	switch s.pointerFocus.Load() {
	case FocusHeader:
		if ev.State == input.Pressed {
			s.mu.Lock()
			s.lastSeat = &seatContext{seat: seat, serial: ev.Serial}
			s.mu.Unlock()
		}
		s.header.PointerButton(seat, ev)
	case FocusWindow:
		if ev.State == input.Pressed && s.groupFocused.Swap(false) {
			s.activateAll(true)
		}
		s.Active().PointerButton(seat, ev)
	}
}

func (s *Stack) PointerAxis(seat *input.Seat, ev input.AxisEvent) {
	s.flushPointer(seat)

	switch s.pointerFocus.Load() {
	case FocusHeader:
		s.header.PointerAxis(seat, ev)
	case FocusWindow:
		s.Active().PointerAxis(seat, ev)
	}
}

func (s *Stack) PointerLeave(seat *input.Seat, serial input.Serial, time uint32) {
	s.flushPointer(seat)

	switch s.pointerFocus.Swap(FocusNone) {
	case FocusHeader:
		s.header.PointerLeave(seat, serial, time)
	case FocusWindow:
		active := s.Active()
		cursorLeave(active, seat)
		active.PointerLeave(seat, serial, time)
	}
}

// KeyboardEnter hands keyboard focus to the active member. Nothing was
// delivered before the enter, so the tracker is aligned without a leave.
// Unlike key events, enter and leave reach the member during group focus.
func (s *Stack) KeyboardEnter(seat *input.Seat, keys []uint32, serial input.Serial) {
	s.mu.Lock()
	s.keyboardSeat = seat
	s.mu.Unlock()
	s.keyboardFocus.Store(true)

	_, active, _ := s.sync(&s.prevKeyboard)
	active.KeyboardEnter(seat, keys, serial)
}

// KeyboardLeave takes keyboard focus from the active member and ends group
// focus.
func (s *Stack) KeyboardLeave(seat *input.Seat, serial input.Serial) {
	s.flushKeyboard(seat, serial)
	s.keyboardFocus.Store(false)
	s.Active().KeyboardLeave(seat, serial)

	if s.groupFocused.Swap(false) {
		s.log.Debug("Header released group focus")
		s.activateAll(true)
	}
}

func (s *Stack) Key(seat *input.Seat, ev input.KeyEvent) {
	s.flushKeyboard(seat, ev.Serial)
	if s.groupFocused.Load() {
		return
	}
	s.Active().Key(seat, ev)
}

func (s *Stack) ModifiersChanged(seat *input.Seat, mods input.Modifiers, serial input.Serial) {
	s.flushKeyboard(seat, serial)
	if s.groupFocused.Load() {
		return
	}
	s.Active().ModifiersChanged(seat, mods, serial)
}
