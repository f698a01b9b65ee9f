package stack

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Focus is the target of pointer input inside the stack.
type Focus uint32

const (
	FocusNone Focus = iota
	FocusHeader
	FocusWindow
)

func (f Focus) String() string {
	switch f {
	case FocusNone:
		return "none"
	case FocusHeader:
		return "header"
	case FocusWindow:
		return "window"
	default:
		return fmt.Sprintf("focus(%d)", uint32(f))
	}
}

func decodeFocus(v uint32) (Focus, error) {
	switch f := Focus(v); f {
	case FocusNone, FocusHeader, FocusWindow:
		return f, nil
	default:
		return FocusNone, fmt.Errorf("invalid pointer focus value %d", v)
	}
}

// focusState stores a Focus so the input pass can read and replace it in one
// step.
type focusState struct {
	v atomic.Uint32
}

func (s *focusState) Load() Focus {
	f, _ := decodeFocus(s.v.Load())
	return f
}

func (s *focusState) Store(f Focus) {
	s.v.Store(uint32(f))
}

func (s *focusState) Swap(f Focus) Focus {
	old, _ := decodeFocus(s.v.Swap(uint32(f)))
	return old
}

type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirIn
	DirOut
)

var directionNames = [...]string{"left", "right", "up", "down", "in", "out"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%s: invalid direction", s)
}

// HandleFocus moves focus inside the stack. It returns false when the
// direction is not handled here so the caller can pass it to the enclosing
// layout.
func (s *Stack) HandleFocus(dir Direction) bool {
	switch dir {
	case DirOut:
		if s.groupFocused.Swap(true) {
			return false
		}
		s.log.Debug("Header took group focus")
		s.activateAll(false)
		return true
	case DirIn:
		if !s.groupFocused.Swap(false) {
			return false
		}
		s.log.Debug("Header released group focus")
		s.activateAll(true)
		return true
	}

	if s.groupFocused.Load() {
		return false
	}

	s.mu.Lock()
	active := s.activeIndexLocked()
	next := active
	switch dir {
	case DirLeft:
		next = active - 1
	case DirRight:
		next = active + 1
	}
	if next == active || next < 0 || next >= len(s.windows) {
		s.mu.Unlock()
		return false
	}
	s.active.Store(int64(next))
	s.mu.Unlock()

	s.scrollToFocus.Store(true)
	return true
}

func (s *Stack) activateAll(activated bool) {
	for _, w := range s.Windows() {
		w.SetActivated(activated)
		w.SendConfigure()
	}
}

type MoveKind int

const (
	MoveNotApplicable MoveKind = iota
	MoveHandled
	MoveEjected
)

func (k MoveKind) String() string {
	switch k {
	case MoveHandled:
		return "handled"
	case MoveEjected:
		return "ejected"
	default:
		return "not-applicable"
	}
}

// MoveResult is the outcome of HandleMove. Window is set when Kind is
// MoveEjected and is owned by the caller from then on.
type MoveResult struct {
	Kind   MoveKind
	Window Window
}

// HandleMove reorders the active member, or ejects it when it cannot move any
// further in dir.
func (s *Stack) HandleMove(dir Direction) MoveResult {
	if s.groupFocused.Load() {
		return MoveResult{Kind: MoveNotApplicable}
	}

	switch dir {
	case DirLeft, DirRight, DirUp, DirDown:
	default:
		return MoveResult{Kind: MoveNotApplicable}
	}

	s.mu.Lock()
	active := s.activeIndexLocked()

	neighbor := -1
	switch dir {
	case DirLeft:
		neighbor = active - 1
	case DirRight:
		neighbor = active + 1
	}

	if neighbor >= 0 && neighbor < len(s.windows) {
		s.windows[active], s.windows[neighbor] = s.windows[neighbor], s.windows[active]
		swapTracker(&s.prevKeyboard, active, neighbor)
		swapTracker(&s.prevPointer, active, neighbor)
		s.active.Store(int64(neighbor))
		s.mu.Unlock()

		s.scrollToFocus.Store(true)
		return MoveResult{Kind: MoveHandled}
	}

	if len(s.windows) == 1 {
		s.mu.Unlock()
		return MoveResult{Kind: MoveNotApplicable}
	}

	w, leaves := s.removeLocked(active)
	s.mu.Unlock()

	s.release(w, leaves)
	s.log.Debug("Ejected window", "direction", dir, "title", w.Title())

	return MoveResult{Kind: MoveEjected, Window: w}
}

// swapTracker keeps a tracker on the same member when members a and b trade
// places.
func swapTracker(tracker *atomic.Int64, a, b int) {
	switch tracker.Load() {
	case int64(a):
		tracker.Store(int64(b))
	case int64(b):
		tracker.Store(int64(a))
	}
}
