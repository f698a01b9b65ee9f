// Package input defines the pointer and keyboard events a display backend
// delivers, and the targets that receive them.
package input

import (
	"fmt"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
)

// Serial orders input events within a seat.
type Serial uint32

// Seat is a group of input devices sharing one pointer and one keyboard.
type Seat struct {
	Name string
}

func (s *Seat) String() string {
	if s == nil {
		return "seat(nil)"
	}
	return fmt.Sprintf("seat(%s)", s.Name)
}

type ButtonState int

const (
	Released ButtonState = iota
	Pressed
)

// Button codes follow the X11 core protocol numbering.
type Button uint32

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// PointerEvent carries an absolute pointer location for enter and motion.
type PointerEvent struct {
	Location geom.PointF
	Serial   Serial
	Time     uint32
}

type RelativeMotionEvent struct {
	Delta geom.PointF
	Time  uint32
}

type ButtonEvent struct {
	Button Button
	State  ButtonState
	Serial Serial
	Time   uint32
}

type AxisSource int

const (
	AxisWheel AxisSource = iota
	AxisFinger
	AxisContinuous
)

// AxisEvent is one scroll frame. Positive values scroll down/right.
type AxisEvent struct {
	Horizontal float64
	Vertical   float64
	Source     AxisSource
	Time       uint32
}

type KeyState int

const (
	KeyReleased KeyState = iota
	KeyPressed
)

type KeyEvent struct {
	Keycode uint32
	State   KeyState
	Serial  Serial
	Time    uint32
}

type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Logo  bool
}

// PointerTarget receives pointer events in its own local coordinate space.
type PointerTarget interface {
	PointerEnter(seat *Seat, ev PointerEvent)
	PointerMotion(seat *Seat, ev PointerEvent)
	RelativeMotion(seat *Seat, ev RelativeMotionEvent)
	PointerButton(seat *Seat, ev ButtonEvent)
	PointerAxis(seat *Seat, ev AxisEvent)
	PointerLeave(seat *Seat, serial Serial, time uint32)
}

// KeyboardTarget receives keyboard focus and key events.
type KeyboardTarget interface {
	KeyboardEnter(seat *Seat, keys []uint32, serial Serial)
	KeyboardLeave(seat *Seat, serial Serial)
	Key(seat *Seat, ev KeyEvent)
	ModifiersChanged(seat *Seat, mods Modifiers, serial Serial)
}
