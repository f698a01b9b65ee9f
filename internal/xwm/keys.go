package xwm

import (
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
	"github.com/jezek/xgb/xproto"
)

// Keycodes of a standard evdev keymap.
const (
	keyTab   xproto.Keycode = 23
	keyQ     xproto.Keycode = 24
	keyUp    xproto.Keycode = 111
	keyLeft  xproto.Keycode = 113
	keyRight xproto.Keycode = 114
	keyDown  xproto.Keycode = 116
)

type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionCycle
	ActionFocus
	ActionMove
)

// Binding resolves a key press on the canvas. Arrows focus, shifted arrows
// move the active member, Up and Down leave and enter the tab group.
func Binding(keycode xproto.Keycode, state uint16) (Action, stack.Direction) {
	shift := state&xproto.ModMaskShift != 0

	var dir stack.Direction
	switch keycode {
	case keyQ:
		return ActionQuit, 0
	case keyTab:
		return ActionCycle, 0
	case keyLeft:
		dir = stack.DirLeft
	case keyRight:
		dir = stack.DirRight
	case keyUp:
		if shift {
			return ActionMove, stack.DirUp
		}
		return ActionFocus, stack.DirOut
	case keyDown:
		if shift {
			return ActionMove, stack.DirDown
		}
		return ActionFocus, stack.DirIn
	default:
		return ActionNone, 0
	}

	if shift {
		return ActionMove, dir
	}
	return ActionFocus, dir
}

func modifiers(state uint16) input.Modifiers {
	return input.Modifiers{
		Shift: state&xproto.ModMaskShift != 0,
		Ctrl:  state&xproto.ModMaskControl != 0,
		Alt:   state&xproto.ModMask1 != 0,
		Logo:  state&xproto.ModMask4 != 0,
	}
}

// button converts a core button to a pointer button or a scroll step.
func button(detail xproto.Button) (input.Button, input.AxisEvent, bool) {
	switch detail {
	case 4:
		return 0, input.AxisEvent{Vertical: -1}, false
	case 5:
		return 0, input.AxisEvent{Vertical: 1}, false
	case 6:
		return 0, input.AxisEvent{Horizontal: -1}, false
	case 7:
		return 0, input.AxisEvent{Horizontal: 1}, false
	default:
		return input.Button(detail), input.AxisEvent{}, true
	}
}
