package xwm

import (
	"testing"

	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/require"
)

func TestBinding(t *testing.T) {
	tests := []struct {
		keycode xproto.Keycode
		state   uint16
		action  Action
		dir     stack.Direction
	}{
		{keyQ, 0, ActionQuit, 0},
		{keyTab, 0, ActionCycle, 0},
		{keyLeft, 0, ActionFocus, stack.DirLeft},
		{keyRight, xproto.ModMaskShift, ActionMove, stack.DirRight},
		{keyUp, 0, ActionFocus, stack.DirOut},
		{keyDown, 0, ActionFocus, stack.DirIn},
		{keyUp, xproto.ModMaskShift, ActionMove, stack.DirUp},
		{keyDown, xproto.ModMaskShift | xproto.ModMaskControl, ActionMove, stack.DirDown},
		{38, 0, ActionNone, 0},
	}

	for _, tt := range tests {
		action, dir := Binding(tt.keycode, tt.state)
		require.Equal(t, tt.action, action, "keycode %d", tt.keycode)
		require.Equal(t, tt.dir, dir, "keycode %d", tt.keycode)
	}
}

func TestModifiers(t *testing.T) {
	require.Equal(t, input.Modifiers{Shift: true, Logo: true}, modifiers(xproto.ModMaskShift|xproto.ModMask4))
	require.Equal(t, input.Modifiers{}, modifiers(0))
}

func TestButton(t *testing.T) {
	b, _, ok := button(1)
	require.True(t, ok)
	require.Equal(t, input.ButtonLeft, b)

	_, axis, ok := button(5)
	require.False(t, ok)
	require.Equal(t, 1.0, axis.Vertical)
}
