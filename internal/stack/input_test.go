package stack

import (
	"testing"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/stretchr/testify/require"
)

func TestPointerEnterHeader(t *testing.T) {
	f := newFixture("A", "B")

	f.enter(10, 10)

	require.Equal(t, FocusHeader, f.stack.PointerFocus())
	require.Equal(t, []string{"header:pointer-enter(10,10)"}, f.log.take())
}

func TestPointerEnterWindowTranslated(t *testing.T) {
	f := newFixture("A", "B")

	f.enter(10, 24)

	require.Equal(t, FocusWindow, f.stack.PointerFocus())
	require.Equal(t, []string{"A:pointer-enter(10,0)"}, f.log.take())

	f.motion(30, 100)
	require.Equal(t, []string{"A:pointer-motion(30,76)"}, f.log.take())
}

func TestPointerHeaderWindowTransitions(t *testing.T) {
	f := newFixture("A", "B")

	f.enter(10, 10)
	f.motion(10, 50)
	f.motion(10, 5)
	f.motion(11, 6)

	require.Equal(t, []string{
		"header:pointer-enter(10,10)",
		"header:pointer-leave",
		"A:pointer-enter(10,26)",
		"A:pointer-leave",
		"header:pointer-enter(10,5)",
		"header:pointer-motion(11,6)",
	}, f.log.take())
}

func TestPointerHeaderUsesMemberOrigin(t *testing.T) {
	f := newFixture("A")
	f.windows[0].geo = geom.NewRect(4, 8, 800, 600)

	f.enter(10, 30)
	require.Equal(t, FocusHeader, f.stack.PointerFocus())
	require.Equal(t, []string{"header:pointer-enter(6,22)"}, f.log.take())

	f.motion(10, 32)
	require.Equal(t, FocusWindow, f.stack.PointerFocus())
	require.Equal(t, []string{"header:pointer-leave", "A:pointer-enter(10,8)"}, f.log.take())
}

func TestPointerSwitchDeliversOnePair(t *testing.T) {
	f := newFixture("A", "B", "C")
	f.enter(10, 50)
	f.log.take()

	require.True(t, f.stack.HandleFocus(DirRight))
	require.Empty(t, f.log.take())

	f.motion(12, 60)
	require.Equal(t, []string{"A:pointer-leave", "B:pointer-enter(12,36)"}, f.log.take())

	f.motion(13, 60)
	require.Equal(t, []string{"B:pointer-motion(13,36)"}, f.log.take())
}

func TestPointerDoubleSwitchLeavesDeliveredMember(t *testing.T) {
	f := newFixture("A", "B", "C")
	f.enter(10, 50)
	f.log.take()

	f.stack.HandleFocus(DirRight)
	f.stack.HandleFocus(DirRight)
	f.motion(10, 50)

	require.Equal(t, []string{"A:pointer-leave", "C:pointer-enter(10,26)"}, f.log.take())
}

func TestPointerSwitchBackDeliversNothing(t *testing.T) {
	f := newFixture("A", "B")
	f.enter(10, 50)
	f.log.take()

	f.stack.HandleFocus(DirRight)
	f.stack.HandleFocus(DirLeft)
	f.motion(10, 50)

	require.Equal(t, []string{"A:pointer-motion(10,26)"}, f.log.take())
}

func TestButtonFlushesPendingSwitch(t *testing.T) {
	f := newFixture("A", "B")
	f.enter(10, 50)
	f.log.take()

	f.stack.SetActive(f.windows[1])
	f.press()

	require.Equal(t, []string{
		"A:pointer-leave",
		"B:pointer-enter(10,26)",
		"B:button(1)",
	}, f.log.take())
}

func TestAxisRouting(t *testing.T) {
	f := newFixture("A")

	f.enter(10, 10)
	f.stack.PointerAxis(f.seat, input.AxisEvent{Vertical: 1})
	f.motion(10, 50)
	f.stack.PointerAxis(f.seat, input.AxisEvent{Vertical: 1})

	require.Equal(t, []string{
		"header:pointer-enter(10,10)",
		"header:axis",
		"header:pointer-leave",
		"A:pointer-enter(10,26)",
		"A:axis",
	}, f.log.take())
}

func TestRelativeMotionOnlyInWindow(t *testing.T) {
	f := newFixture("A")

	f.enter(10, 10)
	f.stack.RelativeMotion(f.seat, input.RelativeMotionEvent{})
	require.Equal(t, []string{"header:pointer-enter(10,10)"}, f.log.take())

	f.motion(10, 50)
	f.stack.RelativeMotion(f.seat, input.RelativeMotionEvent{})
	require.Equal(t, []string{"header:pointer-leave", "A:pointer-enter(10,26)", "A:relative-motion"}, f.log.take())
}

func TestPointerLeave(t *testing.T) {
	f := newFixture("A", "B")
	f.windows[0].data.AddCaptureHooks(fakeHooks{name: "capA", log: f.log})

	f.enter(10, 50)
	f.motion(11, 50)
	f.stack.PointerLeave(f.seat, 3, 0)

	require.Equal(t, FocusNone, f.stack.PointerFocus())
	require.Equal(t, []string{
		"A:pointer-enter(10,26)",
		"capA:cursor-enter",
		"capA:cursor-info(10,26)",
		"A:pointer-motion(11,26)",
		"capA:cursor-info(11,26)",
		"capA:cursor-leave",
		"A:pointer-leave",
	}, f.log.take())

	f.enter(10, 10)
	f.stack.PointerLeave(f.seat, 4, 0)
	require.Equal(t, []string{"header:pointer-enter(10,10)", "header:pointer-leave"}, f.log.take())
}

func TestCaptureHooksFollowSwitch(t *testing.T) {
	f := newFixture("A", "B")
	f.windows[0].data.AddCaptureHooks(fakeHooks{name: "capA", log: f.log})
	remove := f.windows[1].data.AddCaptureHooks(fakeHooks{name: "capB", log: f.log})

	f.enter(10, 50)
	f.log.take()

	f.stack.HandleFocus(DirRight)
	f.motion(10, 50)
	require.Equal(t, []string{
		"capA:cursor-leave",
		"A:pointer-leave",
		"B:pointer-enter(10,26)",
		"capB:cursor-enter",
		"capB:cursor-info(10,26)",
	}, f.log.take())

	remove()
	f.motion(10, 51)
	require.Equal(t, []string{"B:pointer-motion(10,27)"}, f.log.take())
}

func TestHeaderPressRecordsSeat(t *testing.T) {
	f := newFixture("A")
	f.stack.HandleFocus(DirOut)

	f.enter(10, 10)
	f.press()

	require.True(t, f.stack.GroupFocused())
	require.NotNil(t, f.stack.lastSeat)
	require.Equal(t, input.Serial(7), f.stack.lastSeat.serial)
	require.Equal(t, []string{"header:pointer-enter(10,10)", "header:button(1)"}, f.log.take())
}

func TestWindowPressClearsGroupFocus(t *testing.T) {
	f := newFixture("A", "B")
	f.stack.HandleFocus(DirOut)

	f.enter(10, 50)
	f.press()

	require.False(t, f.stack.GroupFocused())
	for _, w := range f.windows {
		require.True(t, w.Activated())
	}
	require.Equal(t, []string{"A:pointer-enter(10,26)", "A:button(1)"}, f.log.take())
}

func TestKeyboardSwitchDeliversOnePair(t *testing.T) {
	f := newFixture("A", "B")

	f.stack.KeyboardEnter(f.seat, []uint32{1}, 1)
	require.Equal(t, []string{"A:keyboard-enter"}, f.log.take())

	f.stack.HandleFocus(DirRight)
	f.key(38)
	f.key(39)
	require.Equal(t, []string{
		"A:keyboard-leave",
		"B:keyboard-enter",
		"B:key(38)",
		"B:key(39)",
	}, f.log.take())

	f.stack.ModifiersChanged(f.seat, input.Modifiers{Shift: true}, 2)
	f.stack.KeyboardLeave(f.seat, 3)
	require.Equal(t, []string{"B:modifiers", "B:keyboard-leave"}, f.log.take())
}

func TestDevicesFlushIndependently(t *testing.T) {
	f := newFixture("A", "B")
	f.stack.KeyboardEnter(f.seat, nil, 1)
	f.enter(10, 50)
	f.log.take()

	f.stack.HandleFocus(DirRight)

	f.key(10)
	require.Equal(t, []string{"A:keyboard-leave", "B:keyboard-enter", "B:key(10)"}, f.log.take())

	f.motion(10, 50)
	require.Equal(t, []string{"A:pointer-leave", "B:pointer-enter(10,26)"}, f.log.take())
}

func TestKeyboardSwallowedWhileGroupFocused(t *testing.T) {
	f := newFixture("A", "B")
	f.stack.HandleFocus(DirOut)

	f.stack.KeyboardEnter(f.seat, nil, 1)
	f.key(10)
	f.stack.ModifiersChanged(f.seat, input.Modifiers{}, 2)

	require.Equal(t, []string{"A:keyboard-enter"}, f.log.take())

	f.stack.HandleFocus(DirIn)
	f.key(11)
	require.Equal(t, []string{"A:key(11)"}, f.log.take())
}

func TestKeyboardEnterDuringGroupFocusThenKey(t *testing.T) {
	f := newFixture("A", "B")

	f.stack.HandleFocus(DirOut)
	f.stack.KeyboardEnter(f.seat, nil, 1)
	f.stack.HandleFocus(DirIn)
	f.key(42)

	require.Equal(t, []string{"A:keyboard-enter", "A:key(42)"}, f.log.take())
}

func TestKeyboardLeaveEndsGroupFocus(t *testing.T) {
	f := newFixture("A", "B")

	f.stack.KeyboardEnter(f.seat, nil, 1)
	f.stack.HandleFocus(DirOut)
	f.stack.KeyboardLeave(f.seat, 2)

	require.False(t, f.stack.GroupFocused())
	for _, w := range f.windows {
		require.True(t, w.Activated())
	}

	require.False(t, f.stack.HandleFocus(DirIn))
	f.stack.KeyboardEnter(f.seat, nil, 3)

	require.Equal(t, []string{"A:keyboard-enter", "A:keyboard-leave", "A:keyboard-enter"}, f.log.take())
}

func TestKeyboardSwitchDuringGroupFocus(t *testing.T) {
	f := newFixture("A", "B")

	f.stack.KeyboardEnter(f.seat, nil, 1)
	f.stack.HandleFocus(DirOut)
	f.stack.HandleMessage(MsgActivate{Index: 1})
	f.key(10)
	f.stack.KeyboardLeave(f.seat, 2)

	require.Equal(t, []string{
		"A:keyboard-enter",
		"A:keyboard-leave",
		"B:keyboard-enter",
		"B:keyboard-leave",
	}, f.log.take())
}

func TestRemoveFocusedMemberDeliversLeave(t *testing.T) {
	f := newFixture("A", "B")
	f.stack.KeyboardEnter(f.seat, nil, 1)
	f.enter(10, 50)
	f.log.take()

	require.True(t, f.stack.Remove(f.windows[0]))
	require.Equal(t, []string{"A:pointer-leave", "A:keyboard-leave"}, f.log.take())

	f.motion(10, 50)
	f.key(1)
	require.Equal(t, []string{
		"B:pointer-enter(10,26)",
		"B:keyboard-enter",
		"B:key(1)",
	}, f.log.take())
}

func TestRemoveUnfocusedMemberKeepsTrackers(t *testing.T) {
	f := newFixture("A", "B", "C")
	f.stack.SetActive(f.windows[2])
	f.enter(10, 50)
	f.log.take()

	require.True(t, f.stack.Remove(f.windows[0]))
	require.Empty(t, f.log.take())

	f.motion(10, 50)
	require.Equal(t, []string{"C:pointer-motion(10,26)"}, f.log.take())
}

func TestEjectDeliversLeave(t *testing.T) {
	f := newFixture("A", "B")
	f.enter(10, 50)
	f.log.take()

	res := f.stack.HandleMove(DirUp)
	require.Equal(t, MoveEjected, res.Kind)
	require.Equal(t, []string{"A:pointer-leave"}, f.log.take())

	f.motion(10, 50)
	require.Equal(t, []string{"B:pointer-enter(10,26)"}, f.log.take())
}

func TestSwapKeepsDeliveredFocus(t *testing.T) {
	f := newFixture("A", "B")
	f.enter(10, 50)
	f.log.take()

	require.Equal(t, MoveHandled, f.stack.HandleMove(DirRight).Kind)
	f.motion(10, 50)

	require.Equal(t, []string{"A:pointer-motion(10,26)"}, f.log.take())
}

func TestRefreshForgetsDeadFocusedMember(t *testing.T) {
	f := newFixture("A", "B")
	f.enter(10, 50)
	f.log.take()

	f.windows[0].kill()
	f.stack.Refresh()
	f.motion(10, 50)

	require.Equal(t, []string{"B:pointer-enter(10,26)"}, f.log.take())
}

func TestInsertShiftsTrackers(t *testing.T) {
	f := newFixture("A", "B")
	f.enter(10, 50)
	f.log.take()

	f.stack.Insert(newFakeWindow("X", f.log), 0)
	f.motion(10, 50)

	require.Equal(t, []string{"A:pointer-leave", "X:pointer-enter(10,26)"}, f.log.take())
}
