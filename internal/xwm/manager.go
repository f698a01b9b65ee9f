package xwm

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ItsNotGoodName/x-tabstack/internal/bus"
	"github.com/ItsNotGoodName/x-tabstack/internal/config"
	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
	"github.com/ItsNotGoodName/x-tabstack/internal/tabbar"
	"github.com/ItsNotGoodName/x-tabstack/internal/xcursor"
	"github.com/google/uuid"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/thejerf/suture/v4"
)

const frameInterval = time.Second / 30

var ErrNotReady = errors.New("window manager not ready")

// PlayerFactory starts a player rendering stream into wid.
type PlayerFactory func(ctx context.Context, wid xproto.Window, stream config.Stream) (Player, error)

// Changed is published whenever the stacks change.
type Changed struct {
	Version uint64      `json:"version"`
	Stacks  []StackInfo `json:"stacks"`
}

type Manager struct {
	conn      *xgb.Conn
	store     *config.Store
	newPlayer PlayerFactory
	loop      *Loop
	ready     atomic.Bool

	// Owned by the Serve goroutine.
	desktop *Desktop
	canvas  Window
	frame   *Frame
	cursors xcursor.Set
	cursor  xproto.Cursor
	mods    uint16
	members map[stack.Window]*Member
}

func NewManager(conn *xgb.Conn, store *config.Store, newPlayer PlayerFactory) *Manager {
	return &Manager{
		conn:      conn,
		store:     store,
		newPlayer: newPlayer,
		loop:      NewLoop(),
		members:   make(map[stack.Window]*Member),
	}
}

func (m *Manager) String() string {
	return "xwm.Manager"
}

func (m *Manager) Serve(ctx context.Context) error {
	slog := slog.With("func", "xwm.Manager.Serve")

	if err := m.setup(ctx); err != nil {
		return err
	}
	defer m.teardown()

	eventC := make(chan xgb.Event)
	go ReceiveEvents(ctx, m.conn, eventC)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	m.ready.Store(true)
	defer m.ready.Store(false)

	var published uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventC:
			if !ok {
				slog.Debug("exit: event channel closed")
				return suture.ErrTerminateSupervisorTree
			}

			if err := m.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					slog.Debug("exit: quit")
					return suture.ErrTerminateSupervisorTree
				}
				slog.Error("Failed to handle event", "error", err)
			}
		case <-m.loop.Ready():
			m.loop.Drain()
		case <-ticker.C:
			for _, w := range m.desktop.Refresh() {
				m.destroy(ctx, w)
			}

			if v := m.desktop.Version(); v != published {
				published = v
				bus.Publish(Changed{Version: v, Stacks: m.desktop.Snapshot()})
			}

			if m.desktop.Dirty() {
				if err := m.draw(); err != nil {
					slog.Error("Failed to draw", "error", err)
				}
			}
		}
	}
}

func (m *Manager) setup(ctx context.Context) error {
	cfg, err := m.store.GetConfig()
	if err != nil {
		return err
	}
	layout, err := cfg.Mosaic()
	if err != nil {
		return err
	}
	accent, err := cfg.AccentColor()
	if err != nil {
		return err
	}

	m.cursors, err = xcursor.Load(m.conn)
	if err != nil {
		return err
	}
	m.cursor = m.cursors.Default

	m.canvas, err = CreateWindow(m.conn, m.cursors)
	if err != nil {
		return err
	}

	m.frame, err = NewFrame(m.conn, m.canvas.WID)
	if err != nil {
		return err
	}

	m.desktop = NewDesktop(m.loop, m.canvas.Rect(), DesktopOptions{
		Layout:     layout,
		Accent:     accent,
		Style:      tabbar.DefaultStyle,
		Background: render.Color{A: 0xff},
		Logger:     slog.Default(),
	})

	for _, group := range cfg.Groups() {
		var windows []stack.Window
		for _, s := range group {
			member, err := m.createMember(ctx, s)
			if err != nil {
				slog.Error("Failed to create member", "stream", s.UUID, "error", err)
				continue
			}
			windows = append(windows, member)
		}
		if len(windows) == 0 {
			continue
		}

		if _, err := m.desktop.AddStack(windows); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) createMember(ctx context.Context, s config.Stream) (*Member, error) {
	win, err := CreateSubWindow(m.conn, m.canvas.WID, geom.NewRect(0, 0, 1, 1))
	if err != nil {
		return nil, err
	}

	player, err := m.newPlayer(ctx, win.WID, s)
	if err != nil {
		return nil, errors.Join(err, DestroyWindow(m.conn, win.WID))
	}

	member := NewMember(ctx, m.conn, win, player, MemberOptions{
		Title: s.Title(),
		AppID: "mpv",
		Main:  s.Main,
		Sub:   s.Sub,
	})
	m.members[member] = member
	return member, nil
}

func (m *Manager) destroy(ctx context.Context, w stack.Window) {
	member, ok := m.members[w]
	if !ok {
		return
	}
	delete(m.members, w)

	if err := member.Destroy(ctx); err != nil {
		slog.Error("Failed to destroy member", "wid", member.WID(), "error", err)
	}
}

func (m *Manager) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for w := range m.members {
		m.destroy(ctx, w)
	}
	if err := m.frame.Close(); err != nil {
		slog.Error("Failed to free graphics context", "error", err)
	}
	if err := DestroyWindow(m.conn, m.canvas.WID); err != nil {
		slog.Error("Failed to destroy canvas", "error", err)
	}
}

func (m *Manager) draw() error {
	elements := m.desktop.RenderElements()
	damage := []geom.Rect{m.canvas.Rect()}

	var errs []error
	for _, e := range elements {
		if err := e.Draw(m.frame, damage); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) handleEvent(ev xgb.Event) error {
	d := m.desktop

	switch ev := ev.(type) {
	case xproto.ConfigureNotifyEvent:
		if ev.Window != m.canvas.WID {
			return nil
		}
		m.canvas.Width, m.canvas.Height = ev.Width, ev.Height
		d.SetArea(m.canvas.Rect())
	case xproto.ExposeEvent:
		if ev.Count == 0 {
			d.Damage()
		}
	case xproto.DestroyNotifyEvent:
		if ev.Window == m.canvas.WID {
			return ErrQuit
		}
	case xproto.EnterNotifyEvent:
		if ev.Detail == xproto.NotifyDetailInferior {
			return nil
		}
		m.syncModifiers(ev.State)
		d.PointerMotion(pointerEvent(ev.Sequence, ev.Time, ev.EventX, ev.EventY))
		m.syncCursor()
	case xproto.LeaveNotifyEvent:
		if ev.Detail == xproto.NotifyDetailInferior {
			return nil
		}
		d.PointerLeave(input.Serial(ev.Sequence), uint32(ev.Time))
		m.syncCursor()
	case xproto.MotionNotifyEvent:
		d.PointerMotion(pointerEvent(ev.Sequence, ev.Time, ev.EventX, ev.EventY))
		m.syncCursor()
	case xproto.ButtonPressEvent:
		m.syncModifiers(ev.State)
		m.pointerButton(ev.Detail, input.Pressed, ev.Sequence, ev.Time)
	case xproto.ButtonReleaseEvent:
		m.syncModifiers(ev.State)
		m.pointerButton(ev.Detail, input.Released, ev.Sequence, ev.Time)
	case xproto.KeyPressEvent:
		m.syncModifiers(ev.State)
		action, dir := Binding(ev.Detail, ev.State)
		switch action {
		case ActionQuit:
			return ErrQuit
		case ActionCycle:
			d.CycleFocus()
		case ActionFocus:
			d.Focus(dir)
		case ActionMove:
			if _, err := d.Move(dir); err != nil && !errors.Is(err, ErrNoStacks) {
				return err
			}
		default:
			d.Key(input.KeyEvent{
				Keycode: uint32(ev.Detail),
				State:   input.KeyPressed,
				Serial:  input.Serial(ev.Sequence),
				Time:    uint32(ev.Time),
			})
		}
	case xproto.KeyReleaseEvent:
		m.syncModifiers(ev.State)
		if action, _ := Binding(ev.Detail, ev.State); action != ActionNone {
			return nil
		}
		d.Key(input.KeyEvent{
			Keycode: uint32(ev.Detail),
			State:   input.KeyReleased,
			Serial:  input.Serial(ev.Sequence),
			Time:    uint32(ev.Time),
		})
	case xproto.FocusInEvent:
		d.KeyboardEnter(input.Serial(ev.Sequence))
	case xproto.FocusOutEvent:
		if ev.Detail != xproto.NotifyDetailInferior {
			d.KeyboardLeave(input.Serial(ev.Sequence))
		}
	}

	return nil
}

func pointerEvent(seq uint16, t xproto.Timestamp, x, y int16) input.PointerEvent {
	return input.PointerEvent{
		Location: geom.PointF{X: float64(x), Y: float64(y)},
		Serial:   input.Serial(seq),
		Time:     uint32(t),
	}
}

func (m *Manager) pointerButton(detail xproto.Button, state input.ButtonState, seq uint16, t xproto.Timestamp) {
	b, axis, ok := button(detail)
	if !ok {
		if state == input.Pressed {
			axis.Source = input.AxisWheel
			axis.Time = uint32(t)
			m.desktop.PointerAxis(axis)
		}
		return
	}

	m.desktop.PointerButton(input.ButtonEvent{
		Button: b,
		State:  state,
		Serial: input.Serial(seq),
		Time:   uint32(t),
	})
}

func (m *Manager) syncModifiers(state uint16) {
	if state == m.mods {
		return
	}
	m.mods = state
	m.desktop.ModifiersChanged(modifiers(state), 0)
}

// syncCursor shows the header cursor while the pointer is over a tab strip.
func (m *Manager) syncCursor() {
	cursor := m.cursors.Default
	if e := m.desktop.Hovered(); e != nil && e.Stack.PointerFocus() == stack.FocusHeader {
		cursor = m.cursors.Header
	}
	if cursor == m.cursor {
		return
	}
	m.cursor = cursor

	if err := xproto.ChangeWindowAttributesChecked(m.conn, m.canvas.WID, xproto.CwCursor, []uint32{uint32(cursor)}).Check(); err != nil {
		slog.Error("Failed to change cursor", "error", err)
	}
}

// Do runs fn on the event loop and waits for it.
func (m *Manager) Do(ctx context.Context, fn func(d *Desktop) error) error {
	if !m.ready.Load() {
		return ErrNotReady
	}

	errC := make(chan error, 1)
	m.loop.Post(func() {
		if m.desktop == nil {
			errC <- ErrNotReady
			return
		}
		errC <- fn(m.desktop)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errC:
		return err
	}
}

func (m *Manager) Stacks(ctx context.Context) ([]StackInfo, error) {
	var infos []StackInfo
	err := m.Do(ctx, func(d *Desktop) error {
		infos = d.Snapshot()
		return nil
	})
	return infos, err
}

func (m *Manager) Focus(ctx context.Context, id uuid.UUID, dir stack.Direction) (bool, error) {
	var handled bool
	err := m.Do(ctx, func(d *Desktop) error {
		e, err := d.Lookup(id)
		if err != nil {
			return err
		}
		handled = d.FocusStack(e, dir)
		return nil
	})
	return handled, err
}

func (m *Manager) Move(ctx context.Context, id uuid.UUID, dir stack.Direction) (stack.MoveKind, error) {
	var kind stack.MoveKind
	err := m.Do(ctx, func(d *Desktop) error {
		e, err := d.Lookup(id)
		if err != nil {
			return err
		}
		kind, err = d.MoveStack(e, dir)
		return err
	})
	return kind, err
}

func (m *Manager) SetActive(ctx context.Context, id uuid.UUID, index int) error {
	return m.Do(ctx, func(d *Desktop) error {
		e, err := d.Lookup(id)
		if err != nil {
			return err
		}
		return d.SetActive(e, index)
	})
}
