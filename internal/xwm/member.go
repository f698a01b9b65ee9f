package xwm

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Player plays one stream into a member window.
type Player interface {
	Load(ctx context.Context, file string) error
	Mute(ctx context.Context, mute bool) error
	Close(ctx context.Context) error
	Done() <-chan struct{}
}

var (
	_ stack.Window = (*Member)(nil)
	_ Visible      = (*Member)(nil)
)

// Visible is implemented by windows that are hidden while another member of
// their stack is active.
type Visible interface {
	SetVisible(visible bool)
}

type MemberOptions struct {
	Title string
	AppID string
	// Main is played while the member is shown and activated, Sub otherwise.
	Main string
	Sub  string
}

type playback struct {
	file string
	mute bool
}

// Member is a stack window backed by an X subwindow that mpv renders into.
type Member struct {
	conn   *xgb.Conn
	wid    xproto.Window
	player Player
	log    *slog.Logger
	data   *stack.SideData
	opts   MemberOptions

	playbackC chan playback

	mu          sync.Mutex
	rect        geom.Rect
	activated   bool
	visible     bool
	undecorated bool
	tiled       bool
	closed      bool
	output      string
}

func NewMember(ctx context.Context, conn *xgb.Conn, win Window, player Player, opts MemberOptions) *Member {
	data := stack.NewSideData()
	m := &Member{
		conn:      conn,
		wid:       win.WID,
		player:    player,
		log:       slog.With("member", data.ID.String(), "wid", win.WID),
		data:      data,
		opts:      opts,
		playbackC: make(chan playback, 1),
		rect:      geom.NewRect(0, 0, int32(win.Width), int32(win.Height)),
		activated: true,
	}

	go m.run(ctx)
	m.apply()

	return m
}

// run forwards the latest wanted playback to the player off the event loop.
func (m *Member) run(ctx context.Context) {
	var current *playback
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.player.Done():
			return
		case want := <-m.playbackC:
			if current == nil || current.file != want.file {
				if err := m.player.Load(ctx, want.file); err != nil {
					m.log.Error("Failed to load stream", "error", err)
					continue
				}
			}
			if current == nil || current.mute != want.mute {
				if err := m.player.Mute(ctx, want.mute); err != nil {
					m.log.Error("Failed to mute", "error", err)
					continue
				}
			}
			current = &want
		}
	}
}

func (m *Member) apply() {
	m.mu.Lock()
	want := playback{file: m.opts.Sub, mute: true}
	if m.activated && m.visible && m.opts.Main != "" {
		want = playback{file: m.opts.Main, mute: false}
	}
	if want.file == "" {
		want.file = m.opts.Main
	}
	m.mu.Unlock()

	select {
	case <-m.playbackC:
	default:
	}
	m.playbackC <- want
}

func (m *Member) WID() xproto.Window {
	return m.wid
}

// Destroy closes the player and the X window.
func (m *Member) Destroy(ctx context.Context) error {
	return errors.Join(m.player.Close(ctx), DestroyWindow(m.conn, m.wid))
}

func (m *Member) PointerEnter(seat *input.Seat, ev input.PointerEvent)          {}
func (m *Member) PointerMotion(seat *input.Seat, ev input.PointerEvent)         {}
func (m *Member) RelativeMotion(seat *input.Seat, ev input.RelativeMotionEvent) {}
func (m *Member) PointerAxis(seat *input.Seat, ev input.AxisEvent)              {}
func (m *Member) PointerLeave(seat *input.Seat, serial input.Serial, time uint32) {}

func (m *Member) PointerButton(seat *input.Seat, ev input.ButtonEvent) {
	m.log.Debug("Button", "button", ev.Button, "state", ev.State)
}

func (m *Member) KeyboardEnter(seat *input.Seat, keys []uint32, serial input.Serial) {
	m.log.Debug("Keyboard enter", "seat", seat)
}

func (m *Member) KeyboardLeave(seat *input.Seat, serial input.Serial) {
	m.log.Debug("Keyboard leave", "seat", seat)
}

func (m *Member) Key(seat *input.Seat, ev input.KeyEvent) {}

func (m *Member) ModifiersChanged(seat *input.Seat, mods input.Modifiers, serial input.Serial) {}

func (m *Member) Geometry() geom.Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	return geom.Rect{Size: m.rect.Size}
}

func (m *Member) SetGeometry(rect geom.Rect) {
	m.mu.Lock()
	m.rect = rect
	m.mu.Unlock()
}

func (m *Member) SendConfigure() {
	m.mu.Lock()
	rect := m.rect
	m.mu.Unlock()

	if err := ConfigureWindow(m.conn, m.wid, rect); err != nil {
		m.log.Error("Failed to configure window", "error", err)
	}
	m.apply()
}

func (m *Member) Title() string {
	return m.opts.Title
}

func (m *Member) AppID() string {
	return m.opts.AppID
}

func (m *Member) Activated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activated
}

func (m *Member) SetActivated(activated bool) {
	m.mu.Lock()
	changed := m.activated != activated
	m.activated = activated
	m.mu.Unlock()
	if changed {
		m.apply()
	}
}

func (m *Member) SetVisible(visible bool) {
	m.mu.Lock()
	changed := m.visible != visible
	m.visible = visible
	m.mu.Unlock()
	if !changed {
		return
	}

	if err := ShowWindow(m.conn, m.wid, visible); err != nil {
		m.log.Error("Failed to show window", "visible", visible, "error", err)
	}
	m.apply()
}

func (m *Member) ForceUndecorated(force bool) {
	m.mu.Lock()
	m.undecorated = force
	m.mu.Unlock()
}

func (m *Member) SetTiled(tiled bool) {
	m.mu.Lock()
	m.tiled = tiled
	m.mu.Unlock()
}

func (m *Member) Alive() bool {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return false
	}

	select {
	case <-m.player.Done():
		return false
	default:
		return true
	}
}

// Close stops the player. The member is dropped on the next refresh.
func (m *Member) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	go func() {
		if err := m.player.Close(context.Background()); err != nil {
			m.log.Error("Failed to close player", "error", err)
		}
	}()
}

func (m *Member) Refresh() {}

func (m *Member) OutputEnter(output stack.Output, overlap geom.Rect) {
	m.mu.Lock()
	m.output = output.Name
	m.mu.Unlock()
}

func (m *Member) OutputLeave(output stack.Output) {
	m.mu.Lock()
	if m.output == output.Name {
		m.output = ""
	}
	m.mu.Unlock()
}

func (m *Member) IsInInputRegion(p geom.PointF) bool {
	return m.Geometry().Contains(p)
}

// RenderElements fills the member area; the video itself is drawn by mpv into
// the subwindow above it.
func (m *Member) RenderElements(loc geom.Point, scale geom.Scale, alpha float32) []render.Element {
	size := m.Geometry().Size
	return []render.Element{render.Solid{
		Rect:  geom.Rect{Loc: loc, Size: geom.Size{W: scale.Px(size.W), H: scale.Px(size.H)}},
		Color: render.Color{A: 0xff}.WithAlpha(alpha),
	}}
}

func (m *Member) UserData() *stack.SideData {
	return m.data
}
