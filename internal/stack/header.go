package stack

import (
	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/google/uuid"
)

// Header draws the tab strip. It never holds a reference to the stack; it
// receives a Description and reports interaction as Messages.
type Header interface {
	input.PointerTarget

	Update(desc Description)
	ScrollTo(index int)
	ScrollBy(tabs int)
	SetSize(size geom.Size)
	RenderElements(loc geom.Point, scale geom.Scale, alpha float32) []render.Element
}

type Tab struct {
	Title string
	AppID string
	ID    uuid.UUID
}

// Description is the declarative state the header renders from.
type Description struct {
	ScrollID        uuid.UUID
	Tabs            []Tab
	Active          int
	ActiveActivated bool
	GroupFocused    bool
}

type Message interface {
	message()
}

type (
	MsgDragStart     struct{}
	MsgActivate      struct{ Index int }
	MsgClose         struct{ Index int }
	MsgScrollForward struct{}
	MsgScrollBack    struct{}
	MsgScrolled      struct{}
)

func (MsgDragStart) message()     {}
func (MsgActivate) message()      {}
func (MsgClose) message()         {}
func (MsgScrollForward) message() {}
func (MsgScrollBack) message()    {}
func (MsgScrolled) message()      {}

// Description snapshots the state the header needs.
func (s *Stack) Description() Description {
	s.mu.Lock()
	windows := append([]Window(nil), s.windows...)
	active := s.activeIndexLocked()
	s.mu.Unlock()

	tabs := make([]Tab, len(windows))
	for i, w := range windows {
		tabs[i] = Tab{
			Title: w.Title(),
			AppID: w.AppID(),
			ID:    w.UserData().ID,
		}
	}

	return Description{
		ScrollID:        s.id,
		Tabs:            tabs,
		Active:          active,
		ActiveActivated: windows[active].Activated(),
		GroupFocused:    s.groupFocused.Load(),
	}
}

// UpdateHeader is the header's update pass. It may run independently of the
// input pass.
func (s *Stack) UpdateHeader() {
	s.header.Update(s.Description())
	if s.scrollToFocus.Swap(false) {
		s.header.ScrollTo(s.ActiveIndex())
	}
}

func (s *Stack) HandleMessage(msg Message) {
	switch msg := msg.(type) {
	case MsgDragStart:
		s.mu.Lock()
		sc := s.lastSeat
		s.mu.Unlock()
		if sc == nil || s.onMoveRequest == nil {
			return
		}

		s.log.Debug("Drag started from header", "seat", sc.seat, "serial", sc.serial)
		s.loop.Post(func() { s.onMoveRequest(sc.seat, sc.serial, s) })
	case MsgActivate:
		s.setActiveIndex(msg.Index)
	case MsgClose:
		if w := s.windowAt(msg.Index); w != nil {
			w.Close()
		}
	case MsgScrollForward:
		s.header.ScrollBy(1)
	case MsgScrollBack:
		s.header.ScrollBy(-1)
	case MsgScrolled:
		s.log.Debug("Header scrolled")
	}
}

type nopHeader struct{}

func (nopHeader) PointerEnter(*input.Seat, input.PointerEvent)          {}
func (nopHeader) PointerMotion(*input.Seat, input.PointerEvent)         {}
func (nopHeader) RelativeMotion(*input.Seat, input.RelativeMotionEvent) {}
func (nopHeader) PointerButton(*input.Seat, input.ButtonEvent)          {}
func (nopHeader) PointerAxis(*input.Seat, input.AxisEvent)              {}
func (nopHeader) PointerLeave(*input.Seat, input.Serial, uint32)        {}
func (nopHeader) Update(Description)                                    {}
func (nopHeader) ScrollTo(int)                                          {}
func (nopHeader) ScrollBy(int)                                          {}
func (nopHeader) SetSize(geom.Size)                                     {}
func (nopHeader) RenderElements(geom.Point, geom.Scale, float32) []render.Element {
	return nil
}
