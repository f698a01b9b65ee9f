// Package tabbar draws a stack's tab strip and turns pointer input on it into
// stack messages.
package tabbar

import (
	"log/slog"
	"math"
	"sync"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/input"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
	"github.com/google/uuid"
)

const (
	MinTabWidth int32 = 80
	MaxTabWidth int32 = 240
	CloseSize   int32 = 12
	// Padding around the title and the close button.
	Padding int32 = 6
	// CharWidth approximates one glyph of the strip font.
	CharWidth int32 = 6
	// DragThreshold is how far a press must travel before it becomes a drag.
	DragThreshold float64 = 8
)

type Style struct {
	Background render.Color
	Tab        render.Color
	ActiveTab  render.Color
	Text       render.Color
	Close      render.Color
}

var DefaultStyle = Style{
	Background: render.Color{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
	Tab:        render.Color{R: 0x31, G: 0x32, B: 0x44, A: 0xff},
	ActiveTab:  render.Color{R: 0x58, G: 0x5b, B: 0x70, A: 0xff},
	Text:       render.Color{R: 0xcd, G: 0xd6, B: 0xf4, A: 0xff},
	Close:      render.Color{R: 0xf3, G: 0x8b, B: 0xa8, A: 0xff},
}

var _ stack.Header = (*Bar)(nil)

// Bar is a stack.Header. Interaction is reported on Messages, which the owner
// drains on its loop and hands to stack.HandleMessage.
type Bar struct {
	log      *slog.Logger
	style    Style
	messages chan stack.Message

	mu       sync.Mutex
	desc     stack.Description
	size     geom.Size
	offset   int
	hover    *geom.PointF
	press    *geom.PointF
	dragging bool
}

func New(style Style, logger *slog.Logger) *Bar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bar{
		log:      logger,
		style:    style,
		messages: make(chan stack.Message, 32),
		size:     geom.Size{H: stack.HeaderHeight},
	}
}

func (b *Bar) Messages() <-chan stack.Message {
	return b.messages
}

func (b *Bar) send(msg stack.Message) {
	select {
	case b.messages <- msg:
	default:
		b.log.Warn("Dropped header message", "message", msg)
	}
}

func (b *Bar) Update(desc stack.Description) {
	b.mu.Lock()
	if desc.ScrollID != b.desc.ScrollID {
		b.offset = 0
	}
	b.desc = desc
	b.offset = b.clampOffsetLocked(b.offset)
	b.mu.Unlock()
}

func (b *Bar) SetSize(size geom.Size) {
	b.mu.Lock()
	b.size = size
	b.offset = b.clampOffsetLocked(b.offset)
	b.mu.Unlock()
}

// ScrollTo brings the tab at index into view.
func (b *Bar) ScrollTo(index int) {
	b.mu.Lock()
	_, visible := b.layoutLocked()
	offset := b.offset
	if index < offset {
		offset = index
	} else if index >= offset+visible {
		offset = index - visible + 1
	}
	b.offset = b.clampOffsetLocked(offset)
	b.mu.Unlock()

	b.send(stack.MsgScrolled{})
}

func (b *Bar) ScrollBy(tabs int) {
	b.mu.Lock()
	b.offset = b.clampOffsetLocked(b.offset + tabs)
	b.mu.Unlock()

	b.send(stack.MsgScrolled{})
}

// Offset is the index of the first visible tab.
func (b *Bar) Offset() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offset
}

func (b *Bar) ScrollID() uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.desc.ScrollID
}

// layoutLocked returns the tab width and how many tabs fit.
func (b *Bar) layoutLocked() (int32, int) {
	n := len(b.desc.Tabs)
	if n == 0 || b.size.W <= 0 {
		return MinTabWidth, 1
	}

	width := min(max(b.size.W/int32(n), MinTabWidth), MaxTabWidth)
	visible := min(max(int(b.size.W/width), 1), n)
	return width, visible
}

func (b *Bar) clampOffsetLocked(offset int) int {
	_, visible := b.layoutLocked()
	return min(max(offset, 0), max(len(b.desc.Tabs)-visible, 0))
}

func (b *Bar) tabRectLocked(index int, width int32) geom.Rect {
	return geom.NewRect(int32(index-b.offset)*width, 0, width, b.size.H)
}

func closeRect(tab geom.Rect) geom.Rect {
	return geom.NewRect(tab.Right()-Padding-CloseSize, tab.Loc.Y+(tab.Size.H-CloseSize)/2, CloseSize, CloseSize)
}

type hit struct {
	index int
	close bool
}

func (b *Bar) hitLocked(p geom.PointF) (hit, bool) {
	width, visible := b.layoutLocked()
	for i := b.offset; i < b.offset+visible && i < len(b.desc.Tabs); i++ {
		tab := b.tabRectLocked(i, width)
		if !tab.Contains(p) {
			continue
		}
		return hit{index: i, close: closeRect(tab).Contains(p)}, true
	}
	return hit{}, false
}

func (b *Bar) PointerEnter(seat *input.Seat, ev input.PointerEvent) {
	b.PointerMotion(seat, ev)
}

func (b *Bar) PointerMotion(seat *input.Seat, ev input.PointerEvent) {
	b.mu.Lock()
	loc := ev.Location
	b.hover = &loc
	start := b.press != nil && !b.dragging && distance(*b.press, loc) > DragThreshold
	if start {
		b.dragging = true
	}
	b.mu.Unlock()

	if start {
		b.send(stack.MsgDragStart{})
	}
}

func (b *Bar) RelativeMotion(seat *input.Seat, ev input.RelativeMotionEvent) {}

func (b *Bar) PointerButton(seat *input.Seat, ev input.ButtonEvent) {
	if ev.Button != input.ButtonLeft {
		return
	}

	b.mu.Lock()
	if ev.State == input.Released {
		b.press = nil
		b.dragging = false
		b.mu.Unlock()
		return
	}
	if b.hover == nil {
		b.mu.Unlock()
		return
	}
	loc := *b.hover
	h, ok := b.hitLocked(loc)
	if ok && !h.close {
		b.press = &loc
		b.dragging = false
	}
	b.mu.Unlock()

	switch {
	case !ok:
	case h.close:
		b.send(stack.MsgClose{Index: h.index})
	default:
		b.send(stack.MsgActivate{Index: h.index})
	}
}

func (b *Bar) PointerAxis(seat *input.Seat, ev input.AxisEvent) {
	delta := ev.Vertical
	if delta == 0 {
		delta = ev.Horizontal
	}

	switch {
	case delta > 0:
		b.send(stack.MsgScrollForward{})
	case delta < 0:
		b.send(stack.MsgScrollBack{})
	}
}

func (b *Bar) PointerLeave(seat *input.Seat, serial input.Serial, time uint32) {
	b.mu.Lock()
	b.hover = nil
	b.press = nil
	b.dragging = false
	b.mu.Unlock()
}

func (b *Bar) RenderElements(loc geom.Point, scale geom.Scale, alpha float32) []render.Element {
	b.mu.Lock()
	defer b.mu.Unlock()

	style := b.style
	elements := []render.Element{
		render.Solid{Rect: geom.Rect{Size: b.size}, Color: style.Background},
	}

	width, visible := b.layoutLocked()
	for i := b.offset; i < b.offset+visible && i < len(b.desc.Tabs); i++ {
		tab := b.tabRectLocked(i, width)
		color := style.Tab
		if i == b.desc.Active {
			color = style.ActiveTab
		}
		body := geom.NewRect(tab.Loc.X+1, tab.Loc.Y+2, tab.Size.W-2, tab.Size.H-2)
		elements = append(elements, render.Solid{Rect: body, Color: color})

		textWidth := tab.Size.W - 3*Padding - CloseSize
		if title := truncate(b.desc.Tabs[i].Title, textWidth/CharWidth); title != "" {
			elements = append(elements, render.Text{
				Rect:  geom.NewRect(tab.Loc.X+Padding, tab.Loc.Y+Padding, textWidth, tab.Size.H-2*Padding),
				Text:  title,
				Color: style.Text,
			})
		}

		elements = append(elements, render.Solid{Rect: closeRect(tab), Color: style.Close})
	}

	return scaleElements(elements, loc, scale, alpha)
}

// scaleElements converts strip-local logical elements to output pixels at
// loc.
func scaleElements(elements []render.Element, loc geom.Point, scale geom.Scale, alpha float32) []render.Element {
	out := make([]render.Element, 0, len(elements))
	for _, e := range elements {
		switch e := e.(type) {
		case render.Solid:
			e.Rect = e.Rect.ToPhysical(scale).Translate(loc)
			e.Color = e.Color.WithAlpha(alpha)
			out = append(out, e)
		case render.Text:
			e.Rect = e.Rect.ToPhysical(scale).Translate(loc)
			e.Color = e.Color.WithAlpha(alpha)
			out = append(out, e)
		}
	}
	return out
}

func truncate(title string, chars int32) string {
	r := []rune(title)
	switch {
	case chars <= 0:
		return ""
	case int32(len(r)) <= chars:
		return title
	case chars <= 2:
		return string(r[:chars])
	default:
		return string(r[:chars-2]) + ".."
	}
}

func distance(a, b geom.PointF) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
