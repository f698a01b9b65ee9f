package xwm

import (
	"errors"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const fontName = "fixed"

var _ render.Frame = (*Frame)(nil)

// Frame draws render elements onto an X drawable with a single GC.
type Frame struct {
	conn     *xgb.Conn
	drawable xproto.Drawable
	gc       xproto.Gcontext
	font     xproto.Font
	fg       *uint32
}

func NewFrame(conn *xgb.Conn, wid xproto.Window) (*Frame, error) {
	font, err := xproto.NewFontId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check(); err != nil {
		return nil, err
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return nil, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcFont,
		[]uint32{0, uint32(font)}).Check(); err != nil {
		xproto.CloseFont(conn, font)
		return nil, err
	}

	return &Frame{
		conn:     conn,
		drawable: xproto.Drawable(wid),
		gc:       gc,
		font:     font,
	}, nil
}

func (f *Frame) foreground(color render.Color) error {
	pixel := color.Pixel()
	if f.fg != nil && *f.fg == pixel {
		return nil
	}
	if err := xproto.ChangeGCChecked(f.conn, f.gc, xproto.GcForeground, []uint32{pixel}).Check(); err != nil {
		return err
	}
	f.fg = &pixel
	return nil
}

// FillRect fills rect. Fully transparent colors draw nothing since core X
// has no blending.
func (f *Frame) FillRect(rect geom.Rect, color render.Color) error {
	if color.A == 0 || rect.IsEmpty() {
		return nil
	}
	if err := f.foreground(color); err != nil {
		return err
	}

	return xproto.PolyFillRectangleChecked(f.conn, f.drawable, f.gc, []xproto.Rectangle{{
		X:      int16(rect.Loc.X),
		Y:      int16(rect.Loc.Y),
		Width:  uint16(rect.Size.W),
		Height: uint16(rect.Size.H),
	}}).Check()
}

// DrawText draws text with its baseline at origin. Core fonts are 8-bit, so
// text longer than one text item is cut.
func (f *Frame) DrawText(origin geom.Point, text string, color render.Color) error {
	if color.A == 0 || text == "" {
		return nil
	}
	if err := f.foreground(color); err != nil {
		return err
	}

	if len(text) > 254 {
		text = text[:254]
	}
	items := append([]byte{byte(len(text)), 0}, text...)

	return xproto.PolyText8Checked(f.conn, f.drawable, f.gc, int16(origin.X), int16(origin.Y), items).Check()
}

func (f *Frame) Close() error {
	return errors.Join(
		xproto.FreeGCChecked(f.conn, f.gc).Check(),
		xproto.CloseFontChecked(f.conn, f.font).Check(),
	)
}
