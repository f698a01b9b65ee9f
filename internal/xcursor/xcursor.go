// Package xcursor creates glyph cursors from the X core cursor font.
// Forked from https://github.com/BurntSushi/xgbutil/blob/master/xcursor/xcursor.go
package xcursor

import (
	"errors"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Glyph indices in the core cursor font.
const (
	Hand2   = 60
	LeftPtr = 68
)

const fontName = "cursor"

// Set holds the cursors used by the canvas.
type Set struct {
	// Default is shown over member windows.
	Default xproto.Cursor
	// Header is shown over tab strips.
	Header xproto.Cursor
}

// Load creates every cursor in Set from one font handle.
func Load(conn *xgb.Conn) (Set, error) {
	fontID, err := xproto.NewFontId(conn)
	if err != nil {
		return Set{}, err
	}

	if err := xproto.OpenFontChecked(conn, fontID, uint16(len(fontName)), fontName).Check(); err != nil {
		return Set{}, err
	}

	var set Set
	var errs []error
	for _, c := range []struct {
		dst   *xproto.Cursor
		glyph uint16
	}{
		{&set.Default, LeftPtr},
		{&set.Header, Hand2},
	} {
		cursor, err := create(conn, fontID, c.glyph)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*c.dst = cursor
	}

	errs = append(errs, xproto.CloseFontChecked(conn, fontID).Check())
	if err := errors.Join(errs...); err != nil {
		return Set{}, err
	}

	return set, nil
}

// CreateCursor creates a single white-on-black glyph cursor.
func CreateCursor(conn *xgb.Conn, glyph uint16) (xproto.Cursor, error) {
	fontID, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.OpenFontChecked(conn, fontID, uint16(len(fontName)), fontName).Check(); err != nil {
		return 0, err
	}
	defer xproto.CloseFont(conn, fontID)

	return create(conn, fontID, glyph)
}

func create(conn *xgb.Conn, fontID xproto.Font, glyph uint16) (xproto.Cursor, error) {
	cursorID, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateGlyphCursorChecked(conn, cursorID, fontID, fontID,
		glyph, glyph+1,
		0xffff, 0xffff, 0xffff,
		0, 0, 0).Check()
	if err != nil {
		return 0, err
	}

	return cursorID, nil
}
