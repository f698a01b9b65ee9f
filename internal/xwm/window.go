package xwm

import (
	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const canvasEventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskFocusChange

type Window struct {
	WID    xproto.Window
	Width  uint16
	Height uint16
}

func (w Window) Rect() geom.Rect {
	return geom.NewRect(0, 0, int32(w.Width), int32(w.Height))
}

// CreateWindow creates the fullscreen canvas every stack is drawn on.
func CreateWindow(conn *xgb.Conn, cursors xcursor.Set) (Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return Window{}, err
	}

	if err := xproto.CreateWindowChecked(conn, screen.RootDepth,
		wid, screen.Root,
		0, 0, screen.WidthInPixels, screen.HeightInPixels, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask|xproto.CwCursor, // 1, 2, 3
		[]uint32{
			screen.BlackPixel,       // 1
			canvasEventMask,         // 2
			uint32(cursors.Default), // 3
		}).Check(); err != nil {
		return Window{}, err
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		return Window{}, err
	}

	return Window{
		WID:    wid,
		Width:  screen.WidthInPixels,
		Height: screen.HeightInPixels,
	}, nil
}

// CreateSubWindow creates an unmapped member window inside root. Pointer and
// key events are not selected so they propagate to the canvas.
func CreateSubWindow(conn *xgb.Conn, root xproto.Window, rect geom.Rect) (Window, error) {
	// Generate X window id
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return Window{}, err
	}

	w, h := uint16(max(rect.Size.W, 1)), uint16(max(rect.Size.H, 1))

	// Create X window in root
	if err := xproto.CreateWindowChecked(conn, xproto.WindowClassCopyFromParent,
		wid, root,
		int16(rect.Loc.X), int16(rect.Loc.Y), w, h, 0,
		xproto.WindowClassInputOutput, xproto.WindowClassCopyFromParent,
		xproto.CwBackPixel, []uint32{0}).Check(); err != nil {
		return Window{}, err
	}

	return Window{
		WID:    wid,
		Width:  w,
		Height: h,
	}, nil
}

func DestroyWindow(conn *xgb.Conn, wid xproto.Window) error {
	return xproto.DestroyWindowChecked(conn, wid).Check()
}

// ConfigureWindow moves and resizes wid. Empty sizes are raised to one
// pixel since X rejects zero.
func ConfigureWindow(conn *xgb.Conn, wid xproto.Window, rect geom.Rect) error {
	return xproto.ConfigureWindowChecked(conn, wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{
			uint32(int16(rect.Loc.X)),
			uint32(int16(rect.Loc.Y)),
			uint32(max(rect.Size.W, 1)),
			uint32(max(rect.Size.H, 1)),
		}).Check()
}

// ShowWindow maps and raises wid, or unmaps it.
func ShowWindow(conn *xgb.Conn, wid xproto.Window, show bool) error {
	if !show {
		return xproto.UnmapWindowChecked(conn, wid).Check()
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		return err
	}
	return xproto.ConfigureWindowChecked(conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
}
