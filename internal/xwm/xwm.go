// Package xwm hosts window stacks on an X11 canvas.
package xwm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jezek/xgb"
)

var ErrQuit = errors.New("quit")

// ReceiveEvents forwards X events to eventC until the connection closes.
func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- xgb.Event) {
	defer close(eventC)
	slog := slog.With("func", "xwm.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error")
			return
		}

		if err != nil {
			// Errors here answer unchecked requests and do not end the stream.
			slog.Error("Failed request", "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}
