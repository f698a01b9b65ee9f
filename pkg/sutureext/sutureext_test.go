package sutureext

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, SanitizeError(ctx, nil))

	err := errors.New("boom")
	require.Same(t, err, SanitizeError(ctx, err))

	got := SanitizeError(ctx, context.Canceled)
	require.Error(t, got)
	require.NotErrorIs(t, got, context.Canceled)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, SanitizeError(canceled, err), context.Canceled)
}

type quitService struct{}

func (quitService) String() string { return "quit" }

func (quitService) Serve(ctx context.Context) error {
	return suture.ErrTerminateSupervisorTree
}

func TestAddTerminates(t *testing.T) {
	super := New("test", Options{})
	Add(super, quitService{})

	require.ErrorIs(t, super.Serve(context.Background()), suture.ErrTerminateSupervisorTree)
}

func TestSanitizeErrorKeepsTermination(t *testing.T) {
	err := SanitizeError(context.Background(), errors.Join(context.DeadlineExceeded, suture.ErrTerminateSupervisorTree))
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, suture.ErrTerminateSupervisorTree)
}

func TestEventHook(t *testing.T) {
	var buf bytes.Buffer
	hook := EventHook(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	hook(suture.EventServiceTerminate{ServiceName: "xwm.Manager", Err: suture.ErrTerminateSupervisorTree})
	require.Contains(t, buf.String(), "level=INFO")
	require.Contains(t, buf.String(), "service=xwm.Manager")
	buf.Reset()

	hook(suture.EventServiceTerminate{ServiceName: "api.Server", Err: errors.New("listen failed"), Restarting: true})
	require.Contains(t, buf.String(), "level=ERROR")
	require.Contains(t, buf.String(), "restarting=true")
}
