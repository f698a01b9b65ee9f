package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testEvent struct {
	N int
}

func TestHubKeepsNewest(t *testing.T) {
	ctx := context.Background()
	hub := NewHub[int]()
	c, unsubscribe := hub.Subscribe()

	require.NoError(t, hub.Broadcast(ctx, 1))
	require.NoError(t, hub.Broadcast(ctx, 2))
	require.Equal(t, 2, <-c)

	unsubscribe()
	require.Zero(t, hub.Len())
	require.NoError(t, hub.Broadcast(ctx, 3))
}

func TestHubNext(t *testing.T) {
	hub := NewHub[int]()

	done := make(chan int)
	go func() {
		v, err := hub.Next(context.Background())
		if err != nil {
			v = -1
		}
		done <- v
	}()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, hub.Broadcast(context.Background(), 7))
	require.Equal(t, 7, <-done)
	require.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, time.Millisecond)
}

func TestHubNextCanceled(t *testing.T) {
	hub := NewHub[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hub.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, hub.Len())
}

func TestPublish(t *testing.T) {
	hub := NewHub[testEvent]().Register()
	c, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	var got []int
	Subscribe("test", func(ctx context.Context, event testEvent) error {
		got = append(got, event.N)
		return errors.New("logged")
	})

	Publish(testEvent{N: 4})

	require.Equal(t, testEvent{N: 4}, <-c)
	require.Equal(t, []int{4}, got)
}
