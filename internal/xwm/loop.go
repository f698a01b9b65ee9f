package xwm

import (
	"sync"

	"github.com/ItsNotGoodName/x-tabstack/internal/core"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
)

var _ stack.Loop = (*Loop)(nil)

// Loop queues work for the event loop goroutine. Post never blocks and is
// safe from any goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	notifyC chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		notifyC: make(chan struct{}, 1),
	}
}

func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	core.FlagChannel(l.notifyC)
}

// Ready is signalled when tasks are queued.
func (l *Loop) Ready() <-chan struct{} {
	return l.notifyC
}

// Drain runs the tasks queued so far. Tasks they post run on the next Drain.
func (l *Loop) Drain() int {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}
