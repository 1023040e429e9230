package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 32

// MemoryBus is a process-local Bus. Slow subscribers lose events rather
// than block publishers.
type MemoryBus struct {
	mu   sync.RWMutex
	next int
	subs map[int]chan Event
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[int]chan Event{}}
}

func (b *MemoryBus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel
}
