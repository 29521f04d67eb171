package chat

import "sync"

// subscriberBuffer is the per-subscriber event buffer capacity. When a slow
// consumer falls this far behind, the oldest buffered event is dropped.
const subscriberBuffer = 100

// broadcaster fans events out to every current subscriber. Delivery is
// best-effort: Publish never blocks, and overflow drops the oldest event in
// that subscriber's buffer. A Subscription only observes events published
// after Subscribe returned.
type broadcaster struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscription is one consumer's handle onto a room's broadcast channel.
type Subscription struct {
	b    *broadcaster
	ch   chan Event
	once sync.Once
}

// C returns the receive channel. It is closed when the subscription is
// closed.
func (s *Subscription) C() <-chan Event { return s.ch }

// Close detaches the subscription and closes its channel. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs, s)
		s.b.mu.Unlock()
		close(s.ch)
	})
}

func (b *broadcaster) Subscribe() *Subscription {
	sub := &Subscription{b: b, ch: make(chan Event, subscriberBuffer)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers ev to every current subscriber without blocking. All
// sends happen under the broadcaster lock, so draining the oldest event on
// overflow cannot race another publisher.
func (b *broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- ev:
			continue
		default:
		}
		// Buffer full: drop the oldest event and retry once. The consumer
		// may have drained concurrently, in which case the retry succeeds
		// without a drop.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func (b *broadcaster) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
