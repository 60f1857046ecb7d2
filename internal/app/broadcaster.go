package app

import (
	"sync"

	"trivia-game-service/internal/game"
)

// Broadcaster fans game announcements out to every subscriber of a channel.
// It implements game.Notifier for the session that owns the channel.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan game.Announcement]struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan game.Announcement]struct{})}
}

// Subscribe registers a listener. The caller must invoke the returned cancel
// function to avoid leaks.
func (b *Broadcaster) Subscribe() (<-chan game.Announcement, func()) {
	ch := make(chan game.Announcement, 16)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Announce delivers to every subscriber, dropping the oldest pending message
// for a slow subscriber rather than blocking the game loop.
func (b *Broadcaster) Announce(a game.Announcement) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- a:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- a
		}
	}
	return nil
}

// Close drops and closes every remaining subscriber.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
