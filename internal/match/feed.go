package match

import (
	"context"
	"sync"

	"planetwars-server/internal/game"

	"github.com/google/uuid"
)

// Feed fans standings out to in-process subscribers such as websocket
// clients. A subscriber that falls behind only ever misses older turns.
type Feed struct {
	matchID uuid.UUID

	mu     sync.Mutex
	subs   map[chan Standing]struct{}
	latest *Standing
}

func NewFeed(matchID uuid.UUID) *Feed {
	return &Feed{
		matchID: matchID,
		subs:    make(map[chan Standing]struct{}),
	}
}

func (f *Feed) PublishTurn(_ context.Context, snapshot game.Snapshot) error {
	standing := NewStanding(f.matchID, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = &standing
	for ch := range f.subs {
		select {
		case ch <- standing:
		default:
			// drop the stale standing so the newest one fits
			select {
			case <-ch:
			default:
			}
			ch <- standing
		}
	}
	return nil
}

// Subscribe returns a channel that first receives the latest standing, if
// any, and the cancel func that detaches it.
func (f *Feed) Subscribe() (<-chan Standing, func()) {
	ch := make(chan Standing, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	if f.latest != nil {
		ch <- *f.latest
	}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
		})
	}
}

func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
