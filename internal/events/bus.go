// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package events is a typed in-process publish/subscribe bus.
package events

import (
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Event is any value published on a bus.
type Event interface {
	EventType() string
}

type subscriber struct {
	id uint64
	fn func(Event)
}

type Bus struct {
	mu          *sync.Mutex
	nextID      uint64
	subscribers []subscriber
	logger      zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	b := new(Bus)
	b.mu = new(sync.Mutex)
	b.logger = logger
	return b
}

// Unsubscribe removes a subscriber. It is safe to call more than once.
type Unsubscribe func()

func (b *Bus) subscribe(sub func(Event)) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, subscriber{id, sub})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subscribers {
			if s.id == id {
				// Copy so a concurrent Publish keeps its snapshot intact
				subs := make([]subscriber, 0, len(b.subscribers)-1)
				subs = append(subs, b.subscribers[:i]...)
				b.subscribers = append(subs, b.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	subs := b.subscribers
	b.mu.Unlock()

	for _, sub := range subs {
		sub.fn(event)
	}
}

func SubscribeSync[T Event](b *Bus, sub func(T)) Unsubscribe {
	return b.subscribe(func(e Event) {
		et, ok := e.(T)
		if !ok {
			return
		}

		defer func() {
			err := recover()
			if err == nil {
				return
			}

			b.logger.Error().Interface("error", err).Str("stack", string(debug.Stack())).Msg("Subscriber panicked")
		}()

		sub(et)
	})
}

func SubscribeAsync[T Event](b *Bus, sub func(T)) Unsubscribe {
	return b.subscribe(func(e Event) {
		et, ok := e.(T)
		if !ok {
			return
		}

		go func() {
			defer func() {
				err := recover()
				if err == nil {
					return
				}

				b.logger.Error().Interface("error", err).Str("stack", string(debug.Stack())).Msg("Subscriber panicked")
			}()

			sub(et)
		}()
	})
}
