// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package eventbus provides a synchronous, in-process, name-keyed
// publish/subscribe mechanism (spec §4.2). Handlers run on the emitting
// caller's goroutine; a handler that needs to do long work is responsible
// for offloading it. Delivery is at-least-once per handler: a panic or
// error in one handler is logged and does not prevent delivery to the
// others. Within one event name, handlers fire in registration order;
// there is no ordering guarantee across distinct event names.
package eventbus

import (
	"sync"

	"github.com/AshBuk/sonicinput/internal/logger"
)

// Handler receives the payload of an emitted event. It returns an error to
// allow the bus to log it without changing control flow.
type Handler func(payload interface{}) error

type subscription struct {
	id int
	fn Handler
}

// Bus is a synchronous, name-keyed event dispatcher. Zero value is not
// usable; construct with New.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID int
	logger logger.Logger
}

// New creates an event bus. log may be nil, in which case handler errors
// are silently swallowed (still not propagated to the caller).
func New(log logger.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: log,
	}
}

// On registers fn to run whenever name is emitted. It returns a token that
// Off can use to unregister this exact registration (handlers cannot be
// compared for equality in Go, so a token stands in for "off(name, fn)").
func (b *Bus) On(name string, fn Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})
	return id
}

// Off unregisters the subscription previously returned by On.
func (b *Bus) Off(name string, token int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[name]
	for i, s := range list {
		if s.id == token {
			b.subs[name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit delivers payload to every handler registered for name, in
// registration order, on the caller's goroutine. Panics and errors from
// individual handlers are caught and logged; they never stop delivery to
// the remaining handlers and never propagate to Emit's caller.
func (b *Bus) Emit(name string, payload interface{}) {
	b.mu.RLock()
	// Copy the slice header under the lock, then run handlers outside it so
	// a handler that calls On/Off for the same name doesn't deadlock.
	list := make([]subscription, len(b.subs[name]))
	copy(list, b.subs[name])
	b.mu.RUnlock()

	for _, s := range list {
		b.runOne(name, s.fn, payload)
	}
}

func (b *Bus) runOne(name string, fn Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			if b.logger != nil {
				b.logger.Error("eventbus: handler for %q panicked: %v", name, r)
			}
		}
	}()
	if err := fn(payload); err != nil {
		if b.logger != nil {
			b.logger.Error("eventbus: handler for %q returned error: %v", name, err)
		}
	}
}
