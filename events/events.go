// Copyright (C) 2024 The Shards Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package events implements the name-keyed global event dispatchers
// of spec.md §4.11, modeled after an entt::dispatcher-like sink/
// trigger registry: handlers for a given name are invoked
// synchronously, in subscription order, on the firing goroutine.
package events

import (
	"fmt"
	"sync"
)

// Handler receives a fired event's payload. The payload's concrete
// type is whatever the dispatcher's first subscriber agreed on; a
// type mismatch at Trigger time is a programmer error (mirrors the
// C++ original's single-payload-type-per-dispatcher contract, §4.11
// "Each dispatcher carries a type tag identifying the event payload
// type").
type Handler func(payload any)

// Dispatcher is one name-keyed event bus.
type Dispatcher struct {
	name string

	mu       sync.RWMutex
	handlers []Handler
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Dispatcher{}
)

// Get returns the process-wide dispatcher for name, creating it on
// first use (§4.11 "getEventDispatcher(name)").
func Get(name string) *Dispatcher {
	registryMu.Lock()
	defer registryMu.Unlock()
	d, ok := registry[name]
	if !ok {
		d = &Dispatcher{name: name}
		registry[name] = d
	}
	return d
}

// Subscribe registers h to receive every future Trigger on this
// dispatcher, returning an unsubscribe function. Registration is
// protected by a reader/writer lock (§4.11: "Thread-safe registration
// uses a reader/writer lock").
func (d *Dispatcher) Subscribe(h Handler) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
	idx := len(d.handlers) - 1
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if idx < len(d.handlers) {
			d.handlers[idx] = nil
		}
	}
}

// Trigger synchronously invokes every subscribed handler, in
// subscription order, passing payload (§4.11: "Synchronous trigger;
// handlers are invoked in subscription order"). Firing assumes no
// concurrent registration on the firing goroutine, per §4.11.
func (d *Dispatcher) Trigger(payload any) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		if h != nil {
			h(payload)
		}
	}
}

// Name returns the dispatcher's registry key.
func (d *Dispatcher) Name() string { return d.name }

func (d *Dispatcher) String() string {
	return fmt.Sprintf("events.Dispatcher(%q)", d.name)
}
