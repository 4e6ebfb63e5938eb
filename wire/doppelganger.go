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

package wire

import "sync"

// DoppelgangerPool serves private, composed copies of a single
// prototype wire to concurrent recursive activations (e.g. a shard
// that runs the same wire it belongs to as a sub-wire), grounded on
// original_source/shards/core/wire_doppelganger_pool.hpp: recomposing
// the prototype on every recursive call would be wasteful, so copies
// are pooled and reused once released.
type DoppelgangerPool struct {
	prototype *Wire
	clone     func(*Wire) *Wire

	mu   sync.Mutex
	idle []*Wire
}

// NewDoppelgangerPool builds a pool that serves clones of prototype,
// built by clone on first acquire and reused thereafter.
func NewDoppelgangerPool(prototype *Wire, clone func(*Wire) *Wire) *DoppelgangerPool {
	return &DoppelgangerPool{prototype: prototype, clone: clone}
}

// Acquire returns an idle clone if one is available, else builds a
// fresh one via the pool's clone function.
func (p *DoppelgangerPool) Acquire() *Wire {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		w := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return w
	}
	p.mu.Unlock()
	return p.clone(p.prototype)
}

// Release returns w to the idle pool once its recursive activation
// completes. w must be Stopped.
func (p *DoppelgangerPool) Release(w *Wire) {
	if w.state != Stopped {
		w.Stop()
	}
	p.mu.Lock()
	p.idle = append(p.idle, w)
	p.mu.Unlock()
}

// Len reports the number of idle clones currently pooled.
func (p *DoppelgangerPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
