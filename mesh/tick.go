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

package mesh

import (
	"time"

	"github.com/shards-run/shards/internal/globals"
	"github.com/shards-run/shards/wire"
)

// Tick implements §4.9 tick(): self-terminates after the global
// signal threshold, resumes each non-ended flow in insertion order,
// and retires any flow that ended this pass. It returns false if any
// wire failed this tick.
//
// Ticking is single-threaded: Tick must only ever be called from the
// mesh's own owning goroutine (§4.9 "The mesh never migrates fibers
// between threads").
func (m *Mesh) Tick() bool {
	if globals.ShouldTerminate() {
		m.Terminate()
		return false
	}

	m.mu.Lock()
	flows := make([]*flow, len(m.flows))
	copy(flows, m.flows)
	m.mu.Unlock()

	ok := true
	var ended []*wire.Wire
	now := time.Now()

	for _, f := range flows {
		w := f.w
		if !w.Running() {
			continue
		}
		if !w.Ready(now) {
			continue
		}
		w.Tick()
		if !w.Running() {
			if w.State() == wire.Failed {
				ok = false
			}
			ended = append(ended, w)
		}
	}

	// Erasure happens after the full pass so the iterator above never
	// observes a pool mutated mid-iteration (§4.9 tick step 3: "The
	// iterator must survive erasure of elements at or before the
	// cursor").
	for _, w := range ended {
		w.Stop()
		m.Unschedule(w)
	}

	return ok
}

// Run ticks the mesh in a loop until it has no scheduled wires left,
// or a tick reports failure. It is a convenience wrapper; callers
// needing custom pacing should call Tick directly (e.g. from within
// an external event loop).
func (m *Mesh) Run() bool {
	for !m.IsEmpty() {
		if !m.Tick() {
			return false
		}
	}
	return true
}
