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

// Package fiber emulates the stackful coroutine described in spec.md
// §4.6. Go has no user-scheduled stack-switching primitive, and
// spec.md §9's design notes accept "a green-thread crate" as a
// faithful substitute; here that substitute is a goroutine parked on
// an unbuffered channel handoff, which gives the same
// init/resume/suspend handshake and the same single-thread-at-a-time
// guarantee without unsafe stack manipulation.
//
// A Fiber's "stack" is simply the Go runtime's goroutine stack, which
// already grows and shrinks on demand — there is no fixed-size
// allocation to configure. StackSize is kept as a field purely so
// callers that set it (mirroring the wire-level per-fiber stack-size
// knob in §4.6/§6.1) have somewhere to put the value; it is otherwise
// unused.
package fiber

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
)

// DefaultStackSize documents §4.6's "default 1 MiB (debug) / 1 MiB
// (release)" budget, carried only for API and serialization fidelity
// (§6.1 setWireStackSize) — Go goroutine stacks grow on demand and
// are never pre-sized to this value.
const DefaultStackSize = 1 << 20

// Fiber is a stackful-coroutine emulation: a goroutine that runs fn
// until fn calls Suspend (via the Yield callback handed to it) or
// returns.
type Fiber struct {
	StackSize int
	// Debug, when true, enforces the thread-affinity rule from §4.6:
	// a fiber must be resumed on the same OS thread that created it.
	// Goroutines aren't pinned to OS threads by default, so this only
	// catches the common case of Resume being called from a
	// goroutine other than the one that called Init — it panics
	// rather than silently tolerating the violation.
	Debug bool

	toFiber  chan struct{}
	toCaller chan struct{}
	done     bool
	started  bool
	ownerGID string

	mu sync.Mutex
}

// New builds a Fiber with the default stack-size annotation. Call
// Init to actually start it.
func New() *Fiber {
	return &Fiber{StackSize: DefaultStackSize}
}

// goroutineID extracts the calling goroutine's runtime id by
// scraping its stack trace header ("goroutine 123 [running]:"). It is
// informational only, used solely for the Debug affinity check.
func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return ""
	}
	return string(fields[1])
}

// Init captures fn and starts the underlying goroutine, which
// suspends immediately after setup — before running any of fn — so
// the caller can schedule the fiber before it does any user work
// (§4.6: "suspends immediately after setup").
//
// fn receives a yield function: calling it suspends the fiber and
// returns control to whichever goroutine last called Resume. The
// fiber resumes exactly where yield was called the next time Resume
// is invoked.
func (f *Fiber) Init(fn func(yield func())) {
	f.toFiber = make(chan struct{})
	f.toCaller = make(chan struct{})
	f.started = true
	if f.Debug {
		f.ownerGID = goroutineID()
	}

	go func() {
		<-f.toFiber // wait for permission to begin setup
		// Suspend immediately after setup, before running any of fn,
		// so the caller of Init observes a fiber parked and ready
		// (§4.6).
		f.toCaller <- struct{}{}
		<-f.toFiber // wait for the first real Resume

		fn(f.yieldFromFiber)

		f.mu.Lock()
		f.done = true
		f.mu.Unlock()
		f.toCaller <- struct{}{}
	}()

	f.toFiber <- struct{}{}
	<-f.toCaller
}

// yieldFromFiber is the function passed to fn as `yield`; it is what
// Suspend() calls from inside the running fiber.
func (f *Fiber) yieldFromFiber() {
	f.toCaller <- struct{}{}
	<-f.toFiber
}

// Resume transfers control to the fiber and blocks until it suspends
// or completes (§4.6 resume()).
func (f *Fiber) Resume() {
	if f.done || !f.started {
		return
	}
	if f.Debug {
		gid := goroutineID()
		if f.ownerGID == "" {
			f.ownerGID = gid
		} else if f.ownerGID != gid {
			panic(fmt.Sprintf("fiber: resumed on goroutine %s, created/first-resumed on %s", gid, f.ownerGID))
		}
	}
	f.toFiber <- struct{}{}
	<-f.toCaller
}

// Resumable reports whether the fiber can still be resumed (§4.6:
// "Conversion to bool reports whether the fiber is still
// resumable").
func (f *Fiber) Resumable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started && !f.done
}
