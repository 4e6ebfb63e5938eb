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

// Package shctx implements Context, the per-activation flow-control
// handle carried through a wire's fiber stack (spec.md §3.5, §4.8).
//
// Context deliberately knows nothing about package wire's concrete
// Wire type — wireStack entries are stored as `any` and type-asserted
// back by package wire, the same way context.Context values are
// untyped. That keeps the dependency direction wire -> shctx and
// shard -> shctx, with nothing pointing back, since wire itself needs
// to depend on shctx (to drive Context through a wire's lifecycle)
// and a shctx -> wire edge would cycle back through shard -> shctx.
package shctx

import (
	"time"

	"github.com/shards-run/shards/variant"
)

// FlowState is the control-flow signal a shard's activation can set
// on its Context (§3.5).
type FlowState int

const (
	Continue FlowState = iota
	Return
	Restart
	Stop
	Error
	Rebase
)

func (f FlowState) String() string {
	switch f {
	case Continue:
		return "Continue"
	case Return:
		return "Return"
	case Restart:
		return "Restart"
	case Stop:
		return "Stop"
	case Error:
		return "Error"
	case Rebase:
		return "Rebase"
	default:
		return "FlowState(invalid)"
	}
}

// Context is the per-activation flow-control handle (§3.5).
type Context struct {
	Parent *Context

	wireStack []any // top = current wire; type-asserted by package wire

	state        FlowState
	flowStorage  variant.Var
	errorMessage string

	// Next is the wall-clock deadline before which the owning fiber
	// must not be resumed (§4.8 suspend).
	Next time.Time

	// OnLastResume tells the scheduler this resume is the final
	// cleanup pass (§3.5, §4.6 cancellation).
	OnLastResume bool
	// OnWorkerThread asserts the await-recursion guard (§4.8, §8.3).
	OnWorkerThread bool

	anyStorage map[string]any

	yield   func()      // suspend the owning fiber; set by package wire
	hopToMesh func(func()) // implements callOnMeshThread; set by the root context's owner
}

// New constructs a root Context. yield suspends the fiber hosting
// this context; it may be nil for contexts that never suspend (e.g.
// a synchronous test harness).
func New(yield func()) *Context {
	return &Context{yield: yield}
}

// Child constructs a Context whose anonymous-object storage resolves
// upward through parent, per §3.5.
func Child(parent *Context, yield func()) *Context {
	c := New(yield)
	c.Parent = parent
	return c
}

// SetHop installs the callOnMeshThread implementation; only the root
// context of a mesh's wire needs one (§4.8).
func (c *Context) SetHop(fn func(func())) { c.hopToMesh = fn }

// SetYield installs the fiber-suspend callback. Package wire calls
// this once its fiber exists, since the fiber and the Context it
// drives are constructed in sequence, each needing a handle to the
// other.
func (c *Context) SetYield(fn func()) { c.yield = fn }

// Root walks the Parent chain to the outermost Context.
func (c *Context) Root() *Context {
	r := c
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// PushWire pushes w (a *wire.Wire, stored opaquely) onto the
// activation's wire stack, for sub-wire invocation (§4.7 "Sub-wire
// invocation").
func (c *Context) PushWire(w any) { c.wireStack = append(c.wireStack, w) }

// PopWire pops the most recently pushed wire.
func (c *Context) PopWire() {
	if n := len(c.wireStack); n > 0 {
		c.wireStack = c.wireStack[:n-1]
	}
}

// WireStack returns the stack of wires, top (current) first.
func (c *Context) WireStack() []any {
	out := make([]any, len(c.wireStack))
	for i, w := range c.wireStack {
		out[len(c.wireStack)-1-i] = w
	}
	return out
}

// CurrentWire returns the top of the wire stack, or nil.
func (c *Context) CurrentWire() any {
	if n := len(c.wireStack); n > 0 {
		return c.wireStack[n-1]
	}
	return nil
}

// State returns the current flow-control state.
func (c *Context) State() FlowState { return c.state }

// FlowStorage returns the value carried by a Return/Restart/Stop
// transition; RebaseFlow carries no value.
func (c *Context) FlowStorage() variant.Var { return c.flowStorage }

// ErrorMessage returns the diagnostic set by ErrorFlow.
func (c *Context) ErrorMessage() string { return c.errorMessage }

// ContinueFlow resets the context to its default running state, done
// once per wire iteration (§4.7 step 3: "Reset flow state to
// Continue").
func (c *Context) ContinueFlow() {
	c.state = Continue
	variant.Destroy(&c.flowStorage)
	c.errorMessage = ""
}

// ReturnFlow signals the current iteration should exit, returning v.
func (c *Context) ReturnFlow(v variant.Var) { c.state = Return; c.flowStorage = v }

// RestartFlow signals the wire should loop again using v as the new
// input.
func (c *Context) RestartFlow(v variant.Var) { c.state = Restart; c.flowStorage = v }

// StopFlow signals the wire should exit entirely, returning v.
func (c *Context) StopFlow(v variant.Var) { c.state = Stop; c.flowStorage = v }

// RebaseFlow signals the local input should reset to the wire's
// original input before the next shard activates.
func (c *Context) RebaseFlow() { c.state = Rebase }

// ErrorFlow records an activation error and switches to the Error
// state (§7 ActivationError).
func (c *Context) ErrorFlow(msg string) {
	c.state = Error
	c.errorMessage = msg
}

// IsRunning reports whether the flow state permits the wire to keep
// activating shards this iteration.
func (c *Context) IsRunning() bool { return c.state == Continue }

// Yield suspends the owning fiber, returning control to its last
// resumer (§4.6 suspend()).
func (c *Context) Yield() {
	if c.yield != nil {
		c.yield()
	}
}

// Any resolves a reentrant anonymous-object value by key, walking up
// through Parent contexts if not found locally (§3.5).
func (c *Context) Any(key string) (any, bool) {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.anyStorage != nil {
			if v, ok := cur.anyStorage[key]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// SetAny stores a reentrant anonymous-object value on this context
// (not its parents).
func (c *Context) SetAny(key string, v any) {
	if c.anyStorage == nil {
		c.anyStorage = map[string]any{}
	}
	c.anyStorage[key] = v
}
