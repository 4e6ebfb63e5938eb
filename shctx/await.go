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

package shctx

import (
	"errors"

	"github.com/shards-run/shards/tidepool"
	"github.com/shards-run/shards/variant"
)

// ErrReentrantAwait is raised when Await is called recursively from a
// worker thread (§4.8, §8.3: "Calling await recursively from a worker
// thread asserts (debug) or raises ActivationError (release)").
var ErrReentrantAwait = errors.New("shctx: await called recursively from a worker thread")

// Pool is the subset of *tidepool.Pool that Await needs, so callers
// can substitute a fake in tests.
type Pool interface {
	Submit(tidepool.Work)
}

// Await implements await(context, fn, cancel_fn) from §4.8: it
// offloads fn onto pool, yielding the owning fiber between resumes
// until fn completes, and invokes cancel if the wire is stopped while
// fn is still outstanding.
func Await(c *Context, pool Pool, fn func() (variant.Var, error), cancel func()) (variant.Var, error) {
	if c.OnWorkerThread {
		return variant.Var{}, ErrReentrantAwait
	}

	type result struct {
		v   variant.Var
		err error
	}
	done := make(chan result, 1)

	pool.Submit(tidepool.WorkFunc(func() {
		v, err := fn()
		done <- result{v, err}
	}))

	for {
		select {
		case r := <-done:
			return r.v, r.err
		default:
		}

		if !c.IsRunning() {
			if cancel != nil {
				cancel()
			}
			// Block until the offloaded call actually finishes rather
			// than abandoning it mid-flight (§4.8: "block-wait for
			// completion" after invoking cancel_fn).
			r := <-done
			return r.v, r.err
		}

		c.Yield()
	}
}

// CallOnMeshThread implements callOnMeshThread(context, action) from
// §4.8: hops execution onto the mesh's own thread, blocking the
// calling fiber until action returns.
func CallOnMeshThread(c *Context, action func()) {
	root := c.Root()
	if root.hopToMesh == nil {
		action()
		return
	}
	root.hopToMesh(action)
}
