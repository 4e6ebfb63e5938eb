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

import (
	"fmt"
	"time"

	"github.com/shards-run/shards/fiber"
	"github.com/shards-run/shards/internal/shlog"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/variant"
)

// Prepare allocates the wire's fiber and a fresh Context, leaving the
// fiber parked before any shard code runs. Every shard's Warmup runs
// on the first Tick, after which the fiber suspends (§4.7
// prepare/"Execution inside the fiber" step 1-2).
func (w *Wire) Prepare() error {
	if w.state != Stopped {
		return fmt.Errorf("wire %q: Prepare requires state Stopped, got %s", w.Name, w.state)
	}

	w.finishedOutput = variant.Var{}
	w.finishedError = ""

	w.fiber = fiber.New()
	w.ctx = shctx.New(nil)
	w.ctx.PushWire(w)

	w.fiber.Init(func(yield func()) {
		w.ctx.SetYield(yield)
		w.runFiberBody()
	})

	w.state = Prepared
	return nil
}

// Start transitions a Prepared wire to Starting with the given input,
// ready for its first Tick (§4.7 start(input)).
func (w *Wire) Start(input variant.Var) error {
	if w.state != Prepared {
		return fmt.Errorf("wire %q: Start requires state Prepared, got %s", w.Name, w.state)
	}
	w.input = input
	w.state = Starting
	w.Listeners.fire(w.Listeners.OnStart, w)
	return nil
}

// Tick resumes the fiber once, running shards until the next
// suspension or completion (§4.7 tick).
func (w *Wire) Tick() {
	if w.state == Starting {
		w.state = Iterating
	}
	w.fiber.Resume()
	if !w.fiber.Resumable() && w.state != Ended && w.state != Failed {
		w.state = Ended
	}
}

// Ready reports whether this wire's suspend deadline has elapsed as
// of now, or whether it is flagged for a final resume regardless of
// deadline (§4.9 tick step 2: "resume a wire only if its
// context.next <= now or context.onLastResume"). A wire with no
// fiber yet (never Prepared) is always Ready.
func (w *Wire) Ready(now time.Time) bool {
	if w.ctx == nil {
		return true
	}
	return w.ctx.OnLastResume || !w.ctx.Next.After(now)
}

// Running reports whether the wire has more work to do this tick
// cycle.
func (w *Wire) Running() bool {
	return w.state != Ended && w.state != Failed && w.state != Stopped
}

// Stop requests cancellation: sets StopFlow on the context, marks the
// final resume, and ticks once more so the fiber runs its cleanup
// path (§4.7 stop, §5 "Cancellation").
func (w *Wire) Stop() {
	if w.ctx == nil || w.fiber == nil || !w.fiber.Resumable() {
		w.state = Stopped
		return
	}
	w.ctx.StopFlow(variant.Var{})
	w.ctx.OnLastResume = true
	w.fiber.Resume()
	w.state = Stopped
}

// runFiberBody implements §4.7's "Execution (inside the fiber)".
func (w *Wire) runFiberBody() {
	for i, s := range w.shards {
		if warmer, ok := s.(interface {
			Warmup(*shctx.Context) error
		}); ok {
			if err := warmer.Warmup(w.ctx); err != nil {
				w.state = Failed
				w.finishedError = fmt.Sprintf("shard %q (#%d) warmup: %v", s.Name(), i, err)
				w.cleanupShards()
				w.Listeners.fireErr(w.Listeners.OnError, w, err)
				return
			}
		}
	}

	w.ctx.Yield() // suspend to caller; stack pre-allocated (§4.7 step 2)

	for {
		// Checked before ContinueFlow resets the context, so a Stop
		// requested while suspended (§4.7 "stop") is honoured on the
		// very next resume instead of running one more full
		// iteration first (§5 "Cancellation").
		if w.ctx.OnLastResume {
			w.finalize(false)
			return
		}

		w.ctx.ContinueFlow()

		originalInput := w.input
		current := w.input
		failed := false

		for i, s := range w.shards {
			out, err := s.Activate(w.ctx, &current)
			if err != nil {
				w.ctx.ErrorFlow(err.Error())
			}

			switch w.ctx.State() {
			case shctx.Continue:
				current = out
			case shctx.Return:
				w.finishedOutput = w.ctx.FlowStorage()
				w.finalize(false)
				return
			case shctx.Restart:
				w.input = w.ctx.FlowStorage()
				goto nextIteration
			case shctx.Stop:
				w.finishedOutput = w.ctx.FlowStorage()
				w.finalize(false)
				return
			case shctx.Error:
				w.finishedError = fmt.Sprintf("shard %q (#%d): %s", s.Name(), i, w.ctx.ErrorMessage())
				failed = true
			case shctx.Rebase:
				current = originalInput
			}

			if failed {
				break
			}
		}

		if failed {
			w.finalize(true)
			return
		}

		w.output = current
		if !w.Looped {
			w.finishedOutput = current
			w.finalize(false)
			return
		}

		w.input = current

	nextIteration:
		if !w.Unsafe {
			w.ctx.Yield()
		}
		// Loop top re-checks OnLastResume before the next ContinueFlow.
	}
}

func (w *Wire) finalize(failed bool) {
	if failed {
		w.state = Failed
	} else {
		w.state = Ended
	}
	w.cleanupShards()
	w.Listeners.fire(w.Listeners.OnStop, w)
}

func (w *Wire) cleanupShards() {
	for i := len(w.shards) - 1; i >= 0; i-- {
		s := w.shards[i]
		if cleaner, ok := s.(interface{ Cleanup() error }); ok {
			if err := cleaner.Cleanup(); err != nil {
				shlog.L().Errorw("wire: shard cleanup failed", "wire", w.Name, "shard", s.Name(), "err", err)
			}
		}
	}
	w.Listeners.fire(w.Listeners.OnCleanup, w)
}
