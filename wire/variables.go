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
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/variant"
)

// ReferenceVariable implements the lookup order of §4.7 "Variable
// scope": walking ctx's wire stack top (current wire, then any
// enclosing wires from a sub-wire invocation) down, checking each
// wire's own variables then its external variables (unless that wire
// is Pure, in which case the walk stops there); failing the whole
// stack, the hosting mesh's own variables, then the mesh's refs; and
// finally creation in the receiver's own scope. The returned Var
// aliases the map's backing storage directly, so a caller that
// mutates through it is observed by the next lookup of the same name;
// ReleaseVariable must still be called to balance the refcount.
func (w *Wire) ReferenceVariable(ctx *shctx.Context, name string) *variant.Var {
	for _, entry := range ctx.WireStack() {
		cur, ok := entry.(*Wire)
		if !ok {
			continue
		}
		if v, ok := cur.vars[name]; ok {
			cur.varRefs[name]++
			return v
		}
		if v, ok := cur.external[name]; ok {
			return v // EXTERNAL: refcount bookkeeping skipped (§4.7)
		}
		if cur.Pure {
			break
		}
	}
	if w.mesh != nil {
		if v, ok := w.mesh.Variable(name); ok {
			return v
		}
		if v, ok := w.mesh.Ref(name); ok {
			return v
		}
	}
	return w.CreateVariable(name)
}

// CreateVariable creates name in the wire's own scope if absent and
// returns a refcounted handle to it. The returned pointer is the
// map's own storage, not a copy, so mutating through it is visible to
// every later lookup of the same name.
func (w *Wire) CreateVariable(name string) *variant.Var {
	v, ok := w.vars[name]
	if !ok {
		nv := variant.NewNone()
		v = &nv
		w.vars[name] = v
	}
	w.varRefs[name]++
	return v
}

// ReleaseVariable decrements name's refcount, destroying it at zero
// (§4.7: "releaseVariable decrements and destroyVars at zero").
// External variables are not tracked here and are a no-op.
func (w *Wire) ReleaseVariable(name string) {
	if _, ok := w.external[name]; ok {
		return
	}
	n, ok := w.varRefs[name]
	if !ok {
		return
	}
	n--
	if n <= 0 {
		if v, ok := w.vars[name]; ok {
			variant.Destroy(v)
		}
		delete(w.vars, name)
		delete(w.varRefs, name)
		return
	}
	w.varRefs[name] = n
}

// SetExternal registers v as an externally-owned (EXTERNAL-flagged)
// variable: the caller, not the wire, is responsible for its
// lifetime (§4.7, §5 "Shared resources").
func (w *Wire) SetExternal(name string, v *variant.Var) {
	if w.external == nil {
		w.external = map[string]*variant.Var{}
	}
	w.external[name] = v
}

// RunSubWire implements §4.7 "Sub-wire invocation": it pushes sub
// onto the calling context's wire stack, runs sub's shards inline on
// the caller's fiber (no separate scheduling), and pops on return.
// This differs from Mesh.Schedule, which runs a wire as an
// independently-ticked fiber.
func RunSubWire(ctx *shctx.Context, sub *Wire, input variant.Var) (variant.Var, error) {
	ctx.PushWire(sub)
	defer ctx.PopWire()

	current := input
	for _, s := range sub.shards {
		out, err := s.Activate(ctx, &current)
		if err != nil {
			return variant.Var{}, err
		}
		current = out
	}
	return current, nil
}
