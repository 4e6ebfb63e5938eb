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
	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// SubWire is a pipeline stage that invokes a fixed child wire inline,
// on the caller's own fiber, via RunSubWire (§4.7 "Sub-wire
// invocation"). Concurrent or recursive activations (the same SubWire
// instance reached again before a prior call returned, e.g. a looped
// wire invoking itself) are served private clones out of a
// DoppelgangerPool rather than racing over one shared set of shard
// instances.
//
// Unlike shards registered through the global Constructor registry,
// SubWire is built directly by NewSubWire, since a meaningful instance
// requires a specific prototype wire and clone strategy that a
// zero-argument Constructor cannot express.
type SubWire struct {
	pool *DoppelgangerPool
}

// NewSubWire builds a SubWire shard around prototype, cloned via clone
// whenever a concurrent activation needs its own private copy
// (wire_doppelganger_pool.hpp).
func NewSubWire(prototype *Wire, clone func(*Wire) *Wire) *SubWire {
	return &SubWire{pool: NewDoppelgangerPool(prototype, clone)}
}

func (*SubWire) Name() string { return "SubWire" }
func (s *SubWire) Hash() uint32 {
	v := variant.NewString("SubWire:" + s.pool.prototype.Name)
	h := variant.Hash(&v)
	return uint32(h[0])
}

func (*SubWire) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*SubWire) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*SubWire) Parameters() []shard.ParamInfo  { return nil }

func (*SubWire) GetParam(i int) (variant.Var, error) {
	return variant.Var{}, &shard.InvalidParameterIndexError{Shard: "SubWire", Index: i}
}

func (*SubWire) SetParam(i int, _ variant.Var) error {
	return &shard.InvalidParameterIndexError{Shard: "SubWire", Index: i}
}

// ExposedVariables/RequiredVariables forward the prototype's own
// declarations, frozen by its own Compose call, so the parent wire's
// composition pass sees through to what the child actually touches.
func (s *SubWire) ExposedVariables() []shard.VariableUse  { return s.pool.prototype.exposed }
func (s *SubWire) RequiredVariables() []shard.VariableUse { return s.pool.prototype.required }

// Compose specialises the declared Any->Any output to the prototype's
// own frozen output type, once the prototype has itself been composed.
func (s *SubWire) Compose(data shard.InstanceData) (*types.TypeInfo, error) {
	if t := s.pool.prototype.OutputType(); t != nil {
		return t, nil
	}
	return types.AnyType(), nil
}

// Activate acquires an idle clone of the prototype from the pool (a
// fresh clone when none is idle), runs it inline via RunSubWire, and
// returns the clone to the pool when the sub-wire's own shard pipeline
// returns or fails — releasing on error too, since a sub-wire that
// failed mid-pipeline is still Stopped and safe to reuse for the next
// activation.
func (s *SubWire) Activate(ctx *shctx.Context, input *variant.Var) (variant.Var, error) {
	child := s.pool.Acquire()
	out, err := RunSubWire(ctx, child, variant.CloneValue(*input))
	s.pool.Release(child)
	if err != nil {
		return variant.Var{}, err
	}
	return out, nil
}
