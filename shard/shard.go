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

// Package shard defines the operator contract (spec.md §3.3, §4.4): a
// single pipeline stage exposing a small vtable of required methods
// plus a handful of optional lifecycle hooks. Go doesn't need an
// actual vtable — a core Shard interface plus optional single-method
// interfaces (Composer, Warmer, ...), checked with a type assertion at
// the call site, is the idiomatic substitute for the C++ virtual
// dispatch table described in §4.4.
package shard

import (
	"strconv"

	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// ExposureKind classifies how a shard's exposed variable interacts
// with the wire scope (§4.5 step 3: "Set/Ref/Update/Push... the
// combinations must not alias").
type ExposureKind uint8

const (
	Set ExposureKind = iota
	Ref
	Update
	Push
)

func (k ExposureKind) String() string {
	switch k {
	case Set:
		return "Set"
	case Ref:
		return "Ref"
	case Update:
		return "Update"
	case Push:
		return "Push"
	default:
		return "ExposureKind(invalid)"
	}
}

// VariableUse describes one exposed or required variable declared by
// a shard (§3.3 "Declared exposed and required variables").
type VariableUse struct {
	Name string
	Type *types.TypeInfo
	Kind ExposureKind
	// Help is a human-readable description, shown by tooling; may be
	// empty.
	Help string
}

// ParamInfo describes one constructor/runtime parameter (§4.4
// "parameters").
type ParamInfo struct {
	Name  string
	Help  string
	Types []*types.TypeInfo
}

// Shard is the required vtable surface every shard must implement
// (§4.4).
type Shard interface {
	// Name is the static, human-readable, cacheable shard name.
	Name() string
	// Hash is a stable 32-bit content hash used to reject
	// incompatible serialized shards.
	Hash() uint32

	InputTypes() []*types.TypeInfo
	OutputTypes() []*types.TypeInfo

	Parameters() []ParamInfo
	GetParam(index int) (variant.Var, error)
	SetParam(index int, v variant.Var) error

	ExposedVariables() []VariableUse
	RequiredVariables() []VariableUse

	// Activate is the hot path: (context, &input) -> output. It may
	// suspend, fail, or signal flow changes via ctx.
	Activate(ctx *shctx.Context, input *variant.Var) (variant.Var, error)
}

// Composer is implemented by shards that need to specialise their
// output type from the InstanceData available at compose time (§4.4:
// "Must be provided if multiple output types are declared").
type Composer interface {
	Compose(data InstanceData) (*types.TypeInfo, error)
}

// Warmer is implemented by shards with setup work that must run once,
// under the owning context, before the first Activate (§4.4 warmup).
type Warmer interface {
	Warmup(ctx *shctx.Context) error
}

// Cleaner is implemented by shards with per-wire-cleanup teardown,
// symmetric to Warmup (§4.4 cleanup).
type Cleaner interface {
	Cleanup() error
}

// Destroyer is implemented by shards holding resources that must be
// released on final teardown, after all Cleanup calls (§4.4 destroy).
type Destroyer interface {
	Destroy()
}

// StateGetter/StateSetter are implemented by shards participating in
// wire-level state capture (§3.3 "optional getState/setState for
// serialization").
type StateGetter interface {
	GetState() variant.Var
}

type StateSetter interface {
	SetState(variant.Var) error
}

// FrameAdvancer is implemented by shards that need a per-tick
// notification independent of activation (§3.3 "optional nextFrame").
type FrameAdvancer interface {
	NextFrame()
}

// InvalidParameterIndexError is raised by GetParam/SetParam when index
// is out of range (§7 InvalidParameterIndex).
type InvalidParameterIndexError struct {
	Shard string
	Index int
}

func (e *InvalidParameterIndexError) Error() string {
	return "shard: invalid parameter index " + strconv.Itoa(e.Index) + " for " + e.Shard
}
