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

package shard

import (
	"fmt"

	"github.com/shards-run/shards/internal/shlog"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

func init() {
	RegisterInline("Pass", func() Shard { return &passShard{} })
	RegisterInline("Const", func() Shard { return &constShard{} })
	RegisterInline("Log", func() Shard { return &logShard{} })
	RegisterInline("Ref", func() Shard { return &refShard{} })
	RegisterInline("Set", func() Shard { return &setShard{} })
	RegisterInline("Add", func() Shard { return &addShard{} })
	RegisterInline("Sleep", func() Shard { return &sleepShard{} })
	RegisterInline("Offload", func() Shard { return &offloadShard{} })
}

// passShard is the identity shard ("And"/"Or"-style pass-through in
// §4.5 step 3: "use originalInputType"): it forwards its input
// unchanged. Its single Any->Any declared type pair is why §4.4 flags
// it as needing Compose to specialise the output to the actual input.
type passShard struct{}

func (*passShard) Name() string                  { return "Pass" }
func (*passShard) Hash() uint32                   { return hashName("Pass") }
func (*passShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*passShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*passShard) Parameters() []ParamInfo        { return nil }
func (*passShard) GetParam(i int) (variant.Var, error) {
	return variant.Var{}, &InvalidParameterIndexError{Shard: "Pass", Index: i}
}
func (*passShard) SetParam(i int, _ variant.Var) error {
	return &InvalidParameterIndexError{Shard: "Pass", Index: i}
}
func (*passShard) ExposedVariables() []VariableUse  { return nil }
func (*passShard) RequiredVariables() []VariableUse { return nil }

func (*passShard) Compose(data InstanceData) (*types.TypeInfo, error) {
	return data.InputType, nil
}

func (*passShard) Activate(_ *shctx.Context, input *variant.Var) (variant.Var, error) {
	return variant.CloneValue(*input), nil
}

// constShard discards its input and always emits a fixed value,
// configured via parameter 0.
type constShard struct {
	value variant.Var
}

func (*constShard) Name() string                  { return "Const" }
func (*constShard) Hash() uint32                   { return hashName("Const") }
func (*constShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.New(variant.None)} }
func (s *constShard) OutputTypes() []*types.TypeInfo {
	return []*types.TypeInfo{types.AnyType()}
}
func (*constShard) Parameters() []ParamInfo {
	return []ParamInfo{{Name: "Value", Help: "The value to emit.", Types: []*types.TypeInfo{types.AnyType()}}}
}
func (s *constShard) GetParam(i int) (variant.Var, error) {
	if i != 0 {
		return variant.Var{}, &InvalidParameterIndexError{Shard: "Const", Index: i}
	}
	return variant.CloneValue(s.value), nil
}
func (s *constShard) SetParam(i int, v variant.Var) error {
	if i != 0 {
		return &InvalidParameterIndexError{Shard: "Const", Index: i}
	}
	variant.Destroy(&s.value)
	s.value = variant.CloneValue(v)
	return nil
}
func (*constShard) ExposedVariables() []VariableUse  { return nil }
func (*constShard) RequiredVariables() []VariableUse { return nil }

func (s *constShard) Compose(data InstanceData) (*types.TypeInfo, error) {
	v, err := types.DeriveFromValue(&s.value, nil)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *constShard) Activate(_ *shctx.Context, _ *variant.Var) (variant.Var, error) {
	return variant.CloneValue(s.value), nil
}

// logShard forwards its input unchanged, as a side effect emitting it
// through the shared logger; grounded on the teacher's pervasive use
// of structured logging at pipeline stage boundaries.
type logShard struct {
	prefix string
}

func (*logShard) Name() string                  { return "Log" }
func (*logShard) Hash() uint32                   { return hashName("Log") }
func (*logShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*logShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*logShard) Parameters() []ParamInfo {
	return []ParamInfo{{Name: "Prefix", Help: "Label prepended to the logged value.", Types: []*types.TypeInfo{types.New(variant.String)}}}
}
func (s *logShard) GetParam(i int) (variant.Var, error) {
	if i != 0 {
		return variant.Var{}, &InvalidParameterIndexError{Shard: "Log", Index: i}
	}
	return variant.NewString(s.prefix), nil
}
func (s *logShard) SetParam(i int, v variant.Var) error {
	if i != 0 {
		return &InvalidParameterIndexError{Shard: "Log", Index: i}
	}
	s.prefix = v.Str()
	return nil
}
func (*logShard) ExposedVariables() []VariableUse  { return nil }
func (*logShard) RequiredVariables() []VariableUse { return nil }

func (*logShard) Compose(data InstanceData) (*types.TypeInfo, error) {
	return data.InputType, nil
}

func (s *logShard) Activate(_ *shctx.Context, input *variant.Var) (variant.Var, error) {
	h := variant.Hash(input)
	shlog.L().Infow("shard log", "prefix", s.prefix, "tag", input.Tag.String(), "hash", h)
	return variant.CloneValue(*input), nil
}

// refShard reads a named variable out of the hosting wire's scope
// (§4.7 "Variable scope"), discarding its own input. It declares the
// variable as Required rather than Exposed: a plain read does not
// claim ownership, so it can share a name with a Set/Add-driven
// writer in the same pipeline without tripping the exposed-variable
// aliasing check (§4.5 step 3).
type refShard struct {
	name string
}

func (*refShard) Name() string                  { return "Ref" }
func (*refShard) Hash() uint32                   { return hashName("Ref") }
func (*refShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*refShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*refShard) Parameters() []ParamInfo {
	return []ParamInfo{{Name: "Name", Help: "Name of the variable to read.", Types: []*types.TypeInfo{types.New(variant.String)}}}
}
func (s *refShard) GetParam(i int) (variant.Var, error) {
	if i != 0 {
		return variant.Var{}, &InvalidParameterIndexError{Shard: "Ref", Index: i}
	}
	return variant.NewString(s.name), nil
}
func (s *refShard) SetParam(i int, v variant.Var) error {
	if i != 0 {
		return &InvalidParameterIndexError{Shard: "Ref", Index: i}
	}
	s.name = v.Str()
	return nil
}
func (*refShard) ExposedVariables() []VariableUse { return nil }
func (s *refShard) RequiredVariables() []VariableUse {
	return []VariableUse{{Name: s.name, Type: types.AnyType(), Kind: Ref}}
}

func (*refShard) Compose(data InstanceData) (*types.TypeInfo, error) {
	return types.AnyType(), nil
}

func (s *refShard) Activate(ctx *shctx.Context, _ *variant.Var) (variant.Var, error) {
	scope, ok := currentScope(ctx)
	if !ok {
		return variant.Var{}, fmt.Errorf("shard %q: no variable scope on the wire stack", "Ref")
	}
	v := scope.ReferenceVariable(ctx, s.name)
	out := variant.CloneValue(*v)
	scope.ReleaseVariable(s.name)
	return out, nil
}

// setShard writes its input into a named variable in the hosting
// wire's scope, forwarding the input unchanged as its own output. It
// exercises the pointer-backed variable storage directly: the Var
// returned by ReferenceVariable aliases the map's own entry, so
// mutating through it is what a later Ref/Set of the same name
// observes (§4.7).
type setShard struct {
	name string
}

func (*setShard) Name() string                  { return "Set" }
func (*setShard) Hash() uint32                   { return hashName("Set") }
func (*setShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*setShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*setShard) Parameters() []ParamInfo {
	return []ParamInfo{{Name: "Name", Help: "Name of the variable to write.", Types: []*types.TypeInfo{types.New(variant.String)}}}
}
func (s *setShard) GetParam(i int) (variant.Var, error) {
	if i != 0 {
		return variant.Var{}, &InvalidParameterIndexError{Shard: "Set", Index: i}
	}
	return variant.NewString(s.name), nil
}
func (s *setShard) SetParam(i int, v variant.Var) error {
	if i != 0 {
		return &InvalidParameterIndexError{Shard: "Set", Index: i}
	}
	s.name = v.Str()
	return nil
}
func (s *setShard) ExposedVariables() []VariableUse {
	return []VariableUse{{Name: s.name, Type: types.AnyType(), Kind: Set}}
}
func (*setShard) RequiredVariables() []VariableUse { return nil }

func (*setShard) Compose(data InstanceData) (*types.TypeInfo, error) {
	return data.InputType, nil
}

func (s *setShard) Activate(ctx *shctx.Context, input *variant.Var) (variant.Var, error) {
	scope, ok := currentScope(ctx)
	if !ok {
		return variant.Var{}, fmt.Errorf("shard %q: no variable scope on the wire stack", "Set")
	}
	v := scope.ReferenceVariable(ctx, s.name)
	variant.Destroy(v)
	*v = variant.CloneValue(*input)
	scope.ReleaseVariable(s.name)
	return variant.CloneValue(*input), nil
}

// addShard adds a fixed addend, set via parameter 0, to an Int input.
// Declared Any->Any, like Ref/Set, so it composes after a variable
// read whose declared type is necessarily the permissive Any (§4.5
// step 3's matcher only treats a receiver declared Any as a wildcard;
// Activate's AsInt/NewInt pair operates on the actual runtime tag
// regardless of the declared static type).
type addShard struct {
	addend variant.Var
}

func (*addShard) Name() string                  { return "Add" }
func (*addShard) Hash() uint32                   { return hashName("Add") }
func (*addShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*addShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*addShard) Parameters() []ParamInfo {
	return []ParamInfo{{Name: "Addend", Help: "Value added to the input.", Types: []*types.TypeInfo{types.New(variant.Int)}}}
}
func (s *addShard) GetParam(i int) (variant.Var, error) {
	if i != 0 {
		return variant.Var{}, &InvalidParameterIndexError{Shard: "Add", Index: i}
	}
	return variant.CloneValue(s.addend), nil
}
func (s *addShard) SetParam(i int, v variant.Var) error {
	if i != 0 {
		return &InvalidParameterIndexError{Shard: "Add", Index: i}
	}
	variant.Destroy(&s.addend)
	s.addend = variant.CloneValue(v)
	return nil
}
func (*addShard) ExposedVariables() []VariableUse  { return nil }
func (*addShard) RequiredVariables() []VariableUse { return nil }

func (s *addShard) Activate(_ *shctx.Context, input *variant.Var) (variant.Var, error) {
	return variant.NewInt(input.AsInt() + s.addend.AsInt()), nil
}

// sleepShard wraps shctx.Suspend, yielding the owning fiber until its
// wall-clock deadline elapses (§4.8 suspend, §4.9 tick step 2).
type sleepShard struct {
	seconds float64
}

func (*sleepShard) Name() string                  { return "Sleep" }
func (*sleepShard) Hash() uint32                   { return hashName("Sleep") }
func (*sleepShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*sleepShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*sleepShard) Parameters() []ParamInfo {
	return []ParamInfo{{Name: "Seconds", Help: "Minimum time to suspend for.", Types: []*types.TypeInfo{types.New(variant.Float)}}}
}
func (s *sleepShard) GetParam(i int) (variant.Var, error) {
	if i != 0 {
		return variant.Var{}, &InvalidParameterIndexError{Shard: "Sleep", Index: i}
	}
	return variant.NewFloat(s.seconds), nil
}
func (s *sleepShard) SetParam(i int, v variant.Var) error {
	if i != 0 {
		return &InvalidParameterIndexError{Shard: "Sleep", Index: i}
	}
	s.seconds = v.AsFloat()
	return nil
}
func (*sleepShard) ExposedVariables() []VariableUse  { return nil }
func (*sleepShard) RequiredVariables() []VariableUse { return nil }

func (*sleepShard) Compose(data InstanceData) (*types.TypeInfo, error) {
	return data.InputType, nil
}

func (s *sleepShard) Activate(ctx *shctx.Context, input *variant.Var) (variant.Var, error) {
	if _, err := shctx.Suspend(ctx, s.seconds); err != nil {
		return variant.Var{}, err
	}
	return variant.CloneValue(*input), nil
}

// PoolContextKey is the shctx.Context.Any/SetAny key an embedding host
// must install a tidepool.Pool-implementing value under before
// activating an Offload shard (§4.8 await). There is no package-level
// default pool; tidepool itself carries none, and Offload follows the
// same "caller supplies the pool" rule.
const PoolContextKey = "shard.offload.pool"

// offloadShard clones its input onto a pool worker and blocks the
// owning fiber (via shctx.Await) until that worker returns it,
// exercising the await/cancel machinery end to end (§4.8, §8.4
// "await offload"/"cancellation during await").
type offloadShard struct{}

func (*offloadShard) Name() string                  { return "Offload" }
func (*offloadShard) Hash() uint32                   { return hashName("Offload") }
func (*offloadShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*offloadShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*offloadShard) Parameters() []ParamInfo        { return nil }
func (*offloadShard) GetParam(i int) (variant.Var, error) {
	return variant.Var{}, &InvalidParameterIndexError{Shard: "Offload", Index: i}
}
func (*offloadShard) SetParam(i int, _ variant.Var) error {
	return &InvalidParameterIndexError{Shard: "Offload", Index: i}
}
func (*offloadShard) ExposedVariables() []VariableUse  { return nil }
func (*offloadShard) RequiredVariables() []VariableUse { return nil }

func (*offloadShard) Compose(data InstanceData) (*types.TypeInfo, error) {
	return data.InputType, nil
}

func (*offloadShard) Activate(ctx *shctx.Context, input *variant.Var) (variant.Var, error) {
	poolAny, ok := ctx.Any(PoolContextKey)
	if !ok {
		return variant.Var{}, fmt.Errorf("shard %q: no tidepool.Pool installed under PoolContextKey", "Offload")
	}
	pool, ok := poolAny.(shctx.Pool)
	if !ok {
		return variant.Var{}, fmt.Errorf("shard %q: value under PoolContextKey does not implement shctx.Pool", "Offload")
	}
	value := variant.CloneValue(*input)
	return shctx.Await(ctx, pool, func() (variant.Var, error) {
		return value, nil
	}, nil)
}

// hashName derives the stable 32-bit content hash required by §4.4
// from the already-128-bit FNV-independent variant hash machinery, by
// hashing the name as a string Var and truncating.
func hashName(name string) uint32 {
	v := variant.NewString(name)
	h := variant.Hash(&v)
	return uint32(h[0])
}
