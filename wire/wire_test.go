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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// failingShard is a minimal test-only shard whose Activate always
// errors, used to exercise sub-wire error propagation.
type failingShard struct{}

func (*failingShard) Name() string                  { return "failing" }
func (*failingShard) Hash() uint32                   { return 0 }
func (*failingShard) InputTypes() []*types.TypeInfo  { return []*types.TypeInfo{types.AnyType()} }
func (*failingShard) OutputTypes() []*types.TypeInfo { return []*types.TypeInfo{types.AnyType()} }
func (*failingShard) Parameters() []shard.ParamInfo  { return nil }
func (*failingShard) GetParam(i int) (variant.Var, error) {
	return variant.Var{}, &shard.InvalidParameterIndexError{Shard: "failing", Index: i}
}
func (*failingShard) SetParam(i int, _ variant.Var) error {
	return &shard.InvalidParameterIndexError{Shard: "failing", Index: i}
}
func (*failingShard) ExposedVariables() []shard.VariableUse  { return nil }
func (*failingShard) RequiredVariables() []shard.VariableUse { return nil }
func (*failingShard) Activate(*shctx.Context, *variant.Var) (variant.Var, error) {
	return variant.Var{}, errors.New("boom")
}

// cloneByReusingShards is a minimal DoppelgangerPool clone function
// for tests: it shares the prototype's own shard instances rather
// than deep-copying them, which is fine as long as only one clone is
// ever concurrently active.
func cloneByReusingShards(proto *Wire) *Wire {
	clone := New(proto.Name)
	clone.shards = append(clone.shards, proto.Shards()...)
	return clone
}

func constShard(t *testing.T, val int64) shard.Shard {
	t.Helper()
	s, err := shard.Create("Const")
	require.NoError(t, err)
	require.NoError(t, s.SetParam(0, variant.NewInt(val)))
	return s
}

func TestAddShardOnlyAllowedWhileStopped(t *testing.T) {
	w := New("w")
	pass, err := shard.Create("Pass")
	require.NoError(t, err)
	require.NoError(t, w.AddShard(pass))

	require.NoError(t, w.Prepare())
	require.Error(t, w.AddShard(pass))
}

func TestSingleIterationWireRunsToEnded(t *testing.T) {
	w := New("w")
	require.NoError(t, w.AddShard(constShard(t, 5)))
	require.NoError(t, w.Prepare())
	require.NoError(t, w.Start(variant.NewNone()))

	for w.Running() {
		w.Tick()
	}
	require.Equal(t, Ended, w.State())
	require.Equal(t, int64(5), w.FinishedOutput().AsInt())
}

func TestLoopedWireYieldsEachIterationUntilStopped(t *testing.T) {
	w := New("w")
	w.Looped = true
	require.NoError(t, w.AddShard(constShard(t, 1)))
	require.NoError(t, w.Prepare())
	require.NoError(t, w.Start(variant.NewNone()))

	// First tick only runs warmup and suspends (§4.7 step 2); later
	// ticks run loop iterations.
	for i := 0; i < 4; i++ {
		w.Tick()
		require.Equal(t, Iterating, w.State())
	}

	w.Stop()
	require.Equal(t, Stopped, w.State())
}

func TestReferenceAndReleaseVariableRoundTrips(t *testing.T) {
	w := New("w")
	ctx := shctx.New(nil)
	ctx.PushWire(w)
	v := w.ReferenceVariable(ctx, "x")
	require.NotNil(t, v)
	w.ReleaseVariable("x")
	_, exists := w.vars["x"]
	require.False(t, exists)
}

func TestReferenceVariableMutationIsObservedByLaterLookup(t *testing.T) {
	w := New("w")
	ctx := shctx.New(nil)
	ctx.PushWire(w)

	v := w.ReferenceVariable(ctx, "x")
	*v = variant.NewInt(99)

	again := w.ReferenceVariable(ctx, "x")
	require.Equal(t, int64(99), again.AsInt())
}

func TestReferenceVariableWalksWireStackIntoEnclosingWire(t *testing.T) {
	outer := New("outer")
	inner := New("inner")
	ctx := shctx.New(nil)
	ctx.PushWire(outer)
	outer.CreateVariable("shared")
	ctx.PushWire(inner)

	v := inner.ReferenceVariable(ctx, "shared")
	require.NotNil(t, v)
	_, existsOnInner := inner.vars["shared"]
	require.False(t, existsOnInner)
}

func TestLoopedWireRunsCounterViaRefAddSet(t *testing.T) {
	w := New("w")

	ref, err := shard.Create("Ref")
	require.NoError(t, err)
	require.NoError(t, ref.SetParam(0, variant.NewString("counter")))

	add, err := shard.Create("Add")
	require.NoError(t, err)
	require.NoError(t, add.SetParam(0, variant.NewInt(1)))

	set, err := shard.Create("Set")
	require.NoError(t, err)
	require.NoError(t, set.SetParam(0, variant.NewString("counter")))

	w.Looped = true
	require.NoError(t, w.AddShard(ref))
	require.NoError(t, w.AddShard(add))
	require.NoError(t, w.AddShard(set))

	require.NoError(t, w.Prepare())
	require.NoError(t, w.Start(variant.NewNone()))

	for i := 0; i < 5; i++ {
		w.Tick()
		require.Equal(t, Iterating, w.State())
	}

	v, ok := w.vars["counter"]
	require.True(t, ok)
	require.Equal(t, int64(4), v.AsInt())

	w.Stop()
	require.Equal(t, Stopped, w.State())
}

func TestSubWireRunsChildInlineAndReturnsOutput(t *testing.T) {
	child := New("child")
	require.NoError(t, child.AddShard(constShard(t, 7)))

	sw := NewSubWire(child, cloneByReusingShards)

	parent := New("parent")
	require.NoError(t, parent.AddShard(sw))
	require.NoError(t, parent.Prepare())
	require.NoError(t, parent.Start(variant.NewNone()))

	for parent.Running() {
		parent.Tick()
	}
	require.Equal(t, Ended, parent.State())
	require.Equal(t, int64(7), parent.FinishedOutput().AsInt())
}

func TestSubWireSurfacesChildActivationError(t *testing.T) {
	child := New("child")
	require.NoError(t, child.AddShard(&failingShard{}))

	sw := NewSubWire(child, cloneByReusingShards)

	parent := New("parent")
	require.NoError(t, parent.AddShard(sw))
	require.NoError(t, parent.Prepare())
	require.NoError(t, parent.Start(variant.NewNone()))

	for parent.Running() {
		parent.Tick()
	}
	require.Equal(t, Failed, parent.State())
	require.Contains(t, parent.FinishedError(), "boom")
}

func TestIntoPromotesBareShardList(t *testing.T) {
	s := constShard(t, 2)
	w, err := Into([]shard.Shard{s})
	require.NoError(t, err)
	require.Len(t, w.Shards(), 1)
}

func TestIntoPassesThroughExistingWire(t *testing.T) {
	orig := New("orig")
	w, err := Into(orig)
	require.NoError(t, err)
	require.Same(t, orig, w)
}
