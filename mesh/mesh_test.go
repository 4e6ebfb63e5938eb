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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/variant"
	"github.com/shards-run/shards/wire"
)

func mustConstWire(t *testing.T, val int64) *wire.Wire {
	t.Helper()
	s, err := shard.Create("Const")
	require.NoError(t, err)
	require.NoError(t, s.SetParam(0, variant.NewInt(val)))
	w := wire.New("w")
	require.NoError(t, w.AddShard(s))
	return w
}

func TestScheduleAndRunDrainsWire(t *testing.T) {
	m := New(Config{Label: "test"})
	w := mustConstWire(t, 42)
	require.NoError(t, m.Schedule(w, shard.InstanceData{}, variant.NewNone()))

	require.True(t, m.Run())
	require.Equal(t, wire.Ended, w.State())
	require.Equal(t, int64(42), w.FinishedOutput().AsInt())
	require.True(t, m.IsEmpty())
}

func TestScheduleRejectsDuplicateWire(t *testing.T) {
	m := New(Config{})
	w := mustConstWire(t, 1)
	require.NoError(t, m.Schedule(w, shard.InstanceData{}, variant.NewNone()))
	require.Error(t, m.Schedule(w, shard.InstanceData{}, variant.NewNone()))
}

func TestTerminateStopsAllWiresAndClearsVars(t *testing.T) {
	m := New(Config{})
	w := mustConstWire(t, 1)
	w.Looped = true
	require.NoError(t, m.Schedule(w, shard.InstanceData{}, variant.NewNone()))
	m.Tick()

	m.Terminate()
	require.True(t, m.IsEmpty())
	require.Equal(t, wire.Stopped, w.State())
}

func TestVariableAndRefScope(t *testing.T) {
	m := New(Config{})
	v := m.CreateVariable("x")
	require.NotNil(t, v)
	got, ok := m.Variable("x")
	require.True(t, ok)
	require.Equal(t, variant.None, got.Tag)

	ext := variant.NewInt(9)
	m.SetRef("y", &ext)
	got2, ok := m.Ref("y")
	require.True(t, ok)
	require.Equal(t, int64(9), got2.AsInt())
}

func TestEventDispatchOnMesh(t *testing.T) {
	m := New(Config{})
	fired := false
	m.On("OnStart", func(any) { fired = true })
	m.Trigger("OnStart", nil)
	require.True(t, fired)
}

func varValue(t *testing.T, w *wire.Wire, name string) *variant.Var {
	t.Helper()
	ctx := shctx.New(nil)
	ctx.PushWire(w)
	return w.ReferenceVariable(ctx, name)
}

func TestMeshTickGatesOnSuspendDeadline(t *testing.T) {
	m := New(Config{})
	w := wire.New("sleeper")

	ref, err := shard.Create("Ref")
	require.NoError(t, err)
	require.NoError(t, ref.SetParam(0, variant.NewString("n")))

	add, err := shard.Create("Add")
	require.NoError(t, err)
	require.NoError(t, add.SetParam(0, variant.NewInt(1)))

	set, err := shard.Create("Set")
	require.NoError(t, err)
	require.NoError(t, set.SetParam(0, variant.NewString("n")))

	sleep, err := shard.Create("Sleep")
	require.NoError(t, err)
	require.NoError(t, sleep.SetParam(0, variant.NewFloat(0.05)))

	w.Looped = true
	require.NoError(t, w.AddShard(ref))
	require.NoError(t, w.AddShard(add))
	require.NoError(t, w.AddShard(set))
	require.NoError(t, w.AddShard(sleep))

	require.NoError(t, m.Schedule(w, shard.InstanceData{}, variant.NewNone()))

	require.True(t, m.Tick()) // warmup tick: no shard runs yet
	require.True(t, m.Tick()) // first iteration: n 0->1, then suspends ~50ms
	require.Equal(t, int64(1), varValue(t, w, "n").AsInt())

	// Ticking again immediately must be a no-op: the suspend deadline
	// has not elapsed, so the scheduler must not resume the wire
	// (§4.9 tick step 2).
	require.True(t, m.Tick())
	require.Equal(t, int64(1), varValue(t, w, "n").AsInt())
	require.Equal(t, wire.Iterating, w.State())

	time.Sleep(70 * time.Millisecond)
	require.True(t, m.Tick())
	require.Equal(t, int64(2), varValue(t, w, "n").AsInt())

	m.Terminate()
}

func TestBrancherSchedulesAndJoinsChildren(t *testing.T) {
	m := New(Config{})
	b := NewBrancher(m, mustConstWire(t, 1), mustConstWire(t, 2))
	require.NoError(t, b.Branch(shard.InstanceData{}, variant.NewNone()))
	outs := b.Join()
	require.Len(t, outs, 2)
	require.Equal(t, int64(1), outs[0].AsInt())
	require.Equal(t, int64(2), outs[1].AsInt())
}
