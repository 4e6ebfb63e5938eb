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

package abi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/mesh"
	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/variant"
)

func TestNewRejectsVersionMismatch(t *testing.T) {
	_, err := New(Version + 1)
	require.Error(t, err)
	var target *VersionMismatchError
	require.ErrorAs(t, err, &target)
}

func TestNewAcceptsCurrentVersion(t *testing.T) {
	tbl, err := New(Version)
	require.NoError(t, err)
	require.NotNil(t, tbl)
}

func TestMemoryAllocPadsToAlignment(t *testing.T) {
	var m Memory
	buf := m.Alloc(10)
	require.Equal(t, 16, len(buf))
	require.Nil(t, m.Alloc(0))
}

func TestVariantOpsRoundTrip(t *testing.T) {
	var ops VariantOps
	src := variant.NewInt(7)
	var dst variant.Var
	ops.Clone(&dst, &src)
	require.True(t, ops.IsEqual(&src, &dst))
	require.Equal(t, ops.Hash(&src), ops.Hash(&dst))
	ops.Destroy(&dst)
}

func TestWireMeshLifecycleThroughTable(t *testing.T) {
	tbl, err := New(Version)
	require.NoError(t, err)

	s, err := shard.Create("Const")
	require.NoError(t, err)
	require.NoError(t, s.SetParam(0, variant.NewInt(3)))

	w := tbl.WireMesh.CreateWire("w")
	require.NoError(t, tbl.WireMesh.AddShard(w, s))

	m := tbl.WireMesh.CreateMesh(mesh.Config{})
	require.NoError(t, tbl.WireMesh.Schedule(m, w, shard.InstanceData{}, variant.NewNone()))
	for !tbl.WireMesh.IsEmpty(m) {
		tbl.WireMesh.Tick(m)
	}
}

func TestStringsCacheRoundTrips(t *testing.T) {
	s := newStrings()
	s.WriteCachedString(1, "hello")
	got, ok := s.ReadCachedString(1)
	require.True(t, ok)
	require.Equal(t, "hello", got)

	_, ok = s.ReadCachedString(999)
	require.False(t, ok)
}

func TestArrayOpsPushPopOnSeq(t *testing.T) {
	var ops ArrayOps
	seq := variant.NewSeq()
	p := seq.Seq()
	ops.PushSeq(p, variant.NewInt(1))
	ops.PushSeq(p, variant.NewInt(2))
	require.Equal(t, 2, len(p.Elems))

	v, ok := ops.PopSeq(p)
	require.True(t, ok)
	require.Equal(t, int64(2), v.AsInt())
}
