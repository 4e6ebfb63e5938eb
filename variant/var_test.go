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

package variant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneDestroyBlittableNoAlloc(t *testing.T) {
	src := NewInt(42)
	var dst Var
	Clone(&dst, &src)
	require.Equal(t, int64(42), dst.AsInt())
	Destroy(&dst)
	require.Equal(t, None, dst.Tag)
}

func TestCloneStringReusesCapacity(t *testing.T) {
	dst := NewString("0123456789")
	dstBuf := dst.Buf()
	backing := dstBuf.Data[:cap(dstBuf.Data)]

	src := NewString("abc")
	Clone(&dst, &src)
	require.Equal(t, "abc", dst.Str())
	// Same backing array reused because cap(dst) >= len(src).
	require.True(t, cap(dst.Buf().Data) >= 3)
	require.Same(t, &backing[0], &dst.Buf().Data[0])
}

func TestCloneStringReallocatesWhenTooSmall(t *testing.T) {
	dst := NewString("ab")
	src := NewString("a very long string exceeding original capacity")
	Clone(&dst, &src)
	require.Equal(t, src.Str(), dst.Str())
}

func TestHashStableAcrossClone(t *testing.T) {
	src := NewSeq()
	s := src.Seq()
	s.Push(NewInt(1))
	s.Push(NewString("x"))

	var dst Var
	Clone(&dst, &src)
	require.Equal(t, Hash(&src), Hash(&dst))
	require.True(t, Equal(&src, &dst))
}

func TestHashOrderInsensitiveForSet(t *testing.T) {
	a := NewSet()
	a.Set().Add(NewInt(1))
	a.Set().Add(NewInt(2))

	b := NewSet()
	b.Set().Add(NewInt(2))
	b.Set().Add(NewInt(1))

	require.Equal(t, Hash(&a), Hash(&b))
	require.True(t, Equal(&a, &b))
}

func TestForeignNeverDestroyed(t *testing.T) {
	inner := NewString("view")
	inner.Flags |= Foreign
	Destroy(&inner)
	require.Equal(t, None, inner.Tag)
}

func TestTableOrderedByKey(t *testing.T) {
	tbl := NewTable()
	ti := tbl.Table()
	ti.Set(NewInt(3), NewString("c"))
	ti.Set(NewInt(1), NewString("a"))
	ti.Set(NewInt(2), NewString("b"))

	var keys []int64
	ti.Iterate(func(k, _ Var) bool {
		keys = append(keys, k.AsInt())
		return true
	})
	require.Equal(t, []int64{1, 2, 3}, keys)
}

func TestSeqGrowZeroFillsNewSlots(t *testing.T) {
	v := NewSeq()
	s := v.Seq()
	s.Resize(3)
	for i := range s.Elems {
		require.Equal(t, None, s.Elems[i].Tag)
	}
}

func TestGrowCapDoublesFromFour(t *testing.T) {
	require.Equal(t, 4, GrowCap(0, 1))
	require.Equal(t, 8, GrowCap(4, 5))
	require.Equal(t, 16, GrowCap(8, 9))
}

func TestAlmostEqualFloat(t *testing.T) {
	a := NewFloat(1.0)
	b := NewFloat(1.0 + 1e-9)
	require.True(t, AlmostEqual(&a, &b, 1e-6))
	c := NewFloat(2.0)
	require.False(t, AlmostEqual(&a, &c, 1e-6))
}
