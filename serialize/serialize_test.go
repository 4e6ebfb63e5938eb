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

package serialize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/variant"
	"github.com/shards-run/shards/wire"
)

func TestEncodeDecodeValueRoundTripsPrimitives(t *testing.T) {
	for _, v := range []variant.Var{
		variant.NewNone(),
		variant.NewBool(true),
		variant.NewInt(-42),
		variant.NewFloat(3.5),
		variant.NewString("hello"),
		variant.NewBytes([]byte{1, 2, 3}),
	} {
		data, err := EncodeValue(&v)
		require.NoError(t, err)
		got, err := DecodeValue(data)
		require.NoError(t, err)
		require.True(t, variant.Equal(&v, &got))
	}
}

func TestEncodeDecodeValueRoundTripsSeq(t *testing.T) {
	seq := variant.SeqOf([]variant.Var{variant.NewInt(1), variant.NewString("x")})
	data, err := EncodeValue(&seq)
	require.NoError(t, err)
	got, err := DecodeValue(data)
	require.NoError(t, err)
	require.Equal(t, 2, len(got.Seq().Elems))
	require.Equal(t, int64(1), got.Seq().Elems[0].AsInt())
	require.Equal(t, "x", got.Seq().Elems[1].Str())
}

func TestEncodeDecodeValueRoundTripsTable(t *testing.T) {
	tbl := variant.NewTable()
	tbl.Table().Set(variant.NewString("k"), variant.NewInt(7))
	data, err := EncodeValue(&tbl)
	require.NoError(t, err)
	got, err := DecodeValue(data)
	require.NoError(t, err)
	v, ok := got.Table().Get(variant.NewString("k"))
	require.True(t, ok)
	require.Equal(t, int64(7), v.AsInt())
}

func TestEncodeValueRejectsWireTag(t *testing.T) {
	v := variant.Var{Tag: variant.WireTag}
	_, err := EncodeValue(&v)
	require.Error(t, err)
	var target *UnserializableError
	require.ErrorAs(t, err, &target)
}

func TestDecodeValueOverflowsOnTruncatedStream(t *testing.T) {
	v := variant.NewInt(5)
	data, err := EncodeValue(&v)
	require.NoError(t, err)
	_, err = DecodeValue(data[:len(data)-1])
	require.Error(t, err)
	var target *OverflowError
	require.ErrorAs(t, err, &target)
}

func mustConstShard(t *testing.T, val int64) shard.Shard {
	t.Helper()
	s, err := shard.Create("Const")
	require.NoError(t, err)
	require.NoError(t, s.SetParam(0, variant.NewInt(val)))
	return s
}

func TestEncodeDecodeWireRoundTrips(t *testing.T) {
	w := wire.New("w")
	w.Looped = true
	require.NoError(t, w.AddShard(mustConstShard(t, 99)))

	s := New()
	data, err := s.EncodeWire(w, false)
	require.NoError(t, err)

	s2 := New()
	got, err := s2.DecodeWire(data, nil)
	require.NoError(t, err)
	require.Equal(t, "w", got.Name)
	require.True(t, got.Looped)
	require.Len(t, got.Shards(), 1)
}

func TestEncodeDecodeWireCompressed(t *testing.T) {
	w := wire.New("w")
	require.NoError(t, w.AddShard(mustConstShard(t, 1)))

	s := New()
	data, err := s.EncodeWire(w, true)
	require.NoError(t, err)

	s2 := New()
	got, err := s2.DecodeWire(data, nil)
	require.NoError(t, err)
	require.Equal(t, "w", got.Name)
}

func TestEncodeWireBackReferenceOnRepeat(t *testing.T) {
	w1 := wire.New("w")
	require.NoError(t, w1.AddShard(mustConstShard(t, 1)))
	w2 := wire.New("w")
	require.NoError(t, w2.AddShard(mustConstShard(t, 1)))

	s := New()
	first, err := s.EncodeWire(w1, false)
	require.NoError(t, err)
	second, err := s.EncodeWire(w2, false)
	require.NoError(t, err)
	require.Less(t, len(second), len(first))
}

func TestDecodeShardRejectsHashMismatch(t *testing.T) {
	sh := mustConstShard(t, 1)
	s := New()

	w := &writer{}
	require.NoError(t, s.encodeShard(w, sh))
	data := w.Bytes()

	// The name's length-prefixed bytes come first; the hash field
	// immediately follows. Corrupt one of its bytes to force a
	// mismatch against the live registry.
	nameLen := int(data[0])
	hashOffset := 4 + nameLen
	data[hashOffset] ^= 0xff

	_, err := s.decodeShard(newReader(data))
	require.Error(t, err)
	var target *ShardHashMismatchError
	require.ErrorAs(t, err, &target)
}
