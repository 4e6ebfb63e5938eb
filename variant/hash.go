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
	"encoding/binary"
	"sort"

	"github.com/dchest/siphash"

	"github.com/shards-run/shards/internal/globals"
)

// Hash128 is the engine's 128-bit streaming hash result (§4.1).
type Hash128 [2]uint64

// Two independent key pairs give us two independent 64-bit SipHash
// sums, which we fold together into a 128-bit digest. The keys are
// arbitrary fixed constants — this is a content hash, not a MAC, so
// key secrecy does not matter.
const (
	keyA0, keyA1 = 0x1ce2a64f2bb7e0a1, 0x9e3779b97f4a7c15
	keyB0, keyB1 = 0x2545f4914f6cdd1d, 0xc2b2ae3d27d4eb4f
)

// Hash implements hash(v) from §4.1/§8.1: a 128-bit streaming hash
// over tag + payload, order-insensitive for Set and for unordered
// type unions (§8.1 invariant 5).
func Hash(v *Var) Hash128 {
	var buf []byte
	buf = appendTagHeader(buf, v)

	switch {
	case v.Tag.Blittable():
		buf = binary.LittleEndian.AppendUint64(buf, v.Blit[0])
		buf = binary.LittleEndian.AppendUint64(buf, v.Blit[1])
		return sum(buf)

	case v.Tag == String, v.Tag == Path, v.Tag == ContextVar, v.Tag == Bytes:
		if b := v.Buf(); b != nil {
			buf = append(buf, b.Data...)
		}
		return sum(buf)

	case v.Tag == SeqTag:
		h := sum(buf)
		if s := v.Seq(); s != nil {
			for i := range s.Elems {
				h = fold(h, Hash(&s.Elems[i]))
			}
		}
		return h

	case v.Tag == ArrayTag:
		h := sum(buf)
		if a := v.Array(); a != nil {
			for i := range a.Elems {
				h = fold(h, Hash(&a.Elems[i]))
			}
		}
		return h

	case v.Tag == TableTag:
		h := sum(buf)
		var entries []Hash128
		if t := v.Table(); t != nil {
			t.Iterate(func(k, val Var) bool {
				entries = append(entries, fold(Hash(&k), Hash(&val)))
				return true
			})
		}
		return foldUnordered(h, entries)

	case v.Tag == SetTag:
		h := sum(buf)
		var entries []Hash128
		if s := v.Set(); s != nil {
			s.Iterate(func(e Var) bool {
				entries = append(entries, Hash(&e))
				return true
			})
		}
		return foldUnordered(h, entries)

	case v.Tag == ObjectTag:
		if p := v.Object(); p != nil {
			if info, ok := globals.ObjectType(p.ID); ok && info.Hash != nil {
				buf = binary.LittleEndian.AppendUint64(buf, info.Hash(p.Ptr))
				return sum(buf)
			}
		}
		return sum(buf)

	case v.Tag == TypeTag:
		if td, ok := v.Payload.(TypeDescriptor); ok && td != nil {
			hd := td.HashDescriptor()
			buf = binary.LittleEndian.AppendUint64(buf, hd[0])
			buf = binary.LittleEndian.AppendUint64(buf, hd[1])
		}
		return sum(buf)

	default:
		return sum(buf)
	}
}

func appendTagHeader(buf []byte, v *Var) []byte {
	return append(buf, byte(v.Tag))
}

func sum(data []byte) Hash128 {
	return Hash128{
		siphash.Hash(keyA0, keyA1, data),
		siphash.Hash(keyB0, keyB1, data),
	}
}

func fold(a, b Hash128) Hash128 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], a[0])
	binary.LittleEndian.PutUint64(buf[8:16], a[1])
	binary.LittleEndian.PutUint64(buf[16:24], b[0])
	binary.LittleEndian.PutUint64(buf[24:32], b[1])
	return sum(buf[:])
}

// foldUnordered combines a base hash with an element-hash set whose
// order must not affect the result: sort the element hashes first,
// then fold sequentially (§3.2, §8.1 invariant 5).
func foldUnordered(base Hash128, entries []Hash128) Hash128 {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i][0] != entries[j][0] {
			return entries[i][0] < entries[j][0]
		}
		return entries[i][1] < entries[j][1]
	})
	h := base
	for _, e := range entries {
		h = fold(h, e)
	}
	return h
}
