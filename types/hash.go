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

package types

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/shards-run/shards/variant"
)

// Hash computes the 128-bit deterministic content hash of t (§3.2,
// §4.2): insensitive to member ordering in unordered collections
// (SeqTypes), and safe over self-referential types via a
// per-call visited-pointer set that folds a repeat occurrence to a
// marker instead of recursing forever (§4.2: "recursion via a
// thread-local depth guard to prevent stack exhaustion on cyclic
// types" — here a visited set, since Go has no implicit
// thread-locals and an explicit set is the idiomatic equivalent).
func (t *TypeInfo) Hash() [2]uint64 {
	return hashType(t, map[*TypeInfo]bool{})
}

// HashDescriptor implements variant.TypeDescriptor.
func (t *TypeInfo) HashDescriptor() [2]uint64 { return t.Hash() }

func hashType(t *TypeInfo, seen map[*TypeInfo]bool) [2]uint64 {
	if t == nil {
		return sum([]byte{0xff})
	}
	if seen[t] {
		// Cyclic reference: fold in a marker rather than recursing.
		return sum([]byte{byte(t.Tag), 0xcc})
	}
	seen[t] = true
	defer delete(seen, t)

	buf := []byte{byte(t.Tag)}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.FixedSize))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.ObjectID.Vendor))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.ObjectID.Type))
	h := sum(buf)

	h = foldUnordered(h, hashEach(t.SeqTypes, seen))
	for i, k := range t.TableKeys {
		var kh [2]uint64
		if k != nil {
			kh = hashType(k, seen)
		}
		var vh [2]uint64
		if i < len(t.TableValues) {
			vh = hashType(t.TableValues[i], seen)
		}
		h = fold(h, fold(kh, vh))
	}
	h = foldUnordered(h, hashEach(t.ContextVarTypes, seen))
	if t.Nested != nil {
		h = fold(h, hashType(t.Nested, seen))
	}
	if t.ArrayInner != nil {
		h = fold(h, hashType(t.ArrayInner, seen))
	}
	return h
}

func hashEach(ts []*TypeInfo, seen map[*TypeInfo]bool) [][2]uint64 {
	out := make([][2]uint64, len(ts))
	for i, x := range ts {
		out[i] = hashType(x, seen)
	}
	return out
}

// sum folds data down to the 128-bit type-hash space using the first
// 16 bytes of its BLAKE2b-256 digest (§3.2: "128-bit deterministic
// content hash" — distinct from variant.Hash's siphash keying, since
// type descriptors are hashed far less often but need stronger
// collision resistance to back cross-process type-compatibility
// checks).
func sum(data []byte) [2]uint64 {
	digest := blake2b.Sum256(data)
	return [2]uint64{
		binary.LittleEndian.Uint64(digest[0:8]),
		binary.LittleEndian.Uint64(digest[8:16]),
	}
}

func fold(a, b [2]uint64) [2]uint64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], a[0])
	binary.LittleEndian.PutUint64(buf[8:16], a[1])
	binary.LittleEndian.PutUint64(buf[16:24], b[0])
	binary.LittleEndian.PutUint64(buf[24:32], b[1])
	return sum(buf[:])
}

func foldUnordered(base [2]uint64, entries [][2]uint64) [2]uint64 {
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

// CloneDescriptor implements variant.TypeDescriptor.
func (t *TypeInfo) CloneDescriptor() variant.TypeDescriptor { return t.Clone() }

// EqualDescriptor implements variant.TypeDescriptor.
func (t *TypeInfo) EqualDescriptor(other variant.TypeDescriptor) bool {
	o, ok := other.(*TypeInfo)
	if !ok {
		return false
	}
	return t.Hash() == o.Hash()
}
