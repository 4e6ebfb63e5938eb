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
	"bytes"
	"math"

	"github.com/shards-run/shards/internal/globals"
)

// Equal implements structural equality for containers and byte
// equality for blittable/buffer tags (§3.1).
func Equal(a, b *Var) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch {
	case a.Tag.Blittable():
		return a.Blit == b.Blit

	case a.Tag == String, a.Tag == Path, a.Tag == ContextVar, a.Tag == Bytes:
		return bytes.Equal(a.Buf().Data, b.Buf().Data)

	case a.Tag == SeqTag:
		as, bs := a.Seq(), b.Seq()
		if len(as.Elems) != len(bs.Elems) {
			return false
		}
		for i := range as.Elems {
			if !Equal(&as.Elems[i], &bs.Elems[i]) {
				return false
			}
		}
		return true

	case a.Tag == ArrayTag:
		aa, ba := a.Array(), b.Array()
		if len(aa.Elems) != len(ba.Elems) {
			return false
		}
		for i := range aa.Elems {
			if !Equal(&aa.Elems[i], &ba.Elems[i]) {
				return false
			}
		}
		return true

	case a.Tag == TableTag:
		at, bt := a.Table(), b.Table()
		if at.Len() != bt.Len() {
			return false
		}
		eq := true
		at.Iterate(func(k, av Var) bool {
			bv, ok := bt.Get(k)
			if !ok || !Equal(&av, &bv) {
				eq = false
				return false
			}
			return true
		})
		return eq

	case a.Tag == SetTag:
		as, bs := a.Set(), b.Set()
		if as.Len() != bs.Len() {
			return false
		}
		eq := true
		as.Iterate(func(v Var) bool {
			if !bs.Has(v) {
				eq = false
				return false
			}
			return true
		})
		return eq

	case a.Tag == ObjectTag:
		ao, bo := a.Object(), b.Object()
		if ao.ID != bo.ID {
			return false
		}
		if info, ok := globals.ObjectType(ao.ID); ok && info.Match != nil {
			return info.Match(ao.Ptr, bo.Ptr)
		}
		return ao.Ptr == bo.Ptr

	case a.Tag == Image:
		ai, bi := a.Image(), b.Image()
		return ai.Width == bi.Width && ai.Height == bi.Height &&
			ai.Channels == bi.Channels && bytes.Equal(ai.Pixels, bi.Pixels)

	case a.Tag == Audio:
		aa, ba := a.Audio(), b.Audio()
		if aa.Channels != ba.Channels || aa.SampleRate != ba.SampleRate || len(aa.Samples) != len(ba.Samples) {
			return false
		}
		for i := range aa.Samples {
			if aa.Samples[i] != ba.Samples[i] {
				return false
			}
		}
		return true

	case a.Tag == TypeTag:
		at, _ := a.Payload.(TypeDescriptor)
		bt, _ := b.Payload.(TypeDescriptor)
		if at == nil || bt == nil {
			return at == nil && bt == nil
		}
		return at.EqualDescriptor(bt)

	default:
		return true // None/Any carry no payload
	}
}

// Compare yields the partial order from §3.1: type tag first, then
// payload. It is suitable for sorting Table keys.
func Compare(a, b *Var) int {
	if a.Tag != b.Tag {
		if a.Tag < b.Tag {
			return -1
		}
		return 1
	}
	switch a.Tag {
	case Int:
		return cmpInt64(a.AsInt(), b.AsInt())
	case Float:
		return cmpFloat64(a.AsFloat(), b.AsFloat())
	case Bool:
		if a.AsBool() == b.AsBool() {
			return 0
		}
		if !a.AsBool() {
			return -1
		}
		return 1
	case String, Path, ContextVar, Bytes:
		return bytes.Compare(a.Buf().Data, b.Buf().Data)
	default:
		if Equal(a, b) {
			return 0
		}
		// No natural order for this tag beyond equality; fall back
		// to hash order so Compare is at least a total order usable
		// for sorted-table keys.
		ha, hb := Hash(a), Hash(b)
		if ha[0] != hb[0] {
			if ha[0] < hb[0] {
				return -1
			}
			return 1
		}
		if ha[1] < hb[1] {
			return -1
		}
		return 1
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AlmostEqual implements approximate equality for floats and numeric
// vectors (§3.1), within eps.
func AlmostEqual(a, b *Var, eps float64) bool {
	switch {
	case a.Tag != b.Tag:
		return false
	case a.Tag == Float:
		return math.Abs(a.AsFloat()-b.AsFloat()) <= eps
	case a.Tag == Float2, a.Tag == Float3, a.Tag == Float4:
		al, bl := a.FloatVecLanes(), b.FloatVecLanes()
		if len(al) != len(bl) {
			return false
		}
		for i := range al {
			if math.Abs(float64(al[i]-bl[i])) > eps {
				return false
			}
		}
		return true
	default:
		return Equal(a, b)
	}
}
