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

import "math"

// Var is the engine's tagged-union value. Blit holds the raw bits for
// every blittable tag (Bool..Enum, §3.1); copying a Var by value copies
// Blit with it, with no heap traffic, which is what lets Clone satisfy
// invariants 2 and 3 (§8.1) for blittable tags. Payload holds the
// heap/refcounted data for every other tag.
type Var struct {
	Tag     Tag
	Flags   Flags
	InnerTy Tag // for Enum: the underlying int width; for ContextVar: unused here (see ContextVarPayload)
	Blit    [2]uint64
	Payload any
}

// TypeDescriptor is the capability a Type-tagged Var's payload must
// implement. It is declared here, not in package types, so that
// variant never imports types (types imports variant instead, to
// derive a TypeInfo from a Var) — see SPEC_FULL.md's module map.
type TypeDescriptor interface {
	CloneDescriptor() TypeDescriptor
	HashDescriptor() [2]uint64
	EqualDescriptor(TypeDescriptor) bool
}

// WireHandle is the capability a Wire-tagged Var's payload must
// implement: reference-counted retain/release of the underlying wire.
type WireHandle interface {
	Retain() WireHandle
	Release()
}

// ShardRefHandle is the capability a ShardRef-tagged Var's payload
// must implement.
type ShardRefHandle interface {
	Retain() ShardRefHandle
	Release()
}

// TraitHandle is the capability a Trait-tagged Var's payload must
// implement.
type TraitHandle interface {
	Retain() TraitHandle
	Release()
}

// NewNone returns the zero value, the None variant.
func NewNone() Var { return Var{} }

// NewBool constructs a Bool variant.
func NewBool(b bool) Var {
	v := Var{Tag: Bool}
	if b {
		v.Blit[0] = 1
	}
	return v
}

// NewInt constructs an Int variant.
func NewInt(i int64) Var {
	return Var{Tag: Int, Blit: [2]uint64{uint64(i), 0}}
}

// NewFloat constructs a Float variant.
func NewFloat(f float64) Var {
	return Var{Tag: Float, Blit: [2]uint64{math.Float64bits(f), 0}}
}

// AsBool reads a Bool variant's payload. Callers must check Tag first.
func (v *Var) AsBool() bool { return v.Blit[0] != 0 }

// AsInt reads an Int variant's payload.
func (v *Var) AsInt() int64 { return int64(v.Blit[0]) }

// AsFloat reads a Float variant's payload.
func (v *Var) AsFloat() float64 { return math.Float64frombits(v.Blit[0]) }

// NewIntVec constructs an Int2/Int3/Int4/Int8/Int16 variant. lanes
// must match the tag's arity (2, 3, 4, 8 or 16). Lanes are packed two
// 32-bit ints per Blit word, matching the original engine's int32
// lanes; Int8/Int16 keep only their first four lanes in Blit and a
// copy of every lane in Payload.
func NewIntVec(tag Tag, lanes []int32) Var {
	v := Var{Tag: tag}
	for i, lane := range lanes {
		word, shift := i/2, (i%2)*32
		v.Blit[word%2] |= uint64(uint32(lane)) << shift
		if i >= 3 && len(lanes) > 4 {
			// Int8/Int16 need more than 2 words of raw storage;
			// spill into Payload as a plain slice instead of trying
			// to force 16 lanes into 128 bits of Blit.
			v.Payload = append([]int32(nil), lanes...)
			break
		}
	}
	return v
}

// IntVecLanes returns the lane values of an Int2..Int16 variant.
func (v *Var) IntVecLanes() []int32 {
	if lanes, ok := v.Payload.([]int32); ok {
		return lanes
	}
	n := vecArity(v.Tag)
	out := make([]int32, n)
	for i := range out {
		word, shift := i/2, (i%2)*32
		out[i] = int32(uint32(v.Blit[word%2] >> shift))
	}
	return out
}

// NewFloatVec constructs a Float2/Float3/Float4 variant, packing two
// float32 lanes per 64-bit Blit word (mirroring NewIntVec).
func NewFloatVec(tag Tag, lanes []float32) Var {
	v := Var{Tag: tag}
	for i, lane := range lanes {
		word, shift := i/2, (i%2)*32
		v.Blit[word%2] |= uint64(math.Float32bits(lane)) << shift
	}
	return v
}

// FloatVecLanes returns the lane values of a Float2/Float3/Float4
// variant.
func (v *Var) FloatVecLanes() []float32 {
	n := vecArity(v.Tag)
	out := make([]float32, n)
	for i := range out {
		word, shift := i/2, (i%2)*32
		out[i] = math.Float32frombits(uint32(v.Blit[word%2] >> shift))
	}
	return out
}

func vecArity(t Tag) int {
	switch t {
	case Int2, Float2:
		return 2
	case Int3, Float3:
		return 3
	case Int4, Float4, Color:
		return 4
	case Int8:
		return 8
	case Int16:
		return 16
	default:
		return 0
	}
}
