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

// Package variant implements Var, the engine's polymorphic tagged-union
// value (spec.md §3.1, §4.1): a fixed, closed set of tags, a blittable
// fast path for numeric/bool/color/enum payloads, and a heap/refcounted
// slow path for everything else, with clone semantics that reuse
// destination capacity instead of destroy-then-reallocate.
package variant

// Tag identifies the active member of a Var's tagged union. The set is
// closed: adding a tag requires touching Clone, Destroy, Hash and Equal.
type Tag uint8

const (
	None Tag = iota
	Any
	Bool
	Int
	Int2
	Int3
	Int4
	Int8
	Int16
	Float
	Float2
	Float3
	Float4
	Color
	Enum
	String
	Path
	ContextVar
	Bytes
	Image
	Audio
	SeqTag
	TableTag
	SetTag
	WireTag
	ShardRefTag
	ObjectTag
	ArrayTag
	TraitTag
	TypeTag
	numTags
)

var tagNames = [numTags]string{
	None: "None", Any: "Any", Bool: "Bool", Int: "Int",
	Int2: "Int2", Int3: "Int3", Int4: "Int4", Int8: "Int8", Int16: "Int16",
	Float: "Float", Float2: "Float2", Float3: "Float3", Float4: "Float4",
	Color: "Color", Enum: "Enum", String: "String", Path: "Path",
	ContextVar: "ContextVar", Bytes: "Bytes", Image: "Image", Audio: "Audio",
	SeqTag: "Seq", TableTag: "Table", SetTag: "Set", WireTag: "Wire",
	ShardRefTag: "ShardRef", ObjectTag: "Object", ArrayTag: "Array",
	TraitTag: "Trait", TypeTag: "Type",
}

func (t Tag) String() string {
	if t < numTags {
		return tagNames[t]
	}
	return "Tag(invalid)"
}

// Blittable reports whether t's payload may be copied and compared by
// raw bytes, per §3.1's invariant list.
func (t Tag) Blittable() bool {
	switch t {
	case None, Any, Bool, Int, Int2, Int3, Int4, Int8, Int16,
		Float, Float2, Float3, Float4, Color, Enum:
		return true
	default:
		return false
	}
}

// Flags are the per-Var bits described in §3.1.
type Flags uint8

const (
	// RefCounted marks a Var as participating in variable refcounting.
	RefCounted Flags = 1 << iota
	// Foreign marks a non-owning view; a Foreign Var must never be
	// destroyed or written through.
	Foreign
	// External marks a Var whose lifetime is owned outside the mesh;
	// refcount bookkeeping is skipped for it.
	External
	// UsesObjInfo marks an Object Var that carries a vtable.
	UsesObjInfo
	// WeakObject marks an Object Var holding a weak reference.
	WeakObject
	// Exposed marks a Var observed by variable-change triggers.
	Exposed
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }
