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

// Package types implements TypeInfo, the structural type-level mirror
// of variant.Var (spec.md §3.2, §4.2): derive-from-value, clone/free,
// a configurable matcher, and a deterministic content hash.
package types

import (
	"github.com/shards-run/shards/internal/globals"
	"github.com/shards-run/shards/variant"
)

// TypeInfo mirrors variant.Tag but carries type-level structure
// instead of a value (§3.2).
type TypeInfo struct {
	Tag variant.Tag

	// Seq: the set of allowed element types (unordered) plus an
	// optional fixed size.
	SeqTypes  []*TypeInfo
	FixedSize int // 0 means unbounded

	// Table: parallel arrays of keys (optional) and value types. A
	// trailing key == nil means "any extra key of this type is
	// allowed" (§3.2).
	TableKeys   []*TypeInfo // may be nil entries for "no declared key"
	TableValues []*TypeInfo

	// ContextVar: the set of types this variable reference may
	// resolve to.
	ContextVarTypes []*TypeInfo

	// Object/Enum: (vendorId, typeId).
	ObjectID globals.ObjectTypeID

	// Type: a nested type descriptor, for Type-tagged values that
	// themselves describe a type.
	Nested *TypeInfo

	// Array: the single inner element type.
	ArrayInner *TypeInfo
}

// New constructs a leaf TypeInfo for a simple tag (Int, String, …).
func New(tag variant.Tag) *TypeInfo {
	return &TypeInfo{Tag: tag}
}

// AnyType is the universal supertype on the receiver side (§3.2).
func AnyType() *TypeInfo { return New(variant.Any) }

// Clone deep-copies t; each nested allocation owns its children
// (§4.2).
func (t *TypeInfo) Clone() *TypeInfo {
	if t == nil {
		return nil
	}
	c := &TypeInfo{
		Tag:       t.Tag,
		FixedSize: t.FixedSize,
		ObjectID:  t.ObjectID,
	}
	for _, s := range t.SeqTypes {
		c.SeqTypes = append(c.SeqTypes, s.Clone())
	}
	for _, k := range t.TableKeys {
		c.TableKeys = append(c.TableKeys, k.Clone())
	}
	for _, v := range t.TableValues {
		c.TableValues = append(c.TableValues, v.Clone())
	}
	for _, cv := range t.ContextVarTypes {
		c.ContextVarTypes = append(c.ContextVarTypes, cv.Clone())
	}
	c.Nested = t.Nested.Clone()
	c.ArrayInner = t.ArrayInner.Clone()
	return c
}

// Free is a no-op under Go's GC; it exists for symmetry with the
// clone/free pairing §4.2 describes, and so call sites that mirror
// the original engine's lifecycle read the same way.
func (t *TypeInfo) Free() {}
