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
	"fmt"

	"github.com/shards-run/shards/variant"
)

// Scope resolves a ContextVar's name to the type of the variable it
// names, for DeriveFromValue's optional resolution step (§4.2).
type Scope interface {
	LookupType(name string) (*TypeInfo, bool)
}

// DeriveFromValue recursively inspects v and produces a concrete
// TypeInfo (§4.2). If scope is non-nil and v (or any nested value)
// is a ContextVar, its name is resolved against scope; with scope
// nil, a ContextVar derives to a type with an empty ContextVarTypes
// set ("unresolved").
//
// DeriveFromValue returns an error only when scope is provided and a
// ContextVar name cannot be resolved in it — spec.md §4.2: "fails if
// unresolved".
func DeriveFromValue(v *variant.Var, scope Scope) (*TypeInfo, error) {
	t := &TypeInfo{Tag: v.Tag}
	switch v.Tag {
	case variant.SeqTag:
		if s := v.Seq(); s != nil {
			seen := map[[2]uint64]*TypeInfo{}
			for i := range s.Elems {
				et, err := DeriveFromValue(&s.Elems[i], scope)
				if err != nil {
					return nil, err
				}
				if _, ok := seen[et.Hash()]; !ok {
					seen[et.Hash()] = et
					t.SeqTypes = append(t.SeqTypes, et)
				}
			}
		}

	case variant.ArrayTag:
		if a := v.Array(); a != nil {
			if td, ok := a.InnerType.(*TypeInfo); ok {
				t.ArrayInner = td
			}
		}

	case variant.TableTag:
		if tb := v.Table(); tb != nil {
			var err error
			tb.Iterate(func(k, val variant.Var) bool {
				kt, derr := DeriveFromValue(&k, scope)
				if derr != nil {
					err = derr
					return false
				}
				vt, derr := DeriveFromValue(&val, scope)
				if derr != nil {
					err = derr
					return false
				}
				t.TableKeys = append(t.TableKeys, kt)
				t.TableValues = append(t.TableValues, vt)
				return true
			})
			if err != nil {
				return nil, err
			}
		}

	case variant.ContextVar:
		name := v.Str()
		if scope != nil {
			rt, ok := scope.LookupType(name)
			if !ok {
				return nil, fmt.Errorf("types: unresolved context variable %q", name)
			}
			t.ContextVarTypes = []*TypeInfo{rt}
		}

	case variant.ObjectTag:
		if o := v.Object(); o != nil {
			t.ObjectID = o.ID
		}

	case variant.Enum:
		// Enum payload packs (vendor, type) into Blit by convention;
		// callers that need the id set it explicitly via New.

	case variant.TypeTag:
		if td, ok := v.Payload.(variant.TypeDescriptor); ok {
			if nested, ok := td.(*TypeInfo); ok {
				t.Nested = nested
			}
		}
	}
	return t, nil
}
