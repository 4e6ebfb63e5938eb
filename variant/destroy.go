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

// Destroy implements destroyVar from §4.1: tag-dispatched release of
// any heap/refcounted payload, then reset to {Tag: None}.
//
// Foreign and External Vars skip payload release entirely — a
// Foreign Var never owned its payload, and an External Var's
// lifetime belongs to the embedder — but v is still reset to None
// locally so the call site cannot accidentally reuse a stale handle.
func Destroy(v *Var) {
	if v.Tag == None {
		return
	}
	if v.Flags.Has(Foreign) || v.Flags.Has(External) {
		*v = Var{}
		return
	}
	switch v.Tag {
	case ObjectTag:
		v.releaseObject()
	case WireTag:
		if h, ok := v.Payload.(WireHandle); ok && h != nil {
			h.Release()
		}
	case ShardRefTag:
		if h, ok := v.Payload.(ShardRefHandle); ok && h != nil {
			h.Release()
		}
	case TraitTag:
		if h, ok := v.Payload.(TraitHandle); ok && h != nil {
			h.Release()
		}
	case SeqTag:
		if s := v.Seq(); s != nil && !s.Foreign {
			for i := range s.Elems {
				Destroy(&s.Elems[i])
			}
		}
	case TableTag:
		if t := v.Table(); t != nil {
			var keys []Var
			t.Iterate(func(k, val Var) bool {
				keys = append(keys, k)
				Destroy(&val)
				return true
			})
			for i := range keys {
				Destroy(&keys[i])
			}
		}
	case SetTag:
		if s := v.Set(); s != nil {
			var elems []Var
			s.Iterate(func(e Var) bool {
				elems = append(elems, e)
				return true
			})
			for i := range elems {
				Destroy(&elems[i])
			}
		}
	}
	*v = Var{}
}
