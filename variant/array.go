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

// ArrayPayload is the Array tag's payload: a packed array of
// blittable Vars sharing a single inner type (§3.1), as opposed to
// Seq's heterogeneous element-by-element payloads.
type ArrayPayload struct {
	InnerType TypeDescriptor
	Elems     []Var
}

// NewArray constructs an Array variant of the given inner type.
func NewArray(inner TypeDescriptor) Var {
	return Var{Tag: ArrayTag, Payload: &ArrayPayload{InnerType: inner}}
}

// Array returns the Array payload, or nil if v is not an Array.
func (v *Var) Array() *ArrayPayload {
	p, _ := v.Payload.(*ArrayPayload)
	return p
}

// Resize grows or shrinks p to n elements, zero-filling new slots.
func (p *ArrayPayload) Resize(n int) {
	p.Elems = GrowSeq(p.Elems, n)
}
