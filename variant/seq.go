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

// SeqPayload is the Seq tag's payload: a dynamic array of Var (§3.1).
// Foreign marks a borrowed slice (cap==0 in the original C layout)
// that must never be grown or freed; see §4.1's Arrays note.
type SeqPayload struct {
	Elems   []Var
	Foreign bool
}

// NewSeq constructs an empty Seq variant.
func NewSeq() Var {
	return Var{Tag: SeqTag, Payload: &SeqPayload{}}
}

// SeqOf constructs a Seq variant owning elems directly (no copy); use
// when the caller is handing over ownership.
func SeqOf(elems []Var) Var {
	return Var{Tag: SeqTag, Payload: &SeqPayload{Elems: elems}}
}

// Seq returns the Seq payload, or nil if v is not a Seq.
func (v *Var) Seq() *SeqPayload {
	p, _ := v.Payload.(*SeqPayload)
	return p
}

// Resize grows or shrinks p to n elements, zero-filling new slots.
// It panics if p is Foreign, matching the "a Foreign dst must never
// be destroyed/grown" rule (§4.1).
func (p *SeqPayload) Resize(n int) {
	if p.Foreign {
		panic("variant: cannot resize a foreign Seq")
	}
	p.Elems = GrowSeq(p.Elems, n)
}

// Push appends v to the sequence.
func (p *SeqPayload) Push(v Var) {
	if p.Foreign {
		panic("variant: cannot push onto a foreign Seq")
	}
	n := len(p.Elems)
	p.Resize(n + 1)
	p.Elems[n] = v
}

// Pop removes and returns the last element.
func (p *SeqPayload) Pop() (Var, bool) {
	n := len(p.Elems)
	if n == 0 {
		return Var{}, false
	}
	v := p.Elems[n-1]
	p.Elems = p.Elems[:n-1]
	return v, true
}

// FastDelete removes the element at i by swapping in the last
// element, an O(1) delete that does not preserve order.
func (p *SeqPayload) FastDelete(i int) {
	n := len(p.Elems)
	p.Elems[i] = p.Elems[n-1]
	p.Elems = p.Elems[:n-1]
}

// SlowDelete removes the element at i, preserving order, an O(n)
// delete.
func (p *SeqPayload) SlowDelete(i int) {
	p.Elems = append(p.Elems[:i], p.Elems[i+1:]...)
}
