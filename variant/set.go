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

// SetInterface is the vtable a Set variant's payload dispatches
// through (§3.1), analogous to TableInterface.
type SetInterface interface {
	Has(v Var) bool
	Add(v Var)
	Remove(v Var)
	Len() int
	// Iterate visits elements in unspecified (insertion) order; any
	// order-sensitive consumer (e.g. Hash) must sort first.
	Iterate(fn func(Var) bool)
}

// insertionSet is the default SetInterface: a flat slice searched
// linearly. Sets in this engine are small (variable watch-sets,
// trait tags); a hash-map would cost more than it saves here.
type insertionSet struct {
	elems []Var
}

// NewSet constructs a Set variant backed by the built-in
// insertion-ordered set.
func NewSet() Var {
	return Var{Tag: SetTag, Payload: SetInterface(&insertionSet{})}
}

// SetOf constructs a Set variant backed by a caller-supplied
// SetInterface.
func SetOf(iface SetInterface) Var {
	return Var{Tag: SetTag, Payload: iface}
}

// Set returns the Set payload's interface, or nil if v is not a Set.
func (v *Var) Set() SetInterface {
	s, _ := v.Payload.(SetInterface)
	return s
}

func (s *insertionSet) index(v Var) int {
	for i := range s.elems {
		if Equal(&s.elems[i], &v) {
			return i
		}
	}
	return -1
}

func (s *insertionSet) Has(v Var) bool { return s.index(v) >= 0 }

func (s *insertionSet) Add(v Var) {
	if s.index(v) < 0 {
		s.elems = append(s.elems, v)
	}
}

func (s *insertionSet) Remove(v Var) {
	if i := s.index(v); i >= 0 {
		s.elems = append(s.elems[:i], s.elems[i+1:]...)
	}
}

func (s *insertionSet) Len() int { return len(s.elems) }

func (s *insertionSet) Iterate(fn func(Var) bool) {
	for _, e := range s.elems {
		if !fn(e) {
			return
		}
	}
}
