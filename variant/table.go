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

import "sort"

// TableInterface is the vtable a Table variant's payload dispatches
// through, so that an external table implementation (e.g. one backed
// by a host-language map) may be substituted for the built-in ordered
// map (§3.1).
type TableInterface interface {
	Get(key Var) (Var, bool)
	Set(key, val Var)
	Delete(key Var)
	Len() int
	// Iterate calls fn for every entry in key order, stopping early
	// if fn returns false.
	Iterate(fn func(key, val Var) bool)
}

// orderedTable is the default TableInterface: entries kept sorted by
// key (§3.1: "ordered mapping Var -> Var (ordering = sorted by key)").
type orderedTable struct {
	keys []Var
	vals []Var
}

// NewTable constructs a Table variant backed by the built-in ordered
// map.
func NewTable() Var {
	return Var{Tag: TableTag, Payload: TableInterface(&orderedTable{})}
}

// TableOf constructs a Table variant backed by a caller-supplied
// TableInterface, per §3.1's "external tables may be substituted".
func TableOf(iface TableInterface) Var {
	return Var{Tag: TableTag, Payload: iface}
}

// Table returns the Table payload's interface, or nil if v is not a
// Table.
func (v *Var) Table() TableInterface {
	t, _ := v.Payload.(TableInterface)
	return t
}

func (t *orderedTable) find(key Var) int {
	return sort.Search(len(t.keys), func(i int) bool {
		return Compare(&t.keys[i], &key) >= 0
	})
}

func (t *orderedTable) Get(key Var) (Var, bool) {
	i := t.find(key)
	if i < len(t.keys) && Equal(&t.keys[i], &key) {
		return t.vals[i], true
	}
	return Var{}, false
}

func (t *orderedTable) Set(key, val Var) {
	i := t.find(key)
	if i < len(t.keys) && Equal(&t.keys[i], &key) {
		t.vals[i] = val
		return
	}
	t.keys = append(t.keys, Var{})
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = key
	t.vals = append(t.vals, Var{})
	copy(t.vals[i+1:], t.vals[i:])
	t.vals[i] = val
}

func (t *orderedTable) Delete(key Var) {
	i := t.find(key)
	if i < len(t.keys) && Equal(&t.keys[i], &key) {
		t.keys = append(t.keys[:i], t.keys[i+1:]...)
		t.vals = append(t.vals[:i], t.vals[i+1:]...)
	}
}

func (t *orderedTable) Len() int { return len(t.keys) }

func (t *orderedTable) Iterate(fn func(key, val Var) bool) {
	for i := range t.keys {
		if !fn(t.keys[i], t.vals[i]) {
			return
		}
	}
}
