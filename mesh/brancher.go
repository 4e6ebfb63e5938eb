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

package mesh

import (
	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/variant"
	"github.com/shards-run/shards/wire"
)

// Brancher schedules a fixed set of child wires as independent mesh
// entries and joins on their completion, grounded on
// original_source/shards/core/brancher.hpp.
type Brancher struct {
	Mesh     *Mesh
	Children []*wire.Wire

	// Capture, when set, deep-clones each exposed parent variable
	// into a child's scope at branch time rather than sharing it
	// live, per CapturingBrancher (capturing_brancher.hpp). Nil means
	// a plain Brancher: children see the parent's variables live
	// through the normal mesh scope chain.
	Capture []string
	parent  wire.Scope
}

// NewBrancher builds a Brancher over children, scheduled on m.
func NewBrancher(m *Mesh, children ...*wire.Wire) *Brancher {
	return &Brancher{Mesh: m, Children: children}
}

// WithCapture marks names to be captured (deep-cloned) from parent
// into each child at Branch time, turning this into a
// CapturingBrancher.
func (b *Brancher) WithCapture(parent wire.Scope, names ...string) *Brancher {
	b.parent = parent
	b.Capture = names
	return b
}

// Branch schedules every child wire with input, optionally seeding
// captured variables first.
func (b *Brancher) Branch(data shard.InstanceData, input variant.Var) error {
	for _, child := range b.Children {
		if b.parent != nil {
			for _, name := range b.Capture {
				if src, ok := b.parent.Variable(name); ok {
					clone := variant.CloneValue(*src)
					child.SetExternal(name, &clone)
				}
			}
		}
		if err := b.Mesh.Schedule(child, data, variant.CloneValue(input)); err != nil {
			return err
		}
	}
	return nil
}

// Join blocks (by ticking the owning mesh) until every child wire has
// left the Running state, returning their finished outputs in order.
func (b *Brancher) Join() []variant.Var {
	outs := make([]variant.Var, len(b.Children))
	for {
		pending := false
		for i, c := range b.Children {
			if c.Running() {
				pending = true
				continue
			}
			outs[i] = c.FinishedOutput()
		}
		if !pending {
			return outs
		}
		if b.Mesh.IsEmpty() {
			return outs
		}
		b.Mesh.Tick()
	}
}
