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

// Package trait implements the abstract capability tags a wire can
// declare (spec.md §3.4 "Traits", §Glossary), grounded on
// original_source/shards/core/trait.hpp: a trait is a named shape
// (a set of required variables) that a wire either Satisfies or
// doesn't, independent of the wire's declared input/output types.
package trait

import (
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// Variable describes one slot a trait requires a satisfying wire to
// expose.
type Variable struct {
	Name string
	Type *types.TypeInfo
}

// Trait is an immutable capability descriptor: a name plus the
// variable shape a wire must expose to claim it.
type Trait struct {
	Name      string
	Variables []Variable
}

// New builds a Trait from a name and its required variable shape.
func New(name string, vars ...Variable) Trait {
	return Trait{Name: name, Variables: vars}
}

// Satisfier is implemented by anything that can report its exposed
// variables by name (package wire's *wire.Wire satisfies this without
// trait needing to import wire).
type Satisfier interface {
	ExposedVariable(name string) (*types.TypeInfo, bool)
}

// Satisfies reports whether s exposes every variable t.Variables
// declares, each matching by the relaxed default Matcher.
func (t Trait) Satisfies(s Satisfier) bool {
	m := types.Matcher{}
	for _, v := range t.Variables {
		have, ok := s.ExposedVariable(v.Name)
		if !ok || !m.Match(v.Type, have) {
			return false
		}
	}
	return true
}

// handle adapts Trait to variant.TraitHandle. Traits are immutable
// and process-lifetime (registered once, shared by value), so Retain
// and Release are no-ops: there is nothing to free.
type handle struct{ Trait }

func (h handle) Retain() variant.TraitHandle { return h }
func (h handle) Release()                    {}

// AsVariant wraps t as a variant.Var carrying a TraitTag, for storage
// in a Var-typed slot (e.g. a wire's declared trait list serialized
// alongside its shards, §6.2).
func (t Trait) AsVariant() variant.Var {
	return variant.Var{Tag: variant.TraitTag, Payload: handle{t}}
}
