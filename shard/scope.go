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

package shard

import (
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/variant"
)

// VariableScope is the minimal surface a named-variable-touching
// builtin needs from the wire hosting its activation (§4.7 "Variable
// scope"). Declared here and satisfied structurally by *wire.Wire, so
// package shard never imports package wire — wire already imports
// shard for the Shard interface, and a shard->wire edge would cycle
// back through it.
type VariableScope interface {
	ReferenceVariable(ctx *shctx.Context, name string) *variant.Var
	ReleaseVariable(name string)
}

// currentScope resolves the top of ctx's wire stack as a VariableScope,
// for shards that read or write named variables by name (Ref, Set).
func currentScope(ctx *shctx.Context) (VariableScope, bool) {
	scope, ok := ctx.CurrentWire().(VariableScope)
	return scope, ok
}
