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

package compose

import (
	"fmt"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/types"
)

// validationContext carries the running state threaded through one
// wire's composition pass (§4.5).
type validationContext struct {
	previousOutputType *types.TypeInfo
	inherited          []shard.VariableUse

	exposed            []shard.VariableUse
	unresolvedRequired []shard.VariableUse

	flowStopper bool
}

// consumeExposed folds newly declared exposed variables into the
// running set, rejecting aliasing combinations (§4.5 step 3: "Ref
// implies borrow, Set/Push imply ownership; the combinations must not
// alias").
func (ctx *validationContext) consumeExposed(shardName string, index int, vars []shard.VariableUse) error {
vars:
	for _, v := range vars {
		for i, existing := range ctx.exposed {
			if existing.Name != v.Name {
				continue
			}
			if conflicts(existing.Kind, v.Kind) {
				return &Error{Shard: shardName, Index: index, Msg: fmt.Sprintf("exposed variable %q: %s conflicts with existing %s", v.Name, v.Kind, existing.Kind)}
			}
			// Non-conflicting re-exposure (e.g. repeated Ref)
			// updates the recorded type in place.
			ctx.exposed[i] = v
			continue vars
		}
		ctx.exposed = append(ctx.exposed, v)
	}
	return nil
}

// conflicts reports whether two exposure kinds for the same name
// alias in a way §4.5 forbids: a borrowing Ref may not coexist with
// an owning Set/Push/Update of the same name.
func conflicts(a, b shard.ExposureKind) bool {
	owning := func(k shard.ExposureKind) bool {
		return k == shard.Set || k == shard.Push || k == shard.Update
	}
	if a == shard.Ref && owning(b) {
		return true
	}
	if b == shard.Ref && owning(a) {
		return true
	}
	return false
}

// accumulateRequired resolves each required variable against exposed
// or inherited scope, tracking the unresolved subset and consulting
// onUnresolved for fatality (§4.5 step 3).
func (ctx *validationContext) accumulateRequired(vars []shard.VariableUse, onUnresolved OnUnresolvedRequired) {
	for _, v := range vars {
		if ctx.resolves(v) {
			continue
		}
		already := false
		for _, u := range ctx.unresolvedRequired {
			if u.Name == v.Name {
				already = true
				break
			}
		}
		if !already {
			ctx.unresolvedRequired = append(ctx.unresolvedRequired, v)
		}
		if onUnresolved != nil {
			onUnresolved(v)
		}
	}
}

func (ctx *validationContext) resolves(v shard.VariableUse) bool {
	m := types.Matcher{}
	for _, e := range ctx.exposed {
		if e.Name == v.Name && m.Match(v.Type, e.Type) {
			return true
		}
	}
	for _, e := range ctx.inherited {
		if e.Name == v.Name && m.Match(v.Type, e.Type) {
			return true
		}
	}
	return false
}
