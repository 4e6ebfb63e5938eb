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

// Package compose implements the static composition pass over a
// pipeline of shards (spec.md §4.5): it walks the shard list once,
// threading the output type of each shard into the next's input
// check, accumulating exposed/required variables, and freezing the
// wire's overall input/output types.
package compose

import (
	"fmt"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// Error is the concrete ComposeError kind from §7: "Composition
// fails: type mismatch, missing required var, conflicting exposed
// var, invalid param."
type Error struct {
	Shard string
	Index int
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("compose: shard %q (#%d): %s", e.Shard, e.Index, e.Msg)
}

// OnUnresolvedRequired is invoked for every required variable that
// compose could not resolve against exposed/inherited scope. Returning
// true makes the unresolved reference fatal (§4.5 step 3: "unresolved
// is a warning - the callback decides fatality").
type OnUnresolvedRequired func(v shard.VariableUse) (fatal bool)

// Result is the outcome of composing one wire's shard pipeline.
type Result struct {
	InputType   *types.TypeInfo
	OutputType  *types.TypeInfo
	Exposed     []shard.VariableUse
	Required    []shard.VariableUse
	FlowStopper bool
}

// passThroughNames identifies shards whose compose step should see
// the wire's *original* input type rather than the running
// previousOutputType (§4.5 step 3: "If the shard is the special
// pass-through And/Or, use originalInputType; if it is Input, use the
// wire's declared input type").
var passThroughNames = map[string]bool{"And": true, "Or": true}

// flowStopperNames are shards whose presence as the last pipeline
// element marks the wire as a flow stopper (§4.5 step 4).
var flowStopperNames = map[string]bool{"Restart": true, "Return": true, "Fail": true, "Stop": true}

// Compose runs the algorithm of §4.5 over shards, which must already
// be in pipeline order. inherited is the variable scope visible to
// every shard before any of them run (data.shared + external
// variables + mesh-level metadata, per step 2).
func Compose(shards []shard.Shard, data shard.InstanceData, inherited []shard.VariableUse, onUnresolved OnUnresolvedRequired) (*Result, error) {
	originalInput := data.InputType
	if originalInput == nil {
		originalInput = types.AnyType()
	}

	ctx := &validationContext{
		previousOutputType: originalInput,
		inherited:          cloneUses(inherited),
	}

	for i, s := range shards {
		name := s.Name()

		var effectiveInput *types.TypeInfo
		switch {
		case passThroughNames[name]:
			effectiveInput = originalInput
		case name == "Input":
			effectiveInput = originalInput
		default:
			effectiveInput = ctx.previousOutputType
		}

		if !matchesAnyInput(effectiveInput, s.InputTypes()) {
			return nil, &Error{Shard: name, Index: i, Msg: fmt.Sprintf("input type %v not accepted", effectiveInput.Tag)}
		}

		var nextInputs []*types.TypeInfo
		if i+1 < len(shards) {
			nextInputs = shards[i+1].InputTypes()
		}

		out, err := composeOutput(s, data, i, effectiveInput, nextInputs)
		if err != nil {
			return nil, err
		}
		ctx.previousOutputType = out

		if err := ctx.consumeExposed(name, i, s.ExposedVariables()); err != nil {
			return nil, err
		}
		var fatal error
		ctx.accumulateRequired(s.RequiredVariables(), func(v shard.VariableUse) bool {
			if onUnresolved == nil || !onUnresolved(v) {
				return false
			}
			if fatal == nil {
				fatal = &Error{Shard: name, Index: i, Msg: fmt.Sprintf("required variable %q unresolved", v.Name)}
			}
			return true
		})
		if fatal != nil {
			return nil, fatal
		}

		if i == len(shards)-1 {
			ctx.flowStopper = flowStopperNames[name]
		}
	}

	return &Result{
		InputType:   originalInput,
		OutputType:  ctx.previousOutputType,
		Exposed:     ctx.exposed,
		Required:    ctx.unresolvedRequired,
		FlowStopper: ctx.flowStopper,
	}, nil
}

// composeOutput resolves the output type a shard instance freezes at
// this pipeline position. nextInputs is the declared input-type set
// of the following shard (empty at the end of the pipeline); it is
// threaded into data.OutputTypes so a Composer can consult the
// downstream shard's accepted inputs when more than one output is
// possible, and gives the no-Composer case a fallback when a shard
// declares several candidate output types (§4.5 step 3).
func composeOutput(s shard.Shard, data shard.InstanceData, index int, effectiveInput *types.TypeInfo, nextInputs []*types.TypeInfo) (*types.TypeInfo, error) {
	outs := s.OutputTypes()

	if composer, ok := s.(shard.Composer); ok {
		d := data
		d.InputType = effectiveInput
		d.OutputTypes = nextInputs
		out, err := composer.Compose(d)
		if err != nil {
			return nil, &Error{Shard: s.Name(), Index: index, Msg: err.Error()}
		}
		return out, nil
	}

	if len(outs) == 1 {
		return outs[0], nil
	}

	if len(outs) > 1 && len(nextInputs) > 0 {
		m := types.Matcher{}
		for _, next := range nextInputs {
			for _, cand := range outs {
				if m.Match(next, cand) {
					return cand, nil
				}
			}
		}
	}

	return nil, &Error{Shard: s.Name(), Index: index, Msg: "multiple output types declared but Compose not implemented"}
}

// matchesAnyInput implements §4.5 step 3's "validate that
// previousOutputType matches one of the shard's declared inputs
// (taking None as 'always matches')".
func matchesAnyInput(have *types.TypeInfo, wants []*types.TypeInfo) bool {
	m := types.Matcher{}
	for _, want := range wants {
		if want == nil {
			continue
		}
		if want.Tag == variant.None || m.Match(want, have) {
			return true
		}
	}
	return len(wants) == 0
}

func cloneUses(in []shard.VariableUse) []shard.VariableUse {
	out := make([]shard.VariableUse, len(in))
	copy(out, in)
	return out
}
