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

// Package wire implements the ordered shard pipeline and its
// Stopped->Prepared->Starting->Iterating<->IterationEnded->Ended/
// Failed/Stopped state machine (spec.md §3.4, §4.7).
package wire

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/shards-run/shards/compose"
	"github.com/shards-run/shards/fiber"
	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/trait"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// State is the wire lifecycle state machine of §3.4.
type State int

const (
	Stopped State = iota
	Prepared
	Starting
	Iterating
	IterationEnded
	Ended
	Failed
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Prepared:
		return "Prepared"
	case Starting:
		return "Starting"
	case Iterating:
		return "Iterating"
	case IterationEnded:
		return "IterationEnded"
	case Ended:
		return "Ended"
	case Failed:
		return "Failed"
	default:
		return "State(invalid)"
	}
}

// Scope is the weak-reference surface a wire needs from its hosting
// mesh (step 2-3 of referenceVariable in §4.7). Kept as an interface
// here, implemented structurally by *mesh.Mesh, so package wire never
// imports package mesh — mesh already imports wire to hold and tick
// scheduled wires, and a wire -> mesh edge would cycle back through
// it.
type Scope interface {
	Variable(name string) (*variant.Var, bool)
	CreateVariable(name string) *variant.Var
	Ref(name string) (*variant.Var, bool)
}

// Listeners holds the lifecycle hooks of §3.4: "OnStart, OnStop,
// OnCleanup, OnError, OnDetached, OnComposed, OnUpdate".
type Listeners struct {
	OnStart    []func(*Wire)
	OnStop     []func(*Wire)
	OnCleanup  []func(*Wire)
	OnError    []func(*Wire, error)
	OnDetached []func(*Wire)
	OnComposed []func(*Wire)
	OnUpdate   []func(*Wire)
}

func (l *Listeners) fire(hooks []func(*Wire), w *Wire) {
	for _, h := range hooks {
		h(w)
	}
}

func (l *Listeners) fireErr(hooks []func(*Wire, error), w *Wire, err error) {
	for _, h := range hooks {
		h(w, err)
	}
}

var idCounter atomic.Uint64

// Wire is a pipeline of shards plus the scheduling/state metadata of
// §3.4.
type Wire struct {
	Name    string
	ID      uint64
	DebugID string

	Looped   bool
	Unsafe   bool
	Pure     bool
	IsRoot   bool
	Detached bool

	Traits []trait.Trait

	Listeners Listeners

	shards []shard.Shard

	state State

	fiber *fiber.Fiber
	ctx   *shctx.Context

	input          variant.Var
	output         variant.Var
	finishedOutput variant.Var
	finishedError  string

	vars     map[string]*variant.Var
	varRefs  map[string]int
	external map[string]*variant.Var

	mesh Scope

	inputType  *types.TypeInfo
	outputType *types.TypeInfo
	exposed    []shard.VariableUse
	required   []shard.VariableUse

	composing atomic.Bool
	composed  bool
}

// New creates an empty, Stopped wire named name.
func New(name string) *Wire {
	return &Wire{
		Name:    name,
		ID:      idCounter.Add(1),
		DebugID: uuid.NewString(),
		vars:    map[string]*variant.Var{},
		varRefs: map[string]int{},
	}
}

// AddShard appends s to the pipeline. Edits are only valid while the
// wire is Stopped (§4.7 "addShard*... edits allowed only while
// Stopped").
func (w *Wire) AddShard(s shard.Shard) error {
	if w.state != Stopped {
		return fmt.Errorf("wire %q: cannot add shard while in state %s", w.Name, w.state)
	}
	w.shards = append(w.shards, s)
	return nil
}

// Shards returns the pipeline in declared order.
func (w *Wire) Shards() []shard.Shard { return w.shards }

// State returns the current lifecycle state.
func (w *Wire) State() State { return w.state }

// SetMesh attaches the weak backref to the hosting mesh (§4.9
// schedule step 2).
func (w *Wire) SetMesh(m Scope) { w.mesh = m }

// InputType/OutputType return the types frozen by the most recent
// Compose call.
func (w *Wire) InputType() *types.TypeInfo  { return w.inputType }
func (w *Wire) OutputType() *types.TypeInfo { return w.outputType }

// ExposedVariable implements trait.Satisfier.
func (w *Wire) ExposedVariable(name string) (*types.TypeInfo, bool) {
	for _, e := range w.exposed {
		if e.Name == name {
			return e.Type, true
		}
	}
	return nil, false
}

// Compose runs the composition pass of §4.5 against this wire's
// shard pipeline, freezing InputType/OutputType on success. It is
// guarded by an atomic bit against re-entry (§4.5: "guarded by a
// composing atomic bit to prevent re-entry").
func (w *Wire) Compose(data shard.InstanceData, inherited []shard.VariableUse, onUnresolved compose.OnUnresolvedRequired) error {
	if !w.composing.CompareAndSwap(false, true) {
		return fmt.Errorf("wire %q: reentrant compose", w.Name)
	}
	defer w.composing.Store(false)

	data.Wire = w
	res, err := compose.Compose(w.shards, data, inherited, onUnresolved)
	if err != nil {
		return err
	}

	w.inputType = res.InputType
	w.outputType = res.OutputType
	w.exposed = res.Exposed
	w.required = res.Required
	w.composed = true

	w.Listeners.fire(w.Listeners.OnComposed, w)
	return nil
}

// FinishedOutput/FinishedError persist across stop/reset, cleared
// only by the next Prepare (§3.4).
func (w *Wire) FinishedOutput() variant.Var { return w.finishedOutput }
func (w *Wire) FinishedError() string       { return w.finishedError }
