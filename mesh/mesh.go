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

// Package mesh implements the single-threaded wire scheduler of
// spec.md §3.6, §4.9: a mesh owns a set of scheduled wires, ticks
// them in insertion order on its own goroutine, and acts as the
// outermost variable scope once a wire's own/external scopes are
// exhausted.
package mesh

import (
	"fmt"
	"sync"

	"github.com/shards-run/shards/events"
	"github.com/shards-run/shards/internal/shlog"
	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/variant"
	"github.com/shards-run/shards/wire"
)

// ExposedTypeInfo mirrors §4.9's "SHExposedTypeInfo": metadata
// attached to a mesh-level variable describing its declared type and
// mutability.
type ExposedTypeInfo struct {
	Name      string
	Type      any // *types.TypeInfo; kept as any to avoid a mesh->types import for this metadata-only field
	IsMutable bool
}

// Config configures a Mesh (ambient stack: loaded from YAML via
// sigs.k8s.io/yaml, matching the teacher's config-loading idiom).
type Config struct {
	Label string `json:"label" yaml:"label"`
}

// flow is one scheduled wire's running record (§3.6 "Pool of Flow
// records").
type flow struct {
	w *wire.Wire
}

// Mesh is the wire scheduler of §3.6.
type Mesh struct {
	Label string

	Parent *Mesh

	mu sync.Mutex

	flows     []*flow
	scheduled map[*wire.Wire]bool

	vars     map[string]*variant.Var
	refs     map[string]*variant.Var
	varMeta  map[string]ExposedTypeInfo

	dispatchers map[string]*events.Dispatcher
}

// New constructs an empty Mesh.
func New(cfg Config) *Mesh {
	return &Mesh{
		Label:     cfg.Label,
		scheduled: map[*wire.Wire]bool{},
		vars:      map[string]*variant.Var{},
		refs:      map[string]*variant.Var{},
		varMeta:   map[string]ExposedTypeInfo{},
	}
}

// dispatcher returns (creating if absent) the named lifecycle event
// dispatcher for this mesh (§4.9 "Event bus").
func (m *Mesh) dispatcher(name string) *events.Dispatcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dispatchers == nil {
		m.dispatchers = map[string]*events.Dispatcher{}
	}
	d, ok := m.dispatchers[name]
	if !ok {
		d = events.Get(fmt.Sprintf("mesh:%p:%s", m, name))
		m.dispatchers[name] = d
	}
	return d
}

// Trigger fires name synchronously on this mesh's dispatcher.
func (m *Mesh) Trigger(name string, payload any) {
	m.dispatcher(name).Trigger(payload)
}

// On subscribes h to name on this mesh's dispatcher.
func (m *Mesh) On(name string, h events.Handler) (unsubscribe func()) {
	return m.dispatcher(name).Subscribe(h)
}

// Variable implements wire.Scope: the mesh's own variable scope
// (§4.7 lookup step 2).
func (m *Mesh) Variable(name string) (*variant.Var, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vars[name]
	return v, ok
}

// CreateVariable implements wire.Scope by creating name in the mesh's
// own scope.
func (m *Mesh) CreateVariable(name string) *variant.Var {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vars[name]
	if !ok {
		nv := variant.NewNone()
		v = &nv
		m.vars[name] = v
	}
	return v
}

// Ref implements wire.Scope: the mesh's refs map, for references into
// other meshes or externally injected variables (§4.7 lookup step 3).
func (m *Mesh) Ref(name string) (*variant.Var, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.refs[name]
	return v, ok
}

// SetRef installs an externally-owned reference variable.
func (m *Mesh) SetRef(name string, v *variant.Var) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[name] = v
}

// DeclareVariableType records metadata for a mesh-level variable,
// warning (not failing) on conflicting redeclaration (§4.9 "Variable
// metadata").
func (m *Mesh) DeclareVariableType(info ExposedTypeInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.varMeta[info.Name]; ok && existing != info {
		shlog.L().Warnw("mesh: conflicting exposed variable metadata", "mesh", m.Label, "name", info.Name)
	}
	m.varMeta[info.Name] = info
}

// Schedule implements §4.9 schedule(wire): attaches the wire, runs
// composition, prepares its fiber, and starts it with input.
// Composition always runs; there is no option to skip it.
func (m *Mesh) Schedule(w *wire.Wire, data shard.InstanceData, input variant.Var) error {
	m.mu.Lock()
	if m.scheduled[w] {
		m.mu.Unlock()
		return fmt.Errorf("mesh: wire %q already scheduled", w.Name)
	}
	m.mu.Unlock()

	w.SetMesh(m)

	if err := w.Compose(data, nil, nil); err != nil {
		return fmt.Errorf("mesh: compose wire %q: %w", w.Name, err)
	}
	if err := w.Prepare(); err != nil {
		return err
	}
	if err := w.Start(input); err != nil {
		return err
	}

	m.mu.Lock()
	m.scheduled[w] = true
	m.flows = append(m.flows, &flow{w: w})
	m.mu.Unlock()
	return nil
}

// Unschedule removes w from the flow pool without ticking it further,
// stopping it first if still running.
func (m *Mesh) Unschedule(w *wire.Wire) {
	if w.Running() {
		w.Stop()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scheduled, w)
	for i, f := range m.flows {
		if f.w == w {
			m.flows = append(m.flows[:i], m.flows[i+1:]...)
			break
		}
	}
}

// IsEmpty reports whether the mesh currently has no scheduled wires.
func (m *Mesh) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows) == 0
}

// Terminate implements §4.9 terminate(): stops every scheduled wire,
// then clears all mesh-owned state.
func (m *Mesh) Terminate() {
	m.mu.Lock()
	flows := make([]*flow, len(m.flows))
	copy(flows, m.flows)
	m.mu.Unlock()

	for _, f := range flows {
		f.w.Stop()
	}

	m.mu.Lock()
	for _, v := range m.vars {
		variant.Destroy(v)
	}
	m.vars = map[string]*variant.Var{}
	m.refs = map[string]*variant.Var{}
	m.flows = nil
	m.scheduled = map[*wire.Wire]bool{}
	m.mu.Unlock()
}
