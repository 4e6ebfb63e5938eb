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

// Package abi is the Go-native stand-in for §6.1's C ABI: a single
// frozen struct of function values instead of a C function-pointer
// table, since this module has no cgo boundary to cross and Go
// closures already give every embedding host the same "one entry
// point, versioned" shape without unsafe.Pointer plumbing.
package abi

import (
	"fmt"

	"github.com/shards-run/shards/internal/globals"
	"github.com/shards-run/shards/mesh"
	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/variant"
	"github.com/shards-run/shards/wire"
)

// Version is the current ABI generation. A host embedding this module
// must request this exact value from New; any other value is treated
// like the original "abi_version mismatch returns null" rule.
const Version uint32 = 1

// VersionMismatchError is returned by New when the caller's requested
// version does not match Version.
type VersionMismatchError struct {
	Requested, Current uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("abi: version mismatch: requested %d, have %d", e.Requested, e.Current)
}

// Table is the full entry-point surface, grouped the way §6.1
// enumerates it.
type Table struct {
	Memory       Memory
	Registration Registration
	Variables    Variables
	FlowControl  FlowControl
	VariantOps   VariantOps
	ArrayOps     ArrayOps
	Containers   Containers
	WireMesh     WireMesh
	Async        Async
	Strings      Strings
}

// New builds the entry-point table, or fails if version does not
// match Version (§6.1: "Consumers must verify abi_version equals the
// current ABI constant; mismatch returns null").
func New(version uint32) (*Table, error) {
	if version != Version {
		return nil, &VersionMismatchError{Requested: version, Current: Version}
	}
	return &Table{
		Memory:       Memory{},
		Registration: Registration{},
		Variables:    Variables{},
		FlowControl:  FlowControl{},
		VariantOps:   VariantOps{},
		ArrayOps:     ArrayOps{},
		Containers:   Containers{},
		WireMesh:     WireMesh{},
		Async:        Async{},
		Strings:      newStrings(),
	}, nil
}

// Registration covers §6.1's "Registration: registerShard,
// registerObjectType, registerEnumType".
type Registration struct{}

func (Registration) RegisterShard(fullName string, ctor shard.Constructor) {
	shard.Register(fullName, ctor)
}

func (Registration) RegisterObjectType(id globals.ObjectTypeID, info globals.ObjectInfo) {
	globals.RegisterObjectType(id, info)
}

func (Registration) RegisterEnumType(id globals.ObjectTypeID, info globals.EnumInfo) {
	globals.RegisterEnumType(id, info)
}

// Variables covers §6.1's "Variable lookups & refcount:
// referenceVariable, releaseVariable, plus wire-local and external
// variants" — modeled against the owning Wire, since Go has no
// implicit "current wire" thread-local.
type Variables struct{}

func (Variables) Reference(w *wire.Wire, ctx *shctx.Context, name string) *variant.Var {
	return w.ReferenceVariable(ctx, name)
}

func (Variables) Release(w *wire.Wire, name string) {
	w.ReleaseVariable(name)
}

func (Variables) SetExternal(w *wire.Wire, name string, v *variant.Var) {
	w.SetExternal(name, v)
}

// FlowControl covers §6.1's "suspend, abortWire, getState".
type FlowControl struct{}

func (FlowControl) Suspend(ctx *shctx.Context, seconds float64) (shctx.FlowState, error) {
	return shctx.Suspend(ctx, seconds)
}

func (FlowControl) AbortWire(w *wire.Wire) { w.Stop() }

func (FlowControl) GetState(ctx *shctx.Context) shctx.FlowState { return ctx.State() }

// VariantOps covers §6.1's "cloneVar, destroyVar, hashVar, isEqualVar".
type VariantOps struct{}

func (VariantOps) Clone(dst, src *variant.Var) { variant.Clone(dst, src) }

func (VariantOps) Destroy(v *variant.Var) { variant.Destroy(v) }

func (VariantOps) Hash(v *variant.Var) variant.Hash128 { return variant.Hash(v) }

func (VariantOps) IsEqual(a, b *variant.Var) bool { return variant.Equal(a, b) }

// Containers covers §6.1's "Table/Set constructors and interfaces".
type Containers struct{}

func (Containers) NewTable() variant.Var { return variant.NewTable() }

func (Containers) NewTableOf(iface variant.TableInterface) variant.Var {
	return variant.TableOf(iface)
}

func (Containers) NewSet() variant.Var { return variant.NewSet() }

func (Containers) NewSetOf(iface variant.SetInterface) variant.Var {
	return variant.SetOf(iface)
}

// WireMesh covers §6.1's wire/mesh lifecycle entry points.
type WireMesh struct{}

func (WireMesh) CreateWire(name string) *wire.Wire { return wire.New(name) }

func (WireMesh) AddShard(w *wire.Wire, s shard.Shard) error { return w.AddShard(s) }

func (WireMesh) SetLooped(w *wire.Wire, v bool) { w.Looped = v }

func (WireMesh) SetUnsafe(w *wire.Wire, v bool) { w.Unsafe = v }

func (WireMesh) SetPure(w *wire.Wire, v bool) { w.Pure = v }

// DestroyWire is a no-op under Go's GC; kept for call-site symmetry
// with the original lifecycle (§6.1 destroyWire).
func (WireMesh) DestroyWire(*wire.Wire) {}

func (WireMesh) CreateMesh(cfg mesh.Config) *mesh.Mesh { return mesh.New(cfg) }

func (WireMesh) Schedule(m *mesh.Mesh, w *wire.Wire, data shard.InstanceData, input variant.Var) error {
	return m.Schedule(w, data, input)
}

func (WireMesh) Unschedule(m *mesh.Mesh, w *wire.Wire) { m.Unschedule(w) }

func (WireMesh) Tick(m *mesh.Mesh) bool { return m.Tick() }

func (WireMesh) IsEmpty(m *mesh.Mesh) bool { return m.IsEmpty() }

func (WireMesh) Terminate(m *mesh.Mesh) { m.Terminate() }

func (WireMesh) Compose(w *wire.Wire, data shard.InstanceData, inherited []shard.VariableUse, onUnresolved func(shard.VariableUse) bool) error {
	return w.Compose(data, inherited, onUnresolved)
}

// Async covers §6.1's "asyncActivate(ctx, userData, call, cancel)".
type Async struct{}

func (Async) ActivateAsync(ctx *shctx.Context, pool shctx.Pool, call func() (variant.Var, error), cancel func()) (variant.Var, error) {
	return shctx.Await(ctx, pool, call, cancel)
}
