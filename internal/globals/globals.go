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

// Package globals holds the process-singleton state described in
// spec.md §6.3: object/enum type registries, the set of globally
// named wires, run-loop exit hooks, and the SIGINT/SIGTERM counter
// that every mesh consults on tick.
//
// Everything here except the signal counter is mutated under a single
// mutex; the signal counter is an atomic. None of it is on any hot
// path.
package globals

import (
	"sync"
	"sync/atomic"
)

// ObjectTypeID identifies an Object variant's vtable registration, a
// (vendor, type) pair per §3.1.
type ObjectTypeID struct {
	Vendor int32
	Type   int32
}

// ObjectInfo is the vtable attached to Object variants of a given
// (vendor, type), mirrored from §3.1's Object tag description.
type ObjectInfo struct {
	Serialize     func(ptr any) ([]byte, error)
	Deserialize   func(data []byte) (any, error)
	Hash          func(ptr any) uint64
	Match         func(a, b any) bool
	Reference     func(ptr any)
	Release       func(ptr any)
	WeakReference func(ptr any)
	WeakRelease   func(ptr any)
	BeforeDelete  func(ptr any)
	IsThreadSafe  bool
}

// EnumInfo describes a registered enum vendor/type pair's label set,
// used by serialization and diagnostics to print enum values by name.
type EnumInfo struct {
	Labels map[int32]string
}

var (
	mu          sync.Mutex
	objectTypes = map[ObjectTypeID]ObjectInfo{}
	enumTypes   = map[ObjectTypeID]EnumInfo{}
	globalWires = map[string]any{} // name -> *wire.Wire, stored as any to avoid an import cycle
	exitHooks   []func()

	// sigCount is incremented once per observed SIGINT/SIGTERM;
	// meshes self-terminate once it reaches terminateThreshold (§6.3).
	sigCount atomic.Int64
)

const terminateThreshold = 5

// RegisterObjectType installs the vtable for (vendor, type). A
// second registration for the same id overwrites the first, matching
// the C ABI's registerObjectType semantics (last writer wins; callers
// are expected to register once at startup).
func RegisterObjectType(id ObjectTypeID, info ObjectInfo) {
	mu.Lock()
	defer mu.Unlock()
	objectTypes[id] = info
}

// ObjectType looks up a previously registered object vtable.
func ObjectType(id ObjectTypeID) (ObjectInfo, bool) {
	mu.Lock()
	defer mu.Unlock()
	info, ok := objectTypes[id]
	return info, ok
}

// RegisterEnumType installs the label set for (vendor, type).
func RegisterEnumType(id ObjectTypeID, info EnumInfo) {
	mu.Lock()
	defer mu.Unlock()
	enumTypes[id] = info
}

// EnumType looks up a previously registered enum label set.
func EnumType(id ObjectTypeID) (EnumInfo, bool) {
	mu.Lock()
	defer mu.Unlock()
	info, ok := enumTypes[id]
	return info, ok
}

// SetGlobalWire exposes a named wire for cross-mesh lookup (e.g. a
// shard that invokes "the wire named X" regardless of which mesh
// scheduled it).
func SetGlobalWire(name string, w any) {
	mu.Lock()
	defer mu.Unlock()
	globalWires[name] = w
}

// GlobalWire returns a previously registered global wire by name.
func GlobalWire(name string) (any, bool) {
	mu.Lock()
	defer mu.Unlock()
	w, ok := globalWires[name]
	return w, ok
}

// RemoveGlobalWire drops a wire's global name.
func RemoveGlobalWire(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(globalWires, name)
}

// OnExit registers a hook invoked by Shutdown, in registration order.
func OnExit(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	exitHooks = append(exitHooks, fn)
}

// Shutdown runs every registered exit hook and clears the registry.
// It does not touch the signal counter.
func Shutdown() {
	mu.Lock()
	hooks := exitHooks
	exitHooks = nil
	mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// NoteSignal increments the process-wide SIGINT/SIGTERM counter. It
// is installed as the os/signal handler by cmd/shardsmesh; tests can
// call it directly to simulate repeated signals.
func NoteSignal() {
	sigCount.Add(1)
}

// SignalCount returns the number of signals observed so far.
func SignalCount() int64 {
	return sigCount.Load()
}

// ShouldTerminate reports whether enough signals have accumulated
// that a mesh should stop ticking and self-terminate (§6.3: "after
// >=5 signals").
func ShouldTerminate() bool {
	return sigCount.Load() >= terminateThreshold
}

// ResetSignals clears the signal counter; exposed for tests that
// schedule multiple meshes in one process.
func ResetSignals() {
	sigCount.Store(0)
}
