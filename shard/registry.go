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
	"fmt"
	"sync"
)

// Constructor builds a fresh, zero-configured Shard instance (§6.3:
// "Single global registry of shards (name -> ctor)").
type Constructor func() Shard

var (
	mu    sync.RWMutex
	ctors = map[string]Constructor{}
	// inline holds the subset of registered names that are
	// well-known primitives eligible for the inline fast path (§4.4:
	// "The enum must be checked by name exactly once at registration
	// time").
	inline = map[string]bool{}
)

// Register adds fullName -> ctor to the process-wide shard registry.
// Registering the same name twice overwrites the previous entry,
// mirroring the C ABI's registerShard (§6.1), which has no notion of
// a duplicate-registration error.
func Register(fullName string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	ctors[fullName] = ctor
}

// RegisterInline is like Register but additionally marks fullName as
// an inline-fast-path primitive. The name is recorded once, at
// registration; IsInline(fullName) reports true on every later call.
func RegisterInline(fullName string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	ctors[fullName] = ctor
	inline[fullName] = true
}

// Create instantiates a fresh Shard by registered name.
func Create(fullName string) (Shard, error) {
	mu.RLock()
	ctor, ok := ctors[fullName]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("shard: unknown shard %q", fullName)
	}
	return ctor(), nil
}

// IsInline reports whether fullName was registered via
// RegisterInline.
func IsInline(fullName string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return inline[fullName]
}

// Registered lists every currently registered shard name, for
// diagnostics and tests.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(ctors))
	for name := range ctors {
		out = append(out, name)
	}
	return out
}
