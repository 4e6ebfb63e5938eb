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

package abi

// alignment matches §6.1's "Memory: alloc, free (aligned to 16
// bytes)" — Go's allocator already aligns any slice backing array at
// least this much for the sizes this module allocates, so Alloc just
// rounds the requested size up and lets the runtime do the rest; Free
// is a no-op kept for call-site symmetry with the original lifecycle.
const alignment = 16

// Memory covers §6.1's "alloc, free (aligned to 16 bytes)". Go has no
// manual memory management, so this is scratch-buffer sizing only:
// hosts that need a pooled allocator should wrap Table themselves.
type Memory struct{}

// Alloc returns a zeroed scratch buffer at least size bytes long,
// padded so its length is a multiple of alignment.
func (Memory) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	padded := ((size + alignment - 1) / alignment) * alignment
	return make([]byte, padded)
}

// Free is a no-op under Go's garbage collector.
func (Memory) Free([]byte) {}
