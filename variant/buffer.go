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

package variant

// Buffer is the shared payload for String, Path, ContextVar and Bytes
// (§3.1): a length-and-capacity byte buffer so that cloning into an
// existing destination can reuse its backing array instead of
// reallocating (§4.1 invariant 3, §8.3 "string clone" boundary case).
type Buffer struct {
	Data []byte
}

// NewBuffer copies s into a fresh Buffer.
func NewBuffer(s []byte) *Buffer {
	b := &Buffer{Data: make([]byte, len(s))}
	copy(b.Data, s)
	return b
}

// String returns the buffer's contents as a string (a copy).
func (b *Buffer) String() string {
	if b == nil {
		return ""
	}
	return string(b.Data)
}

// NulTerminated returns the buffer's contents followed by a single
// zero byte, without mutating b. It models the "terminating NUL
// exists at ptr[len]" invariant for code that crosses the C ABI
// boundary (§3.1, §6.1); pure-Go callers never need it.
func (b *Buffer) NulTerminated() []byte {
	out := make([]byte, len(b.Data)+1)
	copy(out, b.Data)
	return out
}

// cloneInto reuses dst's backing array when it already has enough
// capacity, matching the teacher's "happy path" clone rule.
func (b *Buffer) cloneInto(src *Buffer) {
	if cap(b.Data) >= len(src.Data) {
		b.Data = b.Data[:len(src.Data)]
	} else {
		b.Data = make([]byte, len(src.Data))
	}
	copy(b.Data, src.Data)
}
