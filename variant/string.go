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

// NewString constructs a String variant.
func NewString(s string) Var {
	return Var{Tag: String, Payload: NewBuffer([]byte(s))}
}

// NewPath constructs a Path variant.
func NewPath(s string) Var {
	return Var{Tag: Path, Payload: NewBuffer([]byte(s))}
}

// NewContextVar constructs a ContextVar variant: a Var that names a
// variable to be resolved against a scope, rather than carrying a
// value directly (§3.1).
func NewContextVar(name string) Var {
	return Var{Tag: ContextVar, Payload: NewBuffer([]byte(name))}
}

// NewBytes constructs a Bytes variant.
func NewBytes(b []byte) Var {
	return Var{Tag: Bytes, Payload: NewBuffer(b)}
}

// Buf returns the underlying Buffer for String/Path/ContextVar/Bytes
// variants, or nil otherwise.
func (v *Var) Buf() *Buffer {
	b, _ := v.Payload.(*Buffer)
	return b
}

// Str is a convenience accessor equivalent to v.Buf().String().
func (v *Var) Str() string {
	if b := v.Buf(); b != nil {
		return b.String()
	}
	return ""
}
