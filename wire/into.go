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

package wire

import "github.com/shards-run/shards/shard"

// Into coerces a bare shard list into an anonymous single-use wire,
// grounded on original_source/shards/core/into_wire.hpp: composite
// shards that take a sub-pipeline parameter (e.g. a branch's "Then"
// shards) accept either an already-built *Wire or a raw []shard.Shard
// literal, and promote the latter through Into before scheduling or
// running it inline.
func Into(v any) (*Wire, error) {
	switch x := v.(type) {
	case *Wire:
		return x, nil
	case []shard.Shard:
		w := New("<anonymous>")
		for _, s := range x {
			if err := w.AddShard(s); err != nil {
				return nil, err
			}
		}
		return w, nil
	case shard.Shard:
		w := New("<anonymous>")
		if err := w.AddShard(x); err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, errIntoUnsupported
	}
}

var errIntoUnsupported = intoError{}

type intoError struct{}

func (intoError) Error() string {
	return "wire: value is not a *Wire, shard.Shard, or []shard.Shard"
}
