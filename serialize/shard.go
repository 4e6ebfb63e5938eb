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

package serialize

import (
	"fmt"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/variant"
)

// ShardHashMismatchError is raised when a decoded shard's content
// hash disagrees with the hash reported by the live, registered
// implementation of the same name (§7 "reject incompatible
// serialized shards").
type ShardHashMismatchError struct {
	Name          string
	Expected, Got uint32
}

func (e *ShardHashMismatchError) Error() string {
	return fmt.Sprintf("serialize: shard %q hash mismatch: stream has %#x, registry has %#x", e.Name, e.Expected, e.Got)
}

// encodeShard writes name, content hash, then only the parameters
// that differ from a freshly-constructed prototype of the same shard
// (§4.3: "the parameters that differ from a freshly-constructed
// instance of the same shard").
func (s *Serialization) encodeShard(w *writer, sh shard.Shard) error {
	w.bytesWithLen([]byte(sh.Name()))
	w.u32(sh.Hash())

	proto, err := s.prototypeOf(sh.Name())
	if err != nil {
		return err
	}

	params := sh.Parameters()
	var changed []int
	for i := range params {
		cur, err := sh.GetParam(i)
		if err != nil {
			return err
		}
		def, err := proto.GetParam(i)
		if err != nil {
			return err
		}
		if !variant.Equal(&cur, &def) {
			changed = append(changed, i)
		}
	}

	w.u32(uint32(len(changed)))
	for _, i := range changed {
		w.u32(uint32(i))
		v, err := sh.GetParam(i)
		if err != nil {
			return err
		}
		if err := encodeValue(w, &v); err != nil {
			return err
		}
	}
	return nil
}

// decodeShard reads one shard back, instantiating it from the live
// registry and replaying its changed parameters (§4.3).
func (s *Serialization) decodeShard(r *reader) (shard.Shard, error) {
	nameBytes, err := r.bytesWithLen()
	if err != nil {
		return nil, err
	}
	name := string(nameBytes)

	wantHash, err := r.u32()
	if err != nil {
		return nil, err
	}

	sh, err := shard.Create(name)
	if err != nil {
		return nil, err
	}
	if got := sh.Hash(); got != wantHash {
		return nil, &ShardHashMismatchError{Name: name, Expected: wantHash, Got: got}
	}

	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		idx, err := r.u32()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(r)
		if err != nil {
			return nil, err
		}
		if err := sh.SetParam(int(idx), v); err != nil {
			return nil, err
		}
	}
	return sh, nil
}
