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

// Package serialize implements the big-structural variant wire format
// of spec.md §4.3, §6.2: a single Serialization object owning a
// wire-seen cache (keyed by content hash) and a shard-prototype
// cache (keyed by name), both bounded LRUs grounded on the teacher's
// own cache-sizing idiom.
package serialize

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/variant"
)

const defaultCacheSize = 256

// OverflowError is raised when a read exceeds the source buffer
// (§4.3: "Buffer readers raise 'Overflow requested' if a read exceeds
// the source length"; §7 Overflow).
type OverflowError struct {
	Requested int
	Available int
}

func (e *OverflowError) Error() string {
	return "serialize: overflow requested"
}

// Serialization owns the caches used to shorten repeated wire/shard
// encodes (§4.3).
type Serialization struct {
	seenWires      *lru.Cache[variant.Hash128, struct{}]
	shardPrototype *lru.Cache[string, shard.Shard]
}

// New builds a Serialization with the default cache sizes.
func New() *Serialization {
	seen, _ := lru.New[variant.Hash128, struct{}](defaultCacheSize)
	proto, _ := lru.New[string, shard.Shard](defaultCacheSize)
	return &Serialization{seenWires: seen, shardPrototype: proto}
}

// prototypeOf returns the freshly-constructed prototype instance used
// to diff a shard's parameters against their defaults (§4.3: "...that
// differ from a freshly-constructed instance of the same shard"),
// caching it across calls for the same name.
func (s *Serialization) prototypeOf(name string) (shard.Shard, error) {
	if p, ok := s.shardPrototype.Get(name); ok {
		return p, nil
	}
	p, err := shard.Create(name)
	if err != nil {
		return nil, err
	}
	s.shardPrototype.Add(name, p)
	return p, nil
}
