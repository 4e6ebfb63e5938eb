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

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Strings covers §6.1's "String cache: readCachedString,
// writeCachedString, decompressStrings" and §6.3's "Global
// variant-string compressed-string cache (optional, enabled in
// release builds)". It is an opt-in id -> string intern table (a plain
// map; zstd is used only by DecompressStrings to bulk-load it), kept
// off the hot path (activation never
// allocates through it); a host enables it by calling WriteCachedString
// during warmup for the strings it expects to repeat often.
type Strings struct {
	mu      sync.RWMutex
	entries map[uint32]string
	dec     *zstd.Decoder
}

func newStrings() Strings {
	dec, _ := zstd.NewReader(nil)
	return Strings{entries: map[uint32]string{}, dec: dec}
}

// ReadCachedString returns the interned string for id, if present.
func (s *Strings) ReadCachedString(id uint32) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[id]
	return v, ok
}

// WriteCachedString installs or replaces the interned string for id.
func (s *Strings) WriteCachedString(id uint32, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = value
}

// DecompressStrings bulk-loads a zstd-compressed, newline-delimited
// string table (as produced alongside a release-build serialized
// blob), assigning sequential ids starting at firstID in table order.
func (s *Strings) DecompressStrings(compressed []byte, firstID uint32) error {
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := firstID
	start := 0
	for i, b := range raw {
		if b != '\n' {
			continue
		}
		s.entries[id] = string(raw[start:i])
		id++
		start = i + 1
	}
	if start < len(raw) {
		s.entries[id] = string(raw[start:])
	}
	return nil
}
