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

	"github.com/klauspost/compress/zstd"

	"github.com/shards-run/shards/trait"
	"github.com/shards-run/shards/variant"
	"github.com/shards-run/shards/wire"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

const (
	magic uint32 = 0x53524853 // "SHRS"

	kindBackReference uint8 = 0
	kindRaw           uint8 = 1
	kindCompressed    uint8 = 2
)

// EncodeWire serializes w's static definition (name and flags,
// shard list, exposed trait set) to the §6.2 wire format. A wire
// already seen by this Serialization (by content hash) is written as
// a short back-reference instead of a full body, the "wire-seen
// cache" of §4.3.
func (s *Serialization) EncodeWire(w *wire.Wire, compress bool) ([]byte, error) {
	body := &writer{}
	body.bytesWithLen([]byte(w.Name))
	body.u8(boolFlags(w))

	shards := w.Shards()
	body.u32(uint32(len(shards)))
	for _, sh := range shards {
		if err := s.encodeShard(body, sh); err != nil {
			return nil, err
		}
	}

	body.u32(uint32(len(w.Traits)))
	for _, tr := range w.Traits {
		encodeTrait(body, tr)
	}

	raw := body.Bytes()
	contentHash := variant.Hash(&variant.Var{Tag: variant.Bytes, Payload: variant.NewBuffer(raw)})

	out := &writer{}
	out.u32(magic)

	if s.seenWires != nil {
		if _, ok := s.seenWires.Get(contentHash); ok {
			out.u8(kindBackReference) // body omitted, hash suffices
			out.u64(contentHash[0])
			out.u64(contentHash[1])
			return out.Bytes(), nil
		}
		s.seenWires.Add(contentHash, struct{}{})
	}

	if !compress {
		out.u8(kindRaw)
		out.u64(contentHash[0])
		out.u64(contentHash[1])
		out.bytesWithLen(raw)
		return out.Bytes(), nil
	}

	out.u8(kindCompressed)
	out.u64(contentHash[0])
	out.u64(contentHash[1])
	out.bytesWithLen(zstdEncoder.EncodeAll(raw, nil))
	return out.Bytes(), nil
}

func boolFlags(w *wire.Wire) uint8 {
	var f uint8
	if w.Looped {
		f |= 1 << 0
	}
	if w.Unsafe {
		f |= 1 << 1
	}
	if w.Pure {
		f |= 1 << 2
	}
	if w.IsRoot {
		f |= 1 << 3
	}
	if w.Detached {
		f |= 1 << 4
	}
	return f
}

func encodeTrait(w *writer, tr trait.Trait) {
	w.bytesWithLen([]byte(tr.Name))
	w.u32(uint32(len(tr.Variables)))
	for _, v := range tr.Variables {
		w.bytesWithLen([]byte(v.Name))
		encodeType(w, v.Type)
	}
}

func decodeTrait(r *reader) (trait.Trait, error) {
	nameBytes, err := r.bytesWithLen()
	if err != nil {
		return trait.Trait{}, err
	}
	n, err := r.u32()
	if err != nil {
		return trait.Trait{}, err
	}
	vars := make([]trait.Variable, n)
	for i := range vars {
		vn, err := r.bytesWithLen()
		if err != nil {
			return trait.Trait{}, err
		}
		vt, err := decodeType(r)
		if err != nil {
			return trait.Trait{}, err
		}
		vars[i] = trait.Variable{Name: string(vn), Type: vt}
	}
	return trait.New(string(nameBytes), vars...), nil
}

func applyBoolFlags(w *wire.Wire, f uint8) {
	w.Looped = f&(1<<0) != 0
	w.Unsafe = f&(1<<1) != 0
	w.Pure = f&(1<<2) != 0
	w.IsRoot = f&(1<<3) != 0
	w.Detached = f&(1<<4) != 0
}

// DecodeWire is the inverse of EncodeWire. cacheLookup resolves a
// back-reference hash to a previously-decoded wire; callers that
// never decode back-reference streams (e.g. tests) may pass nil, since
// raw and compressed bodies are decoded without it.
func (s *Serialization) DecodeWire(data []byte, cacheLookup func(variant.Hash128) (*wire.Wire, bool)) (*wire.Wire, error) {
	r := newReader(data)
	gotMagic, err := r.u32()
	if err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("serialize: bad magic %#x", gotMagic)
	}

	kind, err := r.u8()
	if err != nil {
		return nil, err
	}

	hashLo, err := r.u64()
	if err != nil {
		return nil, err
	}
	hashHi, err := r.u64()
	if err != nil {
		return nil, err
	}
	contentHash := variant.Hash128{hashLo, hashHi}

	if kind == kindBackReference {
		if cacheLookup == nil {
			return nil, fmt.Errorf("serialize: back-reference %v with no cache lookup available", contentHash)
		}
		w, ok := cacheLookup(contentHash)
		if !ok {
			return nil, fmt.Errorf("serialize: unresolved wire back-reference %v", contentHash)
		}
		return w, nil
	}

	payload, err := r.bytesWithLen()
	if err != nil {
		return nil, err
	}

	if kind == kindCompressed {
		decompressed, err := zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, err
		}
		payload = decompressed
	}

	body := newReader(payload)
	nameBytes, err := body.bytesWithLen()
	if err != nil {
		return nil, err
	}
	flags, err := body.u8()
	if err != nil {
		return nil, err
	}

	out := wire.New(string(nameBytes))
	applyBoolFlags(out, flags)

	n, err := body.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		sh, err := s.decodeShard(body)
		if err != nil {
			return nil, err
		}
		if err := out.AddShard(sh); err != nil {
			return nil, err
		}
	}

	nTraits, err := body.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nTraits; i++ {
		tr, err := decodeTrait(body)
		if err != nil {
			return nil, err
		}
		out.Traits = append(out.Traits, tr)
	}

	if s.seenWires != nil {
		s.seenWires.Add(contentHash, struct{}{})
	}
	return out, nil
}
