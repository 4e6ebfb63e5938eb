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
	"github.com/shards-run/shards/internal/globals"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// encodeType writes t's full structure (§3.2), recursively. A nil
// pointer is written as a single zero byte.
func encodeType(w *writer, t *types.TypeInfo) {
	if t == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.u8(uint8(t.Tag))
	w.u32(uint32(t.FixedSize))
	w.u32(uint32(t.ObjectID.Vendor))
	w.u32(uint32(t.ObjectID.Type))

	w.u32(uint32(len(t.SeqTypes)))
	for _, s := range t.SeqTypes {
		encodeType(w, s)
	}

	w.u32(uint32(len(t.TableValues)))
	for i, v := range t.TableValues {
		var k *types.TypeInfo
		if i < len(t.TableKeys) {
			k = t.TableKeys[i]
		}
		encodeType(w, k)
		encodeType(w, v)
	}

	w.u32(uint32(len(t.ContextVarTypes)))
	for _, c := range t.ContextVarTypes {
		encodeType(w, c)
	}

	encodeType(w, t.Nested)
	encodeType(w, t.ArrayInner)
}

// decodeType is the inverse of encodeType.
func decodeType(r *reader) (*types.TypeInfo, error) {
	present, err := r.u8()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}

	tagByte, err := r.u8()
	if err != nil {
		return nil, err
	}
	t := types.New(variant.Tag(tagByte))

	fixedSize, err := r.u32()
	if err != nil {
		return nil, err
	}
	t.FixedSize = int(fixedSize)

	vendor, err := r.u32()
	if err != nil {
		return nil, err
	}
	typ, err := r.u32()
	if err != nil {
		return nil, err
	}
	t.ObjectID = globals.ObjectTypeID{Vendor: int32(vendor), Type: int32(typ)}

	nSeq, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nSeq; i++ {
		st, err := decodeType(r)
		if err != nil {
			return nil, err
		}
		t.SeqTypes = append(t.SeqTypes, st)
	}

	nTable, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nTable; i++ {
		k, err := decodeType(r)
		if err != nil {
			return nil, err
		}
		v, err := decodeType(r)
		if err != nil {
			return nil, err
		}
		t.TableKeys = append(t.TableKeys, k)
		t.TableValues = append(t.TableValues, v)
	}

	nCtx, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nCtx; i++ {
		ct, err := decodeType(r)
		if err != nil {
			return nil, err
		}
		t.ContextVarTypes = append(t.ContextVarTypes, ct)
	}

	nested, err := decodeType(r)
	if err != nil {
		return nil, err
	}
	t.Nested = nested

	arrayInner, err := decodeType(r)
	if err != nil {
		return nil, err
	}
	t.ArrayInner = arrayInner

	return t, nil
}
