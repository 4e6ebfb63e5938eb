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

	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

// innerTypeInfo narrows a variant.TypeDescriptor down to the concrete
// *types.TypeInfo that encodeType knows how to serialize. Any other
// implementation (there is only one in this module) encodes as
// absent, matching encodeType(w, nil)'s single-byte marker.
func innerTypeInfo(td variant.TypeDescriptor) *types.TypeInfo {
	t, _ := td.(*types.TypeInfo)
	return t
}

// UnserializableError reports a handle-carrying tag (Wire, ShardRef,
// Object, Trait, Type) that cannot cross the wire format: §6.2 only
// defines an encoding for data values, not live process handles.
type UnserializableError struct {
	Tag variant.Tag
}

func (e *UnserializableError) Error() string {
	return fmt.Sprintf("serialize: %s cannot be serialized (handle tags do not cross the wire format)", e.Tag)
}

// encodeValue appends v's wire encoding to w, per §6.2's value
// grammar: a one-byte tag followed by a tag-specific payload.
func encodeValue(w *writer, v *variant.Var) error {
	w.u8(uint8(v.Tag))

	switch {
	case v.Tag == variant.None || v.Tag == variant.Any:
		return nil

	case v.Tag.Blittable():
		w.u64(v.Blit[0])
		w.u64(v.Blit[1])
		return nil

	case v.Tag == variant.String, v.Tag == variant.Path,
		v.Tag == variant.ContextVar, v.Tag == variant.Bytes:
		var data []byte
		if b := v.Buf(); b != nil {
			data = b.Data
		}
		w.bytesWithLen(data)
		return nil

	case v.Tag == variant.SeqTag:
		s := v.Seq()
		if s == nil {
			w.u32(0)
			return nil
		}
		w.u32(uint32(len(s.Elems)))
		for i := range s.Elems {
			if err := encodeValue(w, &s.Elems[i]); err != nil {
				return err
			}
		}
		return nil

	case v.Tag == variant.ArrayTag:
		a := v.Array()
		if a == nil {
			encodeType(w, nil)
			w.u32(0)
			return nil
		}
		encodeType(w, innerTypeInfo(a.InnerType))
		w.u32(uint32(len(a.Elems)))
		for i := range a.Elems {
			if err := encodeValue(w, &a.Elems[i]); err != nil {
				return err
			}
		}
		return nil

	case v.Tag == variant.TableTag:
		t := v.Table()
		if t == nil {
			w.u32(0)
			return nil
		}
		w.u32(uint32(t.Len()))
		var encErr error
		t.Iterate(func(key, val variant.Var) bool {
			if err := encodeValue(w, &key); err != nil {
				encErr = err
				return false
			}
			if err := encodeValue(w, &val); err != nil {
				encErr = err
				return false
			}
			return true
		})
		return encErr

	case v.Tag == variant.SetTag:
		s := v.Set()
		if s == nil {
			w.u32(0)
			return nil
		}
		w.u32(uint32(s.Len()))
		var encErr error
		s.Iterate(func(e variant.Var) bool {
			if err := encodeValue(w, &e); err != nil {
				encErr = err
				return false
			}
			return true
		})
		return encErr

	default:
		return &UnserializableError{Tag: v.Tag}
	}
}

// decodeValue reads one value from r, the inverse of encodeValue.
func decodeValue(r *reader) (variant.Var, error) {
	tagByte, err := r.u8()
	if err != nil {
		return variant.Var{}, err
	}
	tag := variant.Tag(tagByte)

	switch {
	case tag == variant.None || tag == variant.Any:
		return variant.Var{Tag: tag}, nil

	case tag.Blittable():
		lo, err := r.u64()
		if err != nil {
			return variant.Var{}, err
		}
		hi, err := r.u64()
		if err != nil {
			return variant.Var{}, err
		}
		return variant.Var{Tag: tag, Blit: [2]uint64{lo, hi}}, nil

	case tag == variant.String, tag == variant.Path,
		tag == variant.ContextVar, tag == variant.Bytes:
		data, err := r.bytesWithLen()
		if err != nil {
			return variant.Var{}, err
		}
		return variant.Var{Tag: tag, Payload: variant.NewBuffer(data)}, nil

	case tag == variant.SeqTag:
		n, err := r.u32()
		if err != nil {
			return variant.Var{}, err
		}
		elems := make([]variant.Var, n)
		for i := range elems {
			elems[i], err = decodeValue(r)
			if err != nil {
				return variant.Var{}, err
			}
		}
		return variant.SeqOf(elems), nil

	case tag == variant.ArrayTag:
		inner, err := decodeType(r)
		if err != nil {
			return variant.Var{}, err
		}
		n, err := r.u32()
		if err != nil {
			return variant.Var{}, err
		}
		var out variant.Var
		if inner != nil {
			out = variant.NewArray(inner)
		} else {
			out = variant.NewArray(nil)
		}
		p := out.Array()
		p.Resize(int(n))
		for i := range p.Elems {
			p.Elems[i], err = decodeValue(r)
			if err != nil {
				return variant.Var{}, err
			}
		}
		return out, nil

	case tag == variant.TableTag:
		n, err := r.u32()
		if err != nil {
			return variant.Var{}, err
		}
		out := variant.NewTable()
		t := out.Table()
		for i := uint32(0); i < n; i++ {
			key, err := decodeValue(r)
			if err != nil {
				return variant.Var{}, err
			}
			val, err := decodeValue(r)
			if err != nil {
				return variant.Var{}, err
			}
			t.Set(key, val)
		}
		return out, nil

	case tag == variant.SetTag:
		n, err := r.u32()
		if err != nil {
			return variant.Var{}, err
		}
		out := variant.NewSet()
		s := out.Set()
		for i := uint32(0); i < n; i++ {
			e, err := decodeValue(r)
			if err != nil {
				return variant.Var{}, err
			}
			s.Add(e)
		}
		return out, nil

	default:
		return variant.Var{}, &UnserializableError{Tag: tag}
	}
}

// EncodeValue serializes a single value to its §6.2 byte encoding.
func EncodeValue(v *variant.Var) ([]byte, error) {
	w := &writer{}
	if err := encodeValue(w, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeValue deserializes a single value previously produced by
// EncodeValue.
func DecodeValue(data []byte) (variant.Var, error) {
	r := newReader(data)
	return decodeValue(r)
}
