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

import "github.com/shards-run/shards/internal/globals"

// ObjectPayload is the Object tag's payload: an opaque pointer plus
// its (vendor, type) id, with an optional vtable resolved from the
// global object-type registry (§3.1, §6.1 registerObjectType).
type ObjectPayload struct {
	ID  globals.ObjectTypeID
	Ptr any
}

// NewObject constructs an Object variant. If a vtable is registered
// for id, Flags gains UsesObjInfo and the vtable's Reference hook (if
// any) is invoked immediately, mirroring the C core's convention that
// construction implies one reference.
func NewObject(id globals.ObjectTypeID, ptr any) Var {
	v := Var{Tag: ObjectTag, Payload: &ObjectPayload{ID: id, Ptr: ptr}}
	if info, ok := globals.ObjectType(id); ok {
		v.Flags |= UsesObjInfo
		if info.Reference != nil {
			info.Reference(ptr)
		}
	}
	return v
}

// Object returns the Object payload, or nil if v is not an Object.
func (v *Var) Object() *ObjectPayload {
	p, _ := v.Payload.(*ObjectPayload)
	return p
}

func (p *ObjectPayload) info() (globals.ObjectInfo, bool) {
	return globals.ObjectType(p.ID)
}

// releaseObject invokes the registered release/weakRelease hook, honouring
// the WeakObject flag (§4.1's Clone step for Object).
func (v *Var) releaseObject() {
	p := v.Object()
	if p == nil {
		return
	}
	info, ok := p.info()
	if !ok {
		return
	}
	if v.Flags.Has(WeakObject) {
		if info.WeakRelease != nil {
			info.WeakRelease(p.Ptr)
		}
		return
	}
	if info.BeforeDelete != nil {
		info.BeforeDelete(p.Ptr)
	}
	if info.Release != nil {
		info.Release(p.Ptr)
	}
}

func (v *Var) referenceObject() {
	p := v.Object()
	if p == nil {
		return
	}
	info, ok := p.info()
	if !ok {
		return
	}
	if v.Flags.Has(WeakObject) {
		if info.WeakReference != nil {
			info.WeakReference(p.Ptr)
		}
		return
	}
	if info.Reference != nil {
		info.Reference(p.Ptr)
	}
}
