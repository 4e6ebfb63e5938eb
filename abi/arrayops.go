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

import "github.com/shards-run/shards/variant"

// ArrayOps covers §6.1's "Array ops for each dynamic array type
// (free/resize/push/insert/pop/fastDelete/slowDelete)". Seq is the
// engine's only dynamic, heterogeneous array (Array is a fixed-inner-
// type packed array with resize only), so the insert/push/pop/delete
// family is defined over SeqPayload.
type ArrayOps struct{}

func (ArrayOps) ResizeSeq(p *variant.SeqPayload, n int) { p.Resize(n) }

func (ArrayOps) PushSeq(p *variant.SeqPayload, v variant.Var) { p.Push(v) }

func (ArrayOps) PopSeq(p *variant.SeqPayload) (variant.Var, bool) { return p.Pop() }

func (ArrayOps) FastDeleteSeq(p *variant.SeqPayload, i int) { p.FastDelete(i) }

func (ArrayOps) SlowDeleteSeq(p *variant.SeqPayload, i int) { p.SlowDelete(i) }

func (ArrayOps) ResizeArray(p *variant.ArrayPayload, n int) { p.Resize(n) }
