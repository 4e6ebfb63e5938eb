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

// Clone implements cloneVar(dst, src) from §4.1: a blittable fast
// path (array copy, no allocation) and a tag-dispatched slow path
// that reuses dst's existing heap payload when its shape already
// matches src's, instead of destroying and reallocating. Sets are not
// reused: cloning a Set always destroys dst and rebuilds it.
//
// Clone panics if dst is Foreign, per the "a Foreign dst must never
// be destroyed — writes must fail-fast" rule.
func Clone(dst, src *Var) {
	if dst.Flags.Has(Foreign) {
		panic("variant: cannot clone into a foreign Var")
	}
	if src.Tag.Blittable() {
		if !dst.Tag.Blittable() {
			Destroy(dst)
		}
		flags := dst.Flags & (Foreign | External)
		*dst = *src
		dst.Flags = flags | (src.Flags &^ (Foreign | External))
		return
	}
	cloneSlow(dst, src)
}

func cloneSlow(dst, src *Var) {
	switch src.Tag {
	case String, Path, ContextVar, Bytes:
		srcBuf := src.Buf()
		if dst.Tag == src.Tag {
			if dstBuf := dst.Buf(); dstBuf != nil {
				dstBuf.cloneInto(srcBuf)
				dst.Flags = src.Flags
				return
			}
		}
		Destroy(dst)
		dst.Tag = src.Tag
		dst.Flags = src.Flags
		dst.Payload = NewBuffer(srcBuf.Data)

	case SeqTag:
		srcSeq := src.Seq()
		var dstSeq *SeqPayload
		if dst.Tag == SeqTag {
			dstSeq = dst.Seq()
		}
		if dstSeq == nil || dstSeq.Foreign {
			Destroy(dst)
			dst.Tag = SeqTag
			dst.Flags = src.Flags
			dstSeq = &SeqPayload{}
			dst.Payload = dstSeq
		} else {
			dst.Flags = src.Flags
		}
		dstSeq.Resize(len(srcSeq.Elems))
		for i := range srcSeq.Elems {
			Clone(&dstSeq.Elems[i], &srcSeq.Elems[i])
		}

	case TableTag:
		srcT := src.Table()
		cloneTable(dst, src, srcT)

	case SetTag:
		srcS := src.Set()
		cloneSet(dst, src, srcS)

	case Image:
		cloneImage(dst, src)

	case Audio:
		cloneAudio(dst, src)

	case ObjectTag:
		Destroy(dst)
		*dst = *src
		dst.referenceObject()

	case WireTag:
		Destroy(dst)
		h, _ := src.Payload.(WireHandle)
		dst.Tag = WireTag
		dst.Flags = src.Flags
		if h != nil {
			dst.Payload = h.Retain()
		}

	case ShardRefTag:
		Destroy(dst)
		h, _ := src.Payload.(ShardRefHandle)
		dst.Tag = ShardRefTag
		dst.Flags = src.Flags
		if h != nil {
			dst.Payload = h.Retain()
		}

	case TraitTag:
		Destroy(dst)
		h, _ := src.Payload.(TraitHandle)
		dst.Tag = TraitTag
		dst.Flags = src.Flags
		if h != nil {
			dst.Payload = h.Retain()
		}

	case TypeTag:
		Destroy(dst)
		td, _ := src.Payload.(TypeDescriptor)
		dst.Tag = TypeTag
		dst.Flags = src.Flags
		if td != nil {
			dst.Payload = td.CloneDescriptor()
		}

	case ArrayTag:
		srcA := src.Array()
		var dstA *ArrayPayload
		if dst.Tag == ArrayTag {
			dstA = dst.Array()
		}
		if dstA == nil {
			Destroy(dst)
			dst.Tag = ArrayTag
			dst.Flags = src.Flags
			dstA = &ArrayPayload{InnerType: srcA.InnerType}
			dst.Payload = dstA
		} else {
			dst.Flags = src.Flags
			dstA.InnerType = srcA.InnerType
		}
		dstA.Resize(len(srcA.Elems))
		copy(dstA.Elems, srcA.Elems)

	default:
		// Any/None and unrecognised non-blittable tags: plain value
		// copy is correct because there is no heap payload to manage.
		Destroy(dst)
		*dst = *src
	}
}

func cloneTable(dst, src *Var, srcT TableInterface) {
	dstOrdered, reuse := dst.Payload.(*orderedTable)
	if dst.Tag != TableTag {
		reuse = false
	}
	if srcOrdered, ok := srcT.(*orderedTable); ok && reuse && dstOrdered.Len() == srcOrdered.Len() && sameKeyOrder(dstOrdered, srcOrdered) {
		for i := range srcOrdered.keys {
			Clone(&dstOrdered.vals[i], &srcOrdered.vals[i])
		}
		dst.Flags = src.Flags
		return
	}
	Destroy(dst)
	dst.Tag = TableTag
	dst.Flags = src.Flags
	fresh := &orderedTable{}
	srcT.Iterate(func(k, val Var) bool {
		var ck, cv Var
		Clone(&ck, &k)
		Clone(&cv, &val)
		fresh.Set(ck, cv)
		return true
	})
	dst.Payload = TableInterface(fresh)
}

func sameKeyOrder(a, b *orderedTable) bool {
	if len(a.keys) != len(b.keys) {
		return false
	}
	for i := range a.keys {
		if !Equal(&a.keys[i], &b.keys[i]) {
			return false
		}
	}
	return true
}

func cloneSet(dst, src *Var, srcS SetInterface) {
	Destroy(dst)
	dst.Tag = SetTag
	dst.Flags = src.Flags
	fresh := &insertionSet{}
	srcS.Iterate(func(v Var) bool {
		var cv Var
		Clone(&cv, &v)
		fresh.Add(cv)
		return true
	})
	dst.Payload = SetInterface(fresh)
}

func cloneImage(dst, src *Var) {
	srcImg := src.Image()
	var dstImg *ImagePayload
	if dst.Tag == Image {
		dstImg = dst.Image()
	}
	if dstImg == nil {
		Destroy(dst)
		dst.Tag = Image
		dstImg = &ImagePayload{}
		dst.Payload = dstImg
	}
	dst.Flags = src.Flags
	n := len(srcImg.Pixels)
	dstImg.Pixels = reuseBytes(dstImg.Pixels, n)
	copy(dstImg.Pixels, srcImg.Pixels)
	dstImg.Width, dstImg.Height = srcImg.Width, srcImg.Height
	dstImg.Channels, dstImg.ImgFlag = srcImg.Channels, srcImg.ImgFlag
	dstImg.Version++
}

func cloneAudio(dst, src *Var) {
	srcAu := src.Audio()
	var dstAu *AudioPayload
	if dst.Tag == Audio {
		dstAu = dst.Audio()
	}
	if dstAu == nil {
		Destroy(dst)
		dst.Tag = Audio
		dstAu = &AudioPayload{}
		dst.Payload = dstAu
	}
	dst.Flags = src.Flags
	n := len(srcAu.Samples)
	dstAu.Samples = reuseFloat32(dstAu.Samples, n)
	copy(dstAu.Samples, srcAu.Samples)
	dstAu.Channels, dstAu.SampleRate = srcAu.Channels, srcAu.SampleRate
	dstAu.Version++
}

// CloneValue is a convenience that clones src into a fresh zero Var
// and returns it, for call sites that do not already own a
// destination (e.g. building a Seq element).
func CloneValue(src Var) Var {
	var dst Var
	Clone(&dst, &src)
	return dst
}
