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

// ImagePayload is the Image tag's payload (§3.1, wire format §6.2).
// Version is bumped whenever Pixels is reused in place, so that
// downstream caches (e.g. a GPU texture upload) can detect the
// content changed without a new allocation to compare against.
type ImagePayload struct {
	Width, Height     uint16
	Channels, ImgFlag uint8
	Pixels            []byte
	Version           uint64
}

// NewImage constructs an Image variant.
func NewImage(w, h uint16, channels uint8, pixels []byte) Var {
	return Var{Tag: Image, Payload: &ImagePayload{Width: w, Height: h, Channels: channels, Pixels: pixels}}
}

// Image returns the Image payload, or nil if v is not an Image.
func (v *Var) Image() *ImagePayload {
	p, _ := v.Payload.(*ImagePayload)
	return p
}

// AudioPayload is the Audio tag's payload (§3.1, wire format §6.2).
type AudioPayload struct {
	Channels   uint16
	SampleRate uint32
	Samples    []float32
	Version    uint64
}

// NewAudio constructs an Audio variant.
func NewAudio(channels uint16, sampleRate uint32, samples []float32) Var {
	return Var{Tag: Audio, Payload: &AudioPayload{Channels: channels, SampleRate: sampleRate, Samples: samples}}
}

// Audio returns the Audio payload, or nil if v is not Audio.
func (v *Var) Audio() *AudioPayload {
	p, _ := v.Payload.(*AudioPayload)
	return p
}

// reuseBytes reuses dst's backing array when it already has enough
// capacity for n bytes, matching Clone's "reuse destination capacity"
// rule for Image/Audio buffers (§4.1).
func reuseBytes(dst []byte, n int) []byte {
	if cap(dst) >= n {
		return dst[:n]
	}
	return make([]byte, n)
}

func reuseFloat32(dst []float32, n int) []float32 {
	if cap(dst) >= n {
		return dst[:n]
	}
	return make([]float32, n)
}
