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

import "math"

// maxArrayCap mirrors the C ABI's UINT32_MAX cap: growing past it is
// fatal (§8.3).
const maxArrayCap = math.MaxUint32

// GrowCap implements the shared array growth rule from §4.1: if the
// current capacity is below min, double it (minimum 4). It panics if
// min exceeds the engine's array cap limit, matching the "array
// overflow aborts the process" policy in §7.
func GrowCap(cap, min int) int {
	if min > maxArrayCap {
		panic("variant: array growth beyond UINT32_MAX cap")
	}
	if cap >= min {
		return cap
	}
	if cap < 4 {
		cap = 4
	}
	for cap < min {
		cap *= 2
	}
	return cap
}

// GrowSeq resizes dst to length n, zero-filling any new slots (so
// that cloning into them is always valid, per §4.1's Arrays note) and
// preserving existing elements. It grows geometrically via GrowCap
// rather than exactly to n, matching the "amortised O(1)" growth
// requirement.
func GrowSeq(dst []Var, n int) []Var {
	if n <= len(dst) {
		return dst[:n]
	}
	if n <= cap(dst) {
		old := len(dst)
		dst = dst[:n]
		for i := old; i < n; i++ {
			dst[i] = Var{}
		}
		return dst
	}
	newCap := GrowCap(cap(dst), n)
	grown := make([]Var, n, newCap)
	copy(grown, dst)
	return grown
}
