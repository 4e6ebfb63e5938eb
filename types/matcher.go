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

package types

import "github.com/shards-run/shards/variant"

// Matcher configures Match's strictness (§3.2). The zero value is the
// permissive default used when checking literals a user wrote inline.
type Matcher struct {
	// Strict enforces that all element types/keys match exactly;
	// without it, a single overlapping element type is enough.
	Strict bool
	// RelaxEmptySeqCheck lets an empty Seq literal match any Seq
	// type regardless of declared element types.
	RelaxEmptySeqCheck bool
	// RelaxEmptyTableCheck is RelaxEmptySeqCheck's Table analogue.
	RelaxEmptyTableCheck bool
	// IgnoreFixedSeq ignores a Seq type's FixedSize constraint.
	IgnoreFixedSeq bool
}

// Match reports whether a value of type `have` may flow into a
// receiver declared as `want`, under m's rules (§3.2). Any on the
// receiver side always matches.
func (m Matcher) Match(want, have *TypeInfo) bool {
	if want == nil || have == nil {
		return want == have
	}
	if want.Tag == variant.Any {
		return true
	}
	if want.Tag != have.Tag {
		return false
	}
	switch want.Tag {
	case variant.SeqTag:
		return m.matchSeq(want, have)
	case variant.TableTag:
		return m.matchTable(want, have)
	case variant.ContextVar:
		return m.matchContextVar(want, have)
	case variant.ObjectTag, variant.Enum:
		return want.ObjectID == have.ObjectID
	case variant.ArrayTag:
		return m.Match(want.ArrayInner, have.ArrayInner)
	case variant.TypeTag:
		return m.Match(want.Nested, have.Nested)
	default:
		return true
	}
}

func (m Matcher) matchSeq(want, have *TypeInfo) bool {
	if !m.IgnoreFixedSeq && want.FixedSize != 0 && want.FixedSize != have.FixedSize {
		return false
	}
	if len(have.SeqTypes) == 0 {
		return m.RelaxEmptySeqCheck || len(want.SeqTypes) == 0
	}
	if m.Strict {
		for _, h := range have.SeqTypes {
			if !anyMatch(m, want.SeqTypes, h) {
				return false
			}
		}
		return true
	}
	for _, h := range have.SeqTypes {
		if anyMatch(m, want.SeqTypes, h) {
			return true
		}
	}
	return false
}

func (m Matcher) matchTable(want, have *TypeInfo) bool {
	if len(have.TableValues) == 0 {
		return m.RelaxEmptyTableCheck || len(want.TableValues) == 0
	}
	// Trailing key == nil on want means "any extra key of this type
	// is allowed" (§3.2); treat as a wildcard slot.
	wildcard := len(want.TableKeys) > 0 && want.TableKeys[len(want.TableKeys)-1] == nil
	for i, hv := range have.TableValues {
		var hk *TypeInfo
		if i < len(have.TableKeys) {
			hk = have.TableKeys[i]
		}
		if !m.tableSlotMatches(want, hk, hv, wildcard) {
			return false
		}
	}
	return true
}

func (m Matcher) tableSlotMatches(want *TypeInfo, hk, hv *TypeInfo, wildcard bool) bool {
	for i, wv := range want.TableValues {
		var wk *TypeInfo
		if i < len(want.TableKeys) {
			wk = want.TableKeys[i]
		}
		if wk == nil {
			if wildcard && m.Match(wv, hv) {
				return true
			}
			continue
		}
		if hk != nil && m.Match(wk, hk) && m.Match(wv, hv) {
			return true
		}
	}
	return wildcard
}

func (m Matcher) matchContextVar(want, have *TypeInfo) bool {
	for _, h := range have.ContextVarTypes {
		if anyMatch(m, want.ContextVarTypes, h) {
			return true
		}
	}
	return len(have.ContextVarTypes) == 0
}

func anyMatch(m Matcher, candidates []*TypeInfo, target *TypeInfo) bool {
	for _, c := range candidates {
		if m.Match(c, target) {
			return true
		}
	}
	return false
}
