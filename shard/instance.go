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

package shard

import "github.com/shards-run/shards/types"

// InstanceData is the context handed to a Composer during the
// composition pass (§4.5: "InstanceData { inputType, outputTypes,
// shared, wire, onWorkerThread, requiredVariables* }").
//
// Wire is carried as `any` (a *wire.Wire, type-asserted by the few
// shards that need it) so this package never imports package wire —
// wire already imports shard to hold a pipeline of Shard values, and
// a shard -> wire edge would cycle back through it.
type InstanceData struct {
	InputType   *types.TypeInfo
	OutputTypes []*types.TypeInfo

	// Shared carries the shards that precede this one in the same
	// wire, for compose hooks that need to inspect siblings.
	Shared []Shard

	Wire any

	OnWorkerThread bool

	// RequiredVariables lets a Composer declare variables it will
	// need once its final output type is known (mirrors the
	// ValidationContext's "next shard's declared inputs as a hint"
	// flow in §4.5 step 3).
	RequiredVariables []VariableUse
}
