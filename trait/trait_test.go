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

package trait

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

type fakeSatisfier map[string]*types.TypeInfo

func (f fakeSatisfier) ExposedVariable(name string) (*types.TypeInfo, bool) {
	t, ok := f[name]
	return t, ok
}

func TestSatisfiesRequiresAllVariables(t *testing.T) {
	tr := New("Drawable", Variable{Name: "position", Type: types.New(variant.Float3)})
	require.False(t, tr.Satisfies(fakeSatisfier{}))
	require.True(t, tr.Satisfies(fakeSatisfier{"position": types.New(variant.Float3)}))
}

func TestAsVariantRoundTripsThroughCloneAndDestroy(t *testing.T) {
	tr := New("Drawable")
	v := tr.AsVariant()
	var dst variant.Var
	variant.Clone(&dst, &v)
	require.Equal(t, variant.TraitTag, dst.Tag)
	variant.Destroy(&dst)
	variant.Destroy(&v)
}
