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

package compose

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/types"
	"github.com/shards-run/shards/variant"
)

func mustShard(t *testing.T, name string) shard.Shard {
	t.Helper()
	s, err := shard.Create(name)
	require.NoError(t, err)
	return s
}

func TestComposeSingleShardAdoptsConcreteOutput(t *testing.T) {
	pass := mustShard(t, "Pass")
	res, err := Compose([]shard.Shard{pass}, shard.InstanceData{InputType: types.New(variant.Int)}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, variant.Int, res.OutputType.Tag)
	require.False(t, res.FlowStopper)
}

func TestComposeChainsOutputIntoNextInput(t *testing.T) {
	c := mustShard(t, "Const")
	require.NoError(t, c.SetParam(0, variant.NewInt(3)))
	pass := mustShard(t, "Pass")
	res, err := Compose([]shard.Shard{c, pass}, shard.InstanceData{InputType: types.New(variant.None)}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, variant.Int, res.OutputType.Tag)
}

func TestComposeUnresolvedRequiredInvokesCallback(t *testing.T) {
	called := false
	vars := []shard.VariableUse{{Name: "missing", Type: types.New(variant.Int)}}
	fk := &fakeRequiring{VariableUse: vars}
	_, err := Compose([]shard.Shard{fk}, shard.InstanceData{InputType: types.AnyType()}, nil, func(v shard.VariableUse) bool {
		called = true
		require.Equal(t, "missing", v.Name)
		return false
	})
	require.NoError(t, err)
	require.True(t, called)
}

// fakeRequiring is a minimal Shard stub declaring one required
// variable, for exercising the unresolved-required callback path
// without pulling in a full built-in shard.
type fakeRequiring struct {
	VariableUse []shard.VariableUse
}

func (*fakeRequiring) Name() string                          { return "FakeRequiring" }
func (*fakeRequiring) Hash() uint32                           { return 0 }
func (*fakeRequiring) InputTypes() []*types.TypeInfo          { return []*types.TypeInfo{types.AnyType()} }
func (*fakeRequiring) OutputTypes() []*types.TypeInfo         { return []*types.TypeInfo{types.AnyType()} }
func (*fakeRequiring) Parameters() []shard.ParamInfo          { return nil }
func (*fakeRequiring) GetParam(int) (variant.Var, error)      { return variant.Var{}, nil }
func (*fakeRequiring) SetParam(int, variant.Var) error        { return nil }
func (*fakeRequiring) ExposedVariables() []shard.VariableUse  { return nil }
func (f *fakeRequiring) RequiredVariables() []shard.VariableUse {
	return f.VariableUse
}
func (*fakeRequiring) Activate(_ *shctx.Context, _ *variant.Var) (variant.Var, error) {
	return variant.Var{}, nil
}
