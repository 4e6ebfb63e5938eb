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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/variant"
)

func TestRegisterAndCreate(t *testing.T) {
	s, err := Create("Pass")
	require.NoError(t, err)
	require.Equal(t, "Pass", s.Name())
}

func TestCreateUnknownShard(t *testing.T) {
	_, err := Create("NoSuchShard")
	require.Error(t, err)
}

func TestInlineFastPathMarkedAtRegistration(t *testing.T) {
	require.True(t, IsInline("Pass"))
	require.True(t, IsInline("Const"))
	require.False(t, IsInline("UnregisteredThing"))
}

func TestConstShardActivateReturnsConfiguredValue(t *testing.T) {
	s, err := Create("Const")
	require.NoError(t, err)
	cs := s.(*constShard)
	want := variant.NewInt(7)
	require.NoError(t, cs.SetParam(0, want))

	in := variant.NewNone()
	out, err := s.Activate(nil, &in)
	require.NoError(t, err)
	require.Equal(t, int64(7), out.AsInt())
}

func TestConstShardInvalidParamIndex(t *testing.T) {
	s, _ := Create("Const")
	_, err := s.GetParam(5)
	require.Error(t, err)
	var target *InvalidParameterIndexError
	require.ErrorAs(t, err, &target)
}

func TestPassShardActivateForwardsInput(t *testing.T) {
	s, _ := Create("Pass")
	in := variant.NewInt(9)
	out, err := s.Activate(nil, &in)
	require.NoError(t, err)
	require.Equal(t, int64(9), out.AsInt())
}

func TestAddShardActivateAddsConfiguredAddend(t *testing.T) {
	s, err := Create("Add")
	require.NoError(t, err)
	require.NoError(t, s.SetParam(0, variant.NewInt(3)))

	in := variant.NewInt(4)
	out, err := s.Activate(nil, &in)
	require.NoError(t, err)
	require.Equal(t, int64(7), out.AsInt())
}

func TestRefAndSetShardsErrorWithoutAVariableScope(t *testing.T) {
	ref, err := Create("Ref")
	require.NoError(t, err)
	require.NoError(t, ref.SetParam(0, variant.NewString("x")))

	ctx := shctx.New(nil)
	in := variant.NewNone()
	_, err = ref.Activate(ctx, &in)
	require.Error(t, err)

	set, err := Create("Set")
	require.NoError(t, err)
	require.NoError(t, set.SetParam(0, variant.NewString("x")))
	_, err = set.Activate(ctx, &in)
	require.Error(t, err)
}

func TestSleepShardSetsSuspendDeadline(t *testing.T) {
	s, err := Create("Sleep")
	require.NoError(t, err)
	require.NoError(t, s.SetParam(0, variant.NewFloat(0.02)))

	yielded := false
	ctx := shctx.New(func() { yielded = true })
	in := variant.NewInt(1)
	out, err := s.Activate(ctx, &in)
	require.NoError(t, err)
	require.True(t, yielded)
	require.False(t, ctx.Next.IsZero())
	require.Equal(t, int64(1), out.AsInt())
}
