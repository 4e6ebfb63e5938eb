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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/shctx"
	"github.com/shards-run/shards/tidepool"
	"github.com/shards-run/shards/variant"
)

func TestOffloadRunsInputThroughPool(t *testing.T) {
	pool := tidepool.New(tidepool.Config{NumWorkers: 1, LowWater: 1, MaxWorkers: 2, ScaleInterval: 10 * time.Millisecond})
	defer pool.Close()

	s, err := Create("Offload")
	require.NoError(t, err)

	ctx := shctx.New(nil)
	ctx.SetAny(PoolContextKey, pool)

	input := variant.NewInt(11)
	out, err := s.Activate(ctx, &input)
	require.NoError(t, err)
	require.Equal(t, int64(11), out.AsInt())
}

func TestOffloadRequiresInstalledPool(t *testing.T) {
	s, err := Create("Offload")
	require.NoError(t, err)

	ctx := shctx.New(nil)
	input := variant.NewInt(1)
	_, err = s.Activate(ctx, &input)
	require.Error(t, err)
}

func TestOffloadRejectsWrongPoolType(t *testing.T) {
	s, err := Create("Offload")
	require.NoError(t, err)

	ctx := shctx.New(nil)
	ctx.SetAny(PoolContextKey, "not a pool")
	input := variant.NewInt(1)
	_, err = s.Activate(ctx, &input)
	require.Error(t, err)
}
