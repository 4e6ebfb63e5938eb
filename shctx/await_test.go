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

package shctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shards-run/shards/tidepool"
	"github.com/shards-run/shards/variant"
)

func TestSuspendRequiresContinueState(t *testing.T) {
	c := New(nil)
	c.ErrorFlow("boom")
	_, err := Suspend(c, 0)
	require.Error(t, err)
	var target *ErrNotContinue
	require.ErrorAs(t, err, &target)
}

func TestSuspendYieldsAndReturnsState(t *testing.T) {
	yielded := false
	c := New(func() { yielded = true })
	state, err := Suspend(c, 0.01)
	require.NoError(t, err)
	require.True(t, yielded)
	require.Equal(t, Continue, state)
	require.False(t, c.Next.IsZero())
}

func TestAwaitRunsFnOnPoolAndYieldsUntilDone(t *testing.T) {
	pool := tidepool.New(tidepool.Config{NumWorkers: 1, LowWater: 1, MaxWorkers: 2, ScaleInterval: 10 * time.Millisecond})
	defer pool.Close()

	yields := 0
	c := New(func() { yields++; time.Sleep(time.Millisecond) })

	v, err := Await(c, pool, func() (variant.Var, error) {
		return variant.NewInt(42), nil
	}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), v.AsInt())
}

func TestAwaitRejectsReentrantWorkerThreadCall(t *testing.T) {
	c := New(nil)
	c.OnWorkerThread = true
	_, err := Await(c, nil, func() (variant.Var, error) { return variant.Var{}, nil }, nil)
	require.ErrorIs(t, err, ErrReentrantAwait)
}

func TestAwaitBlocksForCompletionAfterCancel(t *testing.T) {
	pool := tidepool.New(tidepool.Config{NumWorkers: 1, LowWater: 1, MaxWorkers: 2, ScaleInterval: 10 * time.Millisecond})
	defer pool.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	canceled := false

	c := New(nil)
	// The first yield flips the context to Stop, simulating a wire
	// cancellation requested while the offloaded call is still
	// outstanding.
	yieldCount := 0
	c.yield = func() {
		yieldCount++
		if yieldCount == 1 {
			c.state = Stop
		}
	}

	v, err := Await(c, pool, func() (variant.Var, error) {
		close(started)
		<-release
		return variant.NewInt(7), nil
	}, func() {
		canceled = true
		close(release)
	})

	<-started
	require.NoError(t, err)
	require.True(t, canceled)
	require.Equal(t, int64(7), v.AsInt())
}

func TestCallOnMeshThreadWithoutHopRunsInline(t *testing.T) {
	c := New(nil)
	ran := false
	CallOnMeshThread(c, func() { ran = true })
	require.True(t, ran)
}

func TestCallOnMeshThreadUsesHop(t *testing.T) {
	c := New(nil)
	var hopped bool
	c.SetHop(func(action func()) {
		hopped = true
		action()
	})
	ran := false
	CallOnMeshThread(c, func() { ran = true })
	require.True(t, hopped)
	require.True(t, ran)
}
