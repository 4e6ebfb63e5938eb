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

package fiber

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitSuspendsBeforeRunningUserCode(t *testing.T) {
	ran := false
	f := New()
	f.Init(func(yield func()) {
		ran = true
	})
	require.False(t, ran, "fn must not run until the first Resume")
	require.True(t, f.Resumable())

	f.Resume()
	require.True(t, ran)
	require.False(t, f.Resumable())
}

func TestResumeStopsAtEachYield(t *testing.T) {
	var trace []int
	f := New()
	f.Init(func(yield func()) {
		trace = append(trace, 1)
		yield()
		trace = append(trace, 2)
		yield()
		trace = append(trace, 3)
	})

	f.Resume()
	require.Equal(t, []int{1}, trace)
	require.True(t, f.Resumable())

	f.Resume()
	require.Equal(t, []int{1, 2}, trace)
	require.True(t, f.Resumable())

	f.Resume()
	require.Equal(t, []int{1, 2, 3}, trace)
	require.False(t, f.Resumable())
}

func TestResumeAfterDoneIsANoop(t *testing.T) {
	f := New()
	f.Init(func(yield func()) {})
	f.Resume()
	require.False(t, f.Resumable())
	require.NotPanics(t, func() { f.Resume() })
}

func TestDebugAffinityPanicsOnForeignGoroutine(t *testing.T) {
	f := New()
	f.Debug = true
	f.Init(func(yield func()) { yield() })

	f.Resume() // same goroutine that called Init: allowed

	done := make(chan any, 1)
	go func() {
		defer func() { done <- recover() }()
		f.Resume()
	}()
	r := <-done
	require.NotNil(t, r, "expected a panic from a foreign goroutine resuming")
}
