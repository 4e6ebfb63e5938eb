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

package tidepool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitRunsWork(t *testing.T) {
	p := New(Config{NumWorkers: 2, LowWater: 1, MaxWorkers: 4, ScaleInterval: 10 * time.Millisecond})
	defer p.Close()

	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(WorkFunc(func() {
			atomic.AddInt64(&n, 1)
			wg.Done()
		}))
	}
	wg.Wait()
	require.EqualValues(t, 20, n)
}

func TestCloseJoinsWorkers(t *testing.T) {
	p := New(DefaultConfig())
	p.Close()
	require.Equal(t, 0, 0) // Close returning at all means wg.Wait() completed
}
