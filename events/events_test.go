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

package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetReturnsSameDispatcherForSameName(t *testing.T) {
	require.Same(t, Get("a"), Get("a"))
}

func TestTriggerInvokesHandlersInSubscriptionOrder(t *testing.T) {
	d := Get(t.Name())
	var order []int
	d.Subscribe(func(any) { order = append(order, 1) })
	d.Subscribe(func(any) { order = append(order, 2) })
	d.Trigger(nil)
	require.Equal(t, []int{1, 2}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	d := Get(t.Name())
	calls := 0
	unsub := d.Subscribe(func(any) { calls++ })
	d.Trigger(nil)
	unsub()
	d.Trigger(nil)
	require.Equal(t, 1, calls)
}

func TestTriggerPassesPayload(t *testing.T) {
	d := Get(t.Name())
	var got any
	d.Subscribe(func(p any) { got = p })
	d.Trigger("hello")
	require.Equal(t, "hello", got)
}
