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
	"fmt"
	"time"
)

// ErrNotContinue is returned by Suspend when called on a context that
// is not in the Continue state (§8.3's "suspending on a non-Continue
// context raises ActivationError").
type ErrNotContinue struct {
	State FlowState
}

func (e *ErrNotContinue) Error() string {
	return fmt.Sprintf("shctx: suspend called on non-Continue context (state=%s)", e.State)
}

// Suspend implements suspend(context, seconds) from §4.8: sets the
// resume deadline, suspends the owning fiber, and on resume returns
// the (possibly changed) flow state.
func Suspend(c *Context, seconds float64) (FlowState, error) {
	if c.state != Continue {
		return c.state, &ErrNotContinue{State: c.state}
	}
	if seconds > 0 {
		c.Next = time.Now().Add(time.Duration(seconds * float64(time.Second)))
	} else {
		c.Next = time.Time{}
	}
	c.Yield()
	return c.state, nil
}
