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

// Package shlog holds the process-wide logger used by mesh, wire,
// tidepool, shard and cmd/shardsmesh.
//
// It follows the same shape as a settable diagnostic hook: a nil
// logger is a safe no-op, and Set installs a real sink. Unlike a bare
// hook, the sink here is a structured *zap.SugaredLogger so that
// mesh/wire/tidepool can attach fields (wire id, shard name) instead
// of formatting them into a string.
package shlog

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[zap.SugaredLogger]

func init() {
	l, _ := zap.NewProduction()
	Set(l.Sugar())
}

// Set installs l as the process-wide logger. Passing nil restores a
// no-op logger.
func Set(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	current.Store(l)
}

// L returns the current process-wide logger.
func L() *zap.SugaredLogger {
	l := current.Load()
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
