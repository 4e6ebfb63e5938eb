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

// Package tidepool implements the bounded, elastic worker pool used
// to offload blocking `await` calls off a wire's fiber (spec.md
// §4.10). It is grounded on the teacher's own background-worker
// pattern (tenant/dcache's reservation queue/worker pool), adapted
// from a fixed single-purpose cache-fill pool into a general elastic
// pool with scale-up/scale-down, per §4.10's NumWorkers/LowWater/
// MaxWorkers knobs.
package tidepool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shards-run/shards/internal/shlog"
)

// Config holds the pool's sizing knobs (§4.10).
type Config struct {
	NumWorkers int `json:"numWorkers" yaml:"numWorkers"`
	LowWater   int `json:"lowWater" yaml:"lowWater"`
	MaxWorkers int `json:"maxWorkers" yaml:"maxWorkers"`
	// ScaleInterval is how often the controller re-evaluates worker
	// count; defaults to 100ms per §4.10.
	ScaleInterval time.Duration `json:"-" yaml:"-"`
}

// DefaultConfig matches §4.10's stated defaults.
func DefaultConfig() Config {
	return Config{NumWorkers: 8, LowWater: 4, MaxWorkers: 32, ScaleInterval: 100 * time.Millisecond}
}

// Work is a caller-allocated unit of offloaded execution. The pool
// does not own a Work item; the caller must keep it alive until Call
// returns (§4.10).
type Work interface {
	Call()
}

// WorkFunc adapts a plain function to Work.
type WorkFunc func()

func (f WorkFunc) Call() { f() }

// Pool is the elastic worker pool.
type Pool struct {
	cfg Config

	queue chan Work

	mu       sync.Mutex
	workers  int
	stopOne  chan struct{}
	shutdown chan struct{}
	wg       sync.WaitGroup

	scheduled atomic.Int64
}

// New starts a Pool with cfg, spawning cfg.NumWorkers workers
// immediately (§4.10: "Spawns NumWorkers workers on start").
func New(cfg Config) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.ScaleInterval <= 0 {
		cfg.ScaleInterval = 100 * time.Millisecond
	}
	p := &Pool{
		cfg:      cfg,
		queue:    make(chan Work),
		stopOne:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}
	for i := 0; i < cfg.NumWorkers; i++ {
		p.spawnWorker()
	}
	p.wg.Add(1)
	go p.controller()
	return p
}

func (p *Pool) spawnWorker() {
	p.mu.Lock()
	p.workers++
	p.mu.Unlock()
	p.wg.Add(1)
	go p.worker()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			return
		case <-p.stopOne:
			p.mu.Lock()
			p.workers--
			p.mu.Unlock()
			return
		case w, ok := <-p.queue:
			if !ok {
				return
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						shlog.L().Errorw("tidepool: work panicked", "panic", r)
					}
				}()
				w.Call()
			}()
			p.scheduled.Add(-1)
		}
	}
}

// controller scales the pool up or down every ScaleInterval (§4.10).
func (p *Pool) controller() {
	defer p.wg.Done()
	t := time.NewTicker(p.cfg.ScaleInterval)
	defer t.Stop()
	for {
		select {
		case <-p.shutdown:
			return
		case <-t.C:
			p.rescale()
		}
	}
}

func (p *Pool) rescale() {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()
	scheduled := int(p.scheduled.Load())

	switch {
	case scheduled < p.cfg.LowWater && workers > p.cfg.NumWorkers:
		select {
		case p.stopOne <- struct{}{}:
		default:
		}
	case scheduled > workers && workers < p.cfg.MaxWorkers:
		p.spawnWorker()
	}
}

// Submit enqueues w for execution on a worker goroutine. It blocks
// until a worker is available to receive it off the channel (workers
// scale up independently via the controller).
func (p *Pool) Submit(w Work) {
	p.scheduled.Add(1)
	select {
	case p.queue <- w:
	case <-p.shutdown:
		p.scheduled.Add(-1)
	}
}

// Workers returns the current worker count, for tests and
// diagnostics.
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// Close signals all workers to exit and waits for them to join
// (§4.10: "On shutdown, signals all workers to exit and joins them").
func (p *Pool) Close() {
	close(p.shutdown)
	p.wg.Wait()
}
