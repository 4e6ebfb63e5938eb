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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shards-run/shards/internal/globals"
	"github.com/shards-run/shards/internal/shlog"
	"github.com/shards-run/shards/mesh"
	"github.com/shards-run/shards/serialize"
	"github.com/shards-run/shards/shard"
	"github.com/shards-run/shards/variant"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.yaml>",
		Short: "load a mesh config and a serialized wire, then run it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	return cmd
}

func run(configPath string) error {
	cfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}

	wirePath := cfg.WirePath
	if !filepath.IsAbs(wirePath) {
		wirePath = filepath.Join(filepath.Dir(configPath), wirePath)
	}
	blob, err := os.ReadFile(wirePath)
	if err != nil {
		return fmt.Errorf("read wire %q: %w", wirePath, err)
	}

	s := serialize.New()
	w, err := s.DecodeWire(blob, nil)
	if err != nil {
		return fmt.Errorf("decode wire %q: %w", wirePath, err)
	}

	m := mesh.New(cfg.Mesh)
	if err := m.Schedule(w, shard.InstanceData{}, variant.NewNone()); err != nil {
		return fmt.Errorf("schedule wire %q: %w", w.Name, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigCh {
			globals.NoteSignal()
			shlog.L().Warnw("shardsmesh: signal received", "count", globals.SignalCount())
		}
	}()
	defer signal.Stop(sigCh)

	shlog.L().Infow("shardsmesh: scheduled wire", "wire", w.Name, "mesh", m.Label)
	if !m.Run() {
		return fmt.Errorf("mesh %q: a wire failed", m.Label)
	}
	shlog.L().Infow("shardsmesh: mesh drained", "mesh", m.Label)
	return nil
}
