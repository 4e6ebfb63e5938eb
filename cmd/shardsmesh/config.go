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

	"sigs.k8s.io/yaml"

	"github.com/shards-run/shards/mesh"
)

// runConfig is the YAML document a "shardsmesh run" invocation loads:
// the mesh to create and where to find the serialized wire to
// schedule onto it.
type runConfig struct {
	Mesh mesh.Config `json:"mesh"`

	// WirePath is a filesystem path to a wire blob produced by
	// serialize.EncodeWire, resolved relative to the config file's
	// own directory if not absolute.
	WirePath string `json:"wirePath"`
}

func loadRunConfig(path string) (runConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return runConfig{}, fmt.Errorf("read config %q: %w", path, err)
	}

	var cfg runConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return runConfig{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.WirePath == "" {
		return runConfig{}, fmt.Errorf("config %q: wirePath is required", path)
	}
	return cfg, nil
}
