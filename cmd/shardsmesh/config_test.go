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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRunConfigParsesMeshAndWirePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mesh:\n  label: demo\nwirePath: wire.bin\n"), 0o644))

	cfg, err := loadRunConfig(path)
	require.NoError(t, err)
	require.Equal(t, "demo", cfg.Mesh.Label)
	require.Equal(t, "wire.bin", cfg.WirePath)
}

func TestLoadRunConfigRejectsMissingWirePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mesh:\n  label: demo\n"), 0o644))

	_, err := loadRunConfig(path)
	require.Error(t, err)
}
