// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/vestingd/config"
)

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	cmdMain.SetArgs([]string{"config", "init", "--work-dir", dir})
	require.NoError(t, cmdMain.Execute())
	require.FileExists(t, filepath.Join(dir, config.ConfigFile))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestConfigShowAppliesFlags(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.Store(dir, config.Default()))
	t.Cleanup(func() { flagMain.JSON = false })

	out := captureStdout(t, func() {
		cmdMain.SetArgs([]string{"config", "show", "--work-dir", dir, "--log-level", "error;ledger=debug", "--json"})
		require.NoError(t, cmdMain.Execute())
	})

	var cfg config.Config
	require.NoError(t, json.Unmarshal(out, &cfg))
	require.Equal(t, "error;ledger=debug", cfg.Log.Level)
	require.Equal(t, config.Default().Web.ListenAddress, cfg.Web.ListenAddress)
}

func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	fn()
	require.NoError(t, w.Close())
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}
