// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"
)

var defaultWorkDir = func() string {
	usr, err := user.Current()
	if err != nil {
		return ".vestingd"
	}
	return filepath.Join(usr.HomeDir, ".vestingd")
}()

var cmdMain = &cobra.Command{
	Use:   "vestingd",
	Short: "Vesting ledger daemon",
	Run:   printUsageAndExit1,
}

var flagMain struct {
	WorkDir   string
	LogLevel  string
	LogFormat string
	JSON      bool
}

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.WorkDir, "work-dir", "w", defaultWorkDir, "Working directory for configuration")
	cmdMain.PersistentFlags().StringVar(&flagMain.LogLevel, "log-level", "", "Log level, overrides the config, for example \"error;ledger=debug\"")
	cmdMain.PersistentFlags().StringVar(&flagMain.LogFormat, "log-format", "", "Log format (plain, text, json), overrides the config")
	cmdMain.PersistentFlags().BoolVarP(&flagMain.JSON, "json", "j", false, "Print results as JSON")
}

func main() {
	_ = cmdMain.Execute()
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

