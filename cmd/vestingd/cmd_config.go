// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/vestingd/config"
	. "gitlab.com/accumulatenetwork/vestingd/internal/util/cmd"
)

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration",
	Run:   printUsageAndExit1,
}

var cmdConfigInit = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the working directory",
	Args:  cobra.NoArgs,
	Run:   initConfig,
}

var cmdConfigShow = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run:   showConfig,
}

var flagConfigInit struct {
	Force bool
}

func init() {
	cmdMain.AddCommand(cmdConfig)
	cmdConfig.AddCommand(cmdConfigInit, cmdConfigShow)

	cmdConfigInit.Flags().BoolVarP(&flagConfigInit.Force, "force", "f", false, "Overwrite an existing configuration")
}

func initConfig(*cobra.Command, []string) {
	file := filepath.Join(flagMain.WorkDir, config.ConfigFile)
	_, err := os.Stat(file)
	switch {
	case err == nil && !flagConfigInit.Force:
		Fatalf("%s already exists, use --force to overwrite it", file)
	case err != nil && !os.IsNotExist(err):
		Check(err)
	}

	Check(config.Store(flagMain.WorkDir, config.Default()))
	fmt.Printf("Wrote %s\n", Highlight(file))
}

func showConfig(cmd *cobra.Command, _ []string) {
	cfg := loadConfig(cmd)
	if flagMain.JSON {
		printJSON(cfg)
		return
	}
	b, err := toml.Marshal(cfg)
	Check(err)
	fmt.Print(string(b))
}
