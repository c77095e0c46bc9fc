// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/vestingd"
)

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run:   showVersion,
}

var flagVersion struct {
	VersionOnly  bool
	KnownVersion bool
}

func init() {
	cmdMain.AddCommand(cmdVersion)

	cmdVersion.Flags().BoolVar(&flagVersion.VersionOnly, "version-only", false, "Only print out the version number")
	cmdVersion.Flags().BoolVar(&flagVersion.KnownVersion, "known-version", false, "Return 1 if the version number is unknown")
}

func showVersion(*cobra.Command, []string) {
	if flagVersion.KnownVersion && !vestingd.IsVersionKnown() {
		defer os.Exit(1)
	} else {
		defer os.Exit(0)
	}

	switch {
	case flagVersion.VersionOnly:
		fmt.Println(vestingd.Version)
		return

	case flagMain.JSON:
		printJSON(struct {
			Version string `json:"version"`
			Commit  string `json:"commit,omitempty"`
			Known   bool   `json:"known"`
		}{vestingd.Version, vestingd.Commit, vestingd.IsVersionKnown()})
		return
	}

	if vestingd.Commit != "" {
		fmt.Printf("%s %s (%s)\n", cmdMain.Short, vestingd.Version, vestingd.Commit)
		return
	}
	fmt.Printf("%s %s\n", cmdMain.Short, vestingd.Version)
}
