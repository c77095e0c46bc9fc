// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	. "gitlab.com/accumulatenetwork/vestingd/internal/util/cmd"
)

var cmdIdentity = &cobra.Command{
	Use:   "identity <address>",
	Short: "Resolve the display label of an address",
	Args:  cobra.ExactArgs(1),
	Run:   resolveIdentity,
}

func init() {
	cmdMain.AddCommand(cmdIdentity)
}

func resolveIdentity(cmd *cobra.Command, args []string) {
	ctx := ContextForMainProcess(context.Background())

	cfg := loadConfig(cmd)
	logger := newLogger(cfg)
	id, err := newResolver(cfg, logger).Resolve(ctx, args[0])
	Check(err)

	if flagMain.JSON {
		printJSON(id)
		return
	}
	fmt.Printf("%s (%v)\n%s\n", Highlight(id.Label), id.Kind, id.Target)
}
