// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/vestingd/internal/ledger"
	"gitlab.com/accumulatenetwork/vestingd/internal/logging"
	. "gitlab.com/accumulatenetwork/vestingd/internal/util/cmd"
	"gitlab.com/accumulatenetwork/vestingd/internal/view"
)

var cmdLedger = &cobra.Command{
	Use:   "ledger <account>",
	Short: "Print the vesting ledger of an account",
	Args:  cobra.ExactArgs(1),
	Run:   printLedger,
}

func init() {
	cmdMain.AddCommand(cmdLedger)
}

func printLedger(cmd *cobra.Command, args []string) {
	ctx := ContextForMainProcess(context.Background())
	account := checkAccount(args[0])

	cfg := loadConfig(cmd)
	logger := newLogger(cfg)
	contracts := dialContracts(ctx, cfg, logger)
	defer contracts.Close()

	builder := ledger.NewBuilder(contracts, cfg.Ledger.Concurrency, logging.Module(logger, "ledger"))
	snap, err := builder.Load(ctx, account)
	Checkf(err, "load ledger of %s", account)

	page := view.Render(snap, viewOptions(cfg))
	if flagMain.JSON {
		printJSON(page)
		return
	}
	Check(view.WriteTable(os.Stdout, page))
}
