// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/vestingd/internal/events"
	"gitlab.com/accumulatenetwork/vestingd/internal/ledger"
	"gitlab.com/accumulatenetwork/vestingd/internal/logging"
	. "gitlab.com/accumulatenetwork/vestingd/internal/util/cmd"
	"gitlab.com/accumulatenetwork/vestingd/internal/view"
)

var cmdWatch = &cobra.Command{
	Use:   "watch <account>",
	Short: "Print the vesting ledger of an account every time it changes",
	Args:  cobra.ExactArgs(1),
	Run:   watchLedger,
}

func init() {
	cmdMain.AddCommand(cmdWatch)
}

func watchLedger(cmd *cobra.Command, args []string) {
	ctx := ContextForMainProcess(context.Background())
	account := checkAccount(args[0])

	cfg := loadConfig(cmd)
	logger := newLogger(cfg)
	contracts := dialContracts(ctx, cfg, logger)
	defer contracts.Close()

	opts := viewOptions(cfg)
	session := ledger.NewSession(ledger.SessionOptions{
		Contracts:   contracts,
		Events:      contracts,
		Concurrency: cfg.Ledger.Concurrency,
		Logger:      logging.Module(logger, "ledger"),
	})
	defer session.Close()

	// Holds the latest unprinted page; older ones are replaced
	pages := make(chan view.Page, 1)
	unsub := events.SubscribeSync(session.Bus(), func(e ledger.Changed) {
		events.OfferLatest(pages, view.Render(e.Snapshot, opts))
	})
	defer unsub()

	Check(session.Select(account))
	for {
		select {
		case <-ctx.Done():
			return
		case page := <-pages:
			if page.Spinner {
				continue
			}
			if flagMain.JSON {
				printJSON(page)
				continue
			}
			fmt.Println(Highlight(fmt.Sprintf("== %s (%s) ==", time.Now().Format(time.RFC3339), page.Phase)))
			Check(view.WriteTable(os.Stdout, page))
		}
	}
}
