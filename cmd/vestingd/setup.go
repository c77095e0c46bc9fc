// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/vestingd/config"
	"gitlab.com/accumulatenetwork/vestingd/internal/contract"
	"gitlab.com/accumulatenetwork/vestingd/internal/identity"
	"gitlab.com/accumulatenetwork/vestingd/internal/logging"
	"gitlab.com/accumulatenetwork/vestingd/internal/search"
	. "gitlab.com/accumulatenetwork/vestingd/internal/util/cmd"
	"gitlab.com/accumulatenetwork/vestingd/internal/view"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
)

func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.LoadWithFlags(flagMain.WorkDir, cmd.Flags())
	Checkf(err, "load config")
	return cfg
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger, err := logging.NewLogger(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	Checkf(err, "logging")
	return logger
}

func dialContracts(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *contract.Client {
	c, err := contract.Dial(ctx, cfg.RPC.URL, contract.Addresses{
		TokenManager: common.HexToAddress(cfg.Contracts.TokenManager),
		Token:        common.HexToAddress(cfg.Contracts.Token),
		Vesting:      common.HexToAddress(cfg.Contracts.Vesting),
	}, logging.Module(logger, "contract"))
	Check(err)
	return c
}

func newResolver(cfg *config.Config, logger zerolog.Logger) *identity.Resolver {
	src, err := search.NewClient(cfg.Search.URL, &http.Client{Timeout: cfg.Search.Timeout})
	Checkf(err, "search client")

	r, err := identity.NewResolver(identity.Options{
		Source:    src,
		Network:   cfg.Search.Network,
		Timeout:   cfg.Search.Timeout,
		CacheSize: cfg.Search.CacheSize,
		Logger:    logging.Module(logger, "identity"),
	})
	Check(err)
	return r
}

func viewOptions(cfg *config.Config) view.Options {
	loc, err := cfg.Location()
	Check(err)
	return view.Options{Location: loc, Denom: cfg.Ledger.Denom}
}

func checkAccount(account string) string {
	if _, ok := address.ParseETH(account); !ok {
		Fatalf("%q is not an Ethereum address", account)
	}
	return address.Normalize(account)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	Check(enc.Encode(v))
}
