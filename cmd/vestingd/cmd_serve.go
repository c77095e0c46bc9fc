// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/vestingd/internal/ledger"
	"gitlab.com/accumulatenetwork/vestingd/internal/logging"
	. "gitlab.com/accumulatenetwork/vestingd/internal/util/cmd"
	"gitlab.com/accumulatenetwork/vestingd/internal/web"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON-RPC API, the websocket stream, and the dashboard",
	Args:  cobra.NoArgs,
	Run:   serve,
}

var flagServe struct {
	Listen   string
	NoEvents bool
}

func init() {
	cmdMain.AddCommand(cmdServe)

	cmdServe.Flags().StringVarP(&flagServe.Listen, "listen", "l", "", "Listening address, overrides the config")
	cmdServe.Flags().BoolVar(&flagServe.NoEvents, "no-events", false, "Do not subscribe to contract events")
}

func serve(cmd *cobra.Command, _ []string) {
	ctx := ContextForMainProcess(context.Background())

	cfg := loadConfig(cmd)
	logger := newLogger(cfg)

	contracts := dialContracts(ctx, cfg, logger)
	defer contracts.Close()

	var events ledger.EventSource
	if flagServe.NoEvents {
		Warnf("Contract events are disabled, ledgers will not update after loading")
	} else {
		events = contracts
	}

	api := web.NewServer(web.Options{
		Contracts:   contracts,
		Events:      events,
		Resolver:    newResolver(cfg, logger),
		View:        viewOptions(cfg),
		Concurrency: cfg.Ledger.Concurrency,
		Logger:      logging.Module(logger, "web"),
	})
	mux := api.NewMux()
	if cfg.Web.EnableMetrics {
		mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{MaxRequestsInFlight: cfg.Web.ConnectionLimit},
			),
		))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Web.AllowedOrigins,
	})
	server := &http.Server{
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: cfg.Web.ReadHeaderTimeout,
	}

	l, err := net.Listen("tcp", cfg.Web.ListenAddress)
	Checkf(err, "listen on %s", cfg.Web.ListenAddress)
	l = web.LimitListener(l, cfg.Web.ConnectionLimit)
	fmt.Printf("Listening on %v\n", Highlight(l.Addr().String()))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		err := server.Serve(l)
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Stringer("address", l.Addr()).Msg("Server stopped")
		}
	}()

	select {
	case <-ctx.Done():
	case <-stopped:
		return
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = server.Shutdown(sctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Shutdown incomplete")
	}
}
