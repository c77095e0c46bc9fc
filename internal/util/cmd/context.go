// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package cmdutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ContextForMainProcess returns a context that is canceled on SIGINT or
// SIGTERM. A second signal exits immediately.
func ContextForMainProcess(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
		case <-ctx.Done():
			return
		}
		cancel()

		select {
		case <-sigs:
			exit(1)
		case <-ctx.Done():
		}
	}()

	return ctx
}
