// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"context"
	"math/big"

	ethevent "github.com/ethereum/go-ethereum/event"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
)

// Contracts are the contract reads the ledger is built from.
type Contracts interface {
	VestingsLengths(ctx context.Context, account string) (uint64, error)
	GetVesting(ctx context.Context, account string, index uint64) (vesting.Schedule, error)
	GetClaimAddress(ctx context.Context, account string, index uint64) (string, error)
	GetProof(ctx context.Context, account string, index uint64) (string, error)
	BalanceOf(ctx context.Context, account string) (*big.Int, error)
	SpendableBalanceOf(ctx context.Context, account string) (*big.Int, error)
}

// EventSource delivers live contract events for an account, NewLock and
// NewProof together in chain order. A session owns the subscription it
// creates and releases it when the account changes or the session closes.
type EventSource interface {
	SubscribeVesting(ctx context.Context, account string, sink chan<- vesting.Event) (ethevent.Subscription, error)
}
