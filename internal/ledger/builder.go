// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"context"
	"math/big"

	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
	"golang.org/x/sync/errgroup"
)

// maxGrants bounds the grant count reported by the contract.
const maxGrants = 1 << 16

// Builder reads the complete vesting ledger of an account.
type Builder struct {
	contracts   Contracts
	concurrency int
	logger      zerolog.Logger
}

func NewBuilder(contracts Contracts, concurrency int, logger zerolog.Logger) *Builder {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Builder{contracts: contracts, concurrency: concurrency, logger: logger}
}

// Build reads every activated grant of the account, most recent first. Grants
// without a claim address are skipped. Any read failure fails the whole build.
func (b *Builder) Build(ctx context.Context, account string) ([]vesting.Grant, error) {
	n, err := b.contracts.VestingsLengths(ctx, account)
	if err != nil {
		return nil, fetchError(ctx, err, "read vesting count of %s", account)
	}
	if n > maxGrants {
		return nil, errors.EncodingError.WithFormat("%s has too many vestings (%d)", account, n)
	}

	// Reads complete in any order, so results are slotted by index
	slots := make([]*vesting.Grant, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i := uint64(0); i < n; i++ {
		i := i
		g.Go(func() error {
			grant, err := b.read(gctx, account, i)
			if err != nil {
				return err
			}
			slots[i] = grant
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grants := make([]vesting.Grant, 0, n)
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i] != nil {
			grants = append(grants, *slots[i])
		}
	}

	b.logger.Debug().Str("account", account).Uint64("vestings", n).Int("grants", len(grants)).Msg("Built ledger")
	return grants, nil
}

func (b *Builder) read(ctx context.Context, account string, index uint64) (*vesting.Grant, error) {
	schedule, err := b.contracts.GetVesting(ctx, account, index)
	if err != nil {
		return nil, fetchError(ctx, err, "read vesting %d of %s", index, account)
	}

	claim, err := b.contracts.GetClaimAddress(ctx, account, index)
	if err != nil {
		return nil, fetchError(ctx, err, "read claim address of vesting %d of %s", index, account)
	}
	if claim == "" {
		// Not activated yet
		return nil, nil
	}

	proof, err := b.contracts.GetProof(ctx, account, index)
	if err != nil {
		return nil, fetchError(ctx, err, "read proof of vesting %d of %s", index, account)
	}

	return &vesting.Grant{
		ID:        index,
		Amount:    schedule.Amount,
		Start:     vesting.StartTime(schedule.Start),
		Recipient: claim,
		Proof:     vesting.ProofOrProcessing(proof),
	}, nil
}

// Balances reads the account's balance and spendable balance.
func (b *Builder) Balances(ctx context.Context, account string) (balance, spendable *big.Int, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = b.contracts.BalanceOf(gctx, account)
		if err != nil {
			return fetchError(gctx, err, "read balance of %s", account)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		spendable, err = b.contracts.SpendableBalanceOf(gctx, account)
		if err != nil {
			return fetchError(gctx, err, "read spendable balance of %s", account)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return balance, spendable, nil
}

// Load reads the balances and grants of the account in one shot.
func (b *Builder) Load(ctx context.Context, account string) (Snapshot, error) {
	snap := Snapshot{Account: account, Phase: PhaseReady}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Balance, snap.Spendable, err = b.Balances(gctx, account)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Grants, err = b.Build(gctx, account)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Schedule reads a single vesting schedule.
func (b *Builder) Schedule(ctx context.Context, account string, index uint64) (vesting.Schedule, error) {
	schedule, err := b.contracts.GetVesting(ctx, account, index)
	if err != nil {
		return vesting.Schedule{}, fetchError(ctx, err, "read vesting %d of %s", index, account)
	}
	return schedule, nil
}

func fetchError(ctx context.Context, err error, format string, args ...interface{}) error {
	switch {
	case ctx.Err() != nil:
		return errors.Canceled.WithCauseAndFormat(ctx.Err(), format, args...)
	case errors.Code(err) == errors.BadRequest:
		return err
	default:
		return errors.FetchFailed.WithCauseAndFormat(err, format, args...)
	}
}
