// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
)

type newLockLog struct {
	LockAddress common.Address
	VestingId   *big.Int
	Amount      *big.Int
	Account     string
}

type newProofLog struct {
	LockAddress common.Address
	Claimer     common.Address
	VestingId   *big.Int
	ProofTx     string
}

// SubscribeVesting delivers the NewLock events whose lock address is the
// account and the NewProof events whose claimer is the account. Both come
// from a single log subscription, so they arrive in chain order.
func (c *Client) SubscribeVesting(ctx context.Context, account string, sink chan<- vesting.Event) (event.Subscription, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return nil, err
	}

	// The account is in a different topic for each event, so the node filters
	// on the event IDs and the client filters on the account
	query := ethereum.FilterQuery{
		Addresses: []common.Address{c.vestingAddr},
		Topics:    [][]common.Hash{{newLockID, newProofID}},
	}
	logs := make(chan types.Log, 16)
	sub, err := c.filterer.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return nil, errors.FetchFailed.WithCauseAndFormat(err, "subscribe to vesting events")
	}

	topic := common.BytesToHash(addr.Bytes())
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				if log.Removed {
					c.logger.Debug().Uint64("block", log.BlockNumber).Msg("Ignoring removed log")
					continue
				}

				ev, ok, err := c.decodeVesting(log, topic)
				if err != nil {
					c.logger.Error().Err(err).Uint64("block", log.BlockNumber).Uint("index", log.Index).Msg("Dropping malformed log")
					continue
				}
				if !ok {
					continue
				}

				select {
				case sink <- ev:
				case <-quit:
					return nil
				}

			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// decodeVesting decodes a log. It returns false if the log is not for the
// account.
func (c *Client) decodeVesting(log types.Log, account common.Hash) (vesting.Event, bool, error) {
	ev := vesting.Event{Block: log.BlockNumber, Index: log.Index}
	if len(log.Topics) == 0 {
		return ev, false, errors.EncodingError.With("log has no topics")
	}

	switch log.Topics[0] {
	case newLockID:
		if len(log.Topics) < 2 || log.Topics[1] != account {
			return ev, false, nil
		}
		v := new(newLockLog)
		if err := c.vesting.UnpackLog(v, "NewLock", log); err != nil {
			return ev, false, errors.EncodingError.WithCauseAndFormat(err, "unpack NewLock")
		}
		if !v.VestingId.IsUint64() {
			return ev, false, errors.EncodingError.WithFormat("NewLock vesting ID %v overflows", v.VestingId)
		}
		ev.Lock = &vesting.NewLock{
			LockAddress: address.NormalizeETH(v.LockAddress),
			VestingID:   v.VestingId.Uint64(),
			Amount:      v.Amount,
			Account:     v.Account,
		}

	case newProofID:
		if len(log.Topics) < 3 || log.Topics[2] != account {
			return ev, false, nil
		}
		v := new(newProofLog)
		if err := c.vesting.UnpackLog(v, "NewProof", log); err != nil {
			return ev, false, errors.EncodingError.WithCauseAndFormat(err, "unpack NewProof")
		}
		if !v.VestingId.IsUint64() {
			return ev, false, errors.EncodingError.WithFormat("NewProof vesting ID %v overflows", v.VestingId)
		}
		ev.Proof = &vesting.NewProof{
			LockAddress: address.NormalizeETH(v.LockAddress),
			Claimer:     address.NormalizeETH(v.Claimer),
			VestingID:   v.VestingId.Uint64(),
			ProofTx:     v.ProofTx,
		}

	default:
		return ev, false, nil
	}
	return ev, true, nil
}
