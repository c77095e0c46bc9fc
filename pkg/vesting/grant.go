// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package vesting defines the vesting grant and ledger types shared by the
// ledger builder, the event reconciler and the presentation layer.
package vesting

import (
	"math/big"
	"time"
)

// ProofProcessing is the proof of a grant whose claim has not been submitted.
const ProofProcessing = "processing"

// Grant is a single vesting lock of an account.
type Grant struct {
	// ID is unique within one account's grants.
	ID        uint64    `json:"id"`
	Amount    *big.Int  `json:"amount"`
	Start     time.Time `json:"start"`
	Recipient string    `json:"recipient"`
	Proof     string    `json:"proof"`
}

// Copy returns a deep copy of the grant.
func (g Grant) Copy() Grant {
	if g.Amount != nil {
		g.Amount = new(big.Int).Set(g.Amount)
	}
	return g
}

// Processing returns true if the grant's proof has not been submitted.
func (g Grant) Processing() bool {
	return g.Proof == ProofProcessing
}

// ProofOrProcessing substitutes ProofProcessing for an empty proof.
func ProofOrProcessing(proof string) string {
	if proof == "" {
		return ProofProcessing
	}
	return proof
}

// MaxStart is the latest start time that can be displayed,
// 9999-12-31T23:59:59Z.
const MaxStart uint64 = 253402300799

// StartTime converts a contract start time, in seconds since the epoch, to a
// time. Start times after MaxStart give the zero time.
func StartTime(seconds uint64) time.Time {
	if seconds > MaxStart {
		return time.Time{}
	}
	return time.Unix(int64(seconds), 0).UTC()
}

// Schedule is the on-chain vesting record of a grant.
type Schedule struct {
	Amount *big.Int
	// Start is in seconds since the epoch.
	Start uint64
}
