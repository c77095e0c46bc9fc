// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vesting

import "math/big"

// NewLock is emitted by the vesting contract when tokens are locked.
// Addresses are lower-cased hex.
type NewLock struct {
	LockAddress string   `json:"lockAddress"`
	VestingID   uint64   `json:"vestingId"`
	Amount      *big.Int `json:"amount"`
	Account     string   `json:"account"`
}

// NewProof is emitted by the vesting contract when a claim proof is submitted.
// Addresses are lower-cased hex.
type NewProof struct {
	LockAddress string `json:"lockAddress"`
	Claimer     string `json:"claimer"`
	VestingID   uint64 `json:"vestingId"`
	ProofTx     string `json:"proofTx"`
}

// Event is one vesting contract log. Exactly one of Lock and Proof is set.
// Block and Index locate the log on chain; events for an account are
// delivered in that order.
type Event struct {
	Block uint64    `json:"block"`
	Index uint      `json:"index"`
	Lock  *NewLock  `json:"lock,omitempty"`
	Proof *NewProof `json:"proof,omitempty"`
}
