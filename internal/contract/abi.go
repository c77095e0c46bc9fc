// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// TokenManagerABI is the subset of the Aragon TokenManager ABI used to list
// vestings and spendable balances.
const TokenManagerABI = `[
	{"constant":true,"inputs":[{"name":"_recipient","type":"address"}],"name":"vestingsLengths","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"_recipient","type":"address"},{"name":"_vestingId","type":"uint256"}],"name":"getVesting","outputs":[{"name":"amount","type":"uint256"},{"name":"start","type":"uint64"},{"name":"cliff","type":"uint64"},{"name":"vesting","type":"uint64"},{"name":"revokable","type":"bool"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"_holder","type":"address"}],"name":"spendableBalanceOf","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}
]`

// TokenABI is the subset of the ERC-20 ABI used to read balances.
const TokenABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}
]`

// VestingABI is the ABI of the cyber~Congress vesting contract that links
// vestings to claim addresses and proofs.
const VestingABI = `[
	{"constant":true,"inputs":[{"name":"_address","type":"address"},{"name":"_vestingId","type":"uint256"}],"name":"getClaimAddress","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"_address","type":"address"},{"name":"_vestingId","type":"uint256"}],"name":"getProof","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"lockAddress","type":"address"},{"indexed":false,"name":"vestingId","type":"uint256"},{"indexed":false,"name":"amount","type":"uint256"},{"indexed":false,"name":"account","type":"string"}],"name":"NewLock","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"lockAddress","type":"address"},{"indexed":true,"name":"claimer","type":"address"},{"indexed":false,"name":"vestingId","type":"uint256"},{"indexed":false,"name":"proofTx","type":"string"}],"name":"NewProof","type":"event"}
]`

var (
	tokenManagerABI = mustParseABI(TokenManagerABI)
	tokenABI        = mustParseABI(TokenABI)
	vestingABI      = mustParseABI(VestingABI)

	newLockID  = vestingABI.Events["NewLock"].ID
	newProofID = vestingABI.Events["NewProof"].ID
)

func mustParseABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}
