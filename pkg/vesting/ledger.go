// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vesting

import "math/big"

// Ledger is the vesting ledger of one account: its grants, most recent
// first, and its balances. A Ledger is owned by a single session and is not
// safe for concurrent use.
type Ledger struct {
	Account   string
	Balance   *big.Int
	Spendable *big.Int
	grants    []Grant
}

// NewLedger returns an empty ledger for the account.
func NewLedger(account string) *Ledger {
	return &Ledger{Account: account}
}

// Replace replaces every grant. The grants must already be ordered most
// recent first.
func (l *Ledger) Replace(grants []Grant) {
	l.grants = make([]Grant, len(grants))
	for i, g := range grants {
		l.grants[i] = g.Copy()
	}
}

// Prepend inserts a grant at the head of the ledger. Existing grants keep
// their order.
func (l *Ledger) Prepend(g Grant) {
	l.grants = append([]Grant{g.Copy()}, l.grants...)
}

// SetProof replaces the proof of the grant with the given ID. It returns false
// and leaves the ledger unchanged if there is no such grant.
func (l *Ledger) SetProof(id uint64, proof string) bool {
	var found bool
	for i := range l.grants {
		if l.grants[i].ID == id {
			l.grants[i].Proof = proof
			found = true
		}
	}
	return found
}

// Has returns true if the ledger contains a grant with the given ID.
func (l *Ledger) Has(id uint64) bool {
	for _, g := range l.grants {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of grants.
func (l *Ledger) Len() int { return len(l.grants) }

// Grants returns a copy of the grants, most recent first.
func (l *Ledger) Grants() []Grant {
	grants := make([]Grant, len(l.grants))
	for i, g := range l.grants {
		grants[i] = g.Copy()
	}
	return grants
}

// SetBalances records the account's balance and spendable balance.
func (l *Ledger) SetBalances(balance, spendable *big.Int) {
	l.Balance = copyInt(balance)
	l.Spendable = copyInt(spendable)
}

// HasBalances returns true once balances have been recorded.
func (l *Ledger) HasBalances() bool {
	return l.Balance != nil && l.Spendable != nil
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
