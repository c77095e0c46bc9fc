// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package view renders session snapshots into page models.
package view

import (
	"math/big"
	"time"

	"github.com/dustin/go-humanize"
	"gitlab.com/accumulatenetwork/vestingd/internal/ledger"
)

// TimeLayout is the display format of grant start times.
const TimeLayout = "02/01/2006, 03:04:05 pm"

type Options struct {
	// Location start times are displayed in. Defaults to UTC.
	Location *time.Location
	// Denom is appended to amounts, if set.
	Denom string
}

// Page is everything a client needs to draw the vesting view.
type Page struct {
	Account string `json:"account,omitempty"`
	Phase   string `json:"phase"`
	// Spinner replaces the whole view.
	Spinner bool `json:"spinner"`
	// TableSpinner replaces only the ledger table.
	TableSpinner bool         `json:"tableSpinner"`
	Error        string       `json:"error,omitempty"`
	Balance      *BalancePane `json:"balance,omitempty"`
	Rows         []Row        `json:"rows,omitempty"`
	Actions      *ActionBar   `json:"actions,omitempty"`
}

type BalancePane struct {
	Balance   string `json:"balance"`
	Spendable string `json:"spendable"`
	Locked    string `json:"locked"`
}

type Row struct {
	ID         uint64 `json:"id"`
	Amount     string `json:"amount"`
	Start      string `json:"start"`
	Recipient  string `json:"recipient"`
	Proof      string `json:"proof"`
	Processing bool   `json:"processing"`
}

// ActionBar is the lock control. It is only offered once the ledger is ready.
type ActionBar struct {
	Available string `json:"available"`
	Enabled   bool   `json:"enabled"`
}

// Render builds the page for a snapshot. It has no side effects.
func Render(snap ledger.Snapshot, opts Options) Page {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	page := Page{Account: snap.Account, Phase: snap.Phase.String()}
	switch snap.Phase {
	case ledger.PhaseIdle, ledger.PhaseLoadingBase:
		page.Spinner = true
		return page
	case ledger.PhaseLoadingTable:
		page.TableSpinner = true
	case ledger.PhaseError:
		if snap.Err != nil {
			page.Error = snap.Err.Error()
		} else {
			page.Error = "failed to load vestings"
		}
	}

	if snap.Balance != nil && snap.Spendable != nil {
		locked := new(big.Int).Sub(snap.Balance, snap.Spendable)
		if locked.Sign() < 0 {
			locked.SetInt64(0)
		}
		page.Balance = &BalancePane{
			Balance:   FormatAmount(snap.Balance, opts.Denom),
			Spendable: FormatAmount(snap.Spendable, opts.Denom),
			Locked:    FormatAmount(locked, opts.Denom),
		}
	}

	if snap.Phase != ledger.PhaseReady {
		return page
	}

	page.Rows = make([]Row, 0, len(snap.Grants))
	for _, g := range snap.Grants {
		page.Rows = append(page.Rows, Row{
			ID:         g.ID,
			Amount:     FormatAmount(g.Amount, opts.Denom),
			Start:      FormatTime(g.Start, loc),
			Recipient:  g.Recipient,
			Proof:      g.Proof,
			Processing: g.Processing(),
		})
	}

	page.Actions = &ActionBar{Enabled: snap.Spendable != nil && snap.Spendable.Sign() > 0}
	if snap.Spendable != nil {
		page.Actions.Available = FormatAmount(snap.Spendable, opts.Denom)
	}
	return page
}

// FormatAmount formats token units with digit grouping. v is not modified.
func FormatAmount(v *big.Int, denom string) string {
	if v == nil {
		return ""
	}
	// BigComma divides its argument in place
	s := humanize.BigComma(new(big.Int).Set(v))
	if denom != "" {
		s += " " + denom
	}
	return s
}

func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(TimeLayout)
}
