// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"strings"

	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
)

// Phase is the loading phase of a session.
type Phase int

const (
	// PhaseIdle means no account has been selected.
	PhaseIdle Phase = iota
	// PhaseLoadingBase means the balances have not arrived yet.
	PhaseLoadingBase
	// PhaseLoadingTable means the balances are known but the grant table is
	// still loading.
	PhaseLoadingTable
	// PhaseReady means the ledger is complete and live events are applied.
	PhaseReady
	// PhaseError means the initial load failed.
	PhaseError
)

var phaseNames = map[Phase]string{
	PhaseIdle:         "idle",
	PhaseLoadingBase:  "loadingBase",
	PhaseLoadingTable: "loadingTable",
	PhaseReady:        "ready",
	PhaseError:        "error",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for q, s := range phaseNames {
		if strings.EqualFold(s, string(b)) {
			*p = q
			return nil
		}
	}
	return errors.BadRequest.WithFormat("invalid phase %q", b)
}

// Loading returns true while any part of the initial load is outstanding.
func (p Phase) Loading() bool {
	return p == PhaseLoadingBase || p == PhaseLoadingTable
}

// input drives a phase transition.
type input int

const (
	inputSelect input = iota
	inputBalances
	inputTable
	inputFailed
)

var transitions = map[Phase]map[input]Phase{
	PhaseIdle: {
		inputSelect: PhaseLoadingBase,
	},
	PhaseLoadingBase: {
		inputSelect:   PhaseLoadingBase,
		inputBalances: PhaseLoadingTable,
		inputFailed:   PhaseError,
	},
	PhaseLoadingTable: {
		inputSelect: PhaseLoadingBase,
		inputTable:  PhaseReady,
		inputFailed: PhaseError,
	},
	PhaseReady: {
		inputSelect:   PhaseLoadingBase,
		inputBalances: PhaseReady,
	},
	PhaseError: {
		inputSelect: PhaseLoadingBase,
	},
}

// next returns the phase that follows p on the given input, or false if the
// input is not valid in p.
func (p Phase) next(in input) (Phase, bool) {
	q, ok := transitions[p][in]
	return q, ok
}
