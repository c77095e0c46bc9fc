// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package vesting

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func ids(grants []Grant) []uint64 {
	var ids []uint64
	for _, g := range grants {
		ids = append(ids, g.ID)
	}
	return ids
}

func grant(id uint64) Grant {
	return Grant{ID: id, Amount: big.NewInt(int64(id) * 100), Proof: ProofProcessing}
}

func TestPrependKeepsOrder(t *testing.T) {
	l := NewLedger("0xabc")
	l.Replace([]Grant{grant(3), grant(2), grant(0)})

	l.Prepend(grant(5))
	require.Equal(t, []uint64{5, 3, 2, 0}, ids(l.Grants()))

	l.Prepend(grant(7))
	require.Equal(t, []uint64{7, 5, 3, 2, 0}, ids(l.Grants()))
}

func TestSetProof(t *testing.T) {
	l := NewLedger("0xabc")
	l.Replace([]Grant{grant(3), grant(2), grant(0)})

	require.True(t, l.SetProof(2, "0xfeed"))
	grants := l.Grants()
	require.Equal(t, []uint64{3, 2, 0}, ids(grants))
	require.Equal(t, "0xfeed", grants[1].Proof)
	require.Equal(t, ProofProcessing, grants[0].Proof)
}

func TestSetProofUnknownID(t *testing.T) {
	l := NewLedger("0xabc")
	l.Replace([]Grant{grant(3), grant(2)})
	before := l.Grants()

	require.False(t, l.SetProof(9, "0xfeed"))
	require.Equal(t, before, l.Grants())
}

func TestGrantsAreCopies(t *testing.T) {
	l := NewLedger("0xabc")
	l.Replace([]Grant{grant(1)})

	grants := l.Grants()
	grants[0].Amount.SetInt64(1)
	grants[0].Proof = "changed"

	require.Equal(t, int64(100), l.Grants()[0].Amount.Int64())
	require.Equal(t, ProofProcessing, l.Grants()[0].Proof)
}

func TestProofOrProcessing(t *testing.T) {
	require.Equal(t, ProofProcessing, ProofOrProcessing(""))
	require.Equal(t, "0xfeed", ProofOrProcessing("0xfeed"))
}

func TestStartTimeBounds(t *testing.T) {
	require.Equal(t, "2020-01-01T00:00:00Z", StartTime(1577836800).Format("2006-01-02T15:04:05Z07:00"))
	require.Equal(t, 9999, StartTime(MaxStart).Year())
	require.True(t, StartTime(MaxStart+1).IsZero())
	require.True(t, StartTime(math.MaxUint64).IsZero())
}
