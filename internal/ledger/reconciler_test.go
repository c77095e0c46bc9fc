// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"math/big"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
)

func baseLedger() *vesting.Ledger {
	l := vesting.NewLedger(testAccount)
	l.Replace([]vesting.Grant{
		{ID: 3, Amount: big.NewInt(400), Recipient: "cyber1ddd", Proof: vesting.ProofProcessing},
		{ID: 2, Amount: big.NewInt(300), Recipient: "cyber1ccc", Proof: vesting.ProofProcessing},
		{ID: 0, Amount: big.NewInt(100), Recipient: "cyber1aaa", Proof: "0xaaa"},
	})
	return l
}

func lockEvent(id uint64) vesting.NewLock {
	return vesting.NewLock{
		LockAddress: "0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c",
		VestingID:   id,
		Amount:      big.NewInt(int64(id) * 100),
		Account:     "cyber1new",
	}
}

func TestNewLockPrepends(t *testing.T) {
	l := baseLedger()
	r := NewReconciler(testAccount, zerolog.Nop())

	ev := lockEvent(5)
	require.True(t, r.MatchesLock(ev))
	seq := r.AdmitLock(ev)
	r.Resolve(seq, &vesting.Schedule{Start: 1600000000})

	out := r.Apply(l)
	require.Equal(t, 1, out.Inserted)
	require.True(t, out.Changed())

	grants := l.Grants()
	require.Equal(t, []uint64{5, 3, 2, 0}, grantIDs(grants))
	require.Equal(t, vesting.ProofProcessing, grants[0].Proof)
	require.Equal(t, "cyber1new", grants[0].Recipient)
	require.Equal(t, int64(500), grants[0].Amount.Int64())
	require.Equal(t, vesting.StartTime(1600000000), grants[0].Start)
	require.Equal(t, 0, r.Pending())
}

func TestNewLockArrivalOrder(t *testing.T) {
	l := baseLedger()
	r := NewReconciler(testAccount, zerolog.Nop())

	seq5 := r.AdmitLock(lockEvent(5))
	seq7 := r.AdmitLock(lockEvent(7))

	// The later event resolves first but must wait
	r.Resolve(seq7, &vesting.Schedule{Start: 2})
	require.False(t, r.Apply(l).Changed())
	require.Equal(t, 2, r.Pending())

	r.Resolve(seq5, &vesting.Schedule{Start: 1})
	require.Equal(t, 2, r.Apply(l).Inserted)
	require.Equal(t, []uint64{7, 5, 3, 2, 0}, grantIDs(l.Grants()))
}

func TestNewLockFetchFailureDrops(t *testing.T) {
	l := baseLedger()
	r := NewReconciler(testAccount, zerolog.Nop())

	seq5 := r.AdmitLock(lockEvent(5))
	seq7 := r.AdmitLock(lockEvent(7))
	r.Resolve(seq5, nil)
	r.Resolve(seq7, &vesting.Schedule{Start: 2})

	require.Equal(t, 1, r.Apply(l).Inserted)
	require.Equal(t, []uint64{7, 3, 2, 0}, grantIDs(l.Grants()))
}

func TestNewProofUpdatesInPlace(t *testing.T) {
	l := baseLedger()
	r := NewReconciler(testAccount, zerolog.Nop())

	ev := vesting.NewProof{LockAddress: "0xaa", Claimer: testAccount, VestingID: 2, ProofTx: "0xccc"}
	require.True(t, r.MatchesProof(ev))
	r.AdmitProof(ev)
	require.Equal(t, 1, r.Apply(l).Proved)

	grants := l.Grants()
	require.Equal(t, []uint64{3, 2, 0}, grantIDs(grants))
	require.Equal(t, "0xccc", grants[1].Proof)
	require.Equal(t, vesting.ProofProcessing, grants[0].Proof)
}

func TestNewProofUnknownID(t *testing.T) {
	l := baseLedger()
	before := l.Grants()
	r := NewReconciler(testAccount, zerolog.Nop())

	r.AdmitProof(vesting.NewProof{Claimer: testAccount, VestingID: 9, ProofTx: "0x999"})
	require.False(t, r.Apply(l).Changed())
	require.Equal(t, before, l.Grants())
}

func TestProofWaitsForEarlierLock(t *testing.T) {
	l := baseLedger()
	r := NewReconciler(testAccount, zerolog.Nop())

	seq := r.AdmitLock(lockEvent(5))
	r.AdmitProof(vesting.NewProof{Claimer: testAccount, VestingID: 5, ProofTx: "0x555"})
	require.False(t, r.Apply(l).Changed())

	r.Resolve(seq, &vesting.Schedule{Start: 1})
	out := r.Apply(l)
	require.Equal(t, 1, out.Inserted)
	require.Equal(t, 1, out.Proved)
	require.Equal(t, "0x555", l.Grants()[0].Proof)
}

func TestEventsForOtherAccounts(t *testing.T) {
	r := NewReconciler(testAccount, zerolog.Nop())

	require.True(t, r.MatchesLock(vesting.NewLock{LockAddress: "0x5A0B54D5DC17E0AADC383D2DB43B0A0D3E029C4C"}))
	require.False(t, r.MatchesLock(vesting.NewLock{LockAddress: "0x00000000000000000000000000000000000000aa"}))
	require.True(t, r.MatchesProof(vesting.NewProof{Claimer: "0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c"}))
	require.False(t, r.MatchesProof(vesting.NewProof{Claimer: "0x00000000000000000000000000000000000000aa", LockAddress: testAccount}))
}
