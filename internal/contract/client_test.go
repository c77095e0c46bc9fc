// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package contract

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
)

const testAccount = "0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c"

// fakeBackend answers contract calls by decoding the ABI-encoded call data and
// encoding the registered response. Methods that are not overridden panic.
type fakeBackend struct {
	bind.ContractBackend
	t     testing.TB
	calls map[string]func(args []interface{}) ([]interface{}, error)

	logs    chan<- types.Log
	queries []ethereum.FilterQuery
	ready   chan struct{}
}

func newFakeBackend(t testing.TB) *fakeBackend {
	return &fakeBackend{
		t:     t,
		calls: map[string]func([]interface{}) ([]interface{}, error){},
		ready: make(chan struct{}, 2),
	}
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}

func (b *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	for _, a := range []abi.ABI{tokenManagerABI, tokenABI, vestingABI} {
		m, err := a.MethodById(call.Data[:4])
		if err != nil {
			continue
		}

		args, err := m.Inputs.Unpack(call.Data[4:])
		require.NoError(b.t, err)

		fn, ok := b.calls[m.Name]
		if !ok {
			return nil, fmt.Errorf("unexpected call to %s", m.Name)
		}
		out, err := fn(args)
		if err != nil {
			return nil, err
		}
		return m.Outputs.Pack(out...)
	}
	return nil, fmt.Errorf("unknown method %x", call.Data[:4])
}

func (b *fakeBackend) SubscribeFilterLogs(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	b.logs = ch
	b.queries = append(b.queries, q)
	b.ready <- struct{}{}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	}), nil
}

func newTestClient(t testing.TB) (*Client, *fakeBackend) {
	backend := newFakeBackend(t)
	c := New(Options{
		Backend: backend,
		Addresses: Addresses{
			TokenManager: common.HexToAddress("0x01"),
			Token:        common.HexToAddress("0x02"),
			Vesting:      common.HexToAddress("0x03"),
		},
		Logger: zerolog.Nop(),
	})
	return c, backend
}

func TestReads(t *testing.T) {
	c, backend := newTestClient(t)
	account := common.HexToAddress(testAccount)

	backend.calls["vestingsLengths"] = func(args []interface{}) ([]interface{}, error) {
		require.Equal(t, account, args[0])
		return []interface{}{big.NewInt(4)}, nil
	}
	backend.calls["getVesting"] = func(args []interface{}) ([]interface{}, error) {
		require.Equal(t, account, args[0])
		require.Equal(t, int64(2), args[1].(*big.Int).Int64())
		return []interface{}{big.NewInt(1000), uint64(1577836800), uint64(0), uint64(0), false}, nil
	}
	backend.calls["getClaimAddress"] = func(args []interface{}) ([]interface{}, error) {
		return []interface{}{"cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le"}, nil
	}
	backend.calls["getProof"] = func(args []interface{}) ([]interface{}, error) {
		return []interface{}{""}, nil
	}
	backend.calls["balanceOf"] = func(args []interface{}) ([]interface{}, error) {
		return []interface{}{big.NewInt(5000)}, nil
	}
	backend.calls["spendableBalanceOf"] = func(args []interface{}) ([]interface{}, error) {
		return []interface{}{big.NewInt(4000)}, nil
	}

	ctx := context.Background()

	n, err := c.VestingsLengths(ctx, testAccount)
	require.NoError(t, err)
	require.Equal(t, uint64(4), n)

	s, err := c.GetVesting(ctx, testAccount, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1000), s.Amount.Int64())
	require.Equal(t, uint64(1577836800), s.Start)

	claim, err := c.GetClaimAddress(ctx, testAccount, 2)
	require.NoError(t, err)
	require.Equal(t, "cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le", claim)

	proof, err := c.GetProof(ctx, testAccount, 2)
	require.NoError(t, err)
	require.Empty(t, proof)

	bal, err := c.BalanceOf(ctx, testAccount)
	require.NoError(t, err)
	require.Equal(t, int64(5000), bal.Int64())

	spend, err := c.SpendableBalanceOf(ctx, testAccount)
	require.NoError(t, err)
	require.Equal(t, int64(4000), spend.Int64())
}

func TestReadFailureIsClassified(t *testing.T) {
	c, backend := newTestClient(t)
	backend.calls["balanceOf"] = func([]interface{}) ([]interface{}, error) {
		return nil, fmt.Errorf("connection refused")
	}

	_, err := c.BalanceOf(context.Background(), testAccount)
	require.Error(t, err)
	require.Equal(t, errors.FetchFailed, errors.Code(err))
}

func TestInvalidAccount(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.VestingsLengths(context.Background(), "cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le")
	require.Equal(t, errors.BadRequest, errors.Code(err))
}

func packLock(t testing.TB, lock common.Address, id *big.Int, amount int64) types.Log {
	ev := vestingABI.Events["NewLock"]
	data, err := ev.Inputs.NonIndexed().Pack(id, big.NewInt(amount), "cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le")
	require.NoError(t, err)
	return types.Log{
		Topics: []common.Hash{ev.ID, common.BytesToHash(lock.Bytes())},
		Data:   data,
	}
}

func packProof(t testing.TB, lock, claimer common.Address, id *big.Int, tx string) types.Log {
	ev := vestingABI.Events["NewProof"]
	data, err := ev.Inputs.NonIndexed().Pack(id, tx)
	require.NoError(t, err)
	return types.Log{
		Topics: []common.Hash{ev.ID, common.BytesToHash(lock.Bytes()), common.BytesToHash(claimer.Bytes())},
		Data:   data,
	}
}

func receive(t testing.TB, sink <-chan vesting.Event) vesting.Event {
	t.Helper()
	select {
	case ev := <-sink:
		return ev
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
		panic("unreachable")
	}
}

func TestSubscribeVesting(t *testing.T) {
	c, backend := newTestClient(t)
	account := common.HexToAddress(testAccount)
	lock := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	sink := make(chan vesting.Event, 4)
	sub, err := c.SubscribeVesting(context.Background(), testAccount, sink)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	<-backend.ready

	// One query covering both events
	require.Len(t, backend.queries, 1)
	q := backend.queries[0]
	require.Equal(t, []common.Address{common.HexToAddress("0x03")}, q.Addresses)
	require.Len(t, q.Topics, 1)
	require.ElementsMatch(t, []common.Hash{vestingABI.Events["NewLock"].ID, vestingABI.Events["NewProof"].ID}, q.Topics[0])

	l := packLock(t, account, big.NewInt(5), 1000)
	l.BlockNumber, l.Index = 10, 3
	backend.logs <- l

	p := packProof(t, lock, account, big.NewInt(2), "0xfeed")
	p.BlockNumber, p.Index = 10, 4
	backend.logs <- p

	got := receive(t, sink)
	require.Equal(t, uint64(10), got.Block)
	require.Equal(t, uint(3), got.Index)
	require.Nil(t, got.Proof)
	require.NotNil(t, got.Lock)
	require.Equal(t, "0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c", got.Lock.LockAddress)
	require.Equal(t, uint64(5), got.Lock.VestingID)
	require.Equal(t, int64(1000), got.Lock.Amount.Int64())
	require.Equal(t, "cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le", got.Lock.Account)

	got = receive(t, sink)
	require.Equal(t, uint(4), got.Index)
	require.Nil(t, got.Lock)
	require.NotNil(t, got.Proof)
	require.Equal(t, "0x00000000000000000000000000000000000000aa", got.Proof.LockAddress)
	require.Equal(t, "0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c", got.Proof.Claimer)
	require.Equal(t, uint64(2), got.Proof.VestingID)
	require.Equal(t, "0xfeed", got.Proof.ProofTx)
}

func TestSubscribeVestingPreservesLogOrder(t *testing.T) {
	c, backend := newTestClient(t)
	account := common.HexToAddress(testAccount)

	sink := make(chan vesting.Event, 4)
	sub, err := c.SubscribeVesting(context.Background(), testAccount, sink)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	<-backend.ready

	// A proof for a lock in the same block must not overtake the lock
	backend.logs <- packLock(t, account, big.NewInt(7), 1)
	backend.logs <- packProof(t, account, account, big.NewInt(7), "0xbeef")
	backend.logs <- packLock(t, account, big.NewInt(8), 2)

	require.NotNil(t, receive(t, sink).Lock)
	require.NotNil(t, receive(t, sink).Proof)
	require.Equal(t, uint64(8), receive(t, sink).Lock.VestingID)
}

func TestSubscribeVestingFiltersLogs(t *testing.T) {
	c, backend := newTestClient(t)
	account := common.HexToAddress(testAccount)
	other := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	sink := make(chan vesting.Event, 4)
	sub, err := c.SubscribeVesting(context.Background(), testAccount, sink)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	<-backend.ready

	// Another account's lock, a proof claimed by another account, a removed
	// log and an ID that does not fit in 64 bits are all dropped
	backend.logs <- packLock(t, other, big.NewInt(1), 1)
	backend.logs <- packProof(t, account, other, big.NewInt(1), "0x01")
	removed := packLock(t, account, big.NewInt(1), 1)
	removed.Removed = true
	backend.logs <- removed
	backend.logs <- packLock(t, account, new(big.Int).Lsh(big.NewInt(1), 64), 1)
	backend.logs <- packProof(t, account, account, new(big.Int).Lsh(big.NewInt(1), 70), "0x02")

	backend.logs <- packLock(t, account, big.NewInt(9), 1)
	got := receive(t, sink)
	require.Equal(t, uint64(9), got.Lock.VestingID)

	select {
	case ev := <-sink:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestSubscribeVestingInvalidAccount(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.SubscribeVesting(context.Background(), "not-an-address", make(chan vesting.Event))
	require.Equal(t, errors.BadRequest, errors.Code(err))
}
