// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/vestingd/internal/search"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
)

const (
	valoper = "cybervaloper1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhp8w5vxc"
	account = "cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le"
)

type MockValidatorSource struct {
	mock.Mock
}

func (m *MockValidatorSource) GetValidatorsInfo(ctx context.Context, address string) (*search.ValidatorInfo, error) {
	ret := m.Called(ctx, address)
	info, _ := ret.Get(0).(*search.ValidatorInfo)
	return info, ret.Error(1)
}

func newResolver(t *testing.T, src ValidatorSource, timeout time.Duration) *Resolver {
	r, err := NewResolver(Options{
		Source:  src,
		Network: "euler-5",
		Timeout: timeout,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return r
}

func TestPlainAccount(t *testing.T) {
	src := new(MockValidatorSource)
	r := newResolver(t, src, time.Second)

	l, err := r.Start(context.Background(), account)
	require.NoError(t, err)

	// Resolved synchronously, no loading state
	select {
	case <-l.Done():
	default:
		t.Fatal("plain account lookup should complete immediately")
	}
	id := l.Current()
	require.False(t, id.Loading)
	require.Equal(t, "cyber1qky...e5c6le", id.Label)
	require.Equal(t, "/network/euler-5/contract/"+account, id.Target)
	require.Equal(t, address.KindAccount, id.Kind)
	src.AssertNotCalled(t, "GetValidatorsInfo", mock.Anything, mock.Anything)
}

func TestValidator(t *testing.T) {
	src := new(MockValidatorSource)
	src.On("GetValidatorsInfo", mock.Anything, valoper).
		Return(&search.ValidatorInfo{Description: search.Description{Moniker: "cyber~Congress"}}, nil).
		Once()
	r := newResolver(t, src, time.Second)

	id, err := r.Resolve(context.Background(), valoper)
	require.NoError(t, err)
	require.False(t, id.Loading)
	require.Equal(t, "cyber~Congress", id.Label)
	require.Equal(t, "/network/euler-5/hero/"+valoper, id.Target)

	// The second lookup is served from the cache
	id, err = r.Resolve(context.Background(), valoper)
	require.NoError(t, err)
	require.Equal(t, "cyber~Congress", id.Label)
	src.AssertExpectations(t)
}

func TestValidatorLoadingState(t *testing.T) {
	release := make(chan time.Time)
	src := new(MockValidatorSource)
	src.On("GetValidatorsInfo", mock.Anything, valoper).
		WaitUntil(release).
		Return(&search.ValidatorInfo{Description: search.Description{Moniker: "cyber~Congress"}}, nil)
	r := newResolver(t, src, 5*time.Second)

	l, err := r.Start(context.Background(), valoper)
	require.NoError(t, err)
	require.True(t, l.Current().Loading)

	close(release)
	<-l.Done()
	require.False(t, l.Current().Loading)
	require.Equal(t, "cyber~Congress", l.Current().Label)
}

func TestValidatorFallback(t *testing.T) {
	cases := map[string]func(*mock.Call){
		"absent": func(c *mock.Call) { c.Return(nil, nil) },
		"failed": func(c *mock.Call) { c.Return(nil, fmt.Errorf("connection refused")) },
		"empty":  func(c *mock.Call) { c.Return(&search.ValidatorInfo{}, nil) },
		"timeout": func(c *mock.Call) {
			c.After(time.Second).Return(&search.ValidatorInfo{Description: search.Description{Moniker: "late"}}, nil)
		},
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			src := new(MockValidatorSource)
			setup(src.On("GetValidatorsInfo", mock.Anything, valoper))
			r := newResolver(t, src, 50*time.Millisecond)

			id, err := r.Resolve(context.Background(), valoper)
			require.NoError(t, err)
			require.False(t, id.Loading)
			require.Equal(t, address.Shorten(valoper, 9, 6), id.Label)
			require.Equal(t, "/network/euler-5/contract/"+valoper, id.Target)
		})
	}
}

func TestEmptyAddress(t *testing.T) {
	r := newResolver(t, new(MockValidatorSource), time.Second)
	_, err := r.Resolve(context.Background(), "")
	require.Equal(t, errors.BadRequest, errors.Code(err))
}
