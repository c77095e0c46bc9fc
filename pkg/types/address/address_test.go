// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package address

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
)

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		Addr string
		Kind Kind
	}{
		"validator": {"cybervaloper1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhp8w5vxc", KindValidator},
		"account":   {"cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le", KindAccount},
		"eth":       {"0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c", KindAccount},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, c.Kind, Classify(c.Addr))
		})
	}
}

func TestShorten(t *testing.T) {
	require.Equal(t, "cyber1qky...5c6le", Shorten("cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le", 9, 5))
	require.Equal(t, "0x5A0b54D...029c4c", Shorten("0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c", 9, 6))
	require.Equal(t, "short", Shorten("short", 9, 6))
}

func TestEqualIgnoresCase(t *testing.T) {
	require.True(t, Equal("0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c", "0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c"))
	require.False(t, Equal("0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c", "0x0000000000000000000000000000000000000000"))

	addr := common.HexToAddress("0x5A0b54D5dc17e0AadC383d2db43B0a0D3E029c4c")
	require.Equal(t, "0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c", NormalizeETH(addr))

	_, ok := ParseETH("cyber1qkyt5ekf3uxm5yc4hpnjlq5ydwcrmuhpe5c6le")
	require.False(t, ok)
}

func TestKindText(t *testing.T) {
	b, err := json.Marshal(KindValidator)
	require.NoError(t, err)
	require.Equal(t, `"validator"`, string(b))

	var k Kind
	require.NoError(t, json.Unmarshal(b, &k))
	require.Equal(t, KindValidator, k)

	require.NoError(t, json.Unmarshal([]byte(`"Account"`), &k))
	require.Equal(t, KindAccount, k)

	err = k.UnmarshalText([]byte("contract"))
	require.Equal(t, errors.EncodingError, errors.Code(err))
}
