// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package address classifies and formats the account addresses shown by the
// vesting dashboard.
package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
)

// ValidatorPrefix is the human-readable prefix of a validator operator
// address on the cyber network.
const ValidatorPrefix = "cybervaloper"

// Kind distinguishes how an address is presented.
type Kind int

const (
	// KindAccount is a plain account address.
	KindAccount Kind = iota

	// KindValidator is a validator operator address.
	KindValidator
)

func (k Kind) String() string {
	switch k {
	case KindValidator:
		return "validator"
	default:
		return "account"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "account":
		*k = KindAccount
	case "validator":
		*k = KindValidator
	default:
		return errors.EncodingError.WithFormat("invalid address kind %q", b)
	}
	return nil
}

// Classify returns the kind of the address.
func Classify(addr string) Kind {
	if strings.Contains(addr, ValidatorPrefix) {
		return KindValidator
	}
	return KindAccount
}

// Shorten renders an address as its first prefix characters and last suffix
// characters joined by an ellipsis. Addresses too short to shorten are
// returned unchanged.
func Shorten(addr string, prefix, suffix int) string {
	if prefix < 0 || suffix < 0 || len(addr) <= prefix+suffix {
		return addr
	}
	return addr[:prefix] + "..." + addr[len(addr)-suffix:]
}

// Normalize lower-cases an account address so it can be compared against
// event payloads.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Equal compares two account addresses case-insensitively.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// NormalizeETH returns the lower-cased hex form of an Ethereum address.
func NormalizeETH(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// ParseETH parses a hex Ethereum account address.
func ParseETH(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}
