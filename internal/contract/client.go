// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package contract binds the TokenManager, Token and Vesting contracts read by
// the vesting dashboard.
package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/vestingd/internal/metrics"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
)

// Addresses are the deployed contract addresses.
type Addresses struct {
	TokenManager common.Address
	Token        common.Address
	Vesting      common.Address
}

type Options struct {
	Backend   bind.ContractBackend
	Addresses Addresses
	Logger    zerolog.Logger
}

// Client reads vesting data from the contracts. It implements both the
// contract reads and the event source used by the ledger.
type Client struct {
	tokenManager *bind.BoundContract
	token        *bind.BoundContract
	vesting      *bind.BoundContract
	vestingAddr  common.Address
	filterer     bind.ContractFilterer
	logger       zerolog.Logger
	closer       func()
}

// Dial connects to an Ethereum JSON-RPC endpoint. Event subscriptions require
// a websocket or IPC endpoint.
func Dial(ctx context.Context, url string, addrs Addresses, logger zerolog.Logger) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.FetchFailed.WithCauseAndFormat(err, "dial %s", url)
	}

	c := New(Options{Backend: ec, Addresses: addrs, Logger: logger})
	c.closer = ec.Close
	return c, nil
}

func New(opts Options) *Client {
	c := new(Client)
	c.logger = opts.Logger
	c.tokenManager = bind.NewBoundContract(opts.Addresses.TokenManager, tokenManagerABI, opts.Backend, opts.Backend, opts.Backend)
	c.token = bind.NewBoundContract(opts.Addresses.Token, tokenABI, opts.Backend, opts.Backend, opts.Backend)
	c.vesting = bind.NewBoundContract(opts.Addresses.Vesting, vestingABI, opts.Backend, opts.Backend, opts.Backend)
	c.vestingAddr = opts.Addresses.Vesting
	c.filterer = opts.Backend
	return c
}

// Close closes the underlying connection if the client dialed it.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) call(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) ([]interface{}, error) {
	timer := metrics.ObserveCall(method)
	defer timer()

	var out []interface{}
	err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	if err != nil {
		metrics.CallFailed(method)
		c.logger.Debug().Err(err).Str("method", method).Msg("Contract call failed")
		return nil, errors.FetchFailed.WithCauseAndFormat(err, "call %s", method)
	}
	return out, nil
}

func parseAccount(account string) (common.Address, error) {
	addr, ok := address.ParseETH(account)
	if !ok {
		return common.Address{}, errors.BadRequest.WithFormat("%q is not an Ethereum address", account)
	}
	return addr, nil
}

func (c *Client) VestingsLengths(ctx context.Context, account string) (uint64, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return 0, err
	}

	out, err := c.call(ctx, c.tokenManager, "vestingsLengths", addr)
	if err != nil {
		return 0, err
	}

	n := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if !n.IsUint64() {
		return 0, errors.EncodingError.WithFormat("vesting count %v overflows", n)
	}
	return n.Uint64(), nil
}

func (c *Client) GetVesting(ctx context.Context, account string, index uint64) (vesting.Schedule, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return vesting.Schedule{}, err
	}

	out, err := c.call(ctx, c.tokenManager, "getVesting", addr, new(big.Int).SetUint64(index))
	if err != nil {
		return vesting.Schedule{}, err
	}

	return vesting.Schedule{
		Amount: *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Start:  *abi.ConvertType(out[1], new(uint64)).(*uint64),
	}, nil
}

func (c *Client) GetClaimAddress(ctx context.Context, account string, index uint64) (string, error) {
	return c.callString(ctx, c.vesting, "getClaimAddress", account, index)
}

func (c *Client) GetProof(ctx context.Context, account string, index uint64) (string, error) {
	return c.callString(ctx, c.vesting, "getProof", account, index)
}

func (c *Client) callString(ctx context.Context, contract *bind.BoundContract, method, account string, index uint64) (string, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return "", err
	}

	out, err := c.call(ctx, contract, method, addr, new(big.Int).SetUint64(index))
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (c *Client) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	return c.callInt(ctx, c.token, "balanceOf", account)
}

func (c *Client) SpendableBalanceOf(ctx context.Context, account string) (*big.Int, error) {
	return c.callInt(ctx, c.tokenManager, "spendableBalanceOf", account)
}

func (c *Client) callInt(ctx context.Context, contract *bind.BoundContract, method, account string) (*big.Int, error) {
	addr, err := parseAccount(account)
	if err != nil {
		return nil, err
	}

	out, err := c.call(ctx, contract, method, addr)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
