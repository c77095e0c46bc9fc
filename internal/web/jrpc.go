// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AccumulateNetwork/jsonrpc2/v15"
	"gitlab.com/accumulatenetwork/vestingd"
	"gitlab.com/accumulatenetwork/vestingd/internal/view"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
)

type AccountRequest struct {
	Account string `json:"account" validate:"required,eth_addr"`
}

type AddressRequest struct {
	Address string `json:"address" validate:"required"`
}

type VersionResponse struct {
	Version        string `json:"version"`
	Commit         string `json:"commit,omitempty"`
	VersionIsKnown bool   `json:"versionIsKnown"`
}

type BalanceResponse struct {
	Account   string `json:"account"`
	Balance   string `json:"balance"`
	Spendable string `json:"spendable"`
}

func (s *Server) populateMethodTable() {
	s.methods = jsonrpc2.MethodMap{
		"version":  s.Version,
		"identity": s.Identity,
		"ledger":   s.Ledger,
		"balance":  s.Balance,
	}
}

func (s *Server) parse(params json.RawMessage, target interface{}) error {
	err := json.Unmarshal(params, target)
	if err != nil {
		return validatorError(err)
	}

	err = s.validate.Struct(target)
	if err != nil {
		return validatorError(err)
	}

	return nil
}

func (s *Server) Version(_ context.Context, _ json.RawMessage) interface{} {
	return VersionResponse{
		Version:        vestingd.Version,
		Commit:         vestingd.Commit,
		VersionIsKnown: vestingd.IsVersionKnown(),
	}
}

func (s *Server) Identity(ctx context.Context, params json.RawMessage) interface{} {
	req := new(AddressRequest)
	err := s.parse(params, req)
	if err != nil {
		return err
	}

	id, err := s.Resolver.Resolve(ctx, req.Address)
	if err != nil {
		return vestingError(err)
	}
	return id
}

func (s *Server) Ledger(ctx context.Context, params json.RawMessage) interface{} {
	req := new(AccountRequest)
	err := s.parse(params, req)
	if err != nil {
		return err
	}

	snap, err := s.builder.Load(ctx, address.Normalize(req.Account))
	if err != nil {
		return vestingError(err)
	}
	return view.Render(snap, s.View)
}

func (s *Server) Balance(ctx context.Context, params json.RawMessage) interface{} {
	req := new(AccountRequest)
	err := s.parse(params, req)
	if err != nil {
		return err
	}

	account := address.Normalize(req.Account)
	balance, spendable, err := s.builder.Balances(ctx, account)
	if err != nil {
		return vestingError(err)
	}
	return BalanceResponse{
		Account:   account,
		Balance:   balance.String(),
		Spendable: spendable.String(),
	}
}

const (
	ErrCodeInternal   = jsonrpc2.ErrorCode(-32800)
	ErrCodeValidation = jsonrpc2.ErrorCode(-32801)
	// ErrCodeStatusBase is offset by the status code of a classified error.
	ErrCodeStatusBase = jsonrpc2.ErrorCode(-33000)
)

func validatorError(err error) jsonrpc2.Error {
	return jsonrpc2.NewError(ErrCodeValidation, "Validation Error", err.Error())
}

func vestingError(err error) jsonrpc2.Error {
	var jerr jsonrpc2.Error
	if errors.As(err, &jerr) {
		return jerr
	}

	code := errors.Code(err)
	switch {
	case code == errors.BadRequest:
		return jsonrpc2.NewError(ErrCodeValidation, "Validation Error", err.Error())
	case code.IsKnownError():
		return jsonrpc2.NewError(ErrCodeStatusBase-jsonrpc2.ErrorCode(code), "Vesting Error", err.Error())
	default:
		return jsonrpc2.NewError(ErrCodeInternal, "Internal Error", err.Error())
	}
}

func fmtln(values ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(values...), "\n")
}
