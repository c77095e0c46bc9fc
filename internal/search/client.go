// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package search queries the cyber network's LCD API for validator metadata.
package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
)

// Description is the self-reported description of a validator.
type Description struct {
	Moniker  string `json:"moniker"`
	Identity string `json:"identity,omitempty"`
	Website  string `json:"website,omitempty"`
	Details  string `json:"details,omitempty"`
}

// ValidatorInfo is the subset of validator metadata the dashboard uses.
type ValidatorInfo struct {
	OperatorAddress string      `json:"operator_address"`
	Jailed          bool        `json:"jailed"`
	Description     Description `json:"description"`
}

type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient creates a client for the LCD API at the given base URL. If hc is
// nil, http.DefaultClient is used.
func NewClient(base string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, errors.BadRequest.WithCauseAndFormat(err, "invalid search API URL %q", base)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: u, http: hc}, nil
}

// GetValidatorsInfo returns the metadata of the validator with the given
// operator address. It returns nil and no error if the validator is not
// known.
func (c *Client) GetValidatorsInfo(ctx context.Context, address string) (*ValidatorInfo, error) {
	u := c.base.JoinPath("staking", "validators", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.InternalError.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.FetchFailed.WithCauseAndFormat(err, "get validator %s", address)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, nil
	case res.StatusCode >= 300:
		return nil, errors.FetchFailed.WithFormat("get validator %s: %s", address, res.Status)
	}

	var body struct {
		Result *ValidatorInfo `json:"result"`
	}
	err = json.NewDecoder(res.Body).Decode(&body)
	if err != nil {
		return nil, errors.EncodingError.WithCauseAndFormat(err, "decode validator %s", address)
	}
	return body.Result, nil
}
