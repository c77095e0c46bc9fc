// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package identity maps addresses to display labels and navigation targets.
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/vestingd/internal/metrics"
	"gitlab.com/accumulatenetwork/vestingd/internal/search"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
)

const (
	shortPrefix = 9
	shortSuffix = 6
)

// ValidatorSource looks up validator metadata. It returns nil and no error for
// an unknown validator.
type ValidatorSource interface {
	GetValidatorsInfo(ctx context.Context, address string) (*search.ValidatorInfo, error)
}

// Identity is the presentation of an address.
type Identity struct {
	Address string       `json:"address"`
	Kind    address.Kind `json:"kind"`
	Label   string       `json:"label"`
	Target  string       `json:"target"`
	Loading bool         `json:"loading,omitempty"`
}

type Options struct {
	Source  ValidatorSource
	Network string
	// Timeout bounds a validator lookup, after which the resolver falls back
	// to the shortened address.
	Timeout   time.Duration
	CacheSize int
	Logger    zerolog.Logger
}

type Resolver struct {
	source  ValidatorSource
	network string
	timeout time.Duration
	cache   *lru.Cache[string, string]
	logger  zerolog.Logger
}

func NewResolver(opts Options) (*Resolver, error) {
	if opts.Source == nil {
		return nil, errors.BadRequest.With("missing validator source")
	}
	if opts.Network == "" {
		return nil, errors.BadRequest.With("missing network name")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}

	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, errors.InternalError.Wrap(err)
	}

	r := new(Resolver)
	r.source = opts.Source
	r.network = opts.Network
	r.timeout = opts.Timeout
	r.cache = cache
	r.logger = opts.Logger
	return r, nil
}

func (r *Resolver) heroPath(addr string) string {
	return fmt.Sprintf("/network/%s/hero/%s", r.network, addr)
}

func (r *Resolver) contractPath(addr string) string {
	return fmt.Sprintf("/network/%s/contract/%s", r.network, addr)
}

func (r *Resolver) fallback(addr string) Identity {
	return Identity{
		Address: addr,
		Kind:    address.Classify(addr),
		Label:   address.Shorten(addr, shortPrefix, shortSuffix),
		Target:  r.contractPath(addr),
	}
}

// Lookup is an identity resolution in progress.
type Lookup struct {
	mu      sync.Mutex
	current Identity
	done    chan struct{}
}

// Current returns the loading placeholder until the lookup completes, then the
// resolved identity.
func (l *Lookup) Current() Identity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Done is closed when the lookup completes.
func (l *Lookup) Done() <-chan struct{} { return l.done }

func (l *Lookup) finish(id Identity) {
	l.mu.Lock()
	l.current = id
	l.mu.Unlock()
	close(l.done)
}

// Start begins resolving the address. Plain addresses resolve immediately.
// Validator addresses resolve in the background and always complete, with
// the fallback label if the lookup fails, returns nothing, or times out.
func (r *Resolver) Start(ctx context.Context, addr string) (*Lookup, error) {
	if addr == "" {
		return nil, errors.BadRequest.With("missing address")
	}

	l := &Lookup{done: make(chan struct{})}
	if address.Classify(addr) != address.KindValidator {
		metrics.IdentityLookup("account")
		l.finish(r.fallback(addr))
		return l, nil
	}

	if moniker, ok := r.cache.Get(addr); ok {
		metrics.IdentityLookup("cached")
		l.finish(r.validator(addr, moniker))
		return l, nil
	}

	l.current = Identity{
		Address: addr,
		Kind:    address.KindValidator,
		Label:   address.Shorten(addr, shortPrefix, shortSuffix),
		Target:  r.contractPath(addr),
		Loading: true,
	}

	go func() {
		l.finish(r.lookup(ctx, addr))
	}()
	return l, nil
}

// Resolve resolves the address, waiting for a validator lookup to complete.
func (r *Resolver) Resolve(ctx context.Context, addr string) (*Identity, error) {
	l, err := r.Start(ctx, addr)
	if err != nil {
		return nil, err
	}

	<-l.Done()
	id := l.Current()
	return &id, nil
}

func (r *Resolver) validator(addr, moniker string) Identity {
	return Identity{
		Address: addr,
		Kind:    address.KindValidator,
		Label:   moniker,
		Target:  r.heroPath(addr),
	}
}

func (r *Resolver) lookup(ctx context.Context, addr string) Identity {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		info *search.ValidatorInfo
		err  error
	}

	// The source may not honor the context, so wait on both
	ch := make(chan result, 1)
	go func() {
		info, err := r.source.GetValidatorsInfo(ctx, addr)
		ch <- result{info, err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = errors.Timeout.WithCauseAndFormat(ctx.Err(), "lookup validator %s", addr)
	}

	switch {
	case res.err != nil:
		metrics.IdentityLookup("failed")
		r.logger.Info().Err(res.err).Str("address", addr).Msg("Validator lookup failed, using address")
		return r.fallback(addr)

	case res.info == nil || res.info.Description.Moniker == "":
		metrics.IdentityLookup("absent")
		r.logger.Debug().Str("address", addr).Msg("Validator not found, using address")
		return r.fallback(addr)
	}

	metrics.IdentityLookup("validator")
	r.cache.Add(addr, res.info.Description.Moniker)
	return r.validator(addr, res.info.Description.Moniker)
}
