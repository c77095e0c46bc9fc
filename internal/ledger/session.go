// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"context"
	"math/big"
	"sync"
	"time"

	ethevent "github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/vestingd/internal/events"
	"gitlab.com/accumulatenetwork/vestingd/internal/metrics"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
)

// Snapshot is a point-in-time copy of a session's state.
type Snapshot struct {
	Session    string          `json:"session"`
	Generation uint64          `json:"generation"`
	Account    string          `json:"account,omitempty"`
	Phase      Phase           `json:"phase"`
	Balance    *big.Int        `json:"balance,omitempty"`
	Spendable  *big.Int        `json:"spendable,omitempty"`
	Grants     []vesting.Grant `json:"grants"`
	// Queued is the number of events waiting to be applied.
	Queued int           `json:"queued"`
	Err    *errors.Error `json:"error,omitempty"`
}

// Changed is published on the session's bus whenever its state changes.
type Changed struct {
	Snapshot
}

func (Changed) EventType() string { return "ledger.changed" }

type SessionOptions struct {
	ID        string
	Contracts Contracts
	// Events may be nil, in which case the ledger is not kept live.
	Events      EventSource
	Concurrency int
	Bus         *events.Bus
	Logger      zerolog.Logger
}

// Session tracks the vesting ledger of one selected account. A single
// goroutine owns the state; every mutation is a message on its inbox.
type Session struct {
	id        string
	builder   *Builder
	contracts Contracts
	source    EventSource
	bus       *events.Bus
	logger    zerolog.Logger

	inbox     chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// Owned by the run loop
	gen        uint64
	phase      Phase
	ledger     *vesting.Ledger
	reconciler *Reconciler
	early      []interface{}
	err        *errors.Error
	ctx        context.Context
	cancel     context.CancelFunc
	sub        ethevent.Subscription
}

func NewSession(opts SessionOptions) *Session {
	s := new(Session)
	s.id = opts.ID
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.contracts = opts.Contracts
	s.source = opts.Events
	s.logger = opts.Logger.With().Str("session", s.id).Logger()
	s.builder = NewBuilder(opts.Contracts, opts.Concurrency, s.logger)
	s.bus = opts.Bus
	if s.bus == nil {
		s.bus = events.NewBus(s.logger)
	}
	s.inbox = make(chan func())
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	s.phase = PhaseIdle

	metrics.SessionOpened()
	go s.run()
	return s
}

func (s *Session) ID() string { return s.id }

// Bus returns the bus Changed events are published on.
func (s *Session) Bus() *events.Bus { return s.bus }

// Close cancels outstanding work, releases subscriptions, and stops the
// session. Nothing is mutated or published after Close returns.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		metrics.SessionClosed()
	})
}

func (s *Session) run() {
	defer close(s.stopped)
	defer s.teardown()
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.inbox:
			// Prefer shutting down over a message that arrived concurrently
			select {
			case <-s.done:
				return
			default:
			}
			fn()
		}
	}
}

// post sends a message to the run loop. It returns false if the session is
// closed.
func (s *Session) post(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	case <-s.done:
		return false
	}
}

// postFor sends a message that is dropped if the selection it belongs to has
// been superseded.
func (s *Session) postFor(gen uint64, fn func()) bool {
	return s.post(func() {
		if gen != s.gen {
			s.logger.Debug().Uint64("generation", gen).Uint64("current", s.gen).Msg("Dropping stale result")
			return
		}
		fn()
	})
}

// Select starts tracking an account, abandoning the previous selection.
func (s *Session) Select(account string) error {
	if _, ok := address.ParseETH(account); !ok {
		return errors.BadRequest.WithFormat("invalid account %q", account)
	}
	account = address.Normalize(account)
	if !s.post(func() { s.selectAccount(account) }) {
		return errors.Canceled.With("session is closed")
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	if !s.post(func() { ch <- s.snapshot() }) {
		return Snapshot{}, errors.Canceled.With("session is closed")
	}
	// The run loop may stop before it runs the message
	select {
	case snap := <-ch:
		return snap, nil
	case <-s.stopped:
		select {
		case snap := <-ch:
			return snap, nil
		default:
			return Snapshot{}, errors.Canceled.With("session is closed")
		}
	case <-ctx.Done():
		return Snapshot{}, errors.Canceled.Wrap(ctx.Err())
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Session:    s.id,
		Generation: s.gen,
		Phase:      s.phase,
		Err:        s.err,
	}
	if s.ledger == nil {
		return snap
	}
	snap.Account = s.ledger.Account
	if s.ledger.Balance != nil {
		snap.Balance = new(big.Int).Set(s.ledger.Balance)
	}
	if s.ledger.Spendable != nil {
		snap.Spendable = new(big.Int).Set(s.ledger.Spendable)
	}
	snap.Grants = s.ledger.Grants()
	snap.Queued = len(s.early) + s.reconciler.Pending()
	return snap
}

func (s *Session) publish() {
	s.bus.Publish(Changed{s.snapshot()})
}

func (s *Session) transition(in input) bool {
	next, ok := s.phase.next(in)
	if !ok {
		s.logger.Warn().Stringer("phase", s.phase).Int("input", int(in)).Msg("Ignoring invalid phase transition")
		return false
	}
	if next != s.phase {
		s.logger.Debug().Stringer("from", s.phase).Stringer("to", next).Msg("Phase changed")
	}
	s.phase = next
	return true
}

func (s *Session) teardown() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
}

func (s *Session) selectAccount(account string) {
	s.teardown()
	s.gen++
	s.transition(inputSelect)
	s.ledger = vesting.NewLedger(account)
	s.reconciler = NewReconciler(account, s.logger)
	s.early = nil
	s.err = nil
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info().Str("account", account).Uint64("generation", s.gen).Msg("Selected account")
	s.subscribe(s.ctx, s.gen, account)
	go s.load(s.ctx, s.gen, account)
	s.publish()
}

// load reads the balances and the grant table concurrently and reports the
// balances first.
func (s *Session) load(ctx context.Context, gen uint64, account string) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var grants []vesting.Grant
	tableErr := make(chan error, 1)
	go func() {
		var err error
		grants, err = s.builder.Build(ctx, account)
		tableErr <- err
	}()

	balance, spendable, err := s.builder.Balances(ctx, account)
	if err != nil {
		cancel()
		<-tableErr
		s.postFor(gen, func() { s.loadFailed(err) })
		return
	}
	s.postFor(gen, func() { s.setBalances(balance, spendable) })

	if err := <-tableErr; err != nil {
		s.postFor(gen, func() { s.loadFailed(err) })
		return
	}
	metrics.LoadCompleted(time.Since(start))
	s.postFor(gen, func() { s.setTable(grants) })
}

func (s *Session) loadFailed(err error) {
	if errors.Code(err) == errors.Canceled {
		return
	}
	if !s.transition(inputFailed) {
		return
	}
	metrics.LoadFailed()
	s.err = errors.FetchFailed.WithFormat("load ledger of %s: %w", s.ledger.Account, err)
	s.early = nil
	s.logger.Error().Err(err).Str("account", s.ledger.Account).Msg("Failed to load ledger")
	s.publish()
}

func (s *Session) setBalances(balance, spendable *big.Int) {
	if !s.transition(inputBalances) {
		return
	}
	s.ledger.SetBalances(balance, spendable)
	s.publish()
}

func (s *Session) setTable(grants []vesting.Grant) {
	if !s.transition(inputTable) {
		return
	}
	s.ledger.Replace(grants)

	// Replay events that arrived during the load
	early := s.early
	s.early = nil
	for _, ev := range early {
		switch ev := ev.(type) {
		case vesting.NewLock:
			if s.ledger.Has(ev.VestingID) {
				metrics.Event(eventNewLock, "duplicate")
				continue
			}
			s.admitLock(ev)
		case vesting.NewProof:
			s.reconciler.AdmitProof(ev)
		}
	}
	if len(early) > 0 {
		s.logger.Debug().Int("count", len(early)).Msg("Replayed early events")
	}

	s.apply()
	s.publish()
}

// apply applies ready events and refreshes the balances after an insert.
func (s *Session) apply() bool {
	out := s.reconciler.Apply(s.ledger)
	if out.Inserted > 0 {
		s.refreshBalances()
	}
	return out.Changed()
}

func (s *Session) refreshBalances() {
	ctx, gen, account := s.ctx, s.gen, s.ledger.Account
	go func() {
		balance, spendable, err := s.builder.Balances(ctx, account)
		if err != nil {
			if errors.Code(err) != errors.Canceled {
				s.logger.Warn().Err(err).Str("account", account).Msg("Failed to refresh balances")
			}
			return
		}
		s.postFor(gen, func() { s.setBalances(balance, spendable) })
	}()
}

func (s *Session) onNewLock(ev vesting.NewLock) {
	if !s.reconciler.MatchesLock(ev) {
		metrics.Event(eventNewLock, "ignored")
		return
	}
	switch {
	case s.phase.Loading():
		metrics.Event(eventNewLock, "queued")
		s.early = append(s.early, ev)
	case s.phase == PhaseReady:
		s.admitLock(ev)
		if s.apply() {
			s.publish()
		}
	default:
		metrics.Event(eventNewLock, "ignored")
	}
}

func (s *Session) onNewProof(ev vesting.NewProof) {
	if !s.reconciler.MatchesProof(ev) {
		metrics.Event(eventNewProof, "ignored")
		return
	}
	switch {
	case s.phase.Loading():
		metrics.Event(eventNewProof, "queued")
		s.early = append(s.early, ev)
	case s.phase == PhaseReady:
		s.reconciler.AdmitProof(ev)
		if s.apply() {
			s.publish()
		}
	default:
		metrics.Event(eventNewProof, "ignored")
	}
}

// admitLock queues the event and reads the grant's start time.
func (s *Session) admitLock(ev vesting.NewLock) {
	seq := s.reconciler.AdmitLock(ev)
	ctx, gen, account := s.ctx, s.gen, s.ledger.Account
	go func() {
		schedule, err := s.builder.Schedule(ctx, account, ev.VestingID)
		s.postFor(gen, func() {
			if err != nil {
				s.logger.Warn().Err(err).Uint64("id", ev.VestingID).Msg("Dropping NewLock, failed to read start time")
				s.reconciler.Resolve(seq, nil)
			} else {
				s.reconciler.Resolve(seq, &schedule)
			}
			if s.apply() {
				s.publish()
			}
		})
	}()
}

func (s *Session) subscribe(ctx context.Context, gen uint64, account string) {
	if s.source == nil {
		return
	}

	logs := make(chan vesting.Event, 16)
	sub, err := s.source.SubscribeVesting(ctx, account, logs)
	if err != nil {
		s.logger.Error().Err(err).Str("account", account).Msg("Failed to subscribe to vesting events")
		return
	}
	s.sub = sub

	// Events are posted in the order they were received
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-logs:
				switch {
				case ev.Lock != nil:
					lock := *ev.Lock
					s.postFor(gen, func() { s.onNewLock(lock) })
				case ev.Proof != nil:
					proof := *ev.Proof
					s.postFor(gen, func() { s.onNewProof(proof) })
				}
			case err, ok := <-sub.Err():
				if ok && err != nil {
					s.logger.Error().Err(err).Str("account", account).Msg("Vesting event subscription failed")
				}
				return
			}
		}
	}()
}
