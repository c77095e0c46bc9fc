// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/vestingd/internal/metrics"
	"gitlab.com/accumulatenetwork/vestingd/pkg/types/address"
	"gitlab.com/accumulatenetwork/vestingd/pkg/vesting"
)

const (
	eventNewLock  = "NewLock"
	eventNewProof = "NewProof"
)

// pending is an admitted event waiting for its turn.
type pending struct {
	seq   uint64
	lock  *vesting.NewLock
	proof *vesting.NewProof
	grant *vesting.Grant
	ready bool
}

// Reconciler applies live events to a ledger in the order they arrived. A
// NewLock needs the grant's start time before it can be applied, so events
// behind it wait until that read completes, however long it takes.
type Reconciler struct {
	account string
	logger  zerolog.Logger
	nextSeq uint64
	queue   []*pending
}

func NewReconciler(account string, logger zerolog.Logger) *Reconciler {
	return &Reconciler{account: account, logger: logger}
}

// MatchesLock returns true if the event belongs to the account.
func (r *Reconciler) MatchesLock(ev vesting.NewLock) bool {
	return address.Equal(ev.LockAddress, r.account)
}

// MatchesProof returns true if the event belongs to the account.
func (r *Reconciler) MatchesProof(ev vesting.NewProof) bool {
	return address.Equal(ev.Claimer, r.account)
}

// AdmitLock queues a NewLock and returns its sequence number. The caller must
// eventually call Resolve with the same number.
func (r *Reconciler) AdmitLock(ev vesting.NewLock) uint64 {
	p := &pending{seq: r.nextSeq, lock: &ev}
	r.nextSeq++
	r.queue = append(r.queue, p)
	return p.seq
}

// AdmitProof queues a NewProof. It is ready immediately but still waits for
// any NewLock ahead of it.
func (r *Reconciler) AdmitProof(ev vesting.NewProof) {
	r.queue = append(r.queue, &pending{seq: r.nextSeq, proof: &ev, ready: true})
	r.nextSeq++
}

// Resolve completes a queued NewLock. A nil schedule drops the event.
func (r *Reconciler) Resolve(seq uint64, schedule *vesting.Schedule) {
	for _, p := range r.queue {
		if p.seq != seq || p.lock == nil {
			continue
		}
		p.ready = true
		if schedule == nil {
			return
		}
		p.grant = &vesting.Grant{
			ID:        p.lock.VestingID,
			Amount:    p.lock.Amount,
			Start:     vesting.StartTime(schedule.Start),
			Recipient: p.lock.Account,
			Proof:     vesting.ProofProcessing,
		}
		return
	}
}

// Pending returns the number of queued events.
func (r *Reconciler) Pending() int { return len(r.queue) }

// Outcome summarizes an Apply.
type Outcome struct {
	Inserted int
	Proved   int
}

// Changed returns true if the ledger was modified.
func (o Outcome) Changed() bool { return o.Inserted > 0 || o.Proved > 0 }

// Apply applies every ready event at the head of the queue.
func (r *Reconciler) Apply(l *vesting.Ledger) Outcome {
	var out Outcome
	for len(r.queue) > 0 && r.queue[0].ready {
		p := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]

		switch {
		case p.lock != nil && p.grant == nil:
			metrics.Event(eventNewLock, "dropped")

		case p.lock != nil:
			l.Prepend(*p.grant)
			out.Inserted++
			metrics.Event(eventNewLock, "applied")
			r.logger.Debug().Uint64("id", p.grant.ID).Msg("Inserted grant")

		case p.proof != nil:
			if !l.SetProof(p.proof.VestingID, p.proof.ProofTx) {
				metrics.Event(eventNewProof, "unmatched")
				r.logger.Debug().Uint64("id", p.proof.VestingID).Msg("Proof does not match any grant")
				continue
			}
			out.Proved++
			metrics.Event(eventNewProof, "applied")
			r.logger.Debug().Uint64("id", p.proof.VestingID).Str("proof", p.proof.ProofTx).Msg("Recorded proof")
		}
	}
	return out
}
