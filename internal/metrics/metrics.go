// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vestingd"

var (
	mCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "contract",
		Name:      "call_duration_seconds",
		Help:      "Contract call duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	mCallFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "contract",
		Name:      "call_failed",
		Help:      "Number of failed contract calls",
	}, []string{"method"})
	mEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "events",
		Help:      "Number of contract events received, by outcome",
	}, []string{"event", "outcome"})
	mLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "load_duration_seconds",
		Help:      "Ledger bulk load duration in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	mLoadFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "load_failed",
		Help:      "Number of failed ledger bulk loads",
	})
	mSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "sessions",
		Help:      "Number of open ledger sessions",
	})
	mIdentity = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "identity",
		Name:      "lookups",
		Help:      "Number of identity lookups, by outcome",
	}, []string{"outcome"})
)

// ObserveCall starts timing a contract call. Call the returned function when
// the call completes.
func ObserveCall(method string) func() {
	start := time.Now()
	return func() {
		mCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}

func CallFailed(method string) {
	mCallFailed.WithLabelValues(method).Inc()
}

// Event records a contract event and what the ledger did with it.
func Event(event, outcome string) {
	mEvents.WithLabelValues(event, outcome).Inc()
}

func LoadCompleted(d time.Duration) {
	mLoadDuration.Observe(d.Seconds())
}

func LoadFailed() {
	mLoadFailed.Inc()
}

func SessionOpened() { mSessions.Inc() }
func SessionClosed() { mSessions.Dec() }

func IdentityLookup(outcome string) {
	mIdentity.WithLabelValues(outcome).Inc()
}
