// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "bookstore"
)

// commit results
const (
	resultAccepted    = "accepted"
	resultRejected    = "rejected"
	resultUnavailable = "unavailable"
	resultFailed      = "failed"
	resultRestored    = "restored"
	resultApplied     = "applied"
)

type metrics struct {
	commits       *prometheus.CounterVec
	commitSeconds *prometheus.HistogramVec
	divergences   *prometheus.CounterVec
	compensations *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "commits_total",
			Help:      "Ledger commits by operation and result.",
		}, []string{"operation", "result"}),

		commitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "commit_seconds",
			Help:      "Time spent waiting for the ledger to answer a commit.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		divergences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "divergences_total",
			Help:      "Cache writes left in place after the ledger failed to apply them.",
		}, []string{"operation"}),

		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "compensations_total",
			Help:      "Cache writes rolled back, or kept because the ledger turned out to have applied them.",
		}, []string{"operation", "result"}),
	}

	for _, c := range []prometheus.Collector{m.commits, m.commitSeconds, m.divergences, m.compensations} {
		if err := registerer.Register(c); nil != err {
			return nil, err
		}
	}
	return m, nil
}
