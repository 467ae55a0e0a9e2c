// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerclient

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/logger"
)

const (
	defaultProbeInterval = 30 * time.Second
)

// Probe - background process reporting whether the ledger answers
//
// the result is published as the gauge bookstore_ledger_up
type Probe struct {
	log      *logger.L
	client   Client
	interval time.Duration
	up       prometheus.Gauge
	last     float64
}

// NewProbe - create a probe and register its gauge
//
// a non-positive interval selects the default
func NewProbe(log *logger.L, client Client, interval time.Duration, registerer prometheus.Registerer) (*Probe, error) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}

	up := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookstore",
		Subsystem: "ledger",
		Name:      "up",
		Help:      "1 if the last ledger probe was answered, otherwise 0.",
	})
	if err := registerer.Register(up); nil != err {
		return nil, err
	}

	return &Probe{
		log:      log,
		client:   client,
		interval: interval,
		up:       up,
		last:     -1,
	}, nil
}

// Run - probe immediately and then once per interval until shutdown
func (p *Probe) Run(args interface{}, shutdown <-chan struct{}) {
	p.log.Info("starting…")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

loop:
	for {
		p.check()

		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
		}
	}
	p.log.Info("stopped")
}

func (p *Probe) check() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	value := 1.0
	_, err := p.client.Query(ctx, ledger.Name{})
	if nil != err {
		value = 0
	}
	p.up.Set(value)

	// log only changes
	if value != p.last {
		if nil != err {
			p.log.Warnf("ledger not answering: %s", err)
		} else {
			p.log.Info("ledger answering")
		}
	}
	p.last = value
}
