// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"time"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/storage"
)

// a nil value deletes the key
type write struct {
	key   []byte
	value []byte
}

type mutation struct {
	operation string
	locks     []string
	check     func(storage.Transaction) error
	writes    []write
	command   ledger.Command
	confirm   confirmation
}

// what the ledger says about a command after its commit failed
type outcome int

const (
	outcomeUnknown outcome = iota
	outcomeApplied
	outcomeNotApplied
)

// a read of the ledger that tells whether the command took effect
type confirmation struct {
	query   ledger.Command
	outcome func(ledger.Result, error) outcome
}

// run one mutation: cache batch, ledger commit, then the policy on failure
func (c *Catalog) apply(ctx context.Context, m *mutation) (*ledger.Receipt, error) {
	id := RequestId(ctx)

	unlock := c.locks.Lock(m.locks...)
	defer unlock()

	snapshot, err := c.writeCache(m)
	if nil != err {
		c.log.Debugf("%s: %s: cache: %s", id, m.operation, err)
		return nil, err
	}

	receipt, err := c.commit(ctx, m)
	if nil == err {
		c.log.Infof("%s: %s: committed txId: %s  height: %d", id, m.operation, receipt.TxId, receipt.Height)
		return receipt, nil
	}

	switch c.policy {

	case Acknowledge:
		c.metrics.divergences.WithLabelValues(m.operation).Inc()
		c.log.Warnf("%s: %s: cache kept after ledger error: %s", id, m.operation, err)
		return nil, nil

	default:
		// without a rejection the command may have been applied
		if !fault.IsLedgerRejection(err) {
			switch c.ledgerOutcome(m) {
			case outcomeApplied:
				c.metrics.compensations.WithLabelValues(m.operation, resultApplied).Inc()
				c.log.Warnf("%s: %s: ledger applied command despite error: %s", id, m.operation, err)
				return nil, nil
			case outcomeUnknown:
				c.metrics.divergences.WithLabelValues(m.operation).Inc()
				c.log.Errorf("%s: %s: ledger outcome unknown, cache kept after error: %s", id, m.operation, err)
				return nil, err
			}
		}

		restoreErr := c.restore(snapshot)
		if nil != restoreErr {
			c.metrics.compensations.WithLabelValues(m.operation, resultFailed).Inc()
			c.metrics.divergences.WithLabelValues(m.operation).Inc()
			c.log.Criticalf("%s: %s: restore after ledger error: %s  failed: %s", id, m.operation, err, restoreErr)
			return nil, err
		}
		c.metrics.compensations.WithLabelValues(m.operation, resultRestored).Inc()
		c.log.Warnf("%s: %s: cache restored after ledger error: %s", id, m.operation, err)
		return nil, err
	}
}

// check, record previous values and write all keys as one batch
func (c *Catalog) writeCache(m *mutation) ([]write, error) {
	trx, err := c.db.Begin()
	if nil != err {
		return nil, err
	}

	if nil != m.check {
		if err := m.check(trx); nil != err {
			trx.Abort()
			return nil, err
		}
	}

	snapshot := make([]write, 0, len(m.writes))
	for _, w := range m.writes {
		previous, err := trx.Get(w.key)
		if nil != err {
			trx.Abort()
			return nil, err
		}
		snapshot = append(snapshot, write{key: w.key, value: previous})

		if nil == w.value {
			trx.Delete(w.key)
		} else {
			trx.Put(w.key, w.value)
		}
	}

	if err := trx.Commit(); nil != err {
		return nil, err
	}
	return snapshot, nil
}

func (c *Catalog) restore(snapshot []write) error {
	trx, err := c.db.Begin()
	if nil != err {
		return err
	}
	for _, w := range snapshot {
		if nil == w.value {
			trx.Delete(w.key)
		} else {
			trx.Put(w.key, w.value)
		}
	}
	return trx.Commit()
}

// query the ledger for the state the command would have produced
//
// the request context may already have expired so a fresh timeout is used
func (c *Catalog) ledgerOutcome(m *mutation) outcome {
	if nil == m.confirm.query {
		return outcomeUnknown
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	result, err := c.ledger.Query(ctx, m.confirm.query)
	return m.confirm.outcome(result, err)
}

// commit to the ledger within the configured timeout
func (c *Catalog) commit(ctx context.Context, m *mutation) (*ledger.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	receipt, err := c.ledger.Commit(ctx, m.command)
	c.metrics.commitSeconds.WithLabelValues(m.operation).Observe(time.Since(start).Seconds())

	result := resultAccepted
	switch {
	case nil == err && nil == receipt:
		err = fault.ErrMalformedReply
		result = resultUnavailable
	case nil == err:
	case fault.IsLedgerRejection(err):
		result = resultRejected
	default:
		result = resultUnavailable
	}
	c.metrics.commits.WithLabelValues(m.operation, result).Inc()

	return receipt, err
}
