// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/rpc/ratelimit"
	"github.com/bitmark-inc/logger"
)

const (
	rateLimitLedger = 200
	rateBurstLedger = 100
)

// Applier - the ledger operations served over RPC
type Applier interface {
	Commit(ledger.Command) (*ledger.Receipt, error)
	Query(ledger.Command) (ledger.Result, error)
}

// Ledger - type for RPC calls
type Ledger struct {
	Log     *logger.L
	Limiter *rate.Limiter
	ledger  Applier
}

// New - create the RPC service
func New(log *logger.L, applier Applier) *Ledger {
	return &Ledger{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitLedger, rateBurstLedger),
		ledger:  applier,
	}
}

// ---

// CommitReply - result of a commit
//
// a rejection is a successful call with Accepted false
type CommitReply struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	TxId     string `json:"txId,omitempty"`
	Height   uint64 `json:"height,string"`
}

// Commit - apply a mutating invocation
func (l *Ledger) Commit(arguments *ledger.Invocation, reply *CommitReply) error {

	if err := ratelimit.Limit(l.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.ErrMissingParameters
	}

	l.Log.Debugf("commit: %s  args: %d", arguments.Method, len(arguments.Args))

	cmd, err := ledger.Decode(*arguments)
	if nil != err {
		return reject(&reply.Accepted, &reply.Reason, err)
	}

	receipt, err := l.ledger.Commit(cmd)
	if nil != err {
		return reject(&reply.Accepted, &reply.Reason, err)
	}

	reply.Accepted = true
	reply.TxId = receipt.TxId
	reply.Height = receipt.Height

	return nil
}

// ---

// QueryReply - result of a query
type QueryReply struct {
	Accepted bool          `json:"accepted"`
	Reason   string        `json:"reason,omitempty"`
	Result   ledger.Result `json:"result"`
}

// Query - evaluate an invocation without persisting it
func (l *Ledger) Query(arguments *ledger.Invocation, reply *QueryReply) error {

	if err := ratelimit.Limit(l.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.ErrMissingParameters
	}

	cmd, err := ledger.Decode(*arguments)
	if nil != err {
		return reject(&reply.Accepted, &reply.Reason, err)
	}

	result, err := l.ledger.Query(cmd)
	if nil != err {
		return reject(&reply.Accepted, &reply.Reason, err)
	}

	reply.Accepted = true
	reply.Result = result

	return nil
}

// ledger rule violations are carried in the reply, anything else is
// returned as an RPC error
func reject(accepted *bool, reason *string, err error) error {
	if !fault.IsLedgerRejection(err) {
		return err
	}
	*accepted = false
	*reason = err.Error()
	return nil
}
