// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerclient

import (
	"context"
	"fmt"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/ledger"
)

// Applier - an in-process ledger
type Applier interface {
	Commit(ledger.Command) (*ledger.Receipt, error)
	Query(ledger.Command) (ledger.Result, error)
}

// Local - a client for an embedded ledger
type Local struct {
	ledger Applier
}

// NewLocal - wrap an embedded ledger
func NewLocal(applier Applier) *Local {
	return &Local{
		ledger: applier,
	}
}

// Query - evaluate a command without persisting it
func (l *Local) Query(ctx context.Context, cmd ledger.Command) (ledger.Result, error) {
	if err := ctx.Err(); nil != err {
		return ledger.Result{}, fmt.Errorf("%w: %s", fault.ErrLedgerUnavailable, err)
	}
	result, err := l.ledger.Query(cmd)
	return result, failure(err)
}

// Commit - apply a command
//
// a cancelled context is only checked before the call, an embedded
// commit cannot be abandoned part way
func (l *Local) Commit(ctx context.Context, cmd ledger.Command) (*ledger.Receipt, error) {
	if err := ctx.Err(); nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrLedgerUnavailable, err)
	}
	receipt, err := l.ledger.Commit(cmd)
	if nil != err {
		return nil, failure(err)
	}
	return receipt, nil
}

// anything other than a rule violation is a failure inside the ledger
func failure(err error) error {
	if nil == err || fault.IsLedgerRejection(err) {
		return err
	}
	return fmt.Errorf("%w: %s", fault.ErrLedgerFailure, err)
}
