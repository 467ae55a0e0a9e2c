// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgerclient - invoke ledger commands from the book store
//
// Commit returns nil only when the ledger accepted and applied the
// command.  Errors are classed by the fault package: a ledger
// rejection keeps its own class, while a failure to reach the ledger
// or to understand its reply is a fault.TransportError and leaves the
// outcome unknown.
package ledgerclient

import (
	"context"

	"github.com/bitmark-inc/bookstored/ledger"
)

// Client - the two kinds of ledger invocation
type Client interface {
	Query(ctx context.Context, cmd ledger.Command) (ledger.Result, error)
	Commit(ctx context.Context, cmd ledger.Command) (*ledger.Receipt, error)
}
