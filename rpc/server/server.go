// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"

	"github.com/bitmark-inc/bookstored/rpc/contract"
	"github.com/bitmark-inc/logger"
)

// Create - an RPC server offering the ledger service
func Create(log *logger.L, applier contract.Applier) *rpc.Server {
	server := rpc.NewServer()

	err := server.Register(contract.New(log, applier))
	logger.PanicIfError("rpc: register ledger service", err)

	return server
}
