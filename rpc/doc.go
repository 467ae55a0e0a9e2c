// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - serve the ledger state machine to clients over JSON RPC
//
// the Ledger service has two methods: Commit applies a command durably
// and Query evaluates it without persisting anything
//
// standard golang net/rpc/jsonrpc clients can access these services
package rpc
