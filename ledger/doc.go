// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the book store contract
//
// A closed set of commands is executed by a Machine against an
// explicit State.  Balances are arbitrary precision and never
// negative; a rejected command leaves the state untouched.
//
// Ledger wraps the machine with a LevelDB store so that each command
// is applied in a single transaction and receives a receipt.
package ledger
