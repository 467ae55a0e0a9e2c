// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package catalog - keep the local book cache and the ledger in step
//
// Every mutating operation is validated, written to the cache as one
// batch and then committed to the ledger.  If the ledger does not
// accept the command the consistency policy decides what happens to
// the cache:
//
//   compensate   - the previous cache values are restored and the
//                  ledger error is returned
//   acknowledge  - the cache write is kept, the divergence is logged
//                  and counted and the caller sees success
//
// Operations on the same book or order are serialised so that a
// compensation can never overwrite a later write.
package catalog
