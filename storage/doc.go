// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// maintain an on-disk key->value store
//
// This wraps a single LevelDB database.  Keys are plain byte strings
// built by the keys package, so the same engine serves as the catalog
// cache and as the ledger backing store.
//
// Writes are grouped into a Transaction, i.e. a leveldb.Batch that
// is written in one step on Commit; only one transaction may be open
// at a time on a database and Begin blocks until the previous one is
// committed or aborted.  Reads made through a transaction see its own
// uncommitted writes.
//
// Notes:
// 1. the version record uses a key starting with 0x00, which cannot
//    clash with the ASCII keys used by the application
// 2. absent keys read as nil with a nil error
package storage
