// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/bookstored/fault"
)

// Transaction - a batch of writes applied as one unit
type Transaction interface {
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
	Put([]byte, []byte)
	Delete([]byte)
	Commit() error
	Abort()
}

type transaction struct {
	d    *Database
	done bool
}

// Begin - start a transaction
//
// blocks while another transaction is open on the same database
func (d *Database) Begin() (Transaction, error) {
	if d.readOnly {
		return nil, fault.ErrTransactionAborted
	}

	d.writer.Lock()

	d.RLock()
	open := nil != d.db
	d.RUnlock()
	if !open {
		d.writer.Unlock()
		return nil, fault.ErrNotInitialised
	}

	d.batch.Reset()
	d.cache.Clear()
	return &transaction{d: d}, nil
}

// Get - read a value, including any uncommitted write in this transaction
func (t *transaction) Get(key []byte) ([]byte, error) {
	if t.done {
		return nil, fault.ErrTransactionAborted
	}
	value, present, known := t.d.cache.Get(string(key))
	if known {
		if !present {
			return nil, nil
		}
		return value, nil
	}
	return t.d.Get(key)
}

// Has - check a key, including any uncommitted write in this transaction
func (t *transaction) Has(key []byte) (bool, error) {
	if t.done {
		return false, fault.ErrTransactionAborted
	}
	_, present, known := t.d.cache.Get(string(key))
	if known {
		return present, nil
	}
	return t.d.Has(key)
}

// Put - queue a key/value write
func (t *transaction) Put(key []byte, value []byte) {
	if t.done {
		return
	}
	v := make([]byte, len(value))
	copy(v, value)
	t.d.cache.Set(dbPut, string(key), v)
	t.d.batch.Put(key, v)
}

// Delete - queue a key removal
func (t *transaction) Delete(key []byte) {
	if t.done {
		return
	}
	t.d.cache.Set(dbDelete, string(key), nil)
	t.d.batch.Delete(key)
}

// Commit - write all queued operations in one step and release the
// database for the next transaction
func (t *transaction) Commit() error {
	if t.done {
		return fault.ErrTransactionAborted
	}
	defer t.finish()

	t.d.RLock()
	defer t.d.RUnlock()
	if nil == t.d.db {
		return fault.ErrNotInitialised
	}
	return t.d.db.Write(t.d.batch, syncWrite)
}

// Abort - discard all queued operations
func (t *transaction) Abort() {
	if t.done {
		return
	}
	t.finish()
}

func (t *transaction) finish() {
	t.done = true
	t.d.batch.Reset()
	t.d.cache.Clear()
	t.d.writer.Unlock()
}

// a committed transaction must survive a crash
var syncWrite = &ldb_opt.WriteOptions{
	Sync: true,
}
