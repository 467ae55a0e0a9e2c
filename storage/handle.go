// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/bookstored/fault"
)

// Handle - committed data access
type Handle interface {
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// Get - read a committed value for a given key
//
// returns nil if the key is not present
func (d *Database) Get(key []byte) ([]byte, error) {
	d.RLock()
	defer d.RUnlock()
	if nil == d.db {
		return nil, fault.ErrNotInitialised
	}
	value, err := d.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

// Has - check if a committed key exists
func (d *Database) Has(key []byte) (bool, error) {
	d.RLock()
	defer d.RUnlock()
	if nil == d.db {
		return false, fault.ErrNotInitialised
	}
	return d.db.Has(key, nil)
}
