// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/bookstored/fault"
)

// FetchCursor - cursor structure
type FetchCursor struct {
	d        *Database
	maxRange *ldb_util.Range
}

// NewFetchCursor - initialise a cursor to the start of the keys
// sharing a prefix; an empty prefix covers the whole database
func (d *Database) NewFetchCursor(prefix []byte) *FetchCursor {
	return &FetchCursor{
		d:        d,
		maxRange: ldb_util.BytesPrefix(prefix),
	}
}

// Seek - move cursor to specific key position
func (cursor *FetchCursor) Seek(key []byte) *FetchCursor {
	if bytes.Compare(key, cursor.maxRange.Start) > 0 {
		cursor.maxRange.Start = append([]byte{}, key...)
	}
	return cursor
}

// Fetch - return some elements starting from the cursor position and
// advance the cursor past them
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if nil == cursor {
		return nil, fault.ErrInvalidCursor
	}
	if count <= 0 {
		return nil, fault.ErrInvalidCount
	}

	cursor.d.RLock()
	defer cursor.d.RUnlock()
	if nil == cursor.d.db {
		return nil, fault.ErrNotInitialised
	}

	iter := cursor.d.db.NewIterator(cursor.maxRange, nil)

	results := make([]Element, 0, count)
iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		if bytes.Equal(key, versionKey) {
			continue iterating
		}
		value := iter.Value()

		e := Element{
			Key:   append([]byte{}, key...),
			Value: append([]byte{}, value...),
		}
		results = append(results, e)
		if len(results) >= count {
			break iterating
		}
	}
	iter.Release()
	err := iter.Error()

	// next fetch starts just after the last key returned
	if n := len(results); n > 0 {
		cursor.maxRange.Start = append(append([]byte{}, results[n-1].Key...), 0x00)
	}
	return results, err
}
