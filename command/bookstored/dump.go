// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/bitmark-inc/bookstored/storage"
)

const dumpBatchSize = 100

type dumpEntry struct {
	Key   string `json:"key"`
	Text  string `json:"text,omitempty"`
	Value string `json:"value"`
}

// write every cache record under prefix as one JSON object per line
func dumpCache(db *storage.Database, prefix string, w io.Writer) (int, error) {
	cursor := db.NewFetchCursor([]byte(prefix))
	n := 0
	for {
		elements, err := cursor.Fetch(dumpBatchSize)
		if nil != err {
			return n, err
		}
		if 0 == len(elements) {
			return n, nil
		}
		for _, e := range elements {
			entry := dumpEntry{
				Key:   string(e.Key),
				Value: hex.EncodeToString(e.Value),
			}
			if isText(e.Value) {
				entry.Text = string(e.Value)
			}
			b, err := json.Marshal(entry)
			if nil != err {
				return n, err
			}
			fmt.Fprintf(w, "%s\n", b)
			n += 1
		}
	}
}

func isText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
