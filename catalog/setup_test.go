// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitmark-inc/bookstored/fixtures"
	"github.com/bitmark-inc/bookstored/ledgerclient"
	"github.com/bitmark-inc/bookstored/storage"
	"github.com/bitmark-inc/logger"
)

const (
	cacheFileName  = "catalog-cache.leveldb"
	ledgerFileName = "catalog-ledger.leveldb"
)

func removeFiles() {
	_ = os.RemoveAll(cacheFileName)
	_ = os.RemoveAll(ledgerFileName)
}

// a catalog over a fresh cache, returning the cleanup function
func setupCatalog(t *testing.T, client ledgerclient.Client, policy Policy) (*Catalog, *storage.Database, func()) {
	fixtures.SetupTestLogger()
	removeFiles()

	db, err := storage.Open(cacheFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}

	configuration := &Configuration{
		Policy:        string(policy),
		LedgerTimeout: 5,
	}
	c, err := New(logger.New(fixtures.LogCategory), db, client, configuration, prometheus.NewRegistry())
	if nil != err {
		t.Fatalf("catalog error: %s", err)
	}

	return c, db, func() {
		db.Close()
		removeFiles()
		fixtures.TeardownTestLogger()
	}
}

func price(p uint64) *uint64 {
	return &p
}
