// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/bookstored/fault"
)

// copy text into a fresh directory as its configuration file
func writeConfiguration(t *testing.T, text []byte) (string, string) {
	dir, err := ioutil.TempDir("", "bookstored-test")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	fileName := filepath.Join(dir, "bookstored.conf")
	if err := ioutil.WriteFile(fileName, text, 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}
	return dir, fileName
}

func TestGetConfigurationSample(t *testing.T) {
	sample, err := ioutil.ReadFile("bookstored.conf.sample")
	if nil != err {
		t.Fatalf("read sample error: %s", err)
	}
	dir, fileName := writeConfiguration(t, sample)
	defer os.RemoveAll(dir)

	os.Setenv("BOOKSTORE_LEDGER", "10.0.0.7:2130")
	defer os.Unsetenv("BOOKSTORE_LEDGER")

	options, err := getConfiguration(fileName)
	assert.Nil(t, err, "configuration error")

	assert.Equal(t, dir, options.DataDirectory, "data directory")
	assert.Equal(t, filepath.Join(dir, "data", "cache.leveldb"), options.Cache.Name, "cache")
	assert.Equal(t, "compensate", options.Catalog.Policy, "policy")
	assert.Equal(t, 30, options.Catalog.LedgerTimeout, "timeout")
	assert.Equal(t, "10.0.0.7:2130", options.Ledger.Connect, "ledger connect")
	assert.True(t, options.Ledger.UseTLS, "ledger TLS")
	assert.Equal(t, filepath.Join(dir, "ledgerd-rpc.crt"), options.Ledger.Certificate, "ledger certificate")
	assert.Equal(t, 30, options.ProbeInterval, "probe interval")
	assert.False(t, options.Embedded.Enable, "embedded ledger")
	assert.Equal(t, "ledger.leveldb", options.Embedded.Database.Name, "unused ledger database resolved")
	assert.Equal(t, []string{"127.0.0.1:8080"}, options.API.Listen, "api listen")
	assert.Equal(t, uint64(100), options.API.MaximumConnections, "api connections")
	assert.Equal(t, "", options.API.Certificate, "api certificate")
	assert.Equal(t, filepath.Join(dir, "log"), options.Logging.Directory, "log directory")
}

func TestGetConfigurationEmbedded(t *testing.T) {
	text := `
return {
    data_directory = ".",
    catalog = { policy = "acknowledge" },
    embedded_ledger = {
        enable = true,
        options = { allow_book_overwrite = true },
    },
    api = { listen = { "127.0.0.1:0" } },
}
`
	dir, fileName := writeConfiguration(t, []byte(text))
	defer os.RemoveAll(dir)

	options, err := getConfiguration(fileName)
	assert.Nil(t, err, "configuration error")

	assert.Equal(t, "acknowledge", options.Catalog.Policy, "policy")
	assert.True(t, options.Embedded.Enable, "embedded ledger")
	assert.True(t, options.Embedded.Options.AllowBookOverwrite, "ledger options")
	assert.Equal(t, filepath.Join(dir, "data", "ledger.leveldb"), options.Embedded.Database.Name, "ledger database")
	assert.Equal(t, "127.0.0.1:2130", options.Ledger.Connect, "default connect")
}

func TestGetConfigurationInvalidPolicy(t *testing.T) {
	dir, fileName := writeConfiguration(t, []byte(`return { data_directory = ".", catalog = { policy = "eventual" } }`))
	defer os.RemoveAll(dir)

	_, err := getConfiguration(fileName)
	assert.Equal(t, fault.ErrInvalidPolicy, err, "wrong error")
}
