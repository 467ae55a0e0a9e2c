// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/bookstored/catalog"
	"github.com/bitmark-inc/bookstored/configuration"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/ledgerclient"
	"github.com/bitmark-inc/bookstored/rpc/listeners"
	"github.com/bitmark-inc/bookstored/util"
	"github.com/bitmark-inc/logger"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultCacheDatabase    = "cache.leveldb"
	defaultLedgerDatabase   = "ledger.leveldb"

	defaultLedgerConnect = "127.0.0.1:2130"

	defaultLogFile = "bookstored.log"

	defaultAPIClients = 100
)

// EmbeddedType - run the ledger inside this process instead of
// connecting to a ledger node
type EmbeddedType struct {
	Enable   bool                       `gluamapper:"enable" json:"enable"`
	Database configuration.DatabaseType `gluamapper:"database" json:"database"`
	Options  ledger.Options             `gluamapper:"options" json:"options"`
}

// Configuration - the book store configuration file
type Configuration struct {
	DataDirectory string                     `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string                     `gluamapper:"pidfile" json:"pidfile"`
	Cache         configuration.DatabaseType `gluamapper:"cache" json:"cache"`

	Catalog       catalog.Configuration       `gluamapper:"catalog" json:"catalog"`
	Ledger        ledgerclient.Configuration  `gluamapper:"ledger" json:"ledger"`
	ProbeInterval int                         `gluamapper:"ledger_probe_interval" json:"ledger_probe_interval"` // seconds
	Embedded      EmbeddedType                `gluamapper:"embedded_ledger" json:"embedded_ledger"`
	API           listeners.HTTPConfiguration `gluamapper:"api" json:"api"`
	Logging       logger.Configuration        `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Cache: configuration.DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultCacheDatabase,
		},

		Catalog: catalog.Configuration{
			Policy: string(catalog.Compensate),
		},

		Ledger: ledgerclient.Configuration{
			Connect: defaultLedgerConnect,
		},

		Embedded: EmbeddedType{
			Database: configuration.DatabaseType{
				Directory: defaultLevelDBDirectory,
				Name:      defaultLedgerDatabase,
			},
		},

		API: listeners.HTTPConfiguration{
			MaximumConnections: defaultAPIClients,
		},

		Logging: configuration.DefaultLogging(defaultLogFile),
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	if _, err := catalog.ParsePolicy(options.Catalog.Policy); nil != err {
		return nil, err
	}

	dataDirectory, err := configuration.DataDirectory(configurationFileName, options.DataDirectory)
	if nil != err {
		return nil, err
	}
	options.DataDirectory = dataDirectory

	// optional absolute paths i.e. blank or an absolute path
	util.EnsureAllAbsolute(
		options.DataDirectory,
		&options.PidFile,
		&options.Ledger.Certificate,
		&options.API.Certificate,
		&options.API.PrivateKey,
	)

	if err := options.Cache.Resolve(options.DataDirectory); nil != err {
		return nil, err
	}
	if options.Embedded.Enable {
		if err := options.Embedded.Database.Resolve(options.DataDirectory); nil != err {
			return nil, err
		}
	}
	if err := configuration.ResolveLogging(options.DataDirectory, &options.Logging); nil != err {
		return nil, err
	}

	// done
	return options, nil
}
