// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"crypto/tls"
	"net"
	"sync"

	"github.com/bitmark-inc/bookstored/counter"
	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/rpc/certificate"
	"github.com/bitmark-inc/bookstored/rpc/contract"
	"github.com/bitmark-inc/bookstored/rpc/listeners"
	"github.com/bitmark-inc/bookstored/rpc/server"
	"github.com/bitmark-inc/logger"
)

const (
	tlsName = "ledger_rpc"
)

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	listener listeners.RPCListener

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// counters
var connectionCountRPC counter.Counter

// Initialise - start serving the ledger over JSON-RPC
func Initialise(configuration *listeners.RPCConfiguration, applier contract.Applier) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	var tlsConfig *tls.Config
	if "" != configuration.Certificate || "" != configuration.PrivateKey {
		c, fingerprint, err := certificate.Load(log, tlsName, configuration.Certificate, configuration.PrivateKey)
		if nil != err {
			return err
		}
		log.Infof("%s: SHA3-256 fingerprint: %x", tlsName, fingerprint)
		tlsConfig = c
	} else {
		log.Warnf("%s: no certificate, serving without TLS", tlsName)
	}

	rpcListener, err := listeners.NewRPC(
		configuration,
		log,
		&connectionCountRPC,
		server.Create(log, applier),
		tlsConfig,
	)
	if nil != err {
		return err
	}
	err = rpcListener.Serve()
	if nil != err {
		_ = rpcListener.Close()
		return err
	}
	globalData.listener = rpcListener

	// all data initialised
	globalData.initialised = true

	return nil
}

// Addresses - the bound listen addresses
func Addresses() []net.Addr {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return nil
	}
	return globalData.listener.Addresses()
}

// Connections - the number of open client connections
func Connections() uint64 {
	return connectionCountRPC.Uint64()
}

// Finalise - stop all background tasks
func Finalise() error {

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	err := globalData.listener.Close()
	globalData.listener = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return err
}
