// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitmark-inc/bookstored/api"
	"github.com/bitmark-inc/bookstored/background"
	"github.com/bitmark-inc/bookstored/catalog"
	"github.com/bitmark-inc/bookstored/counter"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/ledgerclient"
	"github.com/bitmark-inc/bookstored/rpc/certificate"
	"github.com/bitmark-inc/bookstored/rpc/listeners"
	"github.com/bitmark-inc/bookstored/storage"
	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// open API connections
var connectionCountAPI counter.Counter

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	log.Infof("cache: %q", theConfiguration.Cache.Name)
	log.Debugf("%s = %#v", "Catalog", theConfiguration.Catalog)
	log.Debugf("%s = %#v", "API", theConfiguration.API)

	// the local cache
	log.Info("initialise storage")
	db, err := storage.Open(theConfiguration.Cache.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer db.Close()

	// these commands are allowed to access the cache
	if len(arguments) > 0 && processDataCommand(log, arguments, db) {
		return
	}

	// the ledger, either in process or remote
	var client ledgerclient.Client
	if theConfiguration.Embedded.Enable {
		log.Infof("embedded ledger: %q", theConfiguration.Embedded.Database.Name)
		ledgerDB, err := storage.Open(theConfiguration.Embedded.Database.Name, storage.ReadWrite)
		if nil != err {
			log.Criticalf("ledger storage initialise error: %s", err)
			exitwithstatus.Message("ledger storage initialise error: %s", err)
		}
		defer ledgerDB.Close()

		client = ledgerclient.NewLocal(ledger.New(logger.New("ledger"), ledgerDB, theConfiguration.Embedded.Options))
	} else {
		log.Infof("ledger node: %s  TLS: %t", theConfiguration.Ledger.Connect, theConfiguration.Ledger.UseTLS)
		remote, err := ledgerclient.NewRPC(logger.New("ledgerclient"), &theConfiguration.Ledger)
		if nil != err {
			log.Criticalf("ledger client initialise error: %s", err)
			exitwithstatus.Message("ledger client initialise error: %s", err)
		}
		client = remote
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	probe, err := ledgerclient.NewProbe(logger.New("probe"), client, time.Duration(theConfiguration.ProbeInterval)*time.Second, registry)
	if nil != err {
		log.Criticalf("probe initialise error: %s", err)
		exitwithstatus.Message("probe initialise error: %s", err)
	}
	processes := background.Start(background.Processes{probe}, nil)
	defer processes.Stop()

	theCatalog, err := catalog.New(logger.New("catalog"), db, client, &theConfiguration.Catalog, registry)
	if nil != err {
		log.Criticalf("catalog initialise error: %s", err)
		exitwithstatus.Message("catalog initialise error: %s", err)
	}
	log.Infof("consistency policy: %s", theCatalog.Policy())

	// HTTP(S) interface
	apiLog := logger.New("api")
	var tlsConfig *tls.Config
	if "" != theConfiguration.API.Certificate || "" != theConfiguration.API.PrivateKey {
		c, fingerprint, err := certificate.Load(apiLog, "api", theConfiguration.API.Certificate, theConfiguration.API.PrivateKey)
		if nil != err {
			exitwithstatus.Message("api certificate error: %s", err)
		}
		log.Infof("api: SHA3-256 fingerprint: %x", fingerprint)
		tlsConfig = c
	}

	listener, err := listeners.NewHTTP(
		&theConfiguration.API,
		apiLog,
		&connectionCountAPI,
		tlsConfig,
		api.New(apiLog, theCatalog, registry),
	)
	if nil != err {
		log.Criticalf("api initialise error: %s", err)
		exitwithstatus.Message("api initialise error: %s", err)
	}
	if nil == listener {
		exitwithstatus.Message("api: no listen address configured")
	}
	if err := listener.Serve(); nil != err {
		log.Criticalf("api serve error: %s", err)
		exitwithstatus.Message("api serve error: %s", err)
	}
	defer listener.Close()

	for _, a := range listener.Addresses() {
		log.Infof("api listening on: %s", a)
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
