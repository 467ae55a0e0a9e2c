// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/bookstored/ledgerclient"
	"github.com/bitmark-inc/logger"
)

type metadata struct {
	client  ledgerclient.Client
	timeout time.Duration
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr, startLogging)

	err := app.Run(os.Args)
	if loggingStarted {
		logger.Finalise()
	}
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

var loggingStarted bool

// the client logs into a file in the temporary directory
func startLogging(name string, verbose bool) error {
	level := "critical"
	if verbose {
		level = "debug"
	}
	err := logger.Initialise(logger.Configuration{
		Directory: os.TempDir(),
		File:      name + ".log",
		Size:      1048576,
		Count:     2,
		Levels: map[string]string{
			logger.DefaultTag: level,
		},
	})
	loggingStarted = nil == err
	return err
}

// the application writing results to w and diagnostics to e
func newApp(w io.Writer, e io.Writer, logging func(string, bool) error) *cli.App {

	app := cli.NewApp()
	app.Name = "bookstore-cli"
	app.Usage = "administer the book store ledger"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2130",
			Usage:  " ledger node `HOST:PORT`",
			EnvVar: "BOOKSTORE_LEDGER",
		},
		cli.BoolFlag{
			Name:  "use-tls, t",
			Usage: " connect using TLS",
		},
		cli.StringFlag{
			Name:  "certificate",
			Value: "",
			Usage: " trust only the ledger certificate in `FILE`",
		},
		cli.IntFlag{
			Name:  "timeout",
			Value: 10,
			Usage: " give up after `SECONDS`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "deploy",
			Usage:     "mint the initial token supply",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account to receive the supply `ADDRESS`",
				},
			},
			Action: runDeploy,
		},
		{
			Name:      "balance",
			Usage:     "display an account balance",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account `ADDRESS`",
				},
			},
			Action: runBalance,
		},
		{
			Name:      "transfer",
			Usage:     "move tokens between accounts",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: "*paying account `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "to, r",
					Value: "",
					Usage: "*receiving account `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "amount, n",
					Value: "",
					Usage: "*token `AMOUNT`",
				},
				cli.BoolFlag{
					Name:  "dry-run, d",
					Usage: " only check that the transfer would succeed",
				},
			},
			Action: runTransfer,
		},
		{
			Name:   "info",
			Usage:  "display the token information",
			Action: runInfo,
		},
		{
			Name:      "book",
			Usage:     "display a book as held by the ledger",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*book `ID`",
				},
			},
			Action: runBook,
		},
		{
			Name:      "order",
			Usage:     "display a purchase order as held by the ledger",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*order `ID`",
				},
			},
			Action: runOrder,
		},
		{
			Name:  "version",
			Usage: "display bookstore-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// connect to the ledger
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		command := c.Args().Get(0)
		if "version" == command || "" == command || "help" == command {
			return nil
		}

		if err := logging(c.App.Name, verbose); nil != err {
			return err
		}

		configuration := &ledgerclient.Configuration{
			Connect:     c.GlobalString("connect"),
			UseTLS:      c.GlobalBool("use-tls"),
			Certificate: c.GlobalString("certificate"),
		}
		if verbose {
			fmt.Fprintf(e, "ledger: %s  TLS: %t\n", configuration.Connect, configuration.UseTLS)
		}

		client, err := ledgerclient.NewRPC(logger.New("ledgerclient"), configuration)
		if nil != err {
			return err
		}

		timeout := c.GlobalInt("timeout")
		if timeout <= 0 {
			return fmt.Errorf("invalid timeout: %d", timeout)
		}

		c.App.Metadata["config"] = &metadata{
			client:  client,
			timeout: time.Duration(timeout) * time.Second,
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	return app
}
