// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/bookstored/ledger"
)

type receiptReply struct {
	Method string `json:"method"`
	TxId   string `json:"txId"`
	Height uint64 `json:"height"`
}

type balanceReply struct {
	Account string   `json:"account"`
	Balance *big.Int `json:"balance"`
}

type infoReply struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Decimals    *big.Int `json:"decimals"`
	TotalSupply *big.Int `json:"totalSupply"`
	Owner       string   `json:"owner"`
}

func checkRequired(c *cli.Context, names ...string) error {
	for _, name := range names {
		if "" == c.String(name) {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

func withTimeout(m *metadata) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func commit(c *cli.Context, cmd ledger.Command) error {
	m := c.App.Metadata["config"].(*metadata)

	if m.verbose {
		fmt.Fprintf(m.e, "commit: %s\n", cmd.Method())
	}

	ctx, cancel := withTimeout(m)
	defer cancel()

	receipt, err := m.client.Commit(ctx, cmd)
	if nil != err {
		return err
	}
	return printJson(m.w, receiptReply{
		Method: cmd.Method(),
		TxId:   receipt.TxId,
		Height: receipt.Height,
	})
}

func query(m *metadata, cmd ledger.Command) (ledger.Result, error) {
	if m.verbose {
		fmt.Fprintf(m.e, "query: %s\n", cmd.Method())
	}

	ctx, cancel := withTimeout(m)
	defer cancel()

	return m.client.Query(ctx, cmd)
}

func runDeploy(c *cli.Context) error {
	if err := checkRequired(c, "account"); nil != err {
		return err
	}
	return commit(c, ledger.Deploy{Account: c.String("account")})
}

func runBalance(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if err := checkRequired(c, "account"); nil != err {
		return err
	}
	account := c.String("account")

	result, err := query(m, ledger.BalanceOf{Account: account})
	if nil != err {
		return err
	}
	return printJson(m.w, balanceReply{
		Account: account,
		Balance: result.Integer,
	})
}

func runTransfer(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if err := checkRequired(c, "from", "to", "amount"); nil != err {
		return err
	}
	amount, ok := new(big.Int).SetString(c.String("amount"), 10)
	if !ok {
		return fmt.Errorf("invalid amount: %q", c.String("amount"))
	}

	cmd := ledger.Transfer{
		From:   c.String("from"),
		To:     c.String("to"),
		Amount: amount,
	}

	if c.Bool("dry-run") {
		if _, err := query(m, cmd); nil != err {
			return err
		}
		return printJson(m.w, map[string]bool{"wouldSucceed": true})
	}
	return commit(c, cmd)
}

func runInfo(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	info := infoReply{}
	for _, item := range []struct {
		cmd  ledger.Command
		save func(ledger.Result)
	}{
		{ledger.Name{}, func(r ledger.Result) { info.Name = r.String }},
		{ledger.Symbol{}, func(r ledger.Result) { info.Symbol = r.String }},
		{ledger.Decimals{}, func(r ledger.Result) { info.Decimals = r.Integer }},
		{ledger.TotalSupply{}, func(r ledger.Result) { info.TotalSupply = r.Integer }},
		{ledger.Owner{}, func(r ledger.Result) { info.Owner = r.String }},
	} {
		result, err := query(m, item.cmd)
		if nil != err {
			return err
		}
		item.save(result)
	}
	return printJson(m.w, info)
}

func runBook(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if err := checkRequired(c, "id"); nil != err {
		return err
	}
	result, err := query(m, ledger.GetBook{BookId: c.String("id")})
	if nil != err {
		return err
	}
	return printJson(m.w, result.Book)
}

func runOrder(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if err := checkRequired(c, "id"); nil != err {
		return err
	}
	result, err := query(m, ledger.GetOrder{OrderId: c.String("id")})
	if nil != err {
		return err
	}
	return printJson(m.w, result.Order)
}
