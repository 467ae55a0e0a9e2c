// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/rpc/certificate"
	"github.com/bitmark-inc/bookstored/rpc/contract"
	"github.com/bitmark-inc/logger"
)

const (
	commitMethod = "Ledger.Commit"
	queryMethod  = "Ledger.Query"

	defaultDialTimeout = 5 * time.Second
)

// Configuration - how to reach the ledger node
type Configuration struct {
	Connect     string `gluamapper:"connect" json:"connect"`
	UseTLS      bool   `gluamapper:"use_tls" json:"use_tls"`
	Certificate string `gluamapper:"certificate" json:"certificate"` // server certificate to trust, empty to skip verification
	DialTimeout int    `gluamapper:"dial_timeout" json:"dial_timeout"` // seconds
}

// RPC - a client for a remote ledger node
//
// each invocation uses a fresh connection and is attempted once
type RPC struct {
	log       *logger.L
	address   string
	tlsConfig *tls.Config
	dialer    net.Dialer
}

// NewRPC - create a client from configuration
func NewRPC(log *logger.L, configuration *Configuration) (*RPC, error) {
	if "" == configuration.Connect {
		return nil, fault.ErrMissingParameters
	}
	if _, _, err := net.SplitHostPort(configuration.Connect); nil != err {
		return nil, fault.ErrInvalidIPAddress
	}

	timeout := defaultDialTimeout
	if configuration.DialTimeout > 0 {
		timeout = time.Duration(configuration.DialTimeout) * time.Second
	}

	c := &RPC{
		log:     log,
		address: configuration.Connect,
		dialer: net.Dialer{
			Timeout: timeout,
		},
	}

	if configuration.UseTLS {
		tlsConfig, err := certificate.ClientConfig(configuration.Certificate)
		if nil != err {
			return nil, err
		}
		c.tlsConfig = tlsConfig
	}

	return c, nil
}

// Query - evaluate a command without persisting it
func (c *RPC) Query(ctx context.Context, cmd ledger.Command) (ledger.Result, error) {
	var reply contract.QueryReply
	err := c.call(ctx, queryMethod, ledger.Encode(cmd), &reply)
	if nil != err {
		return ledger.Result{}, err
	}
	if !reply.Accepted {
		return ledger.Result{}, rejection(reply.Reason)
	}
	return reply.Result, nil
}

// Commit - apply a command on the ledger node
func (c *RPC) Commit(ctx context.Context, cmd ledger.Command) (*ledger.Receipt, error) {
	var reply contract.CommitReply
	err := c.call(ctx, commitMethod, ledger.Encode(cmd), &reply)
	if nil != err {
		return nil, err
	}
	if !reply.Accepted {
		return nil, rejection(reply.Reason)
	}
	if "" == reply.TxId {
		return nil, fault.ErrMalformedReply
	}
	return &ledger.Receipt{
		TxId:   reply.TxId,
		Height: reply.Height,
	}, nil
}

func rejection(reason string) error {
	if "" == reason {
		return fault.ErrMalformedReply
	}
	return fault.Rejection(reason)
}

func (c *RPC) call(ctx context.Context, method string, args interface{}, reply interface{}) error {

	conn, err := c.dialer.DialContext(ctx, "tcp", c.address)
	if nil != err {
		c.log.Warnf("dial: %s  error: %s", c.address, err)
		return fmt.Errorf("%w: %s", fault.ErrLedgerUnavailable, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if nil != c.tlsConfig {
		cfg := c.tlsConfig.Clone()
		if "" == cfg.ServerName && !cfg.InsecureSkipVerify {
			host, _, _ := net.SplitHostPort(c.address)
			cfg.ServerName = host
		}
		conn = tls.Client(conn, cfg)
	}

	client := jsonrpc.NewClient(conn)
	defer client.Close()

	call := client.Go(method, args, reply, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		c.log.Warnf("call: %s  abandoned: %s", method, ctx.Err())
		return fmt.Errorf("%w: %s", fault.ErrLedgerUnavailable, ctx.Err())

	case done := <-call.Done:
		err = done.Error
	}

	if nil == err {
		return nil
	}

	c.log.Debugf("call: %s  error: %s", method, err)

	var serverError rpc.ServerError
	if errors.As(err, &serverError) {
		return fault.Rejection(string(serverError))
	}

	if isTransportFailure(err) {
		return fmt.Errorf("%w: %s", fault.ErrLedgerUnavailable, err)
	}
	return fmt.Errorf("%w: %s", fault.ErrMalformedReply, err)
}

// distinguish a broken connection from a reply that could not be decoded
func isTransportFailure(err error) bool {
	if rpc.ErrShutdown == err || io.EOF == err || io.ErrUnexpectedEOF == err {
		return true
	}
	var netError net.Error
	return errors.As(err, &netError)
}
