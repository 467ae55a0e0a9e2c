// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bitmark-inc/bookstored/counter"
	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/logger"
)

const (
	httpLogName      = "http_api"
	readWriteTimeout = 10 * time.Second
	keepAlivePeriod  = 3 * time.Minute
	shutdownTimeout  = 5 * time.Second
)

// HTTPConfiguration - configuration file data for the HTTP API
//
// certificate and private_key are file names; if both are empty the
// server listens without TLS
type HTTPConfiguration struct {
	MaximumConnections uint64   `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string `gluamapper:"listen" json:"listen"`
	Certificate        string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string   `gluamapper:"private_key" json:"private_key"`
}

type httpListener struct {
	sync.Mutex
	log             *logger.L
	ipType          []string
	listenIPAndPort []string
	tlsConfig       *tls.Config
	handler         http.Handler
	maxConnections  uint64
	count           *counter.Counter
	servers         []*http.Server
	addrs           []net.Addr
}

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(keepAlivePeriod)
	return tc, nil
}

// closes connections beyond the limit as soon as they are accepted
type limitListener struct {
	net.Listener
	maximum uint64
	count   *counter.Counter
	log     *logger.L
}

func (ln limitListener) Accept() (net.Conn, error) {
	for {
		conn, err := ln.Listener.Accept()
		if nil != err {
			return nil, err
		}
		if ln.count.Acquire(ln.maximum) {
			return &countedConn{Conn: conn, count: ln.count}, nil
		}
		ln.log.Warnf("connection limit: %d reached, rejecting: %s", ln.maximum, conn.RemoteAddr())
		_ = conn.Close()
	}
}

type countedConn struct {
	net.Conn
	once  sync.Once
	count *counter.Counter
}

func (c *countedConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() {
		c.count.Decrement()
	})
	return err
}

// Serve - open every listen address and serve in the background
func (h *httpListener) Serve() error {
	h.Lock()
	defer h.Unlock()

	for i, listen := range h.listenIPAndPort {
		h.log.Infof("starting server: %s on: %q", httpLogName, listen)

		ln, err := net.Listen(h.ipType[i], listen)
		if err != nil {
			h.log.Errorf("%s listen error: %s", httpLogName, err)
			return err
		}
		h.addrs = append(h.addrs, ln.Addr())

		var l net.Listener = limitListener{
			Listener: tcpKeepAliveListener{ln.(*net.TCPListener)},
			maximum:  h.maxConnections,
			count:    h.count,
			log:      h.log,
		}
		if nil != h.tlsConfig {
			cfg := h.tlsConfig.Clone()
			cfg.NextProtos = []string{"http/1.1"}
			l = tls.NewListener(l, cfg)
		}

		s := &http.Server{
			Handler:        h.handler,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   readWriteTimeout,
			MaxHeaderBytes: 1 << 20,
		}
		h.servers = append(h.servers, s)

		go func(addr string) {
			err := s.Serve(l)
			if http.ErrServerClosed != err {
				h.log.Errorf("%s: %s terminated: %s", httpLogName, addr, err)
			}
		}(listen)
	}

	return nil
}

// Close - stop the servers, waiting a short time for active requests
func (h *httpListener) Close() error {
	h.Lock()
	defer h.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var first error
	for _, s := range h.servers {
		if err := s.Shutdown(ctx); nil != err && nil == first {
			first = err
		}
	}
	h.servers = nil
	return first
}

// Addresses - the bound socket addresses
func (h *httpListener) Addresses() []net.Addr {
	h.Lock()
	defer h.Unlock()
	return append([]net.Addr{}, h.addrs...)
}

// HTTPListener - a Listener that also reports its bound addresses
type HTTPListener interface {
	Listener
	Addresses() []net.Addr
}

// NewHTTP - validate configuration and create the API listener
//
// returns nil, nil when no listen address is configured
func NewHTTP(
	configuration *HTTPConfiguration,
	log *logger.L,
	count *counter.Counter,
	tlsConfig *tls.Config,
	handler http.Handler,
) (HTTPListener, error) {
	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", httpLogName)
		return nil, nil
	}

	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", httpLogName, configuration.MaximumConnections)
		return nil, fault.ErrMissingParameters
	}

	h := httpListener{
		log:            log,
		tlsConfig:      tlsConfig,
		handler:        handler,
		maxConnections: configuration.MaximumConnections,
		count:          count,
	}

	var err error
	h.ipType, h.listenIPAndPort, err = parseListenAddress(configuration.Listen, log)
	if nil != err {
		return nil, err
	}

	return &h, nil
}
