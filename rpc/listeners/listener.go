// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"net"
	"strings"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/logger"
)

const (
	minConnectionCount = 1
)

// Listener - a set of sockets served in the background
type Listener interface {
	Serve() error
	Close() error
}

// network type and normalised address for each listen string
//
// "*:PORT" is changed to "[::]:PORT" on the assumption that this will
// listen on tcp4 and tcp6
func parseListenAddress(addrs []string, log *logger.L) ([]string, []string, error) {
	network := make([]string, len(addrs))
	normalised := make([]string, len(addrs))
	for i, listen := range addrs {
		if "" == listen {
			return nil, nil, fault.ErrInvalidIPAddress
		}
		normalised[i] = listen
		host, port, err := net.SplitHostPort(listen)
		if nil != err {
			log.Errorf("listen: %q  error: %s", listen, err)
			return nil, nil, fault.ErrInvalidIPAddress
		}

		switch {
		case "*" == host:
			normalised[i] = "[::]:" + port
			host = "::"
			network[i] = "tcp"
		case strings.Contains(host, ":"):
			network[i] = "tcp6"
		default:
			network[i] = "tcp4"
		}

		if ip := net.ParseIP(host); nil == ip {
			err := fault.ErrInvalidIPAddress
			log.Errorf("listen: %q  error: %s", listen, err)
			return nil, nil, err
		}
	}

	return network, normalised, nil
}
