// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"encoding/binary"
	"strings"

	"github.com/bitmark-inc/bookstored/fault"
)

// Policy - what to do with the cache when the ledger does not apply
// a command
type Policy string

// consistency policies
const (
	Compensate  Policy = "compensate"
	Acknowledge Policy = "acknowledge"
)

// ParsePolicy - convert a configuration string, empty selects the default
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Compensate:
		return Compensate, nil
	case Acknowledge:
		return Acknowledge, nil
	default:
		return "", fault.ErrInvalidPolicy
	}
}

// Book - a catalog entry as read from the cache
type Book struct {
	BookId       string `json:"bookId"`
	OwnerAddress string `json:"ownerAddress,omitempty"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Price        uint64 `json:"price"`
}

// Listing - the fields supplied to add or update a book
//
// a nil price is distinct from a zero price
type Listing struct {
	BookId string  `json:"bookId"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  *uint64 `json:"price"`
}

// Order - a purchase order
type Order struct {
	OrderId      string `json:"orderId"`
	BuyerAddress string `json:"buyerAddress"`
	BookId       string `json:"bookId"`
}

// prices are cached as 8 byte little endian
func packPrice(price uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, price)
	return b
}

func unpackPrice(b []byte) uint64 {
	if 8 != len(b) {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

type requestIdKey struct{}

// WithRequestId - attach an identifier used to correlate log lines
func WithRequestId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIdKey{}, id)
}

// RequestId - the identifier attached by WithRequestId
func RequestId(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey{}).(string); ok {
		return id
	}
	return "-"
}
