// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math/big"

	"github.com/bitmark-inc/bookstored/keys"
)

// State - the key/value space a command reads and writes
//
// Get returns nil for an absent key
type State interface {
	Get([]byte) ([]byte, error)
	Put([]byte, []byte)
	Delete([]byte)
}

// integers are stored as big endian magnitude, absent means zero
func getInteger(state State, key []byte) (*big.Int, error) {
	data, err := state.Get(key)
	if nil != err {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

func putInteger(state State, key []byte, value *big.Int) {
	state.Put(key, value.Bytes())
}

func balance(state State, account string) (*big.Int, error) {
	return getInteger(state, keys.Account([]byte(account)))
}

func readBook(state State, bookId string) (*Book, error) {
	k := keys.Book(bookId)
	owner, err := state.Get(k.OwnerAddress)
	if nil != err {
		return nil, err
	}
	if nil == owner {
		return nil, nil
	}
	title, err := state.Get(k.Title)
	if nil != err {
		return nil, err
	}
	author, err := state.Get(k.Author)
	if nil != err {
		return nil, err
	}
	price, err := getInteger(state, k.Price)
	if nil != err {
		return nil, err
	}
	return &Book{
		BookId: bookId,
		Owner:  string(owner),
		Title:  string(title),
		Author: string(author),
		Price:  price,
	}, nil
}

func writeBook(state State, book *Book) {
	k := keys.Book(book.BookId)
	state.Put(k.OwnerAddress, []byte(book.Owner))
	state.Put(k.Title, []byte(book.Title))
	state.Put(k.Author, []byte(book.Author))
	putInteger(state, k.Price, book.Price)
}

func readOrder(state State, orderId string) (*Order, error) {
	k := keys.Order(orderId)
	buyer, err := state.Get(k.BuyerAddress)
	if nil != err {
		return nil, err
	}
	if nil == buyer {
		return nil, nil
	}
	bookId, err := state.Get(k.BookId)
	if nil != err {
		return nil, err
	}
	return &Order{
		OrderId: orderId,
		Buyer:   string(buyer),
		BookId:  string(bookId),
	}, nil
}
