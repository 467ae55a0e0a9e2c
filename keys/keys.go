// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keys - construct every storage key used by the cache and the ledger
//
// All keys are ASCII of the form:  field prefix ++ "_" ++ entity id
//
// Books:
//
//   Book_OwnerAddress_<bookId>         - owner address (presence means the book exists)
//   Book_Title_<bookId>                - UTF-8 title
//   Book_Author_<bookId>               - UTF-8 author
//   Book_Price_<bookId>                - price (cache: 8 byte little endian, ledger: big integer)
//
// Purchases:
//
//   Purchase_BuyerAddress_<orderId>    - buyer address
//   Purchase_BookId_<orderId>          - purchased book id
//
// Ledger only:
//
//   A_<address>                        - account balance (big integer)
//   totalsupply                        - total issued tokens
//   owner                              - deploying account
//   height                             - count of accepted commits
package keys

// field prefixes
const (
	BookOwnerAddressPrefix     = "Book_OwnerAddress"
	BookTitlePrefix            = "Book_Title"
	BookAuthorPrefix           = "Book_Author"
	BookPricePrefix            = "Book_Price"
	PurchaseBuyerAddressPrefix = "Purchase_BuyerAddress"
	PurchaseBookIdPrefix       = "Purchase_BookId"
	AccountPrefix              = "A"
)

// singleton ledger keys
var (
	TotalSupply = []byte("totalsupply")
	Owner       = []byte("owner")
	Height      = []byte("height")
)

const separator = "_"

// Key - join a field prefix and an entity id
func Key(prefix string, id string) []byte {
	return []byte(prefix + separator + id)
}

// BookFields - the set of keys that together hold one book
type BookFields struct {
	OwnerAddress []byte
	Title        []byte
	Author       []byte
	Price        []byte
}

// Book - all keys of a book
func Book(bookId string) BookFields {
	return BookFields{
		OwnerAddress: Key(BookOwnerAddressPrefix, bookId),
		Title:        Key(BookTitlePrefix, bookId),
		Author:       Key(BookAuthorPrefix, bookId),
		Price:        Key(BookPricePrefix, bookId),
	}
}

// All - the book keys in a fixed order
func (b BookFields) All() [][]byte {
	return [][]byte{b.OwnerAddress, b.Title, b.Author, b.Price}
}

// OrderFields - the set of keys that together hold one purchase order
type OrderFields struct {
	BuyerAddress []byte
	BookId       []byte
}

// Order - all keys of a purchase order
func Order(orderId string) OrderFields {
	return OrderFields{
		BuyerAddress: Key(PurchaseBuyerAddressPrefix, orderId),
		BookId:       Key(PurchaseBookIdPrefix, orderId),
	}
}

// All - the order keys in a fixed order
func (o OrderFields) All() [][]byte {
	return [][]byte{o.BuyerAddress, o.BookId}
}

// Account - key of an account balance
func Account(address []byte) []byte {
	return Key(AccountPrefix, string(address))
}
