// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"math"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/keys"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/ledgerclient"
	"github.com/bitmark-inc/bookstored/storage"
	"github.com/bitmark-inc/logger"
)

const (
	defaultLedgerTimeout = 30 * time.Second
)

// operation names for logs and metrics
const (
	opAddBook      = "addBook"
	opUpdateBook   = "updateBook"
	opDeleteBook   = "deleteBook"
	opPurchaseBook = "purchaseBook"
)

// Configuration - configuration file data for the catalog
type Configuration struct {
	Policy        string `gluamapper:"policy" json:"policy"`
	LedgerTimeout int    `gluamapper:"ledger_timeout" json:"ledger_timeout"` // seconds
}

// Catalog - the book store operations
type Catalog struct {
	log     *logger.L
	db      *storage.Database
	ledger  ledgerclient.Client
	policy  Policy
	timeout time.Duration
	locks   *keyLock
	metrics *metrics
}

// New - create a catalog over an open cache database and a ledger client
//
// metrics are registered with registerer
func New(log *logger.L, db *storage.Database, client ledgerclient.Client, configuration *Configuration, registerer prometheus.Registerer) (*Catalog, error) {
	policy, err := ParsePolicy(configuration.Policy)
	if nil != err {
		return nil, err
	}

	timeout := defaultLedgerTimeout
	if configuration.LedgerTimeout > 0 {
		timeout = time.Duration(configuration.LedgerTimeout) * time.Second
	}

	m, err := newMetrics(registerer)
	if nil != err {
		return nil, err
	}

	log.Infof("consistency policy: %s  ledger timeout: %s", policy, timeout)

	return &Catalog{
		log:     log,
		db:      db,
		ledger:  client,
		policy:  policy,
		timeout: timeout,
		locks:   newKeyLock(),
		metrics: m,
	}, nil
}

// Policy - the active consistency policy
func (c *Catalog) Policy() Policy {
	return c.policy
}

// GetBook - read a book from the cache
//
// missing fields read as empty or zero, so an unknown book id gives a
// book with only its id set
func (c *Catalog) GetBook(bookId string) (*Book, error) {
	if "" == bookId {
		return nil, fault.ErrMissingBookId
	}

	k := keys.Book(bookId)
	values := make([][]byte, 0, 4)
	for _, key := range k.All() {
		v, err := c.db.Get(key)
		if nil != err {
			return nil, err
		}
		values = append(values, v)
	}

	return &Book{
		BookId:       bookId,
		OwnerAddress: string(values[0]),
		Title:        string(values[1]),
		Author:       string(values[2]),
		Price:        unpackPrice(values[3]),
	}, nil
}

// GetOrder - read a purchase order from the cache
func (c *Catalog) GetOrder(orderId string) (*Order, error) {
	if "" == orderId {
		return nil, fault.ErrMissingOrderId
	}

	k := keys.Order(orderId)
	buyer, err := c.db.Get(k.BuyerAddress)
	if nil != err {
		return nil, err
	}
	bookId, err := c.db.Get(k.BookId)
	if nil != err {
		return nil, err
	}
	if nil == buyer && nil == bookId {
		return nil, fault.ErrOrderNotFound
	}

	return &Order{
		OrderId:      orderId,
		BuyerAddress: string(buyer),
		BookId:       string(bookId),
	}, nil
}

func validateListing(owner string, listing *Listing) error {
	switch {
	case "" == owner:
		return fault.ErrMissingOwner
	case "" == listing.BookId:
		return fault.ErrMissingBookId
	case "" == listing.Title:
		return fault.ErrMissingTitle
	case "" == listing.Author:
		return fault.ErrMissingAuthor
	case nil == listing.Price:
		return fault.ErrMissingPrice
	case *listing.Price > math.MaxInt64:
		return fault.ErrPriceTooLarge
	}
	return nil
}

func bookWrites(owner string, listing *Listing) []write {
	k := keys.Book(listing.BookId)
	return []write{
		{key: k.OwnerAddress, value: []byte(owner)},
		{key: k.Title, value: []byte(listing.Title)},
		{key: k.Author, value: []byte(listing.Author)},
		{key: k.Price, value: packPrice(*listing.Price)},
	}
}

// AddBook - list a new book
//
// returns the ledger receipt, which is nil when the ledger gave no
// receipt but the cache write stands: the acknowledge policy kept it,
// or a query showed the ledger had applied the command
func (c *Catalog) AddBook(ctx context.Context, owner string, listing Listing) (*ledger.Receipt, error) {
	if err := validateListing(owner, &listing); nil != err {
		return nil, err
	}

	cmd := ledger.AddBook{
		Owner:  owner,
		BookId: listing.BookId,
		Title:  listing.Title,
		Author: listing.Author,
		Price:  new(big.Int).SetUint64(*listing.Price),
	}
	return c.apply(ctx, &mutation{
		operation: opAddBook,
		locks:     []string{bookLock(listing.BookId)},
		writes:    bookWrites(owner, &listing),
		command:   cmd,
		confirm:   bookListed(owner, &listing),
	})
}

// UpdateBook - replace all fields of a book held by owner
func (c *Catalog) UpdateBook(ctx context.Context, owner string, listing Listing) (*ledger.Receipt, error) {
	if err := validateListing(owner, &listing); nil != err {
		return nil, err
	}

	cmd := ledger.UpdateBook{
		Owner:  owner,
		BookId: listing.BookId,
		Title:  listing.Title,
		Author: listing.Author,
		Price:  new(big.Int).SetUint64(*listing.Price),
	}
	return c.apply(ctx, &mutation{
		operation: opUpdateBook,
		locks:     []string{bookLock(listing.BookId)},
		check:     ownedBy(owner, listing.BookId),
		writes:    bookWrites(owner, &listing),
		command:   cmd,
		confirm:   bookListed(owner, &listing),
	})
}

// DeleteBook - remove a book held by owner
func (c *Catalog) DeleteBook(ctx context.Context, owner string, bookId string) (*ledger.Receipt, error) {
	switch {
	case "" == owner:
		return nil, fault.ErrMissingOwner
	case "" == bookId:
		return nil, fault.ErrMissingBookId
	}

	k := keys.Book(bookId)
	writes := make([]write, 0, 4)
	for _, key := range k.All() {
		writes = append(writes, write{key: key, value: nil})
	}

	return c.apply(ctx, &mutation{
		operation: opDeleteBook,
		locks:     []string{bookLock(bookId)},
		check:     ownedBy(owner, bookId),
		writes:    writes,
		command:   ledger.DeleteBook{Owner: owner, BookId: bookId},
		confirm:   bookRemoved(bookId),
	})
}

// PurchaseBook - buy a book, paying its owner
func (c *Catalog) PurchaseBook(ctx context.Context, order Order) (*ledger.Receipt, error) {
	switch {
	case "" == order.BuyerAddress:
		return nil, fault.ErrMissingBuyer
	case "" == order.OrderId:
		return nil, fault.ErrMissingOrderId
	case "" == order.BookId:
		return nil, fault.ErrMissingBookId
	}

	k := keys.Order(order.OrderId)
	return c.apply(ctx, &mutation{
		operation: opPurchaseBook,
		locks:     []string{orderLock(order.OrderId), bookLock(order.BookId)},
		check:     purchasable(order.OrderId, order.BookId),
		writes: []write{
			{key: k.BuyerAddress, value: []byte(order.BuyerAddress)},
			{key: k.BookId, value: []byte(order.BookId)},
		},
		command: ledger.PurchaseBook{
			Buyer:   order.BuyerAddress,
			OrderId: order.OrderId,
			BookId:  order.BookId,
		},
		confirm: orderRecorded(order),
	})
}

func bookLock(bookId string) string   { return "book/" + bookId }
func orderLock(orderId string) string { return "order/" + orderId }

// the cached book must exist and belong to owner
func ownedBy(owner string, bookId string) func(storage.Transaction) error {
	return func(trx storage.Transaction) error {
		current, err := trx.Get(keys.Book(bookId).OwnerAddress)
		if nil != err {
			return err
		}
		if nil == current {
			return fault.ErrBookNotFound
		}
		if string(current) != owner {
			return fault.ErrNotBookOwner
		}
		return nil
	}
}

// the cached book must exist and the order id must be unused
func purchasable(orderId string, bookId string) func(storage.Transaction) error {
	return func(trx storage.Transaction) error {
		found, err := trx.Has(keys.Order(orderId).BuyerAddress)
		if nil != err {
			return err
		}
		if found {
			return fault.ErrOrderAlreadyExists
		}
		found, err = trx.Has(keys.Book(bookId).OwnerAddress)
		if nil != err {
			return err
		}
		if !found {
			return fault.ErrBookNotFound
		}
		return nil
	}
}

// the ledger holds exactly the listing under owner
func bookListed(owner string, listing *Listing) confirmation {
	return confirmation{
		query: ledger.GetBook{BookId: listing.BookId},
		outcome: func(r ledger.Result, err error) outcome {
			switch {
			case fault.ErrBookNotFound == err:
				return outcomeNotApplied
			case nil != err || nil == r.Book:
				return outcomeUnknown
			}
			b := r.Book
			if b.Owner == owner && b.Title == listing.Title && b.Author == listing.Author &&
				nil != b.Price && b.Price.IsUint64() && b.Price.Uint64() == *listing.Price {
				return outcomeApplied
			}
			return outcomeNotApplied
		},
	}
}

// the ledger no longer holds the book
func bookRemoved(bookId string) confirmation {
	return confirmation{
		query: ledger.GetBook{BookId: bookId},
		outcome: func(r ledger.Result, err error) outcome {
			switch {
			case fault.ErrBookNotFound == err:
				return outcomeApplied
			case nil == err && nil != r.Book:
				return outcomeNotApplied
			}
			return outcomeUnknown
		},
	}
}

// the ledger holds the order for this buyer and book
func orderRecorded(order Order) confirmation {
	return confirmation{
		query: ledger.GetOrder{OrderId: order.OrderId},
		outcome: func(r ledger.Result, err error) outcome {
			switch {
			case fault.ErrOrderNotFound == err:
				return outcomeNotApplied
			case nil != err || nil == r.Order:
				return outcomeUnknown
			case r.Order.Buyer == order.BuyerAddress && r.Order.BookId == order.BookId:
				return outcomeApplied
			}
			return outcomeNotApplied
		},
	}
}
