// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/fixtures"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/ledgerclient"
	"github.com/bitmark-inc/bookstored/storage"
	"github.com/bitmark-inc/logger"
)

// a catalog backed by an embedded ledger that has been deployed and
// has funded the two buyers
func setupMarket(t *testing.T) (*Catalog, ledgerclient.Client, func()) {

	// the catalog is created first so that logging is running
	late := &lateClient{}
	c, _, teardown := setupCatalog(t, late, Compensate)

	ledgerDB, err := storage.Open(ledgerFileName, storage.ReadWrite)
	if nil != err {
		teardown()
		t.Fatalf("ledger open error: %s", err)
	}

	client := ledgerclient.NewLocal(ledger.New(logger.New("ledger"), ledgerDB, ledger.Options{}))
	late.Client = client

	ctx := context.Background()
	commands := []ledger.Command{
		ledger.Deploy{Account: fixtures.OwnerAddress},
		ledger.Transfer{From: fixtures.OwnerAddress, To: fixtures.BuyerAddress, Amount: big.NewInt(1000)},
		ledger.Transfer{From: fixtures.OwnerAddress, To: fixtures.Buyer2Address, Amount: big.NewInt(10)},
	}
	for _, cmd := range commands {
		if _, err := client.Commit(ctx, cmd); nil != err {
			t.Fatalf("%s error: %s", cmd.Method(), err)
		}
	}

	return c, client, func() {
		ledgerDB.Close()
		teardown()
	}
}

// lets the ledger be attached after the catalog is created
type lateClient struct {
	ledgerclient.Client
}

// applies each command but loses the reply
type lostReply struct {
	ledgerclient.Client
}

func (l lostReply) Commit(ctx context.Context, cmd ledger.Command) (*ledger.Receipt, error) {
	if _, err := l.Client.Commit(ctx, cmd); nil != err {
		return nil, err
	}
	return nil, fmt.Errorf("%w: read tcp: i/o timeout", fault.ErrLedgerUnavailable)
}

// loses each command before the ledger sees it
type lostRequest struct {
	ledgerclient.Client
}

func (l lostRequest) Commit(ctx context.Context, cmd ledger.Command) (*ledger.Receipt, error) {
	return nil, fmt.Errorf("%w: write tcp: broken pipe", fault.ErrLedgerUnavailable)
}

func balance(t *testing.T, client ledgerclient.Client, account string) int64 {
	r, err := client.Query(context.Background(), ledger.BalanceOf{Account: account})
	assert.Nil(t, err, "balance error")
	return r.Integer.Int64()
}

func TestPurchaseScenario(t *testing.T) {
	c, client, teardown := setupMarket(t)
	defer teardown()

	ctx := context.Background()

	_, err := c.AddBook(ctx, fixtures.Owner2Address, Listing{BookId: "B1", Title: "T", Author: "A", Price: price(500)})
	assert.Nil(t, err, "add error")

	ownerBefore := balance(t, client, fixtures.Owner2Address)

	r, err := c.PurchaseBook(ctx, Order{OrderId: "ORD1", BuyerAddress: fixtures.BuyerAddress, BookId: "B1"})
	assert.Nil(t, err, "purchase error")
	assert.NotNil(t, r, "missing receipt")

	assert.Equal(t, int64(500), balance(t, client, fixtures.BuyerAddress), "buyer balance")
	assert.Equal(t, ownerBefore+500, balance(t, client, fixtures.Owner2Address), "owner balance")

	order, err := c.GetOrder("ORD1")
	assert.Nil(t, err, "order error")
	assert.Equal(t, &Order{OrderId: "ORD1", BuyerAddress: fixtures.BuyerAddress, BookId: "B1"}, order, "wrong cached order")

	result, err := client.Query(ctx, ledger.GetOrder{OrderId: "ORD1"})
	assert.Nil(t, err, "ledger order error")
	assert.Equal(t, fixtures.BuyerAddress, result.Order.Buyer, "wrong ledger order")

	// an order id can only be used once
	_, err = c.PurchaseBook(ctx, Order{OrderId: "ORD1", BuyerAddress: fixtures.BuyerAddress, BookId: "B1"})
	assert.Equal(t, fault.ErrOrderAlreadyExists, err, "duplicate order")
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	c, client, teardown := setupMarket(t)
	defer teardown()

	ctx := context.Background()

	_, err := c.AddBook(ctx, fixtures.Owner2Address, Listing{BookId: "B1", Title: "T", Author: "A", Price: price(500)})
	assert.Nil(t, err, "add error")

	ownerBefore := balance(t, client, fixtures.Owner2Address)

	_, err = c.PurchaseBook(ctx, Order{OrderId: "ORD2", BuyerAddress: fixtures.Buyer2Address, BookId: "B1"})
	assert.Equal(t, fault.ErrInsufficientBalance, err, "wrong error")

	assert.Equal(t, int64(10), balance(t, client, fixtures.Buyer2Address), "buyer balance changed")
	assert.Equal(t, ownerBefore, balance(t, client, fixtures.Owner2Address), "owner balance changed")

	_, err = c.GetOrder("ORD2")
	assert.Equal(t, fault.ErrOrderNotFound, err, "order left in cache")

	_, err = client.Query(ctx, ledger.GetOrder{OrderId: "ORD2"})
	assert.Equal(t, fault.ErrOrderNotFound, err, "order recorded on ledger")
}

func TestDuplicateAddRestoresOriginal(t *testing.T) {
	c, client, teardown := setupMarket(t)
	defer teardown()

	ctx := context.Background()

	_, err := c.AddBook(ctx, fixtures.OwnerAddress, Listing{BookId: "B1", Title: "T", Author: "A", Price: price(100)})
	assert.Nil(t, err, "add error")

	_, err = c.AddBook(ctx, fixtures.Owner2Address, Listing{BookId: "B1", Title: "Other", Author: "X", Price: price(1)})
	assert.Equal(t, fault.ErrBookAlreadyExists, err, "duplicate accepted")

	book, err := c.GetBook("B1")
	assert.Nil(t, err, "get error")
	assert.Equal(t, fixtures.OwnerAddress, book.OwnerAddress, "cache owner replaced")
	assert.Equal(t, "T", book.Title, "cache title replaced")

	result, err := client.Query(ctx, ledger.GetBook{BookId: "B1"})
	assert.Nil(t, err, "ledger book error")
	assert.Equal(t, fixtures.OwnerAddress, result.Book.Owner, "ledger owner replaced")
}

func TestUpdateRoundTrip(t *testing.T) {
	c, client, teardown := setupMarket(t)
	defer teardown()

	ctx := context.Background()

	_, err := c.AddBook(ctx, fixtures.OwnerAddress, Listing{BookId: "B1", Title: "T", Author: "A", Price: price(100)})
	assert.Nil(t, err, "add error")

	_, err = c.UpdateBook(ctx, fixtures.OwnerAddress, Listing{BookId: "B1", Title: "T2", Author: "A2", Price: price(250)})
	assert.Nil(t, err, "update error")

	book, err := c.GetBook("B1")
	assert.Nil(t, err, "get error")
	assert.Equal(t, &Book{BookId: "B1", OwnerAddress: fixtures.OwnerAddress, Title: "T2", Author: "A2", Price: 250}, book, "wrong cached book")

	result, err := client.Query(ctx, ledger.GetBook{BookId: "B1"})
	assert.Nil(t, err, "ledger book error")
	assert.Equal(t, "250", result.Book.Price.String(), "wrong ledger price")
}

func TestAppliedCommitWithLostReply(t *testing.T) {
	c, client, teardown := setupMarket(t)
	defer teardown()

	ctx := context.Background()
	c.ledger = lostReply{client}

	r, err := c.AddBook(ctx, fixtures.Owner2Address, Listing{BookId: "BX", Title: "T", Author: "A", Price: price(100)})
	assert.Nil(t, err, "applied add reported as failure")
	assert.Nil(t, r, "receipt without reply")

	book, err := c.GetBook("BX")
	assert.Nil(t, err, "get error")
	assert.Equal(t, &Book{BookId: "BX", OwnerAddress: fixtures.Owner2Address, Title: "T", Author: "A", Price: 100}, book, "cache rolled back")

	_, err = c.UpdateBook(ctx, fixtures.Owner2Address, Listing{BookId: "BX", Title: "T2", Author: "A2", Price: price(200)})
	assert.Nil(t, err, "applied update reported as failure")

	_, err = c.PurchaseBook(ctx, Order{OrderId: "ORDX", BuyerAddress: fixtures.BuyerAddress, BookId: "BX"})
	assert.Nil(t, err, "applied purchase reported as failure")

	order, err := c.GetOrder("ORDX")
	assert.Nil(t, err, "order rolled back")
	assert.Equal(t, fixtures.BuyerAddress, order.BuyerAddress, "wrong cached buyer")
	assert.Equal(t, int64(800), balance(t, client, fixtures.BuyerAddress), "buyer balance")

	_, err = c.DeleteBook(ctx, fixtures.Owner2Address, "BX")
	assert.Nil(t, err, "applied delete reported as failure")

	book, err = c.GetBook("BX")
	assert.Nil(t, err, "get error")
	assert.Equal(t, &Book{BookId: "BX"}, book, "deleted book restored to cache")

	_, err = client.Query(ctx, ledger.GetBook{BookId: "BX"})
	assert.Equal(t, fault.ErrBookNotFound, err, "book still on ledger")

	for _, op := range []string{opAddBook, opUpdateBook, opPurchaseBook, opDeleteBook} {
		assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.compensations.WithLabelValues(op, resultApplied)), "%s: not counted", op)
		assert.Equal(t, 0.0, testutil.ToFloat64(c.metrics.compensations.WithLabelValues(op, resultRestored)), "%s: restored", op)
	}
}

func TestUnappliedCommitRestored(t *testing.T) {
	c, client, teardown := setupMarket(t)
	defer teardown()

	ctx := context.Background()

	_, err := c.AddBook(ctx, fixtures.OwnerAddress, Listing{BookId: "B1", Title: "T", Author: "A", Price: price(100)})
	assert.Nil(t, err, "add error")

	c.ledger = lostRequest{client}

	_, err = c.UpdateBook(ctx, fixtures.OwnerAddress, Listing{BookId: "B1", Title: "T2", Author: "A2", Price: price(200)})
	assert.True(t, errors.Is(err, fault.ErrLedgerUnavailable), "wrong error: %s", err)

	_, err = c.AddBook(ctx, fixtures.OwnerAddress, Listing{BookId: "B2", Title: "T", Author: "A", Price: price(100)})
	assert.True(t, errors.Is(err, fault.ErrLedgerUnavailable), "wrong error: %s", err)

	book, err := c.GetBook("B1")
	assert.Nil(t, err, "get error")
	assert.Equal(t, &Book{BookId: "B1", OwnerAddress: fixtures.OwnerAddress, Title: "T", Author: "A", Price: 100}, book, "update not rolled back")

	book, err = c.GetBook("B2")
	assert.Nil(t, err, "get error")
	assert.Equal(t, &Book{BookId: "B2"}, book, "add not rolled back")

	// once the ledger is back a retry succeeds
	c.ledger = client
	_, err = c.AddBook(ctx, fixtures.OwnerAddress, Listing{BookId: "B2", Title: "T", Author: "A", Price: price(100)})
	assert.Nil(t, err, "retry error")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.compensations.WithLabelValues(opUpdateBook, resultRestored)), "update restore not counted")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.compensations.WithLabelValues(opAddBook, resultRestored)), "add restore not counted")
}
