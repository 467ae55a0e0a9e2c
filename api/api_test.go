// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/bookstored/catalog"
	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/fixtures"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/ledgerclient/mocks"
	"github.com/bitmark-inc/bookstored/storage"
	"github.com/bitmark-inc/logger"
)

const cacheFileName = "api-cache.leveldb"

var receipt = &ledger.Receipt{TxId: "7a3f", Height: 12}

// a router over a fresh cache and the given ledger client
func setupRouter(t *testing.T, client *mocks.MockClient, policy catalog.Policy) (http.Handler, func()) {
	fixtures.SetupTestLogger()
	_ = os.RemoveAll(cacheFileName)

	db, err := storage.Open(cacheFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}

	registry := prometheus.NewRegistry()
	configuration := &catalog.Configuration{
		Policy:        string(policy),
		LedgerTimeout: 5,
	}
	log := logger.New(fixtures.LogCategory)
	c, err := catalog.New(log, db, client, configuration, registry)
	if nil != err {
		t.Fatalf("catalog error: %s", err)
	}

	return New(log, c, registry), func() {
		db.Close()
		_ = os.RemoveAll(cacheFileName)
		fixtures.TeardownTestLogger()
	}
}

func send(handler http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) eType {
	var e eType
	err := json.Unmarshal(w.Body.Bytes(), &e)
	assert.Nil(t, err, "error body not JSON: %q", w.Body.String())
	return e
}

// an unknown book reads as its id with empty fields
const absentB1 = `{"bookId":"B1","title":"","author":"","price":0}`

const addBody = `{"ownerAddress":"%s","book":{"bookId":"B1","title":"Go","author":"Pike","price":500}}`

func addB1(t *testing.T, handler http.Handler) {
	w := send(handler, http.MethodPost, "/books/add", fmt.Sprintf(addBody, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusOK, w.Code, "add status: %s", w.Body.String())
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fault.ErrMissingTitle, http.StatusBadRequest},
		{fault.ErrInvalidRequestBody, http.StatusBadRequest},
		{fault.ErrBookNotFound, http.StatusNotFound},
		{fault.ErrBookAlreadyExists, http.StatusConflict},
		{fault.ErrInsufficientBalance, http.StatusConflict},
		{fault.ErrNotBookOwner, http.StatusConflict},
		{fmt.Errorf("%w: dial tcp", fault.ErrLedgerUnavailable), http.StatusBadGateway},
		{fault.ErrMalformedReply, http.StatusBadGateway},
		{fault.Rejection("leveldb: closed"), http.StatusBadGateway},
		{fault.ErrPriceTooLarge, http.StatusBadRequest},
		{fault.ErrRateLimiting, http.StatusTooManyRequests},
		{errors.New("leveldb: closed"), http.StatusInternalServerError},
	}
	for i, test := range tests {
		assert.Equal(t, test.code, StatusCode(test.err), "%d: %s", i, test.err)
	}
}

func TestRequestIdGenerated(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	handler, teardown := setupRouter(t, mocks.NewMockClient(ctl), catalog.Compensate)
	defer teardown()

	w := send(handler, http.MethodGet, "/books/none", "")
	_, err := uuid.Parse(w.Header().Get(RequestIdHeader))
	assert.Nil(t, err, "request id is not a uuid")
}

func TestRequestIdPassedThrough(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	client.EXPECT().Commit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ ledger.Command) (*ledger.Receipt, error) {
			assert.Equal(t, "req-42", catalog.RequestId(ctx), "request id not in context")
			return receipt, nil
		})

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	r := httptest.NewRequest(http.MethodPost, "/books/add", strings.NewReader(fmt.Sprintf(addBody, fixtures.OwnerAddress)))
	r.Header.Set(RequestIdHeader, "req-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status")
	assert.Equal(t, "req-42", w.Header().Get(RequestIdHeader), "request id not echoed")
}

func TestAddAndGetBook(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	client.EXPECT().Commit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd ledger.Command) (*ledger.Receipt, error) {
			add, ok := cmd.(ledger.AddBook)
			assert.True(t, ok, "wrong command: %T", cmd)
			assert.Equal(t, fixtures.OwnerAddress, add.Owner, "wrong owner")
			assert.Equal(t, "500", add.Price.String(), "wrong price")
			return receipt, nil
		})

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	w := send(handler, http.MethodPost, "/books/add", fmt.Sprintf(addBody, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusOK, w.Code, "add status")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "content type")

	var reply mutationReply
	err := json.Unmarshal(w.Body.Bytes(), &reply)
	assert.Nil(t, err, "reply not JSON")
	assert.Equal(t, mutationReply{Confirmed: true, TxId: receipt.TxId, Height: receipt.Height}, reply, "wrong reply")

	w = send(handler, http.MethodGet, "/books/B1", "")
	assert.Equal(t, http.StatusOK, w.Code, "get status")
	assert.JSONEq(t, `{"bookId":"B1","title":"Go","author":"Pike","price":500}`, w.Body.String(), "wrong book")
}

func TestAddBookBadRequests(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	client.EXPECT().Commit(gomock.Any(), gomock.Any()).Times(0)

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	tests := []struct {
		body    string
		message string
	}{
		{`{"ownerAddress":`, fault.ErrInvalidRequestBody.Error()},
		{`{"ownerAddress":"x","book":{"bookId":"B1"},"extra":1}`, fault.ErrInvalidRequestBody.Error()},
		{`{"ownerAddress":"x","book":{"bookId":"B1","title":"Go","author":"Pike","price":-1}}`, fault.ErrInvalidRequestBody.Error()},
		{`{"book":{"bookId":"B1","title":"Go","author":"Pike","price":1}}`, fault.ErrMissingOwner.Error()},
		{`{"ownerAddress":"x","book":{"bookId":"B1","author":"Pike","price":1}}`, fault.ErrMissingTitle.Error()},
		{`{"ownerAddress":"x","book":{"bookId":"B1","title":"Go","author":"Pike"}}`, fault.ErrMissingPrice.Error()},
		{`{"ownerAddress":"x","book":{"bookId":"B1","title":"Go","author":"Pike","price":9223372036854775808}}`, fault.ErrPriceTooLarge.Error()},
	}
	for i, test := range tests {
		w := send(handler, http.MethodPost, "/books/add", test.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%d: wrong status", i)
		assert.Equal(t, eType{Code: http.StatusBadRequest, Error: test.message}, errorBody(t, w), "%d: wrong error", i)
	}

	w := send(handler, http.MethodGet, "/books/B1", "")
	assert.Equal(t, http.StatusOK, w.Code, "wrong status")
	assert.JSONEq(t, absentB1, w.Body.String(), "rejected book was cached")
}

func TestAddBookRejected(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	client.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(nil, fault.ErrBookAlreadyExists)

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	w := send(handler, http.MethodPost, "/books/add", fmt.Sprintf(addBody, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusConflict, w.Code, "wrong status")
	assert.Equal(t, fault.ErrBookAlreadyExists.Error(), errorBody(t, w).Error, "wrong error")

	w = send(handler, http.MethodGet, "/books/B1", "")
	assert.Equal(t, http.StatusOK, w.Code, "wrong status")
	assert.JSONEq(t, absentB1, w.Body.String(), "compensation did not remove book")
}

func TestLedgerUnavailable(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	client.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: connection refused", fault.ErrLedgerUnavailable))
	client.EXPECT().Query(gomock.Any(), ledger.GetBook{BookId: "B1"}).Return(ledger.Result{}, fault.ErrBookNotFound)

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	w := send(handler, http.MethodPost, "/books/add", fmt.Sprintf(addBody, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusBadGateway, w.Code, "wrong status")

	w = send(handler, http.MethodGet, "/books/B1", "")
	assert.JSONEq(t, absentB1, w.Body.String(), "unapplied book was cached")
}

func TestGetAbsentBook(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	handler, teardown := setupRouter(t, mocks.NewMockClient(ctl), catalog.Compensate)
	defer teardown()

	w := send(handler, http.MethodGet, "/books/NOPE", "")
	assert.Equal(t, http.StatusOK, w.Code, "wrong status")
	assert.JSONEq(t, `{"bookId":"NOPE","title":"","author":"","price":0}`, w.Body.String(), "wrong body")
}

func TestAcknowledgedReply(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	client.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(nil, fault.ErrLedgerUnavailable)

	handler, teardown := setupRouter(t, client, catalog.Acknowledge)
	defer teardown()

	w := send(handler, http.MethodPost, "/books/add", fmt.Sprintf(addBody, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusOK, w.Code, "wrong status")
	assert.JSONEq(t, `{"confirmed":false}`, w.Body.String(), "wrong reply")

	w = send(handler, http.MethodGet, "/books/B1", "")
	assert.Equal(t, http.StatusOK, w.Code, "acknowledged book not cached")
}

func TestUpdateAndDeleteBook(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	gomock.InOrder(
		client.EXPECT().Commit(gomock.Any(), gomock.AssignableToTypeOf(ledger.AddBook{})).Return(receipt, nil),
		client.EXPECT().Commit(gomock.Any(), gomock.AssignableToTypeOf(ledger.UpdateBook{})).Return(receipt, nil),
		client.EXPECT().Commit(gomock.Any(), ledger.DeleteBook{Owner: fixtures.OwnerAddress, BookId: "B1"}).Return(receipt, nil),
	)

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	addB1(t, handler)

	// only the owner may change a book
	w := send(handler, http.MethodPost, "/books/update",
		fmt.Sprintf(`{"ownerAddress":"%s","book":{"bookId":"B1","title":"Go 2","author":"Pike","price":650}}`, fixtures.Owner2Address))
	assert.Equal(t, http.StatusConflict, w.Code, "update by other owner")

	w = send(handler, http.MethodPost, "/books/update",
		fmt.Sprintf(`{"ownerAddress":"%s","book":{"bookId":"B1","title":"Go 2","author":"Pike","price":650}}`, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusOK, w.Code, "update status")

	w = send(handler, http.MethodGet, "/books/B1", "")
	assert.JSONEq(t, `{"bookId":"B1","title":"Go 2","author":"Pike","price":650}`, w.Body.String(), "wrong book")

	w = send(handler, http.MethodPost, "/books/delete", fmt.Sprintf(`{"ownerAddress":"%s","book":{"bookId":"B1"}}`, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusOK, w.Code, "delete status")

	w = send(handler, http.MethodGet, "/books/B1", "")
	assert.JSONEq(t, absentB1, w.Body.String(), "book not deleted")

	w = send(handler, http.MethodPost, "/books/delete", fmt.Sprintf(`{"ownerAddress":"%s","book":{"bookId":"B1"}}`, fixtures.OwnerAddress))
	assert.Equal(t, http.StatusNotFound, w.Code, "second delete")
}

func TestPurchaseAndGetOrder(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	gomock.InOrder(
		client.EXPECT().Commit(gomock.Any(), gomock.AssignableToTypeOf(ledger.AddBook{})).Return(receipt, nil),
		client.EXPECT().Commit(gomock.Any(), ledger.PurchaseBook{Buyer: fixtures.BuyerAddress, OrderId: "ORD1", BookId: "B1"}).Return(receipt, nil),
		client.EXPECT().Commit(gomock.Any(), ledger.PurchaseBook{Buyer: fixtures.Buyer2Address, OrderId: "ORD2", BookId: "B1"}).Return(nil, fault.ErrInsufficientBalance),
	)

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	addB1(t, handler)

	w := send(handler, http.MethodPost, "/books/purchase", fmt.Sprintf(`{"buyerAddress":"%s","orderId":"ORD1","bookId":"B1"}`, fixtures.BuyerAddress))
	assert.Equal(t, http.StatusOK, w.Code, "purchase status")

	w = send(handler, http.MethodGet, "/orders/ORD1", "")
	assert.Equal(t, http.StatusOK, w.Code, "order status")
	assert.JSONEq(t, fmt.Sprintf(`{"orderId":"ORD1","buyerAddress":"%s","bookId":"B1"}`, fixtures.BuyerAddress), w.Body.String(), "wrong order")

	// reuse of an order id never reaches the ledger
	w = send(handler, http.MethodPost, "/books/purchase", fmt.Sprintf(`{"buyerAddress":"%s","orderId":"ORD1","bookId":"B1"}`, fixtures.Buyer2Address))
	assert.Equal(t, http.StatusConflict, w.Code, "duplicate order")

	w = send(handler, http.MethodPost, "/books/purchase", fmt.Sprintf(`{"buyerAddress":"%s","orderId":"ORD2","bookId":"B1"}`, fixtures.Buyer2Address))
	assert.Equal(t, http.StatusConflict, w.Code, "poor buyer")

	w = send(handler, http.MethodGet, "/orders/ORD2", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "failed order was cached")

	w = send(handler, http.MethodPost, "/books/purchase", fmt.Sprintf(`{"buyerAddress":"%s","orderId":"ORD3","bookId":"B9"}`, fixtures.BuyerAddress))
	assert.Equal(t, http.StatusNotFound, w.Code, "purchase of missing book")
}

func TestUnknownRoutes(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	handler, teardown := setupRouter(t, mocks.NewMockClient(ctl), catalog.Compensate)
	defer teardown()

	w := send(handler, http.MethodGet, "/authors", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown path")
	assert.Equal(t, eType{Code: http.StatusNotFound, Error: "not found"}, errorBody(t, w), "wrong error")

	w = send(handler, http.MethodPut, "/books/add", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "wrong method")
}

func TestMetrics(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	client := mocks.NewMockClient(ctl)
	client.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(receipt, nil)

	handler, teardown := setupRouter(t, client, catalog.Compensate)
	defer teardown()

	addB1(t, handler)

	w := send(handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code, "metrics status")
	assert.Contains(t, w.Body.String(), `bookstore_ledger_commits_total{operation="addBook",result="accepted"} 1`, "missing commit counter")
}

func TestMutationAbandonedWhileLimited(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	// no ledger calls expected
	handler, teardown := setupRouter(t, mocks.NewMockClient(ctl), catalog.Compensate)
	defer teardown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := httptest.NewRequest(http.MethodPost, "/books/add", strings.NewReader(fmt.Sprintf(addBody, fixtures.OwnerAddress)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r.WithContext(ctx))

	assert.Equal(t, http.StatusTooManyRequests, w.Code, "wrong status")
	assert.Equal(t, fault.ErrRateLimiting.Error(), errorBody(t, w).Error, "wrong message")

	w = send(handler, http.MethodGet, "/books/B1", "")
	assert.JSONEq(t, absentB1, w.Body.String(), "book should not be cached")
}
