// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/bitmark-inc/bookstored/catalog"
	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/ledger"
	"github.com/bitmark-inc/bookstored/rpc/ratelimit"
)

// book as returned to a reader
type bookReply struct {
	BookId string `json:"bookId"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Price  uint64 `json:"price"`
}

// body of add and update
type listingRequest struct {
	OwnerAddress string          `json:"ownerAddress"`
	Book         catalog.Listing `json:"book"`
}

// body of delete
type deleteRequest struct {
	OwnerAddress string `json:"ownerAddress"`
	Book         struct {
		BookId string `json:"bookId"`
	} `json:"book"`
}

// result of a state changing request
//
// confirmed is false when the ledger outcome was only acknowledged
type mutationReply struct {
	Confirmed bool   `json:"confirmed"`
	TxId      string `json:"txId,omitempty"`
	Height    uint64 `json:"height,omitempty"`
}

func (s *httpHandler) getBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	book, err := s.catalog.GetBook(ps.ByName("bookId"))
	if nil != err {
		s.sendFailure(w, r, err)
		return
	}

	sendReply(w, bookReply{
		BookId: book.BookId,
		Title:  book.Title,
		Author: book.Author,
		Price:  book.Price,
	})
}

func (s *httpHandler) getOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := s.catalog.GetOrder(ps.ByName("orderId"))
	if nil != err {
		s.sendFailure(w, r, err)
		return
	}
	sendReply(w, order)
}

func (s *httpHandler) addBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request listingRequest
	if !s.decode(w, r, &request) {
		return
	}
	receipt, err := s.catalog.AddBook(r.Context(), request.OwnerAddress, request.Book)
	s.sendMutation(w, r, receipt, err)
}

func (s *httpHandler) updateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request listingRequest
	if !s.decode(w, r, &request) {
		return
	}
	receipt, err := s.catalog.UpdateBook(r.Context(), request.OwnerAddress, request.Book)
	s.sendMutation(w, r, receipt, err)
}

func (s *httpHandler) deleteBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request deleteRequest
	if !s.decode(w, r, &request) {
		return
	}
	receipt, err := s.catalog.DeleteBook(r.Context(), request.OwnerAddress, request.Book.BookId)
	s.sendMutation(w, r, receipt, err)
}

func (s *httpHandler) purchaseBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request catalog.Order
	if !s.decode(w, r, &request) {
		return
	}
	receipt, err := s.catalog.PurchaseBook(r.Context(), request)
	s.sendMutation(w, r, receipt, err)
}

// read a JSON body, on failure the error reply has been sent
// only state changing requests decode a body, so they are the ones limited
func (s *httpHandler) decode(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	if err := ratelimit.LimitContext(r.Context(), s.limiter); nil != err {
		s.sendFailure(w, r, err)
		return false
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maximumBodySize))
	decoder.DisallowUnknownFields()

	err := decoder.Decode(request)
	if nil != err {
		s.log.Debugf("%s: decode error: %s", catalog.RequestId(r.Context()), err)
		s.sendFailure(w, r, fault.ErrInvalidRequestBody)
		return false
	}
	return true
}

func (s *httpHandler) sendMutation(w http.ResponseWriter, r *http.Request, receipt *ledger.Receipt, err error) {
	if nil != err {
		s.sendFailure(w, r, err)
		return
	}
	if nil == receipt {
		sendReply(w, mutationReply{Confirmed: false})
		return
	}
	sendReply(w, mutationReply{
		Confirmed: true,
		TxId:      receipt.TxId,
		Height:    receipt.Height,
	})
}
