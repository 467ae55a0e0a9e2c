// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package api - the HTTP JSON interface to the book store
//
// routes:
//
//   GET  /books/:bookId      read a cached book
//   POST /books/add          list a new book
//   POST /books/update       replace the fields of a book
//   POST /books/delete       remove a book
//   POST /books/purchase     buy a book
//   GET  /orders/:orderId    read a cached order
//   GET  /metrics            prometheus exposition
//
// every response carries an X-Request-Id header, taken from the
// request when present
package api
