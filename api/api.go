// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/bookstored/catalog"
	"github.com/bitmark-inc/logger"
)

// RequestIdHeader - correlates a request with its log lines
const RequestIdHeader = "X-Request-Id"

const (
	// largest accepted request body
	maximumBodySize = 65536

	// state changing requests per second
	mutationRateLimit = 200
	mutationBurst     = 100
)

// the argument passed to the handlers
type httpHandler struct {
	log     *logger.L
	catalog *catalog.Catalog
	limiter *rate.Limiter
}

// New - create the request router
//
// gatherer supplies the metrics served on /metrics
func New(log *logger.L, c *catalog.Catalog, gatherer prometheus.Gatherer) http.Handler {
	s := &httpHandler{
		log:     log,
		catalog: c,
		limiter: rate.NewLimiter(mutationRateLimit, mutationBurst),
	}

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendNotFound(w)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendMethodNotAllowed(w)
	})
	router.PanicHandler = s.panicked

	router.GET("/books/:bookId", s.getBook)
	router.POST("/books/add", s.addBook)
	router.POST("/books/update", s.updateBook)
	router.POST("/books/delete", s.deleteBook)
	router.POST("/books/purchase", s.purchaseBook)
	router.GET("/orders/:orderId", s.getOrder)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return s.withRequestId(router)
}

// attach the request id to the response and to the request context
func (s *httpHandler) withRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIdHeader)
		if "" == id {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIdHeader, id)

		s.log.Debugf("%s: %s %s from: %s", id, r.Method, r.URL.Path, r.RemoteAddr)

		next.ServeHTTP(w, r.WithContext(catalog.WithRequestId(r.Context(), id)))
	})
}

func (s *httpHandler) panicked(w http.ResponseWriter, r *http.Request, v interface{}) {
	s.log.Criticalf("%s: %s %s panic: %v", catalog.RequestId(r.Context()), r.Method, r.URL.Path, v)
	sendInternalServerError(w)
}
