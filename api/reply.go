// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/bitmark-inc/bookstored/catalog"
	"github.com/bitmark-inc/bookstored/fault"
)

// StatusCode - the HTTP status for an error returned by the catalog
func StatusCode(err error) int {
	switch {
	case fault.ErrRateLimiting == err:
		return http.StatusTooManyRequests
	case fault.IsErrInvalid(err):
		return http.StatusBadRequest
	case fault.IsErrNotFound(err):
		return http.StatusNotFound
	case fault.IsErrExists(err), fault.IsErrProcess(err):
		return http.StatusConflict
	case fault.IsErrTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// log and send an error, internal details are not sent to the client
func (s *httpHandler) sendFailure(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	id := catalog.RequestId(r.Context())

	if http.StatusInternalServerError == code {
		s.log.Errorf("%s: %s %s error: %s", id, r.Method, r.URL.Path, err)
		sendInternalServerError(w)
		return
	}

	s.log.Infof("%s: %s %s status: %d error: %s", id, r.Method, r.URL.Path, code, err)
	sendError(w, err.Error(), code)
}

// send an JSON encoded reply
func sendReply(w http.ResponseWriter, data interface{}) {
	text, err := json.Marshal(data)
	if nil != err {
		sendInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write(text)
}

func sendNotFound(w http.ResponseWriter) {
	sendError(w, "not found", http.StatusNotFound)
}
func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, "method not allowed", http.StatusMethodNotAllowed)
}
func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, "internal server error", http.StatusInternalServerError)
}

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		// manually composed error just incase JSON fails
		http.Error(w, `{"code":500,"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	w.Write(text)
}
