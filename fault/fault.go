// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
	"fmt"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type TransportError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyDeployed       = ExistsError("ledger already deployed")
	ErrAlreadyInitialised    = ExistsError("already initialised")
	ErrBookAlreadyExists     = ExistsError("book already exists")
	ErrOrderAlreadyExists    = ExistsError("order already exists")
	ErrCertificateFileExists = ExistsError("certificate file already exists")
	ErrKeyFileExists         = ExistsError("key file already exists")

	ErrInvalidAmount      = InvalidError("amount must not be negative")
	ErrInvalidArguments   = InvalidError("invalid ledger arguments")
	ErrInvalidCount       = InvalidError("invalid count")
	ErrInvalidCursor      = InvalidError("invalid cursor")
	ErrInvalidIPAddress   = InvalidError("invalid IP address")
	ErrInvalidPolicy      = InvalidError("invalid consistency policy")
	ErrInvalidRequestBody = InvalidError("invalid request body")
	ErrMissingAddress     = InvalidError("account address is required")
	ErrMissingAuthor      = InvalidError("book author is required")
	ErrMissingBookId      = InvalidError("book id is required")
	ErrMissingBuyer       = InvalidError("buyer address is required")
	ErrMissingOrderId     = InvalidError("order id is required")
	ErrMissingOwner       = InvalidError("owner address is required")
	ErrMissingParameters  = InvalidError("missing parameters")
	ErrMissingPrice       = InvalidError("book price is required")
	ErrMissingTitle       = InvalidError("book title is required")
	ErrPriceTooLarge      = InvalidError("book price is too large")
	ErrUnknownMethod      = InvalidError("unknown ledger method")
	ErrWrongArgumentCount = InvalidError("wrong number of ledger arguments")

	ErrInvalidStructPointer  = InvalidError("invalid struct pointer")
	ErrNotConfigurationTable = InvalidError("configuration did not return a table")

	ErrBookNotFound   = NotFoundError("book not found")
	ErrNotDeployed    = NotFoundError("ledger not deployed")
	ErrNotInitialised = NotFoundError("not initialised")
	ErrOrderNotFound  = NotFoundError("order not found")

	ErrDatabaseVersion     = ProcessError("incompatible database version")
	ErrInsufficientBalance = ProcessError("insufficient balance")
	ErrNotBookOwner        = ProcessError("book is owned by a different owner")
	ErrRateLimiting        = ProcessError("rate limiting")
	ErrTransactionAborted  = ProcessError("transaction aborted")

	ErrLedgerFailure     = TransportError("ledger internal failure")
	ErrLedgerUnavailable = TransportError("ledger unavailable")
	ErrMalformedReply    = TransportError("malformed ledger reply")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string    { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e ProcessError) Error() string   { return string(e) }
func (e TransportError) Error() string { return string(e) }

// determine the class of an error, looking through any wrapping
func IsErrExists(e error) bool    { var t ExistsError; return errors.As(e, &t) }
func IsErrInvalid(e error) bool   { var t InvalidError; return errors.As(e, &t) }
func IsErrNotFound(e error) bool  { var t NotFoundError; return errors.As(e, &t) }
func IsErrProcess(e error) bool   { var t ProcessError; return errors.As(e, &t) }
func IsErrTransport(e error) bool { var t TransportError; return errors.As(e, &t) }

// IsLedgerRejection - true for errors that the ledger returns when a
// command breaks one of its rules
//
// storage or other internal failures on either side are not rejections,
// whatever their class
func IsLedgerRejection(e error) bool {
	if nil == e {
		return false
	}
	for _, r := range rejections {
		if errors.Is(e, r) {
			return true
		}
	}
	return false
}

// errors that can cross the ledger RPC boundary as a reason string
var rejections = map[string]error{}

func init() {
	for _, e := range []error{
		ErrAlreadyDeployed,
		ErrBookAlreadyExists,
		ErrOrderAlreadyExists,
		ErrInvalidAmount,
		ErrInvalidArguments,
		ErrMissingAddress,
		ErrMissingParameters,
		ErrMissingAuthor,
		ErrMissingBookId,
		ErrMissingBuyer,
		ErrMissingOrderId,
		ErrMissingOwner,
		ErrMissingPrice,
		ErrMissingTitle,
		ErrUnknownMethod,
		ErrWrongArgumentCount,
		ErrBookNotFound,
		ErrNotDeployed,
		ErrOrderNotFound,
		ErrInsufficientBalance,
		ErrNotBookOwner,
		ErrRateLimiting,
	} {
		rejections[e.Error()] = e
	}
}

// Rejection - recover the error instance for a reason string sent by
// the ledger; an unknown reason is an internal ledger failure
func Rejection(reason string) error {
	if e, ok := rejections[reason]; ok {
		return e
	}
	return fmt.Errorf("%w: %s", ErrLedgerFailure, reason)
}
