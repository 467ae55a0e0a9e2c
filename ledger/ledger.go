// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/keys"
	"github.com/bitmark-inc/bookstored/storage"
	"github.com/bitmark-inc/logger"
)

// Receipt - evidence that a command was applied
type Receipt struct {
	TxId   string `json:"txId"`
	Height uint64 `json:"height"`
}

// Ledger - a machine bound to a persistent store
//
// the store allows one transaction at a time so commands are applied
// in a single total order
type Ledger struct {
	log     *logger.L
	db      *storage.Database
	machine *Machine
}

// New - create a ledger over an open database
func New(log *logger.L, db *storage.Database, options Options) *Ledger {
	return &Ledger{
		log:     log,
		db:      db,
		machine: NewMachine(options),
	}
}

// Commit - apply a mutating command durably
func (l *Ledger) Commit(cmd Command) (*Receipt, error) {
	if cmd.ReadOnly() {
		return nil, fault.ErrUnknownMethod
	}

	trx, err := l.db.Begin()
	if nil != err {
		return nil, err
	}

	_, err = l.machine.Execute(trx, cmd)
	if nil != err {
		trx.Abort()
		l.log.Debugf("rejected: %s  error: %s", cmd.Method(), err)
		return nil, err
	}

	height, err := getHeight(trx)
	if nil != err {
		trx.Abort()
		return nil, err
	}
	height += 1
	putHeight(trx, height)

	err = trx.Commit()
	if nil != err {
		l.log.Errorf("commit: %s  error: %s", cmd.Method(), err)
		return nil, err
	}

	receipt := &Receipt{
		TxId:   transactionId(cmd, height),
		Height: height,
	}
	l.log.Infof("applied: %s  height: %d  txId: %s", cmd.Method(), receipt.Height, receipt.TxId)

	return receipt, nil
}

// Query - execute a command without persisting any effect
//
// a mutating command is evaluated against the current state and its
// writes discarded, so the result reports whether it would succeed
func (l *Ledger) Query(cmd Command) (Result, error) {
	trx, err := l.db.Begin()
	if nil != err {
		return Result{}, err
	}
	defer trx.Abort()

	return l.machine.Execute(trx, cmd)
}

// Height - number of commands applied so far
func (l *Ledger) Height() (uint64, error) {
	return getHeight(l.db)
}

type getter interface {
	Get([]byte) ([]byte, error)
}

func getHeight(h getter) (uint64, error) {
	data, err := h.Get(keys.Height)
	if nil != err {
		return 0, err
	}
	if nil == data {
		return 0, nil
	}
	if 8 != len(data) {
		logger.Panicf("ledger: corrupt height record: %x", data)
	}
	return binary.BigEndian.Uint64(data), nil
}

func putHeight(trx storage.Transaction, height uint64) {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, height)
	trx.Put(keys.Height, data)
}

// SHA3-256 of the invocation followed by the height
func transactionId(cmd Command, height uint64) string {
	packed, err := json.Marshal(Encode(cmd))
	logger.PanicIfError("ledger: encode invocation", err)

	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, height)

	digest := sha3.Sum256(append(packed, h...))
	return hex.EncodeToString(digest[:])
}
