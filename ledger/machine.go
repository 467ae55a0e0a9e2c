// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math/big"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/keys"
)

// token settings
const (
	TokenName     = "BookStore"
	TokenSymbol   = "BST"
	TokenDecimals = 8

	factor    = 100000000 // 10^TokenDecimals
	preICOCap = 30000000 * factor
)

// PreICOCap - the supply credited to the owner by deploy
func PreICOCap() *big.Int {
	return new(big.Int).SetUint64(preICOCap)
}

// Options - behaviour switches
type Options struct {
	// update and delete report a present book as not found, so that
	// neither can ever succeed
	LegacyExistenceCheck bool `gluamapper:"legacy_existence_check" json:"legacy_existence_check"`

	// addBook silently replaces an existing entry
	AllowBookOverwrite bool `gluamapper:"allow_book_overwrite" json:"allow_book_overwrite"`
}

// Machine - executes commands against a state
//
// it holds no state of its own so one machine may serve any number of
// stores
type Machine struct {
	options Options
}

// NewMachine - create a machine with the given options
func NewMachine(options Options) *Machine {
	return &Machine{
		options: options,
	}
}

// Execute - apply one command
//
// on error nothing has been written to the state
func (m *Machine) Execute(state State, cmd Command) (Result, error) {
	switch c := cmd.(type) {

	case Deploy:
		return Result{}, m.deploy(state, c)

	case Transfer:
		return Result{}, m.transfer(state, c)

	case AddBook:
		return Result{}, m.addBook(state, c)

	case UpdateBook:
		return Result{}, m.updateBook(state, c)

	case DeleteBook:
		return Result{}, m.deleteBook(state, c)

	case PurchaseBook:
		return Result{}, m.purchaseBook(state, c)

	case BalanceOf:
		if "" == c.Account {
			return Result{}, fault.ErrMissingAddress
		}
		b, err := balance(state, c.Account)
		return Result{Integer: b}, err

	case Name:
		return Result{String: TokenName}, nil

	case Symbol:
		return Result{String: TokenSymbol}, nil

	case Decimals:
		return Result{Integer: big.NewInt(TokenDecimals)}, nil

	case TotalSupply:
		supply, err := getInteger(state, keys.TotalSupply)
		return Result{Integer: supply}, err

	case Owner:
		owner, err := state.Get(keys.Owner)
		if nil != err {
			return Result{}, err
		}
		if nil == owner {
			return Result{}, fault.ErrNotDeployed
		}
		return Result{String: string(owner)}, nil

	case GetBook:
		if "" == c.BookId {
			return Result{}, fault.ErrMissingBookId
		}
		book, err := readBook(state, c.BookId)
		if nil != err {
			return Result{}, err
		}
		if nil == book {
			return Result{}, fault.ErrBookNotFound
		}
		return Result{Book: book}, nil

	case GetOrder:
		if "" == c.OrderId {
			return Result{}, fault.ErrMissingOrderId
		}
		order, err := readOrder(state, c.OrderId)
		if nil != err {
			return Result{}, err
		}
		if nil == order {
			return Result{}, fault.ErrOrderNotFound
		}
		return Result{Order: order}, nil

	default:
		return Result{}, fault.ErrUnknownMethod
	}
}

func (m *Machine) deploy(state State, c Deploy) error {
	if "" == c.Account {
		return fault.ErrMissingAddress
	}
	supply, err := state.Get(keys.TotalSupply)
	if nil != err {
		return err
	}
	if nil != supply {
		return fault.ErrAlreadyDeployed
	}

	initial := PreICOCap()
	state.Put(keys.Owner, []byte(c.Account))
	putInteger(state, keys.Account([]byte(c.Account)), initial)
	putInteger(state, keys.TotalSupply, initial)
	return nil
}

func (m *Machine) transfer(state State, c Transfer) error {
	if nil == c.Amount {
		return fault.ErrInvalidArguments
	}
	if c.Amount.Sign() < 0 {
		return fault.ErrInvalidAmount
	}
	if "" == c.From || "" == c.To {
		return fault.ErrMissingAddress
	}
	if c.From == c.To {
		return nil
	}

	fromKey := keys.Account([]byte(c.From))
	toKey := keys.Account([]byte(c.To))

	fromBalance, err := getInteger(state, fromKey)
	if nil != err {
		return err
	}
	if fromBalance.Cmp(c.Amount) < 0 {
		return fault.ErrInsufficientBalance
	}
	toBalance, err := getInteger(state, toKey)
	if nil != err {
		return err
	}

	putInteger(state, fromKey, fromBalance.Sub(fromBalance, c.Amount))
	putInteger(state, toKey, toBalance.Add(toBalance, c.Amount))
	return nil
}

func validateBook(owner string, bookId string, title string, author string, price *big.Int) error {
	switch {
	case "" == owner:
		return fault.ErrMissingOwner
	case "" == bookId:
		return fault.ErrMissingBookId
	case "" == title:
		return fault.ErrMissingTitle
	case "" == author:
		return fault.ErrMissingAuthor
	case nil == price:
		return fault.ErrMissingPrice
	case price.Sign() < 0:
		return fault.ErrInvalidAmount
	}
	return nil
}

func (m *Machine) addBook(state State, c AddBook) error {
	if err := validateBook(c.Owner, c.BookId, c.Title, c.Author, c.Price); nil != err {
		return err
	}

	if !m.options.AllowBookOverwrite {
		owner, err := state.Get(keys.Book(c.BookId).OwnerAddress)
		if nil != err {
			return err
		}
		if nil != owner {
			return fault.ErrBookAlreadyExists
		}
	}

	writeBook(state, &Book{
		BookId: c.BookId,
		Owner:  c.Owner,
		Title:  c.Title,
		Author: c.Author,
		Price:  c.Price,
	})
	return nil
}

func (m *Machine) updateBook(state State, c UpdateBook) error {
	if err := validateBook(c.Owner, c.BookId, c.Title, c.Author, c.Price); nil != err {
		return err
	}
	if err := m.checkOwner(state, c.Owner, c.BookId); nil != err {
		return err
	}

	writeBook(state, &Book{
		BookId: c.BookId,
		Owner:  c.Owner,
		Title:  c.Title,
		Author: c.Author,
		Price:  c.Price,
	})
	return nil
}

func (m *Machine) deleteBook(state State, c DeleteBook) error {
	if "" == c.Owner {
		return fault.ErrMissingOwner
	}
	if "" == c.BookId {
		return fault.ErrMissingBookId
	}
	if err := m.checkOwner(state, c.Owner, c.BookId); nil != err {
		return err
	}

	for _, k := range keys.Book(c.BookId).All() {
		state.Delete(k)
	}
	return nil
}

// the book must exist and belong to owner
func (m *Machine) checkOwner(state State, owner string, bookId string) error {
	current, err := state.Get(keys.Book(bookId).OwnerAddress)
	if nil != err {
		return err
	}

	exists := nil != current
	if m.options.LegacyExistenceCheck {
		exists = !exists
	}
	if !exists {
		return fault.ErrBookNotFound
	}
	if string(current) != owner {
		return fault.ErrNotBookOwner
	}
	return nil
}

func (m *Machine) purchaseBook(state State, c PurchaseBook) error {
	switch {
	case "" == c.Buyer:
		return fault.ErrMissingBuyer
	case "" == c.OrderId:
		return fault.ErrMissingOrderId
	case "" == c.BookId:
		return fault.ErrMissingBookId
	}

	existing, err := state.Get(keys.Order(c.OrderId).BuyerAddress)
	if nil != err {
		return err
	}
	if nil != existing {
		return fault.ErrOrderAlreadyExists
	}

	book, err := readBook(state, c.BookId)
	if nil != err {
		return err
	}
	if nil == book {
		return fault.ErrBookNotFound
	}

	// transfer performs the balance check before writing anything
	err = m.transfer(state, Transfer{
		From:   c.Buyer,
		To:     book.Owner,
		Amount: book.Price,
	})
	if nil != err {
		return err
	}

	k := keys.Order(c.OrderId)
	state.Put(k.BuyerAddress, []byte(c.Buyer))
	state.Put(k.BookId, []byte(c.BookId))
	return nil
}
