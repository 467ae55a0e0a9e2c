// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math/big"
)

// method names as carried in an invocation
const (
	MethodDeploy       = "deploy"
	MethodTransfer     = "transfer"
	MethodAddBook      = "addBook"
	MethodUpdateBook   = "updateBook"
	MethodDeleteBook   = "deleteBook"
	MethodPurchaseBook = "purchaseBook"
	MethodBalanceOf    = "balanceOf"
	MethodName         = "name"
	MethodSymbol       = "symbol"
	MethodDecimals     = "decimals"
	MethodTotalSupply  = "totalsupply"
	MethodOwner        = "owner"
	MethodGetBook      = "getBook"
	MethodGetOrder     = "getOrder"
)

// Command - one ledger operation
//
// the set of commands is closed: only types in this package
// implement it
type Command interface {
	Method() string
	ReadOnly() bool
	command()
}

// Deploy - initialise supply and credit the owner
type Deploy struct {
	Account string
}

// Transfer - move an amount between two accounts
type Transfer struct {
	From   string
	To     string
	Amount *big.Int
}

// AddBook - create a catalog entry
type AddBook struct {
	Owner  string
	BookId string
	Title  string
	Author string
	Price  *big.Int
}

// UpdateBook - overwrite all fields of an existing catalog entry
type UpdateBook struct {
	Owner  string
	BookId string
	Title  string
	Author string
	Price  *big.Int
}

// DeleteBook - remove a catalog entry
type DeleteBook struct {
	Owner  string
	BookId string
}

// PurchaseBook - pay the book owner and record an order
type PurchaseBook struct {
	Buyer   string
	OrderId string
	BookId  string
}

// BalanceOf - read an account balance
type BalanceOf struct {
	Account string
}

// Name - token name
type Name struct{}

// Symbol - token symbol
type Symbol struct{}

// Decimals - token decimal places
type Decimals struct{}

// TotalSupply - tokens issued by deploy
type TotalSupply struct{}

// Owner - account that deployed the ledger
type Owner struct{}

// GetBook - read a catalog entry
type GetBook struct {
	BookId string
}

// GetOrder - read a purchase order
type GetOrder struct {
	OrderId string
}

func (Deploy) Method() string       { return MethodDeploy }
func (Transfer) Method() string     { return MethodTransfer }
func (AddBook) Method() string      { return MethodAddBook }
func (UpdateBook) Method() string   { return MethodUpdateBook }
func (DeleteBook) Method() string   { return MethodDeleteBook }
func (PurchaseBook) Method() string { return MethodPurchaseBook }
func (BalanceOf) Method() string    { return MethodBalanceOf }
func (Name) Method() string         { return MethodName }
func (Symbol) Method() string       { return MethodSymbol }
func (Decimals) Method() string     { return MethodDecimals }
func (TotalSupply) Method() string  { return MethodTotalSupply }
func (Owner) Method() string        { return MethodOwner }
func (GetBook) Method() string      { return MethodGetBook }
func (GetOrder) Method() string     { return MethodGetOrder }

func (Deploy) ReadOnly() bool       { return false }
func (Transfer) ReadOnly() bool     { return false }
func (AddBook) ReadOnly() bool      { return false }
func (UpdateBook) ReadOnly() bool   { return false }
func (DeleteBook) ReadOnly() bool   { return false }
func (PurchaseBook) ReadOnly() bool { return false }
func (BalanceOf) ReadOnly() bool    { return true }
func (Name) ReadOnly() bool         { return true }
func (Symbol) ReadOnly() bool       { return true }
func (Decimals) ReadOnly() bool     { return true }
func (TotalSupply) ReadOnly() bool  { return true }
func (Owner) ReadOnly() bool        { return true }
func (GetBook) ReadOnly() bool      { return true }
func (GetOrder) ReadOnly() bool     { return true }

func (Deploy) command()       {}
func (Transfer) command()     {}
func (AddBook) command()      {}
func (UpdateBook) command()   {}
func (DeleteBook) command()   {}
func (PurchaseBook) command() {}
func (BalanceOf) command()    {}
func (Name) command()         {}
func (Symbol) command()       {}
func (Decimals) command()     {}
func (TotalSupply) command()  {}
func (Owner) command()        {}
func (GetBook) command()      {}
func (GetOrder) command()     {}

// Book - catalog entry as held by the ledger
type Book struct {
	BookId string   `json:"bookId"`
	Owner  string   `json:"ownerAddress"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Price  *big.Int `json:"price"`
}

// Order - purchase order as held by the ledger
type Order struct {
	OrderId string `json:"orderId"`
	Buyer   string `json:"buyerAddress"`
	BookId  string `json:"bookId"`
}

// Result - value returned by a command
//
// mutating commands return an empty result
type Result struct {
	Integer *big.Int `json:"integer,omitempty"`
	String  string   `json:"string,omitempty"`
	Book    *Book    `json:"book,omitempty"`
	Order   *Order   `json:"order,omitempty"`
}
