// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/hex"
	"math/big"

	"github.com/bitmark-inc/bookstored/fault"
)

// ParameterType - how a parameter value is to be read
type ParameterType string

// parameter types
const (
	ByteArray ParameterType = "ByteArray" // hex encoded bytes
	String    ParameterType = "String"
	Integer   ParameterType = "Integer" // signed decimal
)

// Parameter - one positional argument
type Parameter struct {
	Type  ParameterType `json:"type"`
	Value string        `json:"value"`
}

// Invocation - the wire form of a command
type Invocation struct {
	Method string      `json:"method"`
	Args   []Parameter `json:"args"`
}

func byteArray(s string) Parameter {
	return Parameter{Type: ByteArray, Value: hex.EncodeToString([]byte(s))}
}

func stringParameter(s string) Parameter {
	return Parameter{Type: String, Value: s}
}

func integer(i *big.Int) Parameter {
	if nil == i {
		return Parameter{Type: Integer}
	}
	return Parameter{Type: Integer, Value: i.String()}
}

// Encode - convert a command to its positional wire form
func Encode(cmd Command) Invocation {
	var args []Parameter

	switch c := cmd.(type) {
	case Deploy:
		args = []Parameter{byteArray(c.Account)}
	case Transfer:
		args = []Parameter{byteArray(c.From), byteArray(c.To), integer(c.Amount)}
	case AddBook:
		args = []Parameter{byteArray(c.Owner), stringParameter(c.BookId), stringParameter(c.Title), stringParameter(c.Author), integer(c.Price)}
	case UpdateBook:
		args = []Parameter{byteArray(c.Owner), stringParameter(c.BookId), stringParameter(c.Title), stringParameter(c.Author), integer(c.Price)}
	case DeleteBook:
		args = []Parameter{byteArray(c.Owner), stringParameter(c.BookId)}
	case PurchaseBook:
		args = []Parameter{byteArray(c.Buyer), stringParameter(c.OrderId), stringParameter(c.BookId)}
	case BalanceOf:
		args = []Parameter{byteArray(c.Account)}
	case GetBook:
		args = []Parameter{stringParameter(c.BookId)}
	case GetOrder:
		args = []Parameter{stringParameter(c.OrderId)}
	}

	return Invocation{
		Method: cmd.Method(),
		Args:   args,
	}
}

// decoded arguments
type arguments struct {
	text    []string
	numbers []*big.Int
}

func (a *arguments) s(i int) string   { return a.text[i] }
func (a *arguments) n(i int) *big.Int { return a.numbers[i] }

// check arity and types, converting each value
func (inv Invocation) expect(types ...ParameterType) (*arguments, error) {
	if len(inv.Args) != len(types) {
		return nil, fault.ErrWrongArgumentCount
	}

	a := &arguments{
		text:    make([]string, len(types)),
		numbers: make([]*big.Int, len(types)),
	}
	for i, t := range types {
		p := inv.Args[i]
		if p.Type != t {
			return nil, fault.ErrInvalidArguments
		}
		switch t {
		case ByteArray:
			b, err := hex.DecodeString(p.Value)
			if nil != err {
				return nil, fault.ErrInvalidArguments
			}
			a.text[i] = string(b)
		case String:
			a.text[i] = p.Value
		case Integer:
			if "" == p.Value {
				continue // absent
			}
			n, ok := new(big.Int).SetString(p.Value, 10)
			if !ok {
				return nil, fault.ErrInvalidArguments
			}
			a.numbers[i] = n
		default:
			return nil, fault.ErrInvalidArguments
		}
	}
	return a, nil
}

// Decode - convert the positional wire form to a command
func Decode(inv Invocation) (Command, error) {
	switch inv.Method {

	case MethodDeploy:
		a, err := inv.expect(ByteArray)
		if nil != err {
			return nil, err
		}
		return Deploy{Account: a.s(0)}, nil

	case MethodTransfer:
		a, err := inv.expect(ByteArray, ByteArray, Integer)
		if nil != err {
			return nil, err
		}
		return Transfer{From: a.s(0), To: a.s(1), Amount: a.n(2)}, nil

	case MethodAddBook:
		a, err := inv.expect(ByteArray, String, String, String, Integer)
		if nil != err {
			return nil, err
		}
		return AddBook{Owner: a.s(0), BookId: a.s(1), Title: a.s(2), Author: a.s(3), Price: a.n(4)}, nil

	case MethodUpdateBook:
		a, err := inv.expect(ByteArray, String, String, String, Integer)
		if nil != err {
			return nil, err
		}
		return UpdateBook{Owner: a.s(0), BookId: a.s(1), Title: a.s(2), Author: a.s(3), Price: a.n(4)}, nil

	case MethodDeleteBook:
		a, err := inv.expect(ByteArray, String)
		if nil != err {
			return nil, err
		}
		return DeleteBook{Owner: a.s(0), BookId: a.s(1)}, nil

	case MethodPurchaseBook:
		a, err := inv.expect(ByteArray, String, String)
		if nil != err {
			return nil, err
		}
		return PurchaseBook{Buyer: a.s(0), OrderId: a.s(1), BookId: a.s(2)}, nil

	case MethodBalanceOf:
		a, err := inv.expect(ByteArray)
		if nil != err {
			return nil, err
		}
		return BalanceOf{Account: a.s(0)}, nil

	case MethodGetBook:
		a, err := inv.expect(String)
		if nil != err {
			return nil, err
		}
		return GetBook{BookId: a.s(0)}, nil

	case MethodGetOrder:
		a, err := inv.expect(String)
		if nil != err {
			return nil, err
		}
		return GetOrder{OrderId: a.s(0)}, nil

	case MethodName:
		return Name{}, nil
	case MethodSymbol:
		return Symbol{}, nil
	case MethodDecimals:
		return Decimals{}, nil
	case MethodTotalSupply:
		return TotalSupply{}, nil
	case MethodOwner:
		return Owner{}, nil

	default:
		return nil, fault.ErrUnknownMethod
	}
}
