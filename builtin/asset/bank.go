// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/solidity"
	"github.com/vechain/delegation/state"
	"github.com/vechain/delegation/thor"
)

var (
	// Address is the account that holds all balances.
	Address = thor.BytesToAddress([]byte("Asset"))

	balancesSlot = thor.NameToSlot("balances")
	supplySlot   = thor.NameToSlot("supply")
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Ledger is the asset primitive the delegation engine moves value with.
type Ledger interface {
	Balance(addr thor.Address, currency Currency) (Value, error)
	Transfer(from, to thor.Address, value Value) error
	Mint(to thor.Address, value Value) error
	Burn(from thor.Address, value Value) error
	Supply(currency Currency) (Value, error)
}

type balanceKey struct {
	owner    thor.Address
	currency thor.Bytes32
}

func (k balanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.currency[:]...)
}

// Bank keeps balances per (account, currency) in state.
type Bank struct {
	balances *solidity.Mapping[balanceKey, *big.Int]
	supply   *solidity.Mapping[thor.Bytes32, *big.Int]
}

var _ Ledger = (*Bank)(nil)

func New(addr thor.Address, st *state.State) *Bank {
	ctx := solidity.NewContext(addr, st)
	return &Bank{
		balances: solidity.NewMapping[balanceKey, *big.Int](ctx, balancesSlot),
		supply:   solidity.NewMapping[thor.Bytes32, *big.Int](ctx, supplySlot),
	}
}

func (b *Bank) balance(addr thor.Address, currency Currency) (*big.Int, error) {
	bal, err := b.balances.Get(balanceKey{addr, currency.Hash()})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (b *Bank) setBalance(addr thor.Address, currency Currency, bal *big.Int) error {
	key := balanceKey{addr, currency.Hash()}
	if bal.Sign() == 0 {
		b.balances.Delete(key)
		return nil
	}
	return b.balances.Set(key, bal)
}

func (b *Bank) Balance(addr thor.Address, currency Currency) (Value, error) {
	bal, err := b.balance(addr, currency)
	if err != nil {
		return Value{}, err
	}
	return Value{Currency: currency, Raw: bal}, nil
}

func (b *Bank) Supply(currency Currency) (Value, error) {
	s, err := b.supply.Get(currency.Hash())
	if err != nil {
		return Value{}, errors.Wrap(err, "failed to get supply")
	}
	return Value{Currency: currency, Raw: s}, nil
}

func (b *Bank) Transfer(from, to thor.Address, value Value) error {
	if value.Sign() <= 0 {
		return ErrInvalidAmount
	}
	fromBal, err := b.balance(from, value.Currency)
	if err != nil {
		return err
	}
	if fromBal.Cmp(value.Raw) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "transfer %v from %v", value, from)
	}
	if from == to {
		return nil
	}
	toBal, err := b.balance(to, value.Currency)
	if err != nil {
		return err
	}
	if err := b.setBalance(from, value.Currency, fromBal.Sub(fromBal, value.Raw)); err != nil {
		return err
	}
	return b.setBalance(to, value.Currency, toBal.Add(toBal, value.Raw))
}

func (b *Bank) Mint(to thor.Address, value Value) error {
	if value.Sign() <= 0 {
		return ErrInvalidAmount
	}
	bal, err := b.balance(to, value.Currency)
	if err != nil {
		return err
	}
	supply, err := b.Supply(value.Currency)
	if err != nil {
		return err
	}
	if err := b.setBalance(to, value.Currency, bal.Add(bal, value.Raw)); err != nil {
		return err
	}
	return b.supply.Set(value.Currency.Hash(), supply.Raw.Add(supply.Raw, value.Raw))
}

func (b *Bank) Burn(from thor.Address, value Value) error {
	if value.Sign() <= 0 {
		return ErrInvalidAmount
	}
	bal, err := b.balance(from, value.Currency)
	if err != nil {
		return err
	}
	if bal.Cmp(value.Raw) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "burn %v from %v", value, from)
	}
	supply, err := b.Supply(value.Currency)
	if err != nil {
		return err
	}
	if err := b.setBalance(from, value.Currency, bal.Sub(bal, value.Raw)); err != nil {
		return err
	}
	return b.supply.Set(value.Currency.Hash(), supply.Raw.Sub(supply.Raw, value.Raw))
}
