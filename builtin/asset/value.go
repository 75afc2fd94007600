// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"math/big"
)

// Value is an amount of a currency. Operations never mutate their operands.
type Value struct {
	Currency Currency
	Raw      *big.Int
}

func NewValue(currency Currency, raw *big.Int) Value {
	if raw == nil {
		raw = new(big.Int)
	}
	return Value{Currency: currency, Raw: new(big.Int).Set(raw)}
}

// Zero returns a zero amount of currency.
func Zero(currency Currency) Value {
	return Value{Currency: currency, Raw: new(big.Int)}
}

func (v Value) raw() *big.Int {
	if v.Raw == nil {
		return new(big.Int)
	}
	return v.Raw
}

func (v Value) Sign() int {
	return v.raw().Sign()
}

func (v Value) IsZero() bool {
	return v.Sign() == 0
}

// SameCurrency reports whether both values are denominated in the same currency.
func (v Value) SameCurrency(other Value) bool {
	return v.Currency == other.Currency
}

// Cmp compares the raw amounts. Callers compare values of the same currency only.
func (v Value) Cmp(other Value) int {
	return v.raw().Cmp(other.raw())
}

func (v Value) Add(other Value) Value {
	return Value{Currency: v.Currency, Raw: new(big.Int).Add(v.raw(), other.raw())}
}

func (v Value) Sub(other Value) Value {
	return Value{Currency: v.Currency, Raw: new(big.Int).Sub(v.raw(), other.raw())}
}

// MulDiv returns floor(v * num / den).
func (v Value) MulDiv(num, den *big.Int) Value {
	r := new(big.Int).Mul(v.raw(), num)
	return Value{Currency: v.Currency, Raw: r.Quo(r, den)}
}

// DivRem splits v into den equal parts and the remainder.
func (v Value) DivRem(den *big.Int) (Value, Value) {
	q, r := new(big.Int).QuoRem(v.raw(), den, new(big.Int))
	return Value{Currency: v.Currency, Raw: q}, Value{Currency: v.Currency, Raw: r}
}

func (v Value) String() string {
	return v.Currency.Format(v.raw())
}
