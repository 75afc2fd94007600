// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/thor"
)

// Currency identifies a fungible asset.
type Currency struct {
	Ticker   string
	Decimals uint8
}

func NewCurrency(ticker string, decimals uint8) Currency {
	return Currency{Ticker: ticker, Decimals: decimals}
}

// ParseCurrency parses "TICKER" or "TICKER:decimals".
func ParseCurrency(s string) (Currency, error) {
	ticker, dec, found := strings.Cut(s, ":")
	if ticker == "" {
		return Currency{}, errors.Errorf("invalid currency %q", s)
	}
	if !found {
		return NewCurrency(ticker, 0), nil
	}
	d, err := strconv.ParseUint(dec, 10, 8)
	if err != nil {
		return Currency{}, errors.Wrapf(err, "invalid currency decimals %q", s)
	}
	return NewCurrency(ticker, uint8(d)), nil
}

func (c Currency) IsZero() bool {
	return c.Ticker == ""
}

// Hash returns the storage identity of the currency.
func (c Currency) Hash() thor.Bytes32 {
	return thor.Blake2b([]byte(c.Ticker), []byte{c.Decimals})
}

// Less orders currencies by ticker then decimals.
func (c Currency) Less(other Currency) bool {
	if c.Ticker != other.Ticker {
		return c.Ticker < other.Ticker
	}
	return c.Decimals < other.Decimals
}

func (c Currency) String() string {
	return c.Ticker
}

// Format renders raw as a decimal amount, e.g. 150 with 2 decimals is "1.5 GOLD".
func (c Currency) Format(raw *big.Int) string {
	if raw == nil {
		raw = new(big.Int)
	}
	if c.Decimals == 0 {
		return raw.String() + " " + c.Ticker
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(c.Decimals)), nil)
	q, r := new(big.Int).QuoRem(new(big.Int).Abs(raw), unit, new(big.Int))

	sign := ""
	if raw.Sign() < 0 {
		sign = "-"
	}
	frac := fmt.Sprintf("%0*s", int(c.Decimals), r.String())
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return sign + q.String() + " " + c.Ticker
	}
	return sign + q.String() + "." + frac + " " + c.Ticker
}

// SortCurrencies sorts in place.
func SortCurrencies(cs []Currency) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
}

// MarshalText renders the currency as "TICKER:decimals".
func (c Currency) MarshalText() ([]byte, error) {
	return []byte(c.Ticker + ":" + strconv.FormatUint(uint64(c.Decimals), 10)), nil
}

func (c *Currency) UnmarshalText(text []byte) error {
	parsed, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
