// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/thor"
)

// Array is an append-only list: its length lives at pos and elements in a mapping keyed by index.
type Array[V any] struct {
	length *Uint256
	items  *Mapping[Uint64Key, V]
}

func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint256(context, pos),
		items:  NewMapping[Uint64Key, V](context, thor.Blake2b(pos.Bytes(), []byte("items"))),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	l, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return l.Uint64(), nil
}

func (a *Array[V]) Get(i uint64) (value V, err error) {
	l, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= l {
		return value, errors.Errorf("index %d out of range [0, %d)", i, l)
	}
	return a.items.Get(Uint64Key(i))
}

func (a *Array[V]) Push(value V) error {
	l, err := a.Len()
	if err != nil {
		return err
	}
	if err := a.items.Set(Uint64Key(l), value); err != nil {
		return err
	}
	a.length.Set(new(big.Int).SetUint64(l + 1))
	return nil
}
