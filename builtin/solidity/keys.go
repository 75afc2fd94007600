// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/qianbin/drlp"

	"github.com/vechain/delegation/thor"
)

// Key is anything that can address a mapping entry.
type Key interface {
	Bytes() []byte
}

// Uint64Key keys a mapping by an unsigned integer, e.g. a height or an index.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return drlp.AppendUint(nil, uint64(k))
}

// PairKey keys a mapping by two addresses. Order matters.
type PairKey struct {
	First  thor.Address
	Second thor.Address
}

func NewPairKey(first, second thor.Address) PairKey {
	return PairKey{First: first, Second: second}
}

func (k PairKey) Bytes() []byte {
	b := make([]byte, 0, 2*thor.AddressLength)
	return append(append(b, k.First[:]...), k.Second[:]...)
}

// HeightKey keys a mapping by an address and a height.
type HeightKey struct {
	Address thor.Address
	Height  uint64
}

func (k HeightKey) Bytes() []byte {
	return drlp.AppendUint(k.Address.Bytes(), k.Height)
}
