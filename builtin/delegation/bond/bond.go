// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bond

import (
	"math/big"

	"github.com/vechain/delegation/builtin/delegation/reverts"
)

// Bond is the share balance of one delegator in one delegatee.
type Bond struct {
	body *body
}

type body struct {
	Share             *big.Int
	LastClaimedHeight uint64 // rewards records older than this are settled
}

func New() *Bond {
	return &Bond{&body{Share: new(big.Int)}}
}

// FromFields rebuilds a bond, e.g. from its persisted form.
func FromFields(share *big.Int, lastClaimedHeight uint64) *Bond {
	if share == nil {
		share = new(big.Int)
	}
	return &Bond{&body{Share: new(big.Int).Set(share), LastClaimedHeight: lastClaimedHeight}}
}

func (b *Bond) Share() *big.Int {
	return new(big.Int).Set(b.body.Share)
}

func (b *Bond) LastClaimedHeight() uint64 {
	return b.body.LastClaimedHeight
}

func (b *Bond) IsEmpty() bool {
	return b.body.Share.Sign() == 0
}

func (b *Bond) AddShare(share *big.Int) {
	b.body.Share = new(big.Int).Add(b.body.Share, share)
}

func (b *Bond) SubShare(share *big.Int) error {
	if b.body.Share.Cmp(share) < 0 {
		return reverts.ErrInsufficientShare
	}
	b.body.Share = new(big.Int).Sub(b.body.Share, share)
	return nil
}

// Settle marks every rewards record up to height as claimed.
func (b *Bond) Settle(height uint64) {
	b.body.LastClaimedHeight = height
}
