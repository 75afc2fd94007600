// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"slices"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/thor"
)

// Record is the lump sum collected for a delegatee at StartHeight. Records of one delegatee form
// a chain through LastStartHeight, newest first.
type Record struct {
	StartHeight     uint64
	TotalShares     *big.Int
	Delegators      []thor.Address // sorted, members that have not claimed yet
	Rewards         []asset.Value  // collected since the previous record
	LastStartHeight *uint64        `rlp:"nil"`
}

func New(startHeight uint64, totalShares *big.Int, delegators []thor.Address, rewards []asset.Value, last *uint64) *Record {
	r := &Record{
		StartHeight: startHeight,
		TotalShares: new(big.Int).Set(totalShares),
		Delegators:  slices.Clone(delegators),
	}
	for _, v := range rewards {
		r.Rewards = append(r.Rewards, asset.NewValue(v.Currency, v.Raw))
	}
	if last != nil {
		h := *last
		r.LastStartHeight = &h
	}
	return r
}

func (r *Record) HasDelegator(addr thor.Address) bool {
	_, found := slices.BinarySearchFunc(r.Delegators, addr, thor.Address.Compare)
	return found
}

func (r *Record) RemoveDelegator(addr thor.Address) {
	if i, found := slices.BinarySearchFunc(r.Delegators, addr, thor.Address.Compare); found {
		r.Delegators = slices.Delete(r.Delegators, i, i+1)
	}
}

// RewardFor returns the floor share of every reward currency owed to share. The divisor is the
// total share count when the record was created, regardless of how many members already claimed.
func (r *Record) RewardFor(share *big.Int) []asset.Value {
	out := make([]asset.Value, 0, len(r.Rewards))
	for _, v := range r.Rewards {
		if r.TotalShares.Sign() == 0 {
			out = append(out, asset.Zero(v.Currency))
			continue
		}
		out = append(out, v.MulDiv(share, r.TotalShares))
	}
	return out
}

// Previous returns the start height of the previous record.
func (r *Record) Previous() (uint64, bool) {
	if r.LastStartHeight == nil {
		return 0, false
	}
	return *r.LastStartHeight, true
}
