// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegator

import (
	"slices"

	"github.com/vechain/delegation/thor"
)

// Metadata describes the value owner and where its funds come from and go to.
type Metadata struct {
	Address        thor.Address
	Account        thor.Address
	DelegationPool thor.Address // source of bonded value, destination of released value
	RewardAddress  thor.Address // destination of claimed rewards
	Delegatees     []thor.Address
}

// New creates metadata whose pool and reward address are the delegator itself.
func New(addr thor.Address) *Metadata {
	return &Metadata{
		Address:        addr,
		Account:        thor.DeriveAddress("delegator", addr),
		DelegationPool: addr,
		RewardAddress:  addr,
	}
}

func (m *Metadata) HasDelegatee(addr thor.Address) bool {
	_, found := slices.BinarySearchFunc(m.Delegatees, addr, thor.Address.Compare)
	return found
}

func (m *Metadata) AddDelegatee(addr thor.Address) {
	if i, found := slices.BinarySearchFunc(m.Delegatees, addr, thor.Address.Compare); !found {
		m.Delegatees = slices.Insert(m.Delegatees, i, addr)
	}
}

func (m *Metadata) RemoveDelegatee(addr thor.Address) {
	if i, found := slices.BinarySearchFunc(m.Delegatees, addr, thor.Address.Compare); found {
		m.Delegatees = slices.Delete(m.Delegatees, i, i+1)
	}
}
