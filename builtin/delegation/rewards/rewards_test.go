// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/test/datagen"
	"github.com/vechain/delegation/thor"
)

func TestRecord(t *testing.T) {
	gold := asset.NewCurrency("GOLD", 0)
	silver := asset.NewCurrency("SILVER", 0)
	a, b := datagen.RandAddress(), datagen.RandAddress()
	delegators := []thor.Address{a, b}
	thor.SortAddresses(delegators)

	rewards := []asset.Value{asset.NewValue(gold, big.NewInt(200)), asset.NewValue(silver, big.NewInt(7))}
	r := New(20, big.NewInt(200), delegators, rewards, nil)

	_, ok := r.Previous()
	assert.False(t, ok)

	// caller inputs are copied
	rewards[0].Raw.SetInt64(0)
	delegators[0] = thor.Address{}
	assert.Equal(t, big.NewInt(200), r.Rewards[0].Raw)
	assert.True(t, r.HasDelegator(a))

	owed := r.RewardFor(big.NewInt(100))
	assert.Equal(t, big.NewInt(100), owed[0].Raw)
	assert.Equal(t, big.NewInt(3), owed[1].Raw)

	r.RemoveDelegator(a)
	assert.False(t, r.HasDelegator(a))
	assert.True(t, r.HasDelegator(b))

	// divisor is unaffected by claims
	owed = r.RewardFor(big.NewInt(100))
	assert.Equal(t, big.NewInt(100), owed[0].Raw)

	last := uint64(13)
	r2 := New(30, new(big.Int), nil, rewards[:1], &last)
	prev, ok := r2.Previous()
	assert.True(t, ok)
	assert.Equal(t, uint64(13), prev)
	assert.Equal(t, 0, r2.RewardFor(big.NewInt(5))[0].Sign())
}
