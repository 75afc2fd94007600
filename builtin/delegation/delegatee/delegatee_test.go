// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegatee

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/test/datagen"
	"github.com/vechain/delegation/thor"
)

var (
	gold   = asset.NewCurrency("GOLD", 0)
	silver = asset.NewCurrency("SILVER", 0)
)

func newConfig() Config {
	return Config{
		DelegationCurrency:     gold,
		RewardCurrencies:       []asset.Currency{silver, gold, silver},
		UnbondingPeriod:        10,
		MaxUnbondLockInEntries: 2,
		MaxRebondGraceEntries:  2,
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := newConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []asset.Currency{gold, silver}, cfg.RewardCurrencies)

	cfg = newConfig()
	cfg.DelegationCurrency = asset.Currency{}
	assert.Error(t, cfg.Validate())

	cfg = newConfig()
	cfg.MaxRebondGraceEntries = 0
	assert.Error(t, cfg.Validate())

	cfg = newConfig()
	cfg.UnbondingPeriod = MaxUnbondingPeriod + 1
	assert.ErrorIs(t, cfg.Validate(), reverts.ErrInvalidConfig)
}

func TestMaturityAt(t *testing.T) {
	cfg := newConfig()
	cfg.UnbondingPeriod = MaxUnbondingPeriod
	m := New(datagen.RandAddress(), cfg)

	maturity, err := m.MaturityAt(10)
	require.NoError(t, err)
	assert.Equal(t, 10+MaxUnbondingPeriod, maturity)

	maturity, err = m.MaturityAt(math.MaxUint64 - MaxUnbondingPeriod)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), maturity)

	_, err = m.MaturityAt(math.MaxUint64 - MaxUnbondingPeriod + 1)
	assert.ErrorIs(t, err, reverts.ErrHeightOverflow)
}

func TestNew(t *testing.T) {
	cfg := newConfig()
	require.NoError(t, cfg.Validate())
	addr := datagen.RandAddress()
	m := New(addr, cfg)

	pools := []thor.Address{m.Account, m.DelegationPool, m.RewardPool, m.RewardRemainderPool, m.SlashedPool, addr}
	for i := range pools {
		for j := i + 1; j < len(pools); j++ {
			assert.NotEqual(t, pools[i], pools[j])
		}
	}
	assert.Equal(t, gold, m.TotalDelegated.Currency)
	assert.Equal(t, 0, m.TotalShares.Sign())
	assert.Len(t, m.UnclaimedRewards, 2)
	assert.Equal(t, m.DelegationPool, New(addr, cfg).DelegationPool)
}

func TestShareMath(t *testing.T) {
	m := New(datagen.RandAddress(), newConfig())

	// first delegation mints one share per unit
	shares := m.SharesFromValue(big.NewInt(100))
	assert.Equal(t, big.NewInt(100), shares)
	m.AddStake(big.NewInt(100), shares)

	// rewards compounded into the pool raise the share price
	m.TotalDelegated = asset.NewValue(gold, big.NewInt(300))
	assert.Equal(t, big.NewInt(33), m.SharesFromValue(big.NewInt(100)), "rounds down")

	assert.Equal(t, big.NewInt(150), m.ValueFromShares(big.NewInt(50)))
	assert.Equal(t, big.NewInt(300), m.ValueFromShares(big.NewInt(100)), "all shares redeem everything")
	assert.Equal(t, big.NewInt(3), m.ValueFromShares(big.NewInt(1)))

	m.RemoveStake(big.NewInt(150), big.NewInt(50))
	assert.Equal(t, big.NewInt(150), m.TotalDelegated.Raw)
	assert.Equal(t, big.NewInt(50), m.TotalShares)

	m.TotalDelegated = asset.Zero(gold)
	assert.Equal(t, 0, m.SharesFromValue(big.NewInt(10)).Sign())
}

func TestDelegatorsAndPower(t *testing.T) {
	m := New(datagen.RandAddress(), newConfig())
	a, b := datagen.RandAddress(), datagen.RandAddress()

	m.AddDelegator(a)
	m.AddDelegator(b)
	m.AddDelegator(a)
	assert.Len(t, m.Delegators, 2)
	assert.True(t, m.HasDelegator(b))
	assert.Equal(t, -1, m.Delegators[0].Compare(m.Delegators[1]))

	m.RemoveDelegator(b)
	assert.False(t, m.HasDelegator(b))
	assert.True(t, m.HasDelegator(a))

	m.AddStake(big.NewInt(10), big.NewInt(10))
	assert.Equal(t, big.NewInt(10), m.Power())
	m.Jailed = true
	assert.Equal(t, 0, m.Power().Sign())
}

func TestUnclaimedAndRefs(t *testing.T) {
	m := New(datagen.RandAddress(), newConfig())
	assert.Equal(t, 0, m.Unclaimed(silver).Sign())

	m.SetUnclaimed(asset.NewValue(silver, big.NewInt(7)))
	assert.Equal(t, big.NewInt(7), m.Unclaimed(silver).Raw)
	assert.True(t, m.IsRewardCurrency(silver))
	assert.False(t, m.IsRewardCurrency(asset.NewCurrency("IRON", 0)))

	d := datagen.RandAddress()
	m.UnbondingRefs = m.UnbondingRefs.Sync(unbonding.Ref{Delegatee: m.Address, Delegator: d, Kind: unbonding.KindLockIn}, []uint64{5, 6})
	m.UnbondingRefs = m.UnbondingRefs.Sync(unbonding.Ref{Delegatee: m.Address, Delegator: d, Kind: unbonding.KindGrace}, []uint64{5})
	assert.Len(t, m.QueueRefs(unbonding.KindLockIn), 1)
	assert.Len(t, m.QueueRefs(unbonding.KindGrace), 1)
}
