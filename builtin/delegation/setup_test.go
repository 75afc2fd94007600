// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/lvldb"
	"github.com/vechain/delegation/state"
	"github.com/vechain/delegation/thor"
)

var (
	vet  = asset.NewCurrency("VET", 0)
	vtho = asset.NewCurrency("VTHO", 0)
)

func testParams() Params {
	return Params{
		DelegationCurrency:     vet,
		RewardCurrencies:       []asset.Currency{vtho},
		UnbondingPeriod:        10,
		MaxUnbondLockInEntries: 3,
		MaxRebondGraceEntries:  3,
	}
}

func vetOf(amount int64) asset.Value {
	return asset.NewValue(vet, big.NewInt(amount))
}

func vthoOf(amount int64) asset.Value {
	return asset.NewValue(vtho, big.NewInt(amount))
}

type EngineTest struct {
	*Engine
	t    *testing.T
	bank *asset.Bank
	st   *state.State
}

func newTest(t *testing.T, params Params) *EngineTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	bank := asset.New(asset.Address, st)
	return &EngineTest{
		Engine: New(Address, st, bank, params),
		t:      t,
		bank:   bank,
		st:     st,
	}
}

// Mint credits amount VET to the delegator's pool.
func (et *EngineTest) Mint(addr thor.Address, amount int64) *EngineTest {
	require.NoError(et.t, et.bank.Mint(addr, vetOf(amount)), "failed to mint")
	return et
}

// Reward deposits amount VTHO into the reward pool of dt.
func (et *EngineTest) Reward(dt thor.Address, amount int64) *EngineTest {
	m := et.delegateeOf(dt)
	require.NoError(et.t, et.bank.Mint(m.RewardPool, vthoOf(amount)), "failed to deposit reward")
	return et
}

func (et *EngineTest) Delegate(dt, dr thor.Address, amount int64, height uint64) *EngineTest {
	_, err := et.Engine.Delegate(dt, dr, vetOf(amount), height)
	require.NoError(et.t, err, "failed to delegate %d to %v", amount, dt)
	return et
}

func (et *EngineTest) Undelegate(dt, dr thor.Address, share int64, height uint64) *EngineTest {
	_, _, err := et.Engine.Undelegate(dt, dr, big.NewInt(share), height)
	require.NoError(et.t, err, "failed to undelegate %d from %v", share, dt)
	return et
}

func (et *EngineTest) Redelegate(src, dst, dr thor.Address, share int64, height uint64) *EngineTest {
	_, err := et.Engine.Redelegate(src, dst, dr, big.NewInt(share), height)
	require.NoError(et.t, err, "failed to redelegate %d from %v to %v", share, src, dst)
	return et
}

func (et *EngineTest) Collect(dt thor.Address, height uint64) *EngineTest {
	_, err := et.CollectRewards(dt, height)
	require.NoError(et.t, err, "failed to collect rewards of %v", dt)
	return et
}

func (et *EngineTest) Release(height uint64) *EngineTest {
	_, err := et.ReleaseUnbondings(height)
	require.NoError(et.t, err, "failed to release unbondings at %d", height)
	return et
}

func (et *EngineTest) Slash(dt thor.Address, fraction string, height uint64) *EngineTest {
	_, err := et.Engine.Slash(dt, math.LegacyMustNewDecFromStr(fraction), height)
	require.NoError(et.t, err, "failed to slash %v", dt)
	return et
}

func (et *EngineTest) delegateeOf(dt thor.Address) *delegatee.Metadata {
	m, err := et.GetDelegatee(dt)
	require.NoError(et.t, err, "failed to get delegatee %v", dt)
	return m
}

func (et *EngineTest) AssertShares(dt, dr thor.Address, expected int64) *EngineTest {
	b, err := et.GetBond(dt, dr)
	require.NoError(et.t, err, "failed to get bond")
	assert.Equal(et.t, 0, b.Share().Cmp(big.NewInt(expected)), "share mismatch, got %v, expected %d", b.Share(), expected)
	return et
}

func (et *EngineTest) AssertTotals(dt thor.Address, delegated, shares int64) *EngineTest {
	m := et.delegateeOf(dt)
	assert.Equal(et.t, 0, m.TotalDelegated.Raw.Cmp(big.NewInt(delegated)), "total delegated mismatch, got %v, expected %d", m.TotalDelegated.Raw, delegated)
	assert.Equal(et.t, 0, m.TotalShares.Cmp(big.NewInt(shares)), "total shares mismatch, got %v, expected %d", m.TotalShares, shares)
	return et
}

func (et *EngineTest) AssertBalance(addr thor.Address, currency asset.Currency, expected int64) *EngineTest {
	bal, err := et.bank.Balance(addr, currency)
	require.NoError(et.t, err, "failed to get balance")
	assert.Equal(et.t, 0, bal.Raw.Cmp(big.NewInt(expected)), "%v balance mismatch, got %v, expected %d", currency, bal.Raw, expected)
	return et
}

// AssertConsistent checks the delegation pool of dt against its bookkeeping.
func (et *EngineTest) AssertConsistent(dt thor.Address) *EngineTest {
	expected, actual, err := et.Check(dt)
	require.NoError(et.t, err, "failed to check %v", dt)
	assert.Equal(et.t, 0, expected.Cmp(actual), "pool of %v holds %v, expected %v", dt, actual, expected)
	return et
}

func (et *EngineTest) AssertLockIn(dt, dr thor.Address, expected ...int64) *EngineTest {
	l, err := et.GetUnbondLockIn(dt, dr)
	require.NoError(et.t, err, "failed to get lock-in")
	got := make([]int64, 0, len(l.Entries))
	for _, e := range l.Entries {
		got = append(got, e.Value.Int64())
	}
	if len(expected) == 0 {
		expected = []int64{}
	}
	assert.Equal(et.t, expected, got, "lock-in entries mismatch")
	return et
}
