// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/builtin/delegation/repository"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/test/datagen"
	"github.com/vechain/delegation/thor"
)

func TestDelegate_SharePrice(t *testing.T) {
	dt := datagen.RandAddress()
	a, b, c := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 100).Mint(b, 50).Mint(c, 10).
		Delegate(dt, a, 100, 1).
		AssertShares(dt, a, 100).
		Delegate(dt, b, 50, 2).
		AssertShares(dt, b, 50).
		AssertTotals(dt, 150, 150).
		Slash(dt, "0.1", 3).
		AssertTotals(dt, 135, 150)

	// 150 * 10 / 135 rounds down in favour of the pool
	et.Delegate(dt, c, 10, 4).
		AssertShares(dt, c, 11).
		AssertTotals(dt, 145, 161).
		AssertBalance(c, vet, 0).
		AssertConsistent(dt)

	v, err := et.ValueOf(dt, c)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Raw.Int64())

	v, err = et.ValueOf(dt, datagen.RandAddress())
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	dr, err := et.GetDelegator(a)
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{dt}, dr.Delegatees)
	assert.True(t, et.delegateeOf(dt).HasDelegator(a))
}

func TestDelegate_Guards(t *testing.T) {
	dt := datagen.RandAddress()
	dr := datagen.RandAddress()
	et := newTest(t, testParams()).Mint(dr, 100)

	_, err := et.Engine.Delegate(dt, dr, vetOf(10), 0)
	assert.ErrorIs(t, err, reverts.ErrZeroHeight)
	_, err = et.Engine.Delegate(dt, dr, vetOf(0), 1)
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)
	_, err = et.Engine.Delegate(dt, dr, vthoOf(10), 1)
	assert.ErrorIs(t, err, reverts.ErrCurrencyMismatch)
	assert.True(t, reverts.IsValidation(err))

	// a rejected first bond does not leave the delegatee behind
	_, err = et.GetDelegatee(dt)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, et.Events())
}

func TestDelegate_InsufficientBalanceReverts(t *testing.T) {
	dt := datagen.RandAddress()
	dr := datagen.RandAddress()
	et := newTest(t, testParams()).Mint(dr, 10)

	_, err := et.Engine.Delegate(dt, dr, vetOf(11), 1)
	assert.ErrorIs(t, err, asset.ErrInsufficientBalance)
	assert.False(t, reverts.IsRevertErr(err))

	_, err = et.GetDelegatee(dt)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = et.GetDelegator(dr)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	et.AssertBalance(dr, vet, 10)
	assert.Empty(t, et.Events())
}

func TestUndelegate(t *testing.T) {
	dt := datagen.RandAddress()
	a, b := datagen.RandAddress(), datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 100).Mint(b, 100).
		Delegate(dt, a, 100, 1).
		Delegate(dt, b, 100, 1)

	value, maturity, err := et.Engine.Undelegate(dt, a, big.NewInt(40), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(40), value.Raw.Int64())
	assert.Equal(t, uint64(15), maturity)
	et.AssertShares(dt, a, 60).
		AssertTotals(dt, 160, 160).
		AssertLockIn(dt, a, 40).
		AssertConsistent(dt)

	// the last share redeems the whole remaining total
	et.Undelegate(dt, a, 60, 6).
		AssertShares(dt, a, 0).
		AssertLockIn(dt, a, 40, 60).
		AssertConsistent(dt)

	bnd, err := et.GetBond(dt, a)
	require.NoError(t, err, "an emptied bond is kept")
	assert.True(t, bnd.IsEmpty())
	assert.False(t, et.delegateeOf(dt).HasDelegator(a))
	dr, err := et.GetDelegator(a)
	require.NoError(t, err)
	assert.Empty(t, dr.Delegatees)

	set, err := et.GetUnbondingSet()
	require.NoError(t, err)
	assert.Equal(t, unbonding.Refs{
		{Delegatee: dt, Delegator: a, Kind: unbonding.KindLockIn, Maturity: 15},
		{Delegatee: dt, Delegator: a, Kind: unbonding.KindLockIn, Maturity: 16},
	}, set.Refs)
	assert.Len(t, et.delegateeOf(dt).UnbondingRefs, 2)

	_, _, err = et.Engine.Undelegate(dt, a, big.NewInt(1), 7)
	assert.ErrorIs(t, err, reverts.ErrInsufficientShare)
	_, _, err = et.Engine.Undelegate(dt, b, big.NewInt(101), 7)
	assert.ErrorIs(t, err, reverts.ErrInsufficientShare)
	_, _, err = et.Engine.Undelegate(datagen.RandAddress(), b, big.NewInt(1), 7)
	assert.ErrorIs(t, err, reverts.ErrUnknownDelegatee)
	_, _, err = et.Engine.Undelegate(dt, b, big.NewInt(0), 7)
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)

	et.Release(15).
		AssertBalance(a, vet, 40).
		AssertLockIn(dt, a, 60).
		Release(16).
		AssertBalance(a, vet, 100).
		AssertLockIn(dt, a).
		AssertConsistent(dt)

	set, err = et.GetUnbondingSet()
	require.NoError(t, err)
	assert.Empty(t, set.Refs)
	assert.Empty(t, et.delegateeOf(dt).UnbondingRefs)
}

func TestReleaseUnbondings_ByMaturity(t *testing.T) {
	slow, fast := datagen.RandAddress(), datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, testParams()).Mint(a, 100)
	require.NoError(t, et.AddDelegatee(fast, delegatee.Config{
		DelegationCurrency:     vet,
		UnbondingPeriod:        3,
		MaxUnbondLockInEntries: 3,
		MaxRebondGraceEntries:  3,
	}))

	// maturities 15, 9 and 12 arrive out of order
	et.Delegate(slow, a, 50, 1).
		Delegate(fast, a, 50, 1).
		Undelegate(slow, a, 10, 5).
		Undelegate(fast, a, 10, 6).
		Undelegate(fast, a, 10, 9)

	set, err := et.GetUnbondingSet()
	require.NoError(t, err)
	assert.Equal(t, unbonding.Refs{
		{Delegatee: fast, Delegator: a, Kind: unbonding.KindLockIn, Maturity: 9},
		{Delegatee: fast, Delegator: a, Kind: unbonding.KindLockIn, Maturity: 12},
		{Delegatee: slow, Delegator: a, Kind: unbonding.KindLockIn, Maturity: 15},
	}, set.Refs)

	released, err := et.ReleaseUnbondings(12)
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, fast, released[0].Delegatee)
	assert.Equal(t, int64(20), released[0].Value.Raw.Int64())
	et.AssertBalance(a, vet, 20).AssertLockIn(fast, a)

	set, err = et.GetUnbondingSet()
	require.NoError(t, err)
	assert.Equal(t, unbonding.Refs{
		{Delegatee: slow, Delegator: a, Kind: unbonding.KindLockIn, Maturity: 15},
	}, set.Refs)

	et.Release(15).AssertBalance(a, vet, 30).AssertConsistent(slow).AssertConsistent(fast)
	set, err = et.GetUnbondingSet()
	require.NoError(t, err)
	assert.Empty(t, set.Refs)
}

func TestUndelegate_QueueBound(t *testing.T) {
	params := testParams()
	params.MaxUnbondLockInEntries = 1
	dt := datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, params).
		Mint(a, 100).
		Delegate(dt, a, 100, 10).
		Undelegate(dt, a, 50, 20)

	_, _, err := et.Engine.Undelegate(dt, a, big.NewInt(50), 30)
	assert.ErrorIs(t, err, reverts.ErrLockInFull)
	assert.True(t, reverts.IsCapacity(err))

	released, err := et.ReleaseUnbondings(30)
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, Released{Delegatee: dt, Delegator: a, Kind: unbonding.KindLockIn, Value: vetOf(50)}, released[0])

	et.Undelegate(dt, a, 50, 30).
		AssertLockIn(dt, a, 50).
		AssertBalance(a, vet, 50).
		AssertConsistent(dt)
}

func TestCancelUndelegate(t *testing.T) {
	dt := datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 100).
		Delegate(dt, a, 100, 1).
		Undelegate(dt, a, 20, 2).
		Undelegate(dt, a, 30, 3)

	_, err := et.CancelUndelegate(dt, a, vetOf(51), 4)
	assert.ErrorIs(t, err, reverts.ErrInsufficientUnbonding)
	_, err = et.CancelUndelegate(dt, a, vthoOf(1), 4)
	assert.ErrorIs(t, err, reverts.ErrCurrencyMismatch)

	// newest entries are cancelled first
	shares, err := et.CancelUndelegate(dt, a, vetOf(40), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(40), shares.Int64())
	et.AssertShares(dt, a, 90).
		AssertTotals(dt, 90, 90).
		AssertLockIn(dt, a, 10).
		AssertConsistent(dt)

	set, err := et.GetUnbondingSet()
	require.NoError(t, err)
	assert.Equal(t, unbonding.Refs{{Delegatee: dt, Delegator: a, Kind: unbonding.KindLockIn, Maturity: 12}}, set.Refs)

	// cancelling everything drops the refs
	_, err = et.CancelUndelegate(dt, a, vetOf(10), 5)
	require.NoError(t, err)
	et.AssertLockIn(dt, a).AssertShares(dt, a, 100)
	set, err = et.GetUnbondingSet()
	require.NoError(t, err)
	assert.Empty(t, set.Refs)
}

func TestCancelUndelegate_FullQueue(t *testing.T) {
	dt := datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 100).
		Delegate(dt, a, 100, 1).
		Undelegate(dt, a, 10, 2).
		Undelegate(dt, a, 10, 3).
		Undelegate(dt, a, 10, 4)

	_, err := et.CancelUndelegate(dt, a, vetOf(5), 5)
	assert.ErrorIs(t, err, reverts.ErrLockInFull)
}

func TestRedelegate(t *testing.T) {
	src, dst := datagen.RandAddress(), datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 100).
		Delegate(src, a, 100, 1)

	value, err := et.Engine.Redelegate(src, dst, a, big.NewInt(40), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(40), value.Raw.Int64())

	et.AssertShares(src, a, 60).
		AssertShares(dst, a, 40).
		AssertTotals(src, 60, 60).
		AssertTotals(dst, 40, 40).
		AssertLockIn(src, a).
		AssertConsistent(src).
		AssertConsistent(dst)

	g, err := et.GetRebondGrace(src, a)
	require.NoError(t, err)
	assert.Equal(t, []unbonding.GraceEntry{{Destination: dst, Value: big.NewInt(40), StartHeight: 5, MaturityHeight: 15}}, g.Entries)

	dr, err := et.GetDelegator(a)
	require.NoError(t, err)
	assert.ElementsMatch(t, []thor.Address{src, dst}, dr.Delegatees)

	_, err = et.Engine.Redelegate(src, src, a, big.NewInt(1), 6)
	assert.ErrorIs(t, err, reverts.ErrSameDelegatee)
	_, err = et.Engine.Redelegate(src, dst, a, big.NewInt(61), 6)
	assert.ErrorIs(t, err, reverts.ErrInsufficientShare)

	// grace maturity moves no value
	released, err := et.ReleaseUnbondings(15)
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, unbonding.KindGrace, released[0].Kind)
	et.AssertBalance(a, vet, 0).AssertConsistent(src).AssertConsistent(dst)

	g, err = et.GetRebondGrace(src, a)
	require.NoError(t, err)
	assert.True(t, g.IsEmpty())
}

func TestRedelegate_GraceBound(t *testing.T) {
	params := testParams()
	params.MaxRebondGraceEntries = 1
	src, dst := datagen.RandAddress(), datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, params).
		Mint(a, 100).
		Delegate(src, a, 100, 1).
		Redelegate(src, dst, a, 10, 2)

	_, err := et.Engine.Redelegate(src, dst, a, big.NewInt(10), 3)
	assert.ErrorIs(t, err, reverts.ErrGraceFull)

	et.Release(12).
		Redelegate(src, dst, a, 10, 12).
		AssertShares(dst, a, 20)
}

func TestRedelegate_CurrencyMismatch(t *testing.T) {
	src, dst := datagen.RandAddress(), datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, testParams()).Mint(a, 100).Delegate(src, a, 100, 1)
	require.NoError(t, et.AddDelegatee(dst, delegatee.Config{
		DelegationCurrency:     vtho,
		MaxUnbondLockInEntries: 1,
		MaxRebondGraceEntries:  1,
	}))

	_, err := et.Engine.Redelegate(src, dst, a, big.NewInt(10), 2)
	assert.ErrorIs(t, err, reverts.ErrCurrencyMismatch)
}

func TestUnbonding_MaturityOverflow(t *testing.T) {
	dt, dst := datagen.RandAddress(), datagen.RandAddress()
	a := datagen.RandAddress()
	et := newTest(t, testParams()).Mint(a, 100)

	cfg := delegatee.Config{
		DelegationCurrency:     vet,
		UnbondingPeriod:        thor.MaxHeight,
		MaxUnbondLockInEntries: 1,
		MaxRebondGraceEntries:  1,
	}
	assert.ErrorIs(t, et.AddDelegatee(dt, cfg), reverts.ErrInvalidConfig)

	cfg.UnbondingPeriod = delegatee.MaxUnbondingPeriod
	require.NoError(t, et.AddDelegatee(dt, cfg))
	height := thor.MaxHeight - delegatee.MaxUnbondingPeriod + 1
	et.Delegate(dt, a, 100, height)

	_, _, err := et.Engine.Undelegate(dt, a, big.NewInt(100), height)
	assert.ErrorIs(t, err, reverts.ErrHeightOverflow)
	_, err = et.Engine.Redelegate(dt, dst, a, big.NewInt(100), height)
	assert.ErrorIs(t, err, reverts.ErrHeightOverflow)

	released, err := et.ReleaseUnbondings(height)
	require.NoError(t, err)
	assert.Empty(t, released)
	et.AssertShares(dt, a, 100).AssertBalance(a, vet, 0).AssertLockIn(dt, a)
}

func TestAddDelegatee(t *testing.T) {
	dt := datagen.RandAddress()
	et := newTest(t, testParams())

	cfg := delegatee.Config{
		DelegationCurrency:     vet,
		RewardCurrencies:       []asset.Currency{vtho, vet, vtho},
		UnbondingPeriod:        3,
		MaxUnbondLockInEntries: 2,
		MaxRebondGraceEntries:  2,
	}
	require.NoError(t, et.AddDelegatee(dt, cfg))
	assert.ErrorIs(t, et.AddDelegatee(dt, cfg), reverts.ErrDelegateeExists)
	assert.ErrorIs(t, et.AddDelegatee(datagen.RandAddress(), delegatee.Config{}), reverts.ErrInvalidConfig)

	m := et.delegateeOf(dt)
	assert.Equal(t, []asset.Currency{vet, vtho}, m.RewardCurrencies)
	assert.Equal(t, uint64(3), m.UnbondingPeriod)

	list, err := et.Delegatees()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{dt}, list)
}

func TestSetRewardAddress(t *testing.T) {
	dt := datagen.RandAddress()
	a, wallet := datagen.RandAddress(), datagen.RandAddress()

	et := newTest(t, testParams()).Mint(a, 100).Delegate(dt, a, 100, 1)
	require.NoError(t, et.SetRewardAddress(a, wallet))

	et.Reward(dt, 30).Collect(dt, 2)
	paid, err := et.ClaimReward(dt, a, 3)
	require.NoError(t, err)
	assert.Equal(t, []asset.Value{vthoOf(30)}, paid)
	et.AssertBalance(wallet, vtho, 30).AssertBalance(a, vtho, 0)
}

func TestEvents(t *testing.T) {
	dt := datagen.RandAddress()
	a := datagen.RandAddress()

	et := newTest(t, testParams()).Mint(a, 100).Delegate(dt, a, 100, 1)
	evs := et.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, EventDelegated, evs[0].Name)
	assert.Equal(t, uint64(1), evs[0].Height)
	assert.Equal(t, dt, evs[0].Delegatee)
	assert.Equal(t, a, evs[0].Delegator)
	assert.Equal(t, 0, evs[0].Amount.Cmp(vetOf(100)))
	assert.Empty(t, et.Events(), "events are drained")

	et.Undelegate(dt, a, 10, 2).Release(12)
	var names []string
	for _, ev := range et.Events() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{EventUndelegated, EventUnbondingReleased}, names)
}

func TestErrorsWrapRevert(t *testing.T) {
	et := newTest(t, testParams())
	_, err := et.CollectRewards(datagen.RandAddress(), 1)
	assert.True(t, reverts.IsState(err))
	assert.True(t, errors.Is(err, reverts.ErrUnknownDelegatee))

	_, err = et.Engine.Slash(datagen.RandAddress(), math.LegacyMustNewDecFromStr("1.5"), 1)
	assert.ErrorIs(t, err, reverts.ErrInvalidFraction)
}
