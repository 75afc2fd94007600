// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/test/datagen"
	"github.com/vechain/delegation/thor"
)

func TestRewards_LumpSumChain(t *testing.T) {
	d := datagen.RandAddress()
	a, b := datagen.RandAddress(), datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 100).Mint(b, 100).
		Delegate(d, a, 100, 10).
		AssertShares(d, a, 100).
		Reward(d, 100)

	rec13, err := et.CollectRewards(d, 13)
	require.NoError(t, err)
	assert.Equal(t, uint64(13), rec13.StartHeight)
	assert.Equal(t, int64(100), rec13.TotalShares.Int64())
	assert.Equal(t, []thor.Address{a}, rec13.Delegators)
	assert.Equal(t, []asset.Value{vthoOf(100)}, rec13.Rewards)
	assert.Nil(t, rec13.LastStartHeight)

	et.Delegate(d, b, 100, 15).
		AssertShares(d, b, 100).
		AssertTotals(d, 200, 200).
		Reward(d, 200)

	rec20, err := et.CollectRewards(d, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(200), rec20.TotalShares.Int64())
	assert.ElementsMatch(t, []thor.Address{a, b}, rec20.Delegators)
	assert.Equal(t, 0, rec20.Rewards[0].Cmp(vthoOf(200)), "only the new deposit is collected")
	require.NotNil(t, rec20.LastStartHeight)
	assert.Equal(t, uint64(13), *rec20.LastStartHeight)

	latest, err := et.LatestRewardsRecord(d)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), latest.StartHeight)

	paid, err := et.ClaimReward(d, a, 25)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, int64(200), paid[0].Raw.Int64())

	paid, err = et.ClaimReward(d, b, 25)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, int64(100), paid[0].Raw.Int64())

	et.AssertBalance(a, vtho, 200).
		AssertBalance(b, vtho, 100).
		AssertBalance(et.delegateeOf(d).RewardPool, vtho, 0)

	// claimed records lose the member, nothing is paid twice
	paid, err = et.ClaimReward(d, a, 26)
	require.NoError(t, err)
	assert.Empty(t, paid)
	rec, err := et.GetRewardsRecord(d, 13)
	require.NoError(t, err)
	assert.Empty(t, rec.Delegators)
	assert.Equal(t, int64(100), rec.TotalShares.Int64(), "records keep their original share total")
}

func TestRewards_Fairness(t *testing.T) {
	d := datagen.RandAddress()
	a, b, c := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 100).Mint(b, 100).Mint(c, 100).
		Delegate(d, a, 100, 1).
		Delegate(d, b, 100, 1).
		Reward(d, 100).
		Collect(d, 5)

	// leaving settles what was earned so far
	et.Undelegate(d, b, 100, 6).
		AssertBalance(b, vtho, 50).
		Delegate(d, c, 100, 7).
		Reward(d, 100).
		Collect(d, 10)

	paid, err := et.ClaimReward(d, a, 11)
	require.NoError(t, err)
	assert.Equal(t, []asset.Value{vthoOf(100)}, paid)

	paid, err = et.ClaimReward(d, b, 11)
	require.NoError(t, err)
	assert.Empty(t, paid, "left before the second record")

	paid, err = et.ClaimReward(d, c, 11)
	require.NoError(t, err)
	assert.Equal(t, []asset.Value{vthoOf(50)}, paid, "joined after the first record")

	paid, err = et.ClaimReward(d, datagen.RandAddress(), 11)
	require.NoError(t, err)
	assert.Empty(t, paid, "never bonded")
}

func TestRewards_SettleOnShareChange(t *testing.T) {
	d := datagen.RandAddress()
	a, b := datagen.RandAddress(), datagen.RandAddress()

	et := newTest(t, testParams()).
		Mint(a, 300).Mint(b, 100).
		Delegate(d, a, 100, 1).
		Delegate(d, b, 100, 1).
		Reward(d, 100).
		Collect(d, 2)

	// a triples its bond; the first record is still paid on the old share count
	et.Delegate(d, a, 200, 3).
		AssertBalance(a, vtho, 50).
		Reward(d, 400).
		Collect(d, 4)

	paid, err := et.ClaimReward(d, a, 5)
	require.NoError(t, err)
	assert.Equal(t, []asset.Value{vthoOf(300)}, paid)
	paid, err = et.ClaimReward(d, b, 5)
	require.NoError(t, err)
	assert.Equal(t, []asset.Value{vthoOf(150)}, paid)

	et.AssertBalance(et.delegateeOf(d).RewardPool, vtho, 0)
	assert.Equal(t, 0, et.delegateeOf(d).Unclaimed(vtho).Sign())
}

func TestRewards_Remainder(t *testing.T) {
	d := datagen.RandAddress()
	members := datagen.RandAddresses(3)

	et := newTest(t, testParams())
	for _, m := range members {
		et.Mint(m, 1).Delegate(d, m, 1, 1)
	}
	et.Reward(d, 10).Collect(d, 2)

	dt := et.delegateeOf(d)
	et.AssertBalance(dt.RewardRemainderPool, vtho, 1).
		AssertBalance(dt.RewardPool, vtho, 9)
	assert.Equal(t, int64(9), dt.Unclaimed(vtho).Raw.Int64())

	// nothing new arrived
	rec, err := et.CollectRewards(d, 3)
	require.NoError(t, err)
	assert.True(t, rec.Rewards[0].IsZero())

	for _, m := range members {
		paid, err := et.ClaimReward(d, m, 4)
		require.NoError(t, err)
		assert.Equal(t, []asset.Value{vthoOf(3)}, paid)
	}
	et.AssertBalance(dt.RewardPool, vtho, 0)
}

func TestRewards_NoShares(t *testing.T) {
	d := datagen.RandAddress()
	et := newTest(t, testParams())
	require.NoError(t, et.AddDelegatee(d, testParams().Config()))

	et.Reward(d, 10).Collect(d, 1)
	et.AssertBalance(et.delegateeOf(d).RewardRemainderPool, vtho, 10)
}

func TestCollectRewards_Guards(t *testing.T) {
	d := datagen.RandAddress()
	a := datagen.RandAddress()
	et := newTest(t, testParams()).Mint(a, 10).Delegate(d, a, 10, 1).Collect(d, 5)

	_, err := et.CollectRewards(d, 5)
	assert.ErrorIs(t, err, reverts.ErrHeightRegression)
	_, err = et.CollectRewards(d, 4)
	assert.ErrorIs(t, err, reverts.ErrHeightRegression)
	_, err = et.CollectRewards(d, 0)
	assert.ErrorIs(t, err, reverts.ErrZeroHeight)

	_, err = et.ClaimReward(datagen.RandAddress(), a, 6)
	assert.ErrorIs(t, err, reverts.ErrUnknownDelegatee)
}
