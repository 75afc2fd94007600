// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/delegation/test/datagen"
	"github.com/vechain/delegation/thor"
)

type TestFunc func(t *testing.T)

type TestSequence struct {
	et *EngineTest

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(et *EngineTest) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), et: et}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Delegate(dt, dr thor.Address, amount int64, height uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		shares, err := st.et.Engine.Delegate(dt, dr, vetOf(amount), height)
		if err != nil {
			t.Fatalf("failed to delegate %d to %s: %v", amount, dt, err)
		}
		t.Logf("delegated %d to %s for %s shares", amount, dt, shares)
	})
}

func (st *TestSequence) Undelegate(dt, dr thor.Address, share int64, height uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		value, maturity, err := st.et.Engine.Undelegate(dt, dr, big.NewInt(share), height)
		if err != nil {
			t.Fatalf("failed to undelegate %d from %s: %v", share, dt, err)
		}
		t.Logf("undelegated %s from %s, matures at %d", value, dt, maturity)
	})
}

func (st *TestSequence) Redelegate(src, dst, dr thor.Address, share int64, height uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		value, err := st.et.Engine.Redelegate(src, dst, dr, big.NewInt(share), height)
		if err != nil {
			t.Fatalf("failed to redelegate %d from %s to %s: %v", share, src, dst, err)
		}
		t.Logf("redelegated %s from %s to %s", value, src, dst)
	})
}

func (st *TestSequence) Collect(dt thor.Address, height uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		rec, err := st.et.CollectRewards(dt, height)
		if err != nil {
			t.Fatalf("failed to collect rewards of %s: %v", dt, err)
		}
		t.Logf("collected %v for %d members of %s", rec.Rewards, len(rec.Delegators), dt)
	})
}

func (st *TestSequence) Reward(dt thor.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.et.Reward(dt, amount)
	})
}

func (st *TestSequence) Release(height uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		released, err := st.et.ReleaseUnbondings(height)
		if err != nil {
			t.Fatalf("failed to release at %d: %v", height, err)
		}
		t.Logf("released %d queues at %d", len(released), height)
	})
}

func (st *TestSequence) AssertConsistent(dt thor.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.et.AssertConsistent(dt)
	})
}

func (st *TestSequence) AssertBalance(addr thor.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.et.AssertBalance(addr, vet, amount)
	})
}

func (st *TestSequence) AssertRewards(addr thor.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.et.AssertBalance(addr, vtho, amount)
	})
}

func (st *TestSequence) Claim(dt, dr thor.Address, height uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		paid, err := st.et.ClaimReward(dt, dr, height)
		if err != nil {
			t.Fatalf("failed to claim from %s: %v", dt, err)
		}
		t.Logf("claimed %v from %s", paid, dt)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}

func TestSequence_Lifecycle(t *testing.T) {
	v1, v2 := datagen.RandAddress(), datagen.RandAddress()
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	et := newTest(t, testParams()).Mint(alice, 1000).Mint(bob, 1000)

	NewSequence(et).
		Delegate(v1, alice, 600, 1).
		Delegate(v1, bob, 400, 1).
		Reward(v1, 100).
		Collect(v1, 2).
		Redelegate(v1, v2, alice, 300, 3).
		Undelegate(v1, bob, 200, 3).
		AssertConsistent(v1).
		AssertConsistent(v2).
		Reward(v1, 50).
		Collect(v1, 4).
		Claim(v1, alice, 5).
		Claim(v1, bob, 5).
		// 60 + 300/500 * 50 and 40 + 200/500 * 50
		AssertRewards(alice, 90).
		AssertRewards(bob, 60).
		Release(13).
		AssertBalance(bob, 800).
		AssertBalance(alice, 400).
		AssertConsistent(v1).
		AssertConsistent(v2).
		Undelegate(v2, alice, 300, 14).
		Release(24).
		AssertBalance(alice, 700).
		AssertConsistent(v2).
		Run(t)
}

// TestSequence_Conservation drives random bonding against a few delegatees and checks the
// bookkeeping after every step.
func TestSequence_Conservation(t *testing.T) {
	params := testParams()
	params.MaxUnbondLockInEntries = 4
	params.MaxRebondGraceEntries = 4
	et := newTest(t, params)

	delegatees := datagen.RandAddresses(3)
	delegators := datagen.RandAddresses(5)
	for _, dr := range delegators {
		et.Mint(dr, 1_000_000)
	}

	for height := uint64(1); height <= 200; height++ {
		dt := delegatees[datagen.RandIntN(len(delegatees))]
		dr := delegators[datagen.RandIntN(len(delegators))]

		switch datagen.RandIntN(5) {
		case 0, 1:
			_, _ = et.Engine.Delegate(dt, dr, vetOf(datagen.RandAmount(10_000).Int64()), height)
		case 2:
			if b, err := et.GetBond(dt, dr); err == nil && !b.IsEmpty() {
				share := new(big.Int).Quo(b.Share(), big.NewInt(2))
				_, _, _ = et.Engine.Undelegate(dt, dr, share.Add(share, big.NewInt(1)), height)
			}
		case 3:
			other := delegatees[datagen.RandIntN(len(delegatees))]
			if b, err := et.GetBond(dt, dr); err == nil && !b.IsEmpty() && other != dt {
				_, _ = et.Engine.Redelegate(dt, other, dr, b.Share(), height)
			}
		case 4:
			_, err := et.ReleaseUnbondings(height)
			require.NoError(t, err)
		}

		for _, d := range delegatees {
			m, err := et.GetDelegatee(d)
			if err != nil {
				continue
			}
			sum := new(big.Int)
			for _, member := range m.Delegators {
				b, err := et.GetBond(d, member)
				require.NoError(t, err)
				sum.Add(sum, b.Share())
			}
			assert.Equal(t, 0, sum.Cmp(m.TotalShares), "shares of members must add up to the total at height %d", height)
			et.AssertConsistent(d)
		}
	}
}
