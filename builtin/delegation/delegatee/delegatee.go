// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegatee

import (
	"math"
	"math/big"
	"slices"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/thor"
)

// MaxUnbondingPeriod bounds the unbonding period so maturity heights stay far from overflowing.
const MaxUnbondingPeriod = uint64(math.MaxUint32)

// Config is fixed when the delegatee is created.
type Config struct {
	DelegationCurrency     asset.Currency
	RewardCurrencies       []asset.Currency // sorted, no duplicates
	UnbondingPeriod        uint64
	MaxUnbondLockInEntries uint64
	MaxRebondGraceEntries  uint64
}

// Validate checks the config and normalizes the reward currency set.
func (c *Config) Validate() error {
	if c.DelegationCurrency.IsZero() {
		return reverts.ErrInvalidConfig
	}
	if c.MaxUnbondLockInEntries == 0 || c.MaxRebondGraceEntries == 0 {
		return reverts.ErrInvalidConfig
	}
	if c.UnbondingPeriod > MaxUnbondingPeriod {
		return reverts.ErrInvalidConfig
	}
	for _, cur := range c.RewardCurrencies {
		if cur.IsZero() {
			return reverts.ErrInvalidConfig
		}
	}
	asset.SortCurrencies(c.RewardCurrencies)
	c.RewardCurrencies = slices.Compact(c.RewardCurrencies)
	return nil
}

// Metadata is the bonding pool owned by a delegatee.
type Metadata struct {
	Address thor.Address
	Account thor.Address
	Config

	DelegationPool      thor.Address
	RewardPool          thor.Address
	RewardRemainderPool thor.Address
	SlashedPool         thor.Address

	Delegators     []thor.Address // sorted
	TotalDelegated asset.Value
	TotalShares    *big.Int

	Jailed      bool
	JailedUntil uint64
	Tombstoned  bool

	UnbondingRefs unbonding.Refs

	LatestRewardsHeight uint64        // start height of the newest rewards record, zero if none
	UnclaimedRewards    []asset.Value // collected but not yet claimed, one per reward currency
}

// New creates an empty delegatee. All pool addresses derive from addr.
func New(addr thor.Address, cfg Config) *Metadata {
	cfg.RewardCurrencies = slices.Clone(cfg.RewardCurrencies)
	m := &Metadata{
		Address:             addr,
		Account:             thor.DeriveAddress("delegatee", addr),
		Config:              cfg,
		DelegationPool:      thor.DeriveAddress("delegatee-delegation-pool", addr),
		RewardPool:          thor.DeriveAddress("delegatee-reward-pool", addr),
		RewardRemainderPool: thor.DeriveAddress("delegatee-reward-remainder-pool", addr),
		SlashedPool:         thor.DeriveAddress("delegatee-slashed-pool", addr),
		TotalDelegated:      asset.Zero(cfg.DelegationCurrency),
		TotalShares:         new(big.Int),
	}
	for _, c := range cfg.RewardCurrencies {
		m.UnclaimedRewards = append(m.UnclaimedRewards, asset.Zero(c))
	}
	return m
}

// SharesFromValue returns the shares minted for value at the current share price, rounded down.
func (m *Metadata) SharesFromValue(value *big.Int) *big.Int {
	if m.TotalShares.Sign() == 0 {
		return new(big.Int).Set(value)
	}
	if m.TotalDelegated.Sign() == 0 {
		// every share has been slashed to nothing
		return new(big.Int)
	}
	shares := new(big.Int).Mul(m.TotalShares, value)
	return shares.Quo(shares, m.TotalDelegated.Raw)
}

// ValueFromShares returns the value redeemable for share, rounded down.
func (m *Metadata) ValueFromShares(share *big.Int) *big.Int {
	if share.Cmp(m.TotalShares) == 0 {
		return new(big.Int).Set(m.TotalDelegated.Raw)
	}
	if m.TotalShares.Sign() == 0 {
		return new(big.Int)
	}
	value := new(big.Int).Mul(m.TotalDelegated.Raw, share)
	return value.Quo(value, m.TotalShares)
}

// MaturityAt returns the height at which value unbonded at height is released.
func (m *Metadata) MaturityAt(height uint64) (uint64, error) {
	if height > math.MaxUint64-m.UnbondingPeriod {
		return 0, reverts.ErrHeightOverflow
	}
	return height + m.UnbondingPeriod, nil
}

// AddStake mints shares for value.
func (m *Metadata) AddStake(value, shares *big.Int) {
	m.TotalDelegated = m.TotalDelegated.Add(asset.NewValue(m.DelegationCurrency, value))
	m.TotalShares = new(big.Int).Add(m.TotalShares, shares)
}

// RemoveStake burns shares redeemed for value.
func (m *Metadata) RemoveStake(value, shares *big.Int) {
	m.TotalDelegated = m.TotalDelegated.Sub(asset.NewValue(m.DelegationCurrency, value))
	m.TotalShares = new(big.Int).Sub(m.TotalShares, shares)
}

// Power is the delegated value counted for consensus weight.
func (m *Metadata) Power() *big.Int {
	if m.Jailed {
		return new(big.Int)
	}
	return new(big.Int).Set(m.TotalDelegated.Raw)
}

func (m *Metadata) HasDelegator(addr thor.Address) bool {
	_, found := slices.BinarySearchFunc(m.Delegators, addr, thor.Address.Compare)
	return found
}

func (m *Metadata) AddDelegator(addr thor.Address) {
	if i, found := slices.BinarySearchFunc(m.Delegators, addr, thor.Address.Compare); !found {
		m.Delegators = slices.Insert(m.Delegators, i, addr)
	}
}

func (m *Metadata) RemoveDelegator(addr thor.Address) {
	if i, found := slices.BinarySearchFunc(m.Delegators, addr, thor.Address.Compare); found {
		m.Delegators = slices.Delete(m.Delegators, i, i+1)
	}
}

// Unclaimed returns the outstanding entitlement in currency.
func (m *Metadata) Unclaimed(currency asset.Currency) asset.Value {
	for _, v := range m.UnclaimedRewards {
		if v.Currency == currency {
			return v
		}
	}
	return asset.Zero(currency)
}

// SetUnclaimed replaces the outstanding entitlement in currency.
func (m *Metadata) SetUnclaimed(value asset.Value) {
	for i, v := range m.UnclaimedRewards {
		if v.Currency == value.Currency {
			m.UnclaimedRewards[i] = value
			return
		}
	}
	m.UnclaimedRewards = append(m.UnclaimedRewards, value)
}

// IsRewardCurrency reports whether currency is accepted as reward.
func (m *Metadata) IsRewardCurrency(currency asset.Currency) bool {
	return slices.Contains(m.RewardCurrencies, currency)
}

// QueueRefs returns the distinct queues with outstanding entries of the given kind.
func (m *Metadata) QueueRefs(kind unbonding.Kind) []unbonding.Ref {
	var out []unbonding.Ref
	for _, r := range m.UnbondingRefs {
		if r.Kind != kind {
			continue
		}
		if slices.ContainsFunc(out, r.SameQueue) {
			continue
		}
		out = append(out, r)
	}
	return out
}
