// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package repository

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/bond"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/builtin/delegation/delegator"
	"github.com/vechain/delegation/builtin/delegation/rewards"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/thor"
)

func orNil[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return s
}

func decodeInto[B any](raw []byte) (*B, error) {
	var b B
	if err := rlp.DecodeBytes(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func currencyText(c asset.Currency) string {
	text, _ := c.MarshalText()
	return string(text)
}

func parseCurrencies(texts []string) ([]asset.Currency, error) {
	var out []asset.Currency
	for _, t := range texts {
		c, err := asset.ParseCurrency(t)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// delegatee

type delegateeBody struct {
	Address                thor.Address
	Account                thor.Address
	DelegationCurrency     asset.Currency
	RewardCurrencies       []asset.Currency
	UnbondingPeriod        uint64
	MaxUnbondLockInEntries uint64
	MaxRebondGraceEntries  uint64
	DelegationPool         thor.Address
	RewardPool             thor.Address
	RewardRemainderPool    thor.Address
	SlashedPool            thor.Address
	Delegators             []thor.Address
	TotalDelegated         *big.Int
	TotalShares            *big.Int
	Jailed                 bool
	JailedUntil            uint64
	Tombstoned             bool
	UnbondingRefs          []unbonding.Ref
	LatestRewardsHeight    uint64
	UnclaimedRewards       []*big.Int // aligned with RewardCurrencies
}

const (
	statusActive uint8 = iota
	statusJailed
	statusTombstoned
)

// legacy delegatees carry currencies as text and a single status byte.
type legacyDelegatee struct {
	Address                thor.Address
	Account                thor.Address
	DelegationCurrency     string
	RewardCurrencies       []string
	UnbondingPeriod        uint64
	MaxUnbondLockInEntries uint64
	MaxRebondGraceEntries  uint64
	DelegationPool         thor.Address
	RewardPool             thor.Address
	RewardRemainderPool    thor.Address
	SlashedPool            thor.Address
	Delegators             []thor.Address
	TotalDelegated         *big.Int
	TotalShares            *big.Int
	Status                 uint8
	JailedUntil            uint64
	UnbondingRefs          []unbonding.Ref
	LatestRewardsHeight    uint64
	UnclaimedRewards       []*big.Int
}

func unclaimedRaw(m *delegatee.Metadata) []*big.Int {
	var out []*big.Int
	for _, c := range m.RewardCurrencies {
		out = append(out, m.Unclaimed(c).Raw)
	}
	return out
}

func newDelegateeMetadata(
	cfg delegatee.Config,
	b *delegateeBody,
) (*delegatee.Metadata, error) {
	if len(b.UnclaimedRewards) != len(cfg.RewardCurrencies) {
		return nil, errors.Errorf("unclaimed rewards: want %d entries, got %d", len(cfg.RewardCurrencies), len(b.UnclaimedRewards))
	}
	m := &delegatee.Metadata{
		Address:             b.Address,
		Account:             b.Account,
		Config:              cfg,
		DelegationPool:      b.DelegationPool,
		RewardPool:          b.RewardPool,
		RewardRemainderPool: b.RewardRemainderPool,
		SlashedPool:         b.SlashedPool,
		Delegators:          orNil(b.Delegators),
		TotalDelegated:      asset.NewValue(cfg.DelegationCurrency, b.TotalDelegated),
		TotalShares:         b.TotalShares,
		Jailed:              b.Jailed,
		JailedUntil:         b.JailedUntil,
		Tombstoned:          b.Tombstoned,
		UnbondingRefs:       orNil(unbonding.Refs(b.UnbondingRefs)),
		LatestRewardsHeight: b.LatestRewardsHeight,
	}
	for i, c := range cfg.RewardCurrencies {
		m.UnclaimedRewards = append(m.UnclaimedRewards, asset.NewValue(c, b.UnclaimedRewards[i]))
	}
	return m, nil
}

var delegateeCodec = &codec[delegatee.Metadata]{
	name: "delegatee",
	toBody: func(m *delegatee.Metadata) any {
		return &delegateeBody{
			Address:                m.Address,
			Account:                m.Account,
			DelegationCurrency:     m.DelegationCurrency,
			RewardCurrencies:       m.RewardCurrencies,
			UnbondingPeriod:        m.UnbondingPeriod,
			MaxUnbondLockInEntries: m.MaxUnbondLockInEntries,
			MaxRebondGraceEntries:  m.MaxRebondGraceEntries,
			DelegationPool:         m.DelegationPool,
			RewardPool:             m.RewardPool,
			RewardRemainderPool:    m.RewardRemainderPool,
			SlashedPool:            m.SlashedPool,
			Delegators:             m.Delegators,
			TotalDelegated:         m.TotalDelegated.Raw,
			TotalShares:            m.TotalShares,
			Jailed:                 m.Jailed,
			JailedUntil:            m.JailedUntil,
			Tombstoned:             m.Tombstoned,
			UnbondingRefs:          m.UnbondingRefs,
			LatestRewardsHeight:    m.LatestRewardsHeight,
			UnclaimedRewards:       unclaimedRaw(m),
		}
	},
	fromBody: func(raw []byte) (*delegatee.Metadata, error) {
		b, err := decodeInto[delegateeBody](raw)
		if err != nil {
			return nil, err
		}
		return newDelegateeMetadata(delegatee.Config{
			DelegationCurrency:     b.DelegationCurrency,
			RewardCurrencies:       orNil(b.RewardCurrencies),
			UnbondingPeriod:        b.UnbondingPeriod,
			MaxUnbondLockInEntries: b.MaxUnbondLockInEntries,
			MaxRebondGraceEntries:  b.MaxRebondGraceEntries,
		}, b)
	},
	toLegacy: func(m *delegatee.Metadata) any {
		status := statusActive
		if m.Tombstoned {
			status = statusTombstoned
		} else if m.Jailed {
			status = statusJailed
		}
		var rewardCurrencies []string
		for _, c := range m.RewardCurrencies {
			rewardCurrencies = append(rewardCurrencies, currencyText(c))
		}
		return &legacyDelegatee{
			Address:                m.Address,
			Account:                m.Account,
			DelegationCurrency:     currencyText(m.DelegationCurrency),
			RewardCurrencies:       rewardCurrencies,
			UnbondingPeriod:        m.UnbondingPeriod,
			MaxUnbondLockInEntries: m.MaxUnbondLockInEntries,
			MaxRebondGraceEntries:  m.MaxRebondGraceEntries,
			DelegationPool:         m.DelegationPool,
			RewardPool:             m.RewardPool,
			RewardRemainderPool:    m.RewardRemainderPool,
			SlashedPool:            m.SlashedPool,
			Delegators:             m.Delegators,
			TotalDelegated:         m.TotalDelegated.Raw,
			TotalShares:            m.TotalShares,
			Status:                 status,
			JailedUntil:            m.JailedUntil,
			UnbondingRefs:          m.UnbondingRefs,
			LatestRewardsHeight:    m.LatestRewardsHeight,
			UnclaimedRewards:       unclaimedRaw(m),
		}
	},
	fromLegacy: func(raw []byte) (*delegatee.Metadata, error) {
		l, err := decodeInto[legacyDelegatee](raw)
		if err != nil {
			return nil, err
		}
		if l.Status > statusTombstoned {
			return nil, errors.Errorf("unknown status %d", l.Status)
		}
		dc, err := asset.ParseCurrency(l.DelegationCurrency)
		if err != nil {
			return nil, err
		}
		rcs, err := parseCurrencies(l.RewardCurrencies)
		if err != nil {
			return nil, err
		}
		return newDelegateeMetadata(delegatee.Config{
			DelegationCurrency:     dc,
			RewardCurrencies:       rcs,
			UnbondingPeriod:        l.UnbondingPeriod,
			MaxUnbondLockInEntries: l.MaxUnbondLockInEntries,
			MaxRebondGraceEntries:  l.MaxRebondGraceEntries,
		}, &delegateeBody{
			Address:             l.Address,
			Account:             l.Account,
			DelegationPool:      l.DelegationPool,
			RewardPool:          l.RewardPool,
			RewardRemainderPool: l.RewardRemainderPool,
			SlashedPool:         l.SlashedPool,
			Delegators:          l.Delegators,
			TotalDelegated:      l.TotalDelegated,
			TotalShares:         l.TotalShares,
			Jailed:              l.Status != statusActive,
			JailedUntil:         l.JailedUntil,
			Tombstoned:          l.Status == statusTombstoned,
			UnbondingRefs:       l.UnbondingRefs,
			LatestRewardsHeight: l.LatestRewardsHeight,
			UnclaimedRewards:    l.UnclaimedRewards,
		})
	},
}

// delegator

type delegatorBody struct {
	Address        thor.Address
	Account        thor.Address
	DelegationPool thor.Address
	RewardAddress  thor.Address
	Delegatees     []thor.Address
}

func decodeDelegator(raw []byte) (*delegator.Metadata, error) {
	b, err := decodeInto[delegatorBody](raw)
	if err != nil {
		return nil, err
	}
	return &delegator.Metadata{
		Address:        b.Address,
		Account:        b.Account,
		DelegationPool: b.DelegationPool,
		RewardAddress:  b.RewardAddress,
		Delegatees:     orNil(b.Delegatees),
	}, nil
}

// legacy delegators share the body layout without the envelope.
var delegatorCodec = &codec[delegator.Metadata]{
	name: "delegator",
	toBody: func(m *delegator.Metadata) any {
		return &delegatorBody{
			Address:        m.Address,
			Account:        m.Account,
			DelegationPool: m.DelegationPool,
			RewardAddress:  m.RewardAddress,
			Delegatees:     m.Delegatees,
		}
	},
	fromBody: decodeDelegator,
	toLegacy: func(m *delegator.Metadata) any {
		return &delegatorBody{m.Address, m.Account, m.DelegationPool, m.RewardAddress, m.Delegatees}
	},
	fromLegacy: decodeDelegator,
}

// bond

type bondBody struct {
	Share             *big.Int
	LastClaimedHeight uint64
}

func decodeBond(raw []byte) (*bond.Bond, error) {
	b, err := decodeInto[bondBody](raw)
	if err != nil {
		return nil, err
	}
	return bond.FromFields(b.Share, b.LastClaimedHeight), nil
}

func encodeBond(b *bond.Bond) any {
	return &bondBody{Share: b.Share(), LastClaimedHeight: b.LastClaimedHeight()}
}

var bondCodec = &codec[bond.Bond]{
	name:       "bond",
	toBody:     encodeBond,
	fromBody:   decodeBond,
	toLegacy:   encodeBond,
	fromLegacy: decodeBond,
}

// unbonding lock-in, legacy form is the bare entry list

var lockInCodec = &codec[unbonding.LockIn]{
	name: "unbond lock-in",
	toBody: func(l *unbonding.LockIn) any {
		return l
	},
	fromBody: func(raw []byte) (*unbonding.LockIn, error) {
		l, err := decodeInto[unbonding.LockIn](raw)
		if err != nil {
			return nil, err
		}
		l.Entries = orNil(l.Entries)
		return l, nil
	},
	toLegacy: func(l *unbonding.LockIn) any {
		return l.Entries
	},
	fromLegacy: func(raw []byte) (*unbonding.LockIn, error) {
		var entries []unbonding.Entry
		if err := rlp.DecodeBytes(raw, &entries); err != nil {
			return nil, err
		}
		return &unbonding.LockIn{Entries: orNil(entries)}, nil
	},
}

// rebond grace, legacy form is the bare entry list

var graceCodec = &codec[unbonding.Grace]{
	name: "rebond grace",
	toBody: func(g *unbonding.Grace) any {
		return g
	},
	fromBody: func(raw []byte) (*unbonding.Grace, error) {
		g, err := decodeInto[unbonding.Grace](raw)
		if err != nil {
			return nil, err
		}
		g.Entries = orNil(g.Entries)
		return g, nil
	},
	toLegacy: func(g *unbonding.Grace) any {
		return g.Entries
	},
	fromLegacy: func(raw []byte) (*unbonding.Grace, error) {
		var entries []unbonding.GraceEntry
		if err := rlp.DecodeBytes(raw, &entries); err != nil {
			return nil, err
		}
		return &unbonding.Grace{Entries: orNil(entries)}, nil
	},
}

// unbonding set, legacy form is the bare ref list

var setCodec = &codec[unbonding.Set]{
	name: "unbonding set",
	toBody: func(s *unbonding.Set) any {
		return s
	},
	fromBody: func(raw []byte) (*unbonding.Set, error) {
		s, err := decodeInto[unbonding.Set](raw)
		if err != nil {
			return nil, err
		}
		s.Refs = orNil(s.Refs)
		return s, nil
	},
	toLegacy: func(s *unbonding.Set) any {
		return []unbonding.Ref(s.Refs)
	},
	fromLegacy: func(raw []byte) (*unbonding.Set, error) {
		var refs []unbonding.Ref
		if err := rlp.DecodeBytes(raw, &refs); err != nil {
			return nil, err
		}
		return &unbonding.Set{Refs: orNil(unbonding.Refs(refs))}, nil
	},
}

// rewards record

type legacyReward struct {
	Currency string
	Amount   *big.Int
}

// legacy records use zero for "no previous record".
type legacyRecord struct {
	StartHeight     uint64
	TotalShares     *big.Int
	Delegators      []thor.Address
	Rewards         []legacyReward
	LastStartHeight uint64
}

var recordCodec = &codec[rewards.Record]{
	name: "rewards record",
	toBody: func(r *rewards.Record) any {
		return r
	},
	fromBody: func(raw []byte) (*rewards.Record, error) {
		r, err := decodeInto[rewards.Record](raw)
		if err != nil {
			return nil, err
		}
		r.Delegators = orNil(r.Delegators)
		r.Rewards = orNil(r.Rewards)
		return r, nil
	},
	toLegacy: func(r *rewards.Record) any {
		l := &legacyRecord{
			StartHeight: r.StartHeight,
			TotalShares: r.TotalShares,
			Delegators:  r.Delegators,
		}
		for _, v := range r.Rewards {
			l.Rewards = append(l.Rewards, legacyReward{Currency: currencyText(v.Currency), Amount: v.Raw})
		}
		if r.LastStartHeight != nil {
			l.LastStartHeight = *r.LastStartHeight
		}
		return l
	},
	fromLegacy: func(raw []byte) (*rewards.Record, error) {
		l, err := decodeInto[legacyRecord](raw)
		if err != nil {
			return nil, err
		}
		r := &rewards.Record{
			StartHeight: l.StartHeight,
			TotalShares: l.TotalShares,
			Delegators:  orNil(l.Delegators),
		}
		for _, lr := range l.Rewards {
			c, err := asset.ParseCurrency(lr.Currency)
			if err != nil {
				return nil, err
			}
			r.Rewards = append(r.Rewards, asset.NewValue(c, lr.Amount))
		}
		if l.LastStartHeight != 0 {
			last := l.LastStartHeight
			r.LastStartHeight = &last
		}
		return r, nil
	},
}
