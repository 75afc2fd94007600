// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/bond"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/builtin/delegation/delegator"
	"github.com/vechain/delegation/builtin/delegation/repository"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/builtin/delegation/rewards"
	"github.com/vechain/delegation/thor"
)

// CollectRewards snapshots what reached the reward pool of dt since the previous collection into
// a new rewards record starting at height. Every member's floor entitlement is reserved in the
// pool and the rounding dust moves to the reward remainder pool.
func (e *Engine) CollectRewards(dtAddr thor.Address, height uint64) (*rewards.Record, error) {
	var rec *rewards.Record
	err := e.run("collect_rewards", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		if height <= dt.LatestRewardsHeight {
			return reverts.ErrHeightRegression
		}

		collected := make([]asset.Value, 0, len(dt.RewardCurrencies))
		for _, c := range dt.RewardCurrencies {
			bal, err := e.ledger.Balance(dt.RewardPool, c)
			if err != nil {
				return errors.Wrap(err, "failed to get reward pool balance")
			}
			delta := bal.Sub(dt.Unclaimed(c))
			if delta.Sign() < 0 {
				return errors.Errorf("reward pool holds %v, below the unclaimed %v", bal, dt.Unclaimed(c))
			}
			collected = append(collected, delta)
		}

		var last *uint64
		if dt.LatestRewardsHeight != 0 {
			prev := dt.LatestRewardsHeight
			last = &prev
		}
		rec = rewards.New(height, dt.TotalShares, dt.Delegators, collected, last)

		owed, err := e.entitlements(dt, rec)
		if err != nil {
			return err
		}
		for i, delta := range collected {
			dust := delta.Sub(owed[i])
			if dust.Sign() > 0 {
				if err := e.ledger.Transfer(dt.RewardPool, dt.RewardRemainderPool, dust); err != nil {
					return errors.Wrap(err, "failed to transfer reward remainder")
				}
			}
			dt.SetUnclaimed(dt.Unclaimed(delta.Currency).Add(owed[i]))
			e.emit(&Event{Name: EventRewardsCollected, Height: height, Delegatee: dtAddr, Amount: delta, Detail: "remainder=" + dust.String()})
		}

		dt.LatestRewardsHeight = height
		if err := e.repo.SetRewardsRecord(dtAddr, rec); err != nil {
			return errors.Wrap(err, "failed to save rewards record")
		}
		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		logger.Debug("rewards collected", "delegatee", dtAddr, "height", height, "members", len(rec.Delegators))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// entitlements sums the floor reward of every member of rec, per reward of rec.
func (e *Engine) entitlements(dt *delegatee.Metadata, rec *rewards.Record) ([]asset.Value, error) {
	owed := make([]asset.Value, len(rec.Rewards))
	for i, v := range rec.Rewards {
		owed[i] = asset.Zero(v.Currency)
	}
	for _, member := range rec.Delegators {
		b, err := e.repo.GetBond(dt.Address, member)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get bond of %v", member)
		}
		for i, v := range rec.RewardFor(b.Share()) {
			owed[i] = owed[i].Add(v)
		}
	}
	return owed, nil
}

// ClaimReward pays the delegator every reward owed by dt and returns the amounts paid. A delegator
// that never bonded with dt is paid nothing.
func (e *Engine) ClaimReward(dtAddr, drAddr thor.Address, height uint64) ([]asset.Value, error) {
	var paid []asset.Value
	err := e.run("claim_reward", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		b, err := e.repo.GetBond(dtAddr, drAddr)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		dr, err := e.repo.GetDelegator(drAddr)
		if err != nil {
			return err
		}
		if paid, err = e.settle(dt, dr, b, height); err != nil {
			return err
		}
		if err := e.savePair(dt, dr, b); err != nil {
			return err
		}
		return e.saveDelegatee(dt)
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// settle pays the bond its reward from every record it is still a member of and marks it settled
// at height. Records are visited newest first and the walk stops at the last settled height.
func (e *Engine) settle(dt *delegatee.Metadata, dr *delegator.Metadata, b *bond.Bond, height uint64) ([]asset.Value, error) {
	var owed []asset.Value
	for h, ok := dt.LatestRewardsHeight, dt.LatestRewardsHeight != 0; ok && h >= b.LastClaimedHeight(); {
		rec, err := e.repo.GetRewardsRecord(dt.Address, h)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get rewards record at %d", h)
		}
		if rec.HasDelegator(dr.Address) {
			for _, v := range rec.RewardFor(b.Share()) {
				owed = addValue(owed, v)
			}
			rec.RemoveDelegator(dr.Address)
			if err := e.repo.SetRewardsRecord(dt.Address, rec); err != nil {
				return nil, errors.Wrap(err, "failed to save rewards record")
			}
		}
		h, ok = rec.Previous()
	}

	var paid []asset.Value
	for _, v := range owed {
		if v.Sign() == 0 {
			continue
		}
		if err := e.ledger.Transfer(dt.RewardPool, dr.RewardAddress, v); err != nil {
			return nil, errors.Wrap(err, "failed to transfer reward")
		}
		dt.SetUnclaimed(dt.Unclaimed(v.Currency).Sub(v))
		paid = append(paid, v)
		e.emit(&Event{Name: EventRewardClaimed, Height: height, Delegatee: dt.Address, Delegator: dr.Address, Amount: v})
	}
	b.Settle(height)
	return paid, nil
}

func addValue(values []asset.Value, v asset.Value) []asset.Value {
	for i, existing := range values {
		if existing.Currency == v.Currency {
			values[i] = existing.Add(v)
			return values
		}
	}
	return append(values, asset.NewValue(v.Currency, v.Raw))
}
