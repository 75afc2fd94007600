// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"
	"strconv"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/bond"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/builtin/delegation/delegator"
	"github.com/vechain/delegation/builtin/delegation/repository"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/thor"
)

// AddDelegatee registers a delegatee with its own config instead of the default params.
func (e *Engine) AddDelegatee(addr thor.Address, cfg delegatee.Config) error {
	return e.run("add_delegatee", func() error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if _, err := e.repo.GetDelegatee(addr); err == nil {
			return reverts.ErrDelegateeExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := e.repo.AddDelegatee(delegatee.New(addr, cfg)); err != nil {
			return errors.Wrap(err, "failed to add delegatee")
		}
		logger.Info("delegatee added", "delegatee", addr, "currency", cfg.DelegationCurrency)
		return nil
	})
}

// SetRewardAddress changes where the delegator's claimed rewards go.
func (e *Engine) SetRewardAddress(dr, rewardAddr thor.Address) error {
	return e.run("set_reward_address", func() error {
		m, err := e.delegatorOrNew(dr)
		if err != nil {
			return err
		}
		m.RewardAddress = rewardAddr
		return e.repo.SetDelegator(m)
	})
}

// Delegate bonds value from the delegator's pool into dt and returns the minted shares.
func (e *Engine) Delegate(dtAddr, drAddr thor.Address, value asset.Value, height uint64) (*big.Int, error) {
	var shares *big.Int
	err := e.run("delegate", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		if value.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		dt, err := e.delegateeOrNew(dtAddr)
		if err != nil {
			return err
		}
		if value.Currency != dt.DelegationCurrency {
			return reverts.ErrCurrencyMismatch
		}
		if dt.Tombstoned {
			return reverts.ErrTombstoned
		}
		if dt.Jailed {
			return reverts.ErrJailed
		}
		dr, err := e.delegatorOrNew(drAddr)
		if err != nil {
			return err
		}
		b, err := e.bondOrNew(dtAddr, drAddr, height)
		if err != nil {
			return err
		}
		if _, err := e.settle(dt, dr, b, height); err != nil {
			return err
		}

		shares = dt.SharesFromValue(value.Raw)
		if shares.Sign() == 0 {
			return reverts.ErrZeroShares
		}
		if err := e.ledger.Transfer(dr.DelegationPool, dt.DelegationPool, value); err != nil {
			return errors.Wrap(err, "failed to transfer delegation")
		}
		b.AddShare(shares)
		dt.AddStake(value.Raw, shares)
		join(dt, dr)

		if err := e.savePair(dt, dr, b); err != nil {
			return err
		}
		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		e.emit(&Event{Name: EventDelegated, Height: height, Delegatee: dtAddr, Delegator: drAddr, Amount: value, Detail: "shares=" + shares.String()})
		logger.Debug("delegated", "delegatee", dtAddr, "delegator", drAddr, "value", value, "shares", shares)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// Undelegate burns share from the bond and locks its value in until the unbonding period ends.
// It returns the locked value and its maturity height.
func (e *Engine) Undelegate(dtAddr, drAddr thor.Address, share *big.Int, height uint64) (asset.Value, uint64, error) {
	var (
		value    asset.Value
		maturity uint64
	)
	err := e.run("undelegate", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		if share == nil || share.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		dr, b, err := e.existingPair(dtAddr, drAddr, share)
		if err != nil {
			return err
		}
		lockIn, err := e.lockIn(dtAddr, drAddr)
		if err != nil {
			return err
		}
		if lockIn.IsFull(dt.MaxUnbondLockInEntries) {
			return reverts.ErrLockInFull
		}
		if maturity, err = dt.MaturityAt(height); err != nil {
			return err
		}
		if _, err := e.settle(dt, dr, b, height); err != nil {
			return err
		}

		value = asset.NewValue(dt.DelegationCurrency, dt.ValueFromShares(share))
		if err := b.SubShare(share); err != nil {
			return err
		}
		dt.RemoveStake(value.Raw, share)
		if value.Sign() > 0 {
			entry := unbonding.Entry{Value: value.Raw, StartHeight: height, MaturityHeight: maturity}
			if err := lockIn.LockIn(entry, dt.MaxUnbondLockInEntries); err != nil {
				return err
			}
		}
		leave(dt, dr, b)

		if err := e.repo.SetUnbondLockIn(dtAddr, drAddr, lockIn); err != nil {
			return errors.Wrap(err, "failed to save unbond lock-in")
		}
		if err := e.syncRefs(dt, drAddr, unbonding.KindLockIn, lockIn.Maturities()); err != nil {
			return err
		}
		if err := e.savePair(dt, dr, b); err != nil {
			return err
		}
		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		e.emit(&Event{Name: EventUndelegated, Height: height, Delegatee: dtAddr, Delegator: drAddr, Amount: value, Detail: "maturity=" + strconv.FormatUint(maturity, 10)})
		logger.Debug("undelegated", "delegatee", dtAddr, "delegator", drAddr, "value", value, "maturity", maturity)
		return nil
	})
	if err != nil {
		return asset.Value{}, 0, err
	}
	return value, maturity, nil
}

// Redelegate moves share worth of value from src to dst without releasing it. src keeps a grace
// entry so the moved value stays slashable there until the unbonding period ends.
func (e *Engine) Redelegate(srcAddr, dstAddr, drAddr thor.Address, share *big.Int, height uint64) (asset.Value, error) {
	var value asset.Value
	err := e.run("redelegate", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		if share == nil || share.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		if srcAddr == dstAddr {
			return reverts.ErrSameDelegatee
		}
		src, err := e.delegatee(srcAddr)
		if err != nil {
			return err
		}
		dst, err := e.delegateeOrNew(dstAddr)
		if err != nil {
			return err
		}
		if src.DelegationCurrency != dst.DelegationCurrency {
			return reverts.ErrCurrencyMismatch
		}
		if dst.Tombstoned {
			return reverts.ErrTombstoned
		}
		if dst.Jailed {
			return reverts.ErrJailed
		}
		dr, srcBond, err := e.existingPair(srcAddr, drAddr, share)
		if err != nil {
			return err
		}
		grace, err := e.grace(srcAddr, drAddr)
		if err != nil {
			return err
		}
		if grace.IsFull(src.MaxRebondGraceEntries) {
			return reverts.ErrGraceFull
		}
		maturity, err := src.MaturityAt(height)
		if err != nil {
			return err
		}
		dstBond, err := e.bondOrNew(dstAddr, drAddr, height)
		if err != nil {
			return err
		}
		if _, err := e.settle(src, dr, srcBond, height); err != nil {
			return err
		}
		if _, err := e.settle(dst, dr, dstBond, height); err != nil {
			return err
		}

		value = asset.NewValue(src.DelegationCurrency, src.ValueFromShares(share))
		dstShares := dst.SharesFromValue(value.Raw)
		if dstShares.Sign() == 0 {
			return reverts.ErrZeroShares
		}
		if err := srcBond.SubShare(share); err != nil {
			return err
		}
		src.RemoveStake(value.Raw, share)
		leave(src, dr, srcBond)

		if err := e.ledger.Transfer(src.DelegationPool, dst.DelegationPool, value); err != nil {
			return errors.Wrap(err, "failed to transfer redelegation")
		}
		dstBond.AddShare(dstShares)
		dst.AddStake(value.Raw, dstShares)
		join(dst, dr)

		entry := unbonding.GraceEntry{
			Destination:    dstAddr,
			Value:          value.Raw,
			StartHeight:    height,
			MaturityHeight: maturity,
		}
		if err := grace.Add(entry, src.MaxRebondGraceEntries); err != nil {
			return err
		}
		if err := e.repo.SetRebondGrace(srcAddr, drAddr, grace); err != nil {
			return errors.Wrap(err, "failed to save rebond grace")
		}
		if err := e.syncRefs(src, drAddr, unbonding.KindGrace, grace.Maturities()); err != nil {
			return err
		}
		if err := e.savePair(src, dr, srcBond); err != nil {
			return err
		}
		if err := e.savePair(dst, dr, dstBond); err != nil {
			return err
		}
		if err := e.saveDelegatee(src); err != nil {
			return err
		}
		if err := e.saveDelegatee(dst); err != nil {
			return err
		}
		e.emit(&Event{Name: EventRedelegated, Height: height, Delegatee: srcAddr, Delegator: drAddr, Amount: value, Detail: "destination=" + dstAddr.String()})
		logger.Debug("redelegated", "src", srcAddr, "dst", dstAddr, "delegator", drAddr, "value", value)
		return nil
	})
	if err != nil {
		return asset.Value{}, err
	}
	return value, nil
}

// CancelUndelegate re-bonds value from the pending lock-in, newest entries first, and returns the
// minted shares.
func (e *Engine) CancelUndelegate(dtAddr, drAddr thor.Address, value asset.Value, height uint64) (*big.Int, error) {
	var shares *big.Int
	err := e.run("cancel_undelegate", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		if value.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		if value.Currency != dt.DelegationCurrency {
			return reverts.ErrCurrencyMismatch
		}
		lockIn, err := e.lockIn(dtAddr, drAddr)
		if err != nil {
			return err
		}
		if lockIn.IsFull(dt.MaxUnbondLockInEntries) {
			return reverts.ErrLockInFull
		}
		if lockIn.Total().Cmp(value.Raw) < 0 {
			return reverts.ErrInsufficientUnbonding
		}
		dr, err := e.delegatorOrNew(drAddr)
		if err != nil {
			return err
		}
		b, err := e.bondOrNew(dtAddr, drAddr, height)
		if err != nil {
			return err
		}
		if _, err := e.settle(dt, dr, b, height); err != nil {
			return err
		}

		shares = dt.SharesFromValue(value.Raw)
		if shares.Sign() == 0 {
			return reverts.ErrZeroShares
		}
		if err := lockIn.Cancel(value.Raw); err != nil {
			return err
		}
		b.AddShare(shares)
		dt.AddStake(value.Raw, shares)
		join(dt, dr)

		if err := e.repo.SetUnbondLockIn(dtAddr, drAddr, lockIn); err != nil {
			return errors.Wrap(err, "failed to save unbond lock-in")
		}
		if err := e.syncRefs(dt, drAddr, unbonding.KindLockIn, lockIn.Maturities()); err != nil {
			return err
		}
		if err := e.savePair(dt, dr, b); err != nil {
			return err
		}
		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		e.emit(&Event{Name: EventUnbondingCancelled, Height: height, Delegatee: dtAddr, Delegator: drAddr, Amount: value, Detail: "shares=" + shares.String()})
		logger.Debug("undelegation cancelled", "delegatee", dtAddr, "delegator", drAddr, "value", value, "shares", shares)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// existingPair loads the delegator and its bond with dt, requiring at least share.
func (e *Engine) existingPair(dt, drAddr thor.Address, share *big.Int) (*delegator.Metadata, *bond.Bond, error) {
	dr, err := e.repo.GetDelegator(drAddr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, reverts.ErrInsufficientShare
	}
	if err != nil {
		return nil, nil, err
	}
	b, err := e.repo.GetBond(dt, drAddr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, reverts.ErrInsufficientShare
	}
	if err != nil {
		return nil, nil, err
	}
	if b.Share().Cmp(share) < 0 {
		return nil, nil, reverts.ErrInsufficientShare
	}
	return dr, b, nil
}
