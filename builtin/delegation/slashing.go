// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"
	"strconv"

	"cosmossdk.io/math"
	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/builtin/delegation/repository"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/thor"
)

// mulFloor returns floor(x * fraction).
func mulFloor(x *big.Int, fraction math.LegacyDec) *big.Int {
	return fraction.MulInt(math.NewIntFromBigInt(x)).TruncateInt().BigInt()
}

// Slash cuts fraction of the value bonded to dt, of its pending lock-ins and of the value
// redelegated away from it that is still in grace. Entries matured at height are exempt. Share counts are untouched so every holder
// loses the same proportion. It returns the total value moved to the slashed pool.
func (e *Engine) Slash(dtAddr thor.Address, fraction math.LegacyDec, height uint64) (asset.Value, error) {
	var slashed asset.Value
	err := e.run("slash", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		if fraction.IsNil() || fraction.IsNegative() || fraction.GT(math.LegacyOneDec()) {
			return reverts.ErrInvalidFraction
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		slashed = asset.Zero(dt.DelegationCurrency)
		if fraction.IsZero() {
			return nil
		}

		cut := asset.NewValue(dt.DelegationCurrency, mulFloor(dt.TotalDelegated.Raw, fraction))
		dt.TotalDelegated = dt.TotalDelegated.Sub(cut)
		slashed = slashed.Add(cut)

		for _, ref := range dt.QueueRefs(unbonding.KindLockIn) {
			v, err := e.slashLockIn(dt, ref.Delegator, fraction, height)
			if err != nil {
				return err
			}
			slashed = slashed.Add(v)
		}
		if slashed.Sign() > 0 {
			if err := e.ledger.Transfer(dt.DelegationPool, dt.SlashedPool, slashed); err != nil {
				return errors.Wrap(err, "failed to transfer slashed value")
			}
		}

		for _, ref := range dt.QueueRefs(unbonding.KindGrace) {
			v, err := e.slashGrace(dt, ref.Delegator, fraction, height)
			if err != nil {
				return err
			}
			slashed = slashed.Add(v)
		}

		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		e.emit(&Event{Name: EventSlashed, Height: height, Delegatee: dtAddr, Amount: slashed, Detail: "fraction=" + fraction.String()})
		logger.Info("delegatee slashed", "delegatee", dtAddr, "fraction", fraction, "value", slashed)
		return nil
	})
	if err != nil {
		return asset.Value{}, err
	}
	return slashed, nil
}

// slashLockIn reduces every lock-in entry still pending at height in place. The cut still sits
// in the delegation pool and is moved out by the caller.
func (e *Engine) slashLockIn(dt *delegatee.Metadata, dr thor.Address, fraction math.LegacyDec, height uint64) (asset.Value, error) {
	lockIn, err := e.lockIn(dt.Address, dr)
	if err != nil {
		return asset.Value{}, err
	}
	total := new(big.Int)
	for i := range lockIn.Entries {
		if lockIn.Entries[i].MaturityHeight <= height {
			continue
		}
		cut := mulFloor(lockIn.Entries[i].Value, fraction)
		lockIn.Entries[i].Value = new(big.Int).Sub(lockIn.Entries[i].Value, cut)
		total.Add(total, cut)
	}
	if err := e.repo.SetUnbondLockIn(dt.Address, dr, lockIn); err != nil {
		return asset.Value{}, errors.Wrap(err, "failed to save unbond lock-in")
	}
	return asset.NewValue(dt.DelegationCurrency, total), nil
}

// slashGrace reduces every pending grace entry of the delegator by what could be taken back at
// its destination.
func (e *Engine) slashGrace(src *delegatee.Metadata, dr thor.Address, fraction math.LegacyDec, height uint64) (asset.Value, error) {
	grace, err := e.grace(src.Address, dr)
	if err != nil {
		return asset.Value{}, err
	}
	total := new(big.Int)
	for i := range grace.Entries {
		entry := &grace.Entries[i]
		if entry.MaturityHeight <= height {
			continue
		}
		cut := mulFloor(entry.Value, fraction)
		if cut.Sign() == 0 {
			continue
		}
		removed, err := e.slashRedelegated(src, entry.Destination, dr, cut, entry.StartHeight, height)
		if err != nil {
			return asset.Value{}, err
		}
		entry.Value = new(big.Int).Sub(entry.Value, removed)
		total.Add(total, removed)
	}
	if err := e.repo.SetRebondGrace(src.Address, dr, grace); err != nil {
		return asset.Value{}, errors.Wrap(err, "failed to save rebond grace")
	}
	return asset.NewValue(src.DelegationCurrency, total), nil
}

// slashRedelegated takes cut back at dst from value redelegated there at height since: from the
// delegator's bond first, then from its lock-in entries undelegated at dst since then. The value
// moves to the slashed pool of src. It returns the value actually taken.
func (e *Engine) slashRedelegated(src *delegatee.Metadata, dstAddr, drAddr thor.Address, cut *big.Int, since, height uint64) (*big.Int, error) {
	dst, err := e.delegatee(dstAddr)
	if err != nil {
		return nil, err
	}

	removed, drained, err := e.slashRedelegatedBond(dst, drAddr, cut, height)
	if err != nil {
		return nil, err
	}
	if rest := new(big.Int).Sub(cut, removed); drained && rest.Sign() > 0 {
		lockIn, err := e.lockIn(dstAddr, drAddr)
		if err != nil {
			return nil, err
		}
		if taken := lockIn.Take(rest, since, height); taken.Sign() > 0 {
			if err := e.repo.SetUnbondLockIn(dstAddr, drAddr, lockIn); err != nil {
				return nil, errors.Wrap(err, "failed to save unbond lock-in")
			}
			if err := e.syncRefs(dst, drAddr, unbonding.KindLockIn, lockIn.Maturities()); err != nil {
				return nil, err
			}
			removed.Add(removed, taken)
		}
	}

	if removed.Sign() > 0 {
		if err := e.ledger.Transfer(dst.DelegationPool, src.SlashedPool, asset.NewValue(dst.DelegationCurrency, removed)); err != nil {
			return nil, errors.Wrap(err, "failed to transfer slashed redelegation")
		}
	}
	if err := e.saveDelegatee(dst); err != nil {
		return nil, err
	}
	return removed, nil
}

// slashRedelegatedBond burns the shares worth cut from the delegator's bond at dst, or the whole
// bond when it is worth less. It returns the value burned and whether the bond could not cover cut.
func (e *Engine) slashRedelegatedBond(dst *delegatee.Metadata, drAddr thor.Address, cut *big.Int, height uint64) (*big.Int, bool, error) {
	b, err := e.repo.GetBond(dst.Address, drAddr)
	if errors.Is(err, repository.ErrNotFound) {
		return new(big.Int), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if b.IsEmpty() {
		return new(big.Int), true, nil
	}
	dr, err := e.repo.GetDelegator(drAddr)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get delegator")
	}
	if _, err := e.settle(dst, dr, b, height); err != nil {
		return nil, false, err
	}

	shares := b.Share()
	drained := true
	if worth := dst.ValueFromShares(shares); worth.Cmp(cut) > 0 {
		shares = new(big.Int).Mul(cut, dst.TotalShares)
		shares.Quo(shares, dst.TotalDelegated.Raw)
		drained = false
	}
	removed := dst.ValueFromShares(shares)
	if shares.Sign() > 0 {
		if err := b.SubShare(shares); err != nil {
			return nil, false, err
		}
		dst.RemoveStake(removed, shares)
		leave(dst, dr, b)
	}
	if err := e.savePair(dst, dr, b); err != nil {
		return nil, false, err
	}
	return removed, drained, nil
}

// Jail suspends dt until the given height. It keeps its bonds but has no power and takes no new
// ones. Jailing an already jailed delegatee only extends the term.
func (e *Engine) Jail(dtAddr thor.Address, until, height uint64) error {
	return e.run("jail", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		if until <= height {
			return reverts.ErrInvalidJailHeight
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		if dt.Tombstoned {
			return reverts.ErrTombstoned
		}
		dt.Jailed = true
		dt.JailedUntil = max(dt.JailedUntil, until)
		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		e.emit(&Event{Name: EventJailed, Height: height, Delegatee: dtAddr, Amount: asset.Zero(dt.DelegationCurrency), Detail: "until=" + strconv.FormatUint(dt.JailedUntil, 10)})
		logger.Info("delegatee jailed", "delegatee", dtAddr, "until", dt.JailedUntil)
		return nil
	})
}

// Unjail lifts a jail whose term has passed.
func (e *Engine) Unjail(dtAddr thor.Address, height uint64) error {
	return e.run("unjail", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		if dt.Tombstoned {
			return reverts.ErrTombstoned
		}
		if !dt.Jailed {
			return reverts.ErrNotJailed
		}
		if height < dt.JailedUntil {
			return reverts.ErrStillJailed
		}
		dt.Jailed = false
		dt.JailedUntil = 0
		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		e.emit(&Event{Name: EventUnjailed, Height: height, Delegatee: dtAddr, Amount: asset.Zero(dt.DelegationCurrency)})
		logger.Info("delegatee unjailed", "delegatee", dtAddr)
		return nil
	})
}

// Tombstone jails dt forever and closes it to new bonds. Existing delegators can still leave.
func (e *Engine) Tombstone(dtAddr thor.Address, height uint64) error {
	return e.run("tombstone", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		dt, err := e.delegatee(dtAddr)
		if err != nil {
			return err
		}
		if dt.Tombstoned {
			return reverts.ErrTombstoned
		}
		dt.Jailed = true
		dt.JailedUntil = thor.MaxHeight
		dt.Tombstoned = true
		if err := e.saveDelegatee(dt); err != nil {
			return err
		}
		e.emit(&Event{Name: EventTombstoned, Height: height, Delegatee: dtAddr, Amount: asset.Zero(dt.DelegationCurrency)})
		logger.Info("delegatee tombstoned", "delegatee", dtAddr)
		return nil
	})
}
