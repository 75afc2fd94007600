// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/thor"
)

// Released is the matured value popped from one queue.
type Released struct {
	Delegatee thor.Address
	Delegator thor.Address
	Kind      unbonding.Kind
	Value     asset.Value
}

// ReleaseUnbondings pops every entry matured at height across all delegatees. Lock-in value is
// paid back to the delegator's pool; grace entries only end the slashing exposure of the source.
func (e *Engine) ReleaseUnbondings(height uint64) ([]Released, error) {
	var released []Released
	err := e.run("release_unbondings", func() error {
		if err := checkHeight(height); err != nil {
			return err
		}
		matured, err := e.repo.MaturedUnbondingRefs(height)
		if err != nil {
			return err
		}
		var done []unbonding.Ref
		for _, ref := range matured {
			if containsQueue(done, ref) {
				continue
			}
			done = append(done, ref)

			r, err := e.releaseQueue(ref, height)
			if err != nil {
				return err
			}
			released = append(released, r)
		}
		metricReleasedEntries().Observe(int64(len(released)))
		if len(released) > 0 {
			logger.Debug("unbondings released", "height", height, "queues", len(released))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

func containsQueue(refs []unbonding.Ref, ref unbonding.Ref) bool {
	for _, r := range refs {
		if r.SameQueue(ref) {
			return true
		}
	}
	return false
}

func (e *Engine) releaseQueue(ref unbonding.Ref, height uint64) (Released, error) {
	dt, err := e.delegatee(ref.Delegatee)
	if err != nil {
		return Released{}, err
	}

	var (
		value      *big.Int
		maturities []uint64
	)
	switch ref.Kind {
	case unbonding.KindLockIn:
		lockIn, err := e.lockIn(ref.Delegatee, ref.Delegator)
		if err != nil {
			return Released{}, err
		}
		value = lockIn.Release(height)
		if value.Sign() > 0 {
			dr, err := e.repo.GetDelegator(ref.Delegator)
			if err != nil {
				return Released{}, errors.Wrap(err, "failed to get delegator")
			}
			v := asset.NewValue(dt.DelegationCurrency, value)
			if err := e.ledger.Transfer(dt.DelegationPool, dr.DelegationPool, v); err != nil {
				return Released{}, errors.Wrap(err, "failed to transfer released value")
			}
		}
		if err := e.repo.SetUnbondLockIn(ref.Delegatee, ref.Delegator, lockIn); err != nil {
			return Released{}, errors.Wrap(err, "failed to save unbond lock-in")
		}
		maturities = lockIn.Maturities()
	case unbonding.KindGrace:
		grace, err := e.grace(ref.Delegatee, ref.Delegator)
		if err != nil {
			return Released{}, err
		}
		value = grace.Release(height)
		if err := e.repo.SetRebondGrace(ref.Delegatee, ref.Delegator, grace); err != nil {
			return Released{}, errors.Wrap(err, "failed to save rebond grace")
		}
		maturities = grace.Maturities()
	default:
		return Released{}, errors.Errorf("unknown unbonding kind %d", ref.Kind)
	}

	if err := e.syncRefs(dt, ref.Delegator, ref.Kind, maturities); err != nil {
		return Released{}, err
	}
	if err := e.saveDelegatee(dt); err != nil {
		return Released{}, err
	}

	r := Released{
		Delegatee: ref.Delegatee,
		Delegator: ref.Delegator,
		Kind:      ref.Kind,
		Value:     asset.NewValue(dt.DelegationCurrency, value),
	}
	e.emit(&Event{Name: EventUnbondingReleased, Height: height, Delegatee: r.Delegatee, Delegator: r.Delegator, Amount: r.Value, Detail: ref.Kind.String()})
	return r, nil
}
