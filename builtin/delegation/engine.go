// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegation implements a share based delegation ledger: bonding, unbonding with a
// lock-in period, lump sum reward distribution and slashing.
package delegation

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/bond"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/builtin/delegation/delegator"
	"github.com/vechain/delegation/builtin/delegation/repository"
	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/builtin/delegation/rewards"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/builtin/solidity"
	"github.com/vechain/delegation/log"
	"github.com/vechain/delegation/state"
	"github.com/vechain/delegation/thor"
)

// Address is the account the engine keeps its records under.
var Address = thor.BytesToAddress([]byte("Delegation"))

var logger = log.WithContext("pkg", "delegation")

func SetLogger(l log.Logger) {
	logger = l
}

// Engine implements the delegation ledger. Every state changing call runs to completion or
// leaves the state untouched.
type Engine struct {
	params Params
	state  *state.State
	repo   *repository.Repository
	ledger asset.Ledger

	events []*Event
}

// New creates an engine keeping its records under addr. ledger must live on the same state
// for failed calls to roll back value movements.
func New(addr thor.Address, st *state.State, ledger asset.Ledger, params Params) *Engine {
	return &Engine{
		params: params,
		state:  st,
		repo:   repository.New(solidity.NewContext(addr, st)),
		ledger: ledger,
	}
}

func (e *Engine) Params() Params {
	return e.params
}

// run executes op under a state checkpoint.
func (e *Engine) run(op string, fn func() error) error {
	rev := e.state.NewCheckpoint()
	n := len(e.events)

	err := fn()
	if err == nil {
		metricOperationCount().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
		return nil
	}

	e.state.RevertTo(rev)
	e.events = e.events[:n]
	if reverts.IsRevertErr(err) {
		logger.Info("operation rejected", "op", op, "err", err)
		metricOperationCount().AddWithLabel(1, map[string]string{"op": op, "result": "rejected"})
	} else {
		logger.Error("operation failed", "op", op, "err", err)
		metricOperationCount().AddWithLabel(1, map[string]string{"op": op, "result": "failed"})
	}
	return err
}

func checkHeight(height uint64) error {
	if height == 0 {
		return reverts.ErrZeroHeight
	}
	return nil
}

func (e *Engine) delegatee(addr thor.Address) (*delegatee.Metadata, error) {
	m, err := e.repo.GetDelegatee(addr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errors.WithMessagef(reverts.ErrUnknownDelegatee, "delegatee %v", addr)
	}
	return m, err
}

// delegateeOrNew loads addr or registers it with the default params.
func (e *Engine) delegateeOrNew(addr thor.Address) (*delegatee.Metadata, error) {
	m, err := e.repo.GetDelegatee(addr)
	if !errors.Is(err, repository.ErrNotFound) {
		return m, err
	}
	cfg := e.params.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m = delegatee.New(addr, cfg)
	if err := e.repo.AddDelegatee(m); err != nil {
		return nil, err
	}
	logger.Debug("delegatee created", "delegatee", addr)
	return m, nil
}

func (e *Engine) delegatorOrNew(addr thor.Address) (*delegator.Metadata, error) {
	m, err := e.repo.GetDelegator(addr)
	if errors.Is(err, repository.ErrNotFound) {
		return delegator.New(addr), nil
	}
	return m, err
}

// bondOrNew loads the bond of the pair. A new bond starts settled at height.
func (e *Engine) bondOrNew(dt, dr thor.Address, height uint64) (*bond.Bond, error) {
	b, err := e.repo.GetBond(dt, dr)
	if errors.Is(err, repository.ErrNotFound) {
		return bond.FromFields(nil, height), nil
	}
	return b, err
}

func (e *Engine) lockIn(dt, dr thor.Address) (*unbonding.LockIn, error) {
	l, err := e.repo.GetUnbondLockIn(dt, dr)
	if errors.Is(err, repository.ErrNotFound) {
		return &unbonding.LockIn{}, nil
	}
	return l, err
}

func (e *Engine) grace(dt, dr thor.Address) (*unbonding.Grace, error) {
	g, err := e.repo.GetRebondGrace(dt, dr)
	if errors.Is(err, repository.ErrNotFound) {
		return &unbonding.Grace{}, nil
	}
	return g, err
}

// join records the pair as bonded on both sides.
func join(dt *delegatee.Metadata, dr *delegator.Metadata) {
	dt.AddDelegator(dr.Address)
	dr.AddDelegatee(dt.Address)
}

// leave forgets the pair once the bond is empty.
func leave(dt *delegatee.Metadata, dr *delegator.Metadata, b *bond.Bond) {
	if !b.IsEmpty() {
		return
	}
	dt.RemoveDelegator(dr.Address)
	dr.RemoveDelegatee(dt.Address)
}

func (e *Engine) saveDelegatee(m *delegatee.Metadata) error {
	if err := e.repo.SetDelegatee(m); err != nil {
		return errors.Wrap(err, "failed to save delegatee")
	}
	metricDelegatorSetSize().Observe(int64(len(m.Delegators)))
	return nil
}

// savePair persists the delegator and its bond with dt.
func (e *Engine) savePair(dt *delegatee.Metadata, dr *delegator.Metadata, b *bond.Bond) error {
	if err := e.repo.SetDelegator(dr); err != nil {
		return errors.Wrap(err, "failed to save delegator")
	}
	if err := e.repo.SetBond(dt.Address, dr.Address, b); err != nil {
		return errors.Wrap(err, "failed to save bond")
	}
	return nil
}

// syncRefs rewrites the refs of one queue in the delegatee and in the global index. Only the
// buckets of maturities that appear or disappear are touched.
func (e *Engine) syncRefs(dt *delegatee.Metadata, dr thor.Address, kind unbonding.Kind, maturities []uint64) error {
	ref := unbonding.Ref{Delegatee: dt.Address, Delegator: dr, Kind: kind}
	old := dt.UnbondingRefs.Maturities(ref)
	dt.UnbondingRefs = dt.UnbondingRefs.Sync(ref, maturities)

	for _, m := range old {
		if slices.Contains(maturities, m) {
			continue
		}
		ref.Maturity = m
		if err := e.repo.RemoveUnbondingRef(ref); err != nil {
			return err
		}
	}
	for _, m := range maturities {
		if slices.Contains(old, m) {
			continue
		}
		ref.Maturity = m
		if err := e.repo.AddUnbondingRef(ref); err != nil {
			return err
		}
	}

	n, err := e.repo.UnbondingRefCount()
	if err != nil {
		return err
	}
	metricUnbondingRefs().Set(int64(n))
	return nil
}

//
// Getters - no state change
//

func (e *Engine) GetDelegatee(addr thor.Address) (*delegatee.Metadata, error) {
	return e.repo.GetDelegatee(addr)
}

func (e *Engine) GetDelegator(addr thor.Address) (*delegator.Metadata, error) {
	return e.repo.GetDelegator(addr)
}

func (e *Engine) GetBond(dt, dr thor.Address) (*bond.Bond, error) {
	return e.repo.GetBond(dt, dr)
}

// GetUnbondLockIn returns an empty queue when the pair has none.
func (e *Engine) GetUnbondLockIn(dt, dr thor.Address) (*unbonding.LockIn, error) {
	return e.lockIn(dt, dr)
}

// GetRebondGrace returns an empty queue when the pair has none.
func (e *Engine) GetRebondGrace(src, dr thor.Address) (*unbonding.Grace, error) {
	return e.grace(src, dr)
}

func (e *Engine) GetRewardsRecord(dt thor.Address, startHeight uint64) (*rewards.Record, error) {
	return e.repo.GetRewardsRecord(dt, startHeight)
}

// LatestRewardsRecord returns the newest record of dt, nil if rewards were never collected.
func (e *Engine) LatestRewardsRecord(dt thor.Address) (*rewards.Record, error) {
	m, err := e.delegatee(dt)
	if err != nil {
		return nil, err
	}
	if m.LatestRewardsHeight == 0 {
		return nil, nil
	}
	return e.repo.GetRewardsRecord(dt, m.LatestRewardsHeight)
}

// GetUnbondingSet returns every outstanding ref across all delegatees in maturity order.
func (e *Engine) GetUnbondingSet() (*unbonding.Set, error) {
	return e.repo.GetUnbondingSet()
}

func (e *Engine) Delegatees() ([]thor.Address, error) {
	return e.repo.Delegatees()
}

// ValueOf returns the value currently redeemable for the delegator's shares in dt.
func (e *Engine) ValueOf(dt, dr thor.Address) (asset.Value, error) {
	m, err := e.delegatee(dt)
	if err != nil {
		return asset.Value{}, err
	}
	b, err := e.repo.GetBond(dt, dr)
	if errors.Is(err, repository.ErrNotFound) {
		return asset.Zero(m.DelegationCurrency), nil
	}
	if err != nil {
		return asset.Value{}, err
	}
	return asset.NewValue(m.DelegationCurrency, m.ValueFromShares(b.Share())), nil
}

// Power returns the consensus weight of dt, zero while jailed.
func (e *Engine) Power(dt thor.Address) (*big.Int, error) {
	m, err := e.delegatee(dt)
	if err != nil {
		return nil, err
	}
	return m.Power(), nil
}
