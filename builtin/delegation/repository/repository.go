// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package repository persists delegation records in contract storage. Records are versioned on
// disk; callers only see the canonical in-memory shapes.
package repository

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/delegation/bond"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
	"github.com/vechain/delegation/builtin/delegation/delegator"
	"github.com/vechain/delegation/builtin/delegation/linkedlist"
	"github.com/vechain/delegation/builtin/delegation/rewards"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/builtin/solidity"
	"github.com/vechain/delegation/thor"
)

// ErrNotFound is returned for a record that was never written.
var ErrNotFound = errors.New("record not found")

var (
	slotDelegatees    = thor.NameToSlot("delegatees")
	slotDelegateeList = thor.NameToSlot("delegatee-list")
	slotDelegators    = thor.NameToSlot("delegators")
	slotBonds         = thor.NameToSlot("bonds")
	slotLockIns       = thor.NameToSlot("unbond-lock-ins")
	slotGraces        = thor.NameToSlot("rebond-graces")
	slotRecords       = thor.NameToSlot("lump-sum-rewards-records")
	slotUnbondingSet  = thor.NameToSlot("unbonding-set")
	slotMaturityHead  = thor.NameToSlot("unbonding-maturity-head")
	slotMaturityTail  = thor.NameToSlot("unbonding-maturity-tail")
	slotMaturityCount = thor.NameToSlot("unbonding-maturity-count")
	slotRefCount      = thor.NameToSlot("unbonding-ref-count")
)

type Repository struct {
	delegatees    *solidity.Mapping[thor.Address, *delegatee.Metadata]
	delegateeList *solidity.Array[thor.Address]
	delegators    *solidity.Mapping[thor.Address, *delegator.Metadata]
	bonds         *solidity.Mapping[solidity.PairKey, *bond.Bond]
	lockIns       *solidity.Mapping[solidity.PairKey, *unbonding.LockIn]
	graces        *solidity.Mapping[solidity.PairKey, *unbonding.Grace]
	records       *solidity.Mapping[solidity.HeightKey, *rewards.Record]
	// refs bucketed by maturity height, the heights linked in ascending order
	unbondingSet *solidity.Mapping[solidity.Uint64Key, *unbonding.Set]
	maturities   *linkedlist.LinkedList
	refCount     *solidity.Uint256
}

func New(ctx *solidity.Context) *Repository {
	return &Repository{
		delegatees:    solidity.NewMappingWithCodec[thor.Address, *delegatee.Metadata](ctx, slotDelegatees, delegateeCodec),
		delegateeList: solidity.NewArray[thor.Address](ctx, slotDelegateeList),
		delegators:    solidity.NewMappingWithCodec[thor.Address, *delegator.Metadata](ctx, slotDelegators, delegatorCodec),
		bonds:         solidity.NewMappingWithCodec[solidity.PairKey, *bond.Bond](ctx, slotBonds, bondCodec),
		lockIns:       solidity.NewMappingWithCodec[solidity.PairKey, *unbonding.LockIn](ctx, slotLockIns, lockInCodec),
		graces:        solidity.NewMappingWithCodec[solidity.PairKey, *unbonding.Grace](ctx, slotGraces, graceCodec),
		records:       solidity.NewMappingWithCodec[solidity.HeightKey, *rewards.Record](ctx, slotRecords, recordCodec),
		unbondingSet:  solidity.NewMappingWithCodec[solidity.Uint64Key, *unbonding.Set](ctx, slotUnbondingSet, setCodec),
		maturities:    linkedlist.NewLinkedList(ctx, slotMaturityHead, slotMaturityTail, slotMaturityCount),
		refCount:      solidity.NewUint256(ctx, slotRefCount),
	}
}

func lookup[K solidity.Key, V any](m *solidity.Mapping[K, *V], key K, what string) (*V, error) {
	v, found, err := m.Lookup(key)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", what)
	}
	if !found {
		return nil, ErrNotFound
	}
	return v, nil
}

func (r *Repository) GetDelegatee(addr thor.Address) (*delegatee.Metadata, error) {
	return lookup(r.delegatees, addr, "delegatee")
}

// AddDelegatee stores a new delegatee and appends it to the enumeration list.
func (r *Repository) AddDelegatee(m *delegatee.Metadata) error {
	if _, found, err := r.delegatees.Lookup(m.Address); err != nil {
		return err
	} else if found {
		return errors.Errorf("delegatee %v already stored", m.Address)
	}
	if err := r.delegateeList.Push(m.Address); err != nil {
		return err
	}
	return r.delegatees.Set(m.Address, m)
}

func (r *Repository) SetDelegatee(m *delegatee.Metadata) error {
	return r.delegatees.Set(m.Address, m)
}

// Delegatees lists all delegatees in creation order.
func (r *Repository) Delegatees() ([]thor.Address, error) {
	n, err := r.delegateeList.Len()
	if err != nil {
		return nil, err
	}
	out := make([]thor.Address, 0, n)
	for i := range n {
		addr, err := r.delegateeList.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func (r *Repository) GetDelegator(addr thor.Address) (*delegator.Metadata, error) {
	return lookup(r.delegators, addr, "delegator")
}

func (r *Repository) SetDelegator(m *delegator.Metadata) error {
	return r.delegators.Set(m.Address, m)
}

// GetBond returns ErrNotFound if the pair never bonded. A fully undelegated bond is kept with a
// zero share.
func (r *Repository) GetBond(dt, dr thor.Address) (*bond.Bond, error) {
	return lookup(r.bonds, solidity.NewPairKey(dt, dr), "bond")
}

func (r *Repository) SetBond(dt, dr thor.Address, b *bond.Bond) error {
	return r.bonds.Set(solidity.NewPairKey(dt, dr), b)
}

func (r *Repository) GetUnbondLockIn(dt, dr thor.Address) (*unbonding.LockIn, error) {
	return lookup(r.lockIns, solidity.NewPairKey(dt, dr), "unbond lock-in")
}

// SetUnbondLockIn stores l, clearing the slot once it drains.
func (r *Repository) SetUnbondLockIn(dt, dr thor.Address, l *unbonding.LockIn) error {
	key := solidity.NewPairKey(dt, dr)
	if l.IsEmpty() {
		r.lockIns.Delete(key)
		return nil
	}
	return r.lockIns.Set(key, l)
}

func (r *Repository) GetRebondGrace(dt, dr thor.Address) (*unbonding.Grace, error) {
	return lookup(r.graces, solidity.NewPairKey(dt, dr), "rebond grace")
}

// SetRebondGrace stores g, clearing the slot once it drains.
func (r *Repository) SetRebondGrace(dt, dr thor.Address, g *unbonding.Grace) error {
	key := solidity.NewPairKey(dt, dr)
	if g.IsEmpty() {
		r.graces.Delete(key)
		return nil
	}
	return r.graces.Set(key, g)
}

func (r *Repository) GetRewardsRecord(dt thor.Address, startHeight uint64) (*rewards.Record, error) {
	return lookup(r.records, solidity.HeightKey{Address: dt, Height: startHeight}, "rewards record")
}

func (r *Repository) SetRewardsRecord(dt thor.Address, rec *rewards.Record) error {
	return r.records.Set(solidity.HeightKey{Address: dt, Height: rec.StartHeight}, rec)
}

// GetUnbondingBucket returns the refs maturing at height, empty if there are none.
func (r *Repository) GetUnbondingBucket(height uint64) (*unbonding.Set, error) {
	s, err := r.unbondingSet.Get(solidity.Uint64Key(height))
	if err != nil {
		return nil, errors.Wrapf(err, "get unbonding bucket %d", height)
	}
	return s, nil
}

func (r *Repository) setUnbondingBucket(height uint64, s *unbonding.Set) error {
	if len(s.Refs) == 0 {
		r.unbondingSet.Delete(solidity.Uint64Key(height))
		return r.maturities.Remove(height)
	}
	if err := r.maturities.Insert(height); err != nil {
		return err
	}
	return r.unbondingSet.Set(solidity.Uint64Key(height), s)
}

// AddUnbondingRef indexes ref under its maturity height.
func (r *Repository) AddUnbondingRef(ref unbonding.Ref) error {
	s, err := r.GetUnbondingBucket(ref.Maturity)
	if err != nil {
		return err
	}
	if s.Refs.Contains(ref) {
		return nil
	}
	s.Refs = s.Refs.Insert(ref)
	if err := r.setUnbondingBucket(ref.Maturity, s); err != nil {
		return errors.Wrap(err, "failed to save unbonding bucket")
	}
	return r.refCount.Add(big.NewInt(1))
}

// RemoveUnbondingRef drops ref from the index.
func (r *Repository) RemoveUnbondingRef(ref unbonding.Ref) error {
	s, err := r.GetUnbondingBucket(ref.Maturity)
	if err != nil {
		return err
	}
	if !s.Refs.Contains(ref) {
		return nil
	}
	s.Refs = s.Refs.Remove(ref)
	if err := r.setUnbondingBucket(ref.Maturity, s); err != nil {
		return errors.Wrap(err, "failed to save unbonding bucket")
	}
	return r.refCount.Sub(big.NewInt(1))
}

// MaturedUnbondingRefs returns the refs maturing at or below height, visiting only those buckets.
func (r *Repository) MaturedUnbondingRefs(height uint64) (unbonding.Refs, error) {
	var refs unbonding.Refs
	err := r.maturities.Iter(func(h uint64) (bool, error) {
		if h > height {
			return false, nil
		}
		s, err := r.GetUnbondingBucket(h)
		if err != nil {
			return false, err
		}
		refs = append(refs, s.Refs...)
		return true, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "iterate unbonding maturities")
	}
	return refs, nil
}

// GetUnbondingSet returns the whole index in maturity order.
func (r *Repository) GetUnbondingSet() (*unbonding.Set, error) {
	refs, err := r.MaturedUnbondingRefs(thor.MaxHeight)
	if err != nil {
		return nil, err
	}
	return &unbonding.Set{Refs: refs}, nil
}

// UnbondingRefCount returns the number of indexed refs.
func (r *Repository) UnbondingRefCount() (uint64, error) {
	n, err := r.refCount.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}
