// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package unbonding

import (
	"slices"
	"sort"

	"github.com/vechain/delegation/thor"
)

type Kind uint8

const (
	KindLockIn Kind = iota + 1
	KindGrace
)

func (k Kind) String() string {
	switch k {
	case KindLockIn:
		return "lock-in"
	case KindGrace:
		return "grace"
	default:
		return "unknown"
	}
}

// Ref points at the queue holding entries maturing at Maturity.
type Ref struct {
	Delegatee thor.Address
	Delegator thor.Address
	Kind      Kind
	Maturity  uint64
}

// Less orders refs by maturity first, so matured refs form a prefix.
func (r Ref) Less(o Ref) bool {
	if r.Maturity != o.Maturity {
		return r.Maturity < o.Maturity
	}
	if c := r.Delegatee.Compare(o.Delegatee); c != 0 {
		return c < 0
	}
	if c := r.Delegator.Compare(o.Delegator); c != 0 {
		return c < 0
	}
	return r.Kind < o.Kind
}

// SameQueue reports whether both refs point at the same queue.
func (r Ref) SameQueue(o Ref) bool {
	return r.Delegatee == o.Delegatee && r.Delegator == o.Delegator && r.Kind == o.Kind
}

// Refs is a sorted set of refs.
type Refs []Ref

func (rs Refs) search(ref Ref) int {
	return sort.Search(len(rs), func(i int) bool { return !rs[i].Less(ref) })
}

func (rs Refs) Contains(ref Ref) bool {
	i := rs.search(ref)
	return i < len(rs) && rs[i] == ref
}

// Insert adds ref if absent.
func (rs Refs) Insert(ref Ref) Refs {
	i := rs.search(ref)
	if i < len(rs) && rs[i] == ref {
		return rs
	}
	return slices.Insert(rs, i, ref)
}

// Remove drops ref if present.
func (rs Refs) Remove(ref Ref) Refs {
	i := rs.search(ref)
	if i < len(rs) && rs[i] == ref {
		return slices.Delete(rs, i, i+1)
	}
	return rs
}

// RemoveQueue drops every ref pointing at the queue of ref.
func (rs Refs) RemoveQueue(ref Ref) Refs {
	return slices.DeleteFunc(rs, func(r Ref) bool { return r.SameQueue(ref) })
}

// Maturities returns the maturity heights of the refs pointing at the queue of ref.
func (rs Refs) Maturities(ref Ref) []uint64 {
	var heights []uint64
	for _, r := range rs {
		if r.SameQueue(ref) {
			heights = append(heights, r.Maturity)
		}
	}
	return heights
}

// Sync replaces the refs of the queue of ref with one ref per maturity.
func (rs Refs) Sync(ref Ref, maturities []uint64) Refs {
	rs = rs.RemoveQueue(ref)
	for _, m := range maturities {
		ref.Maturity = m
		rs = rs.Insert(ref)
	}
	return rs
}

// Set holds the refs maturing at one height.
type Set struct {
	Refs Refs
}

func distinct(heights []uint64) []uint64 {
	slices.Sort(heights)
	return slices.Compact(heights)
}
