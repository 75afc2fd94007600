// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package unbonding

import (
	"math/big"

	"github.com/vechain/delegation/builtin/delegation/reverts"
)

// Entry is a pending withdrawal.
type Entry struct {
	Value          *big.Int
	StartHeight    uint64
	MaturityHeight uint64
}

// LockIn is the undelegation queue of one (delegatee, delegator) pair, oldest entry first.
type LockIn struct {
	Entries []Entry
}

func (l *LockIn) IsEmpty() bool {
	return len(l.Entries) == 0
}

func (l *LockIn) IsFull(max uint64) bool {
	return uint64(len(l.Entries)) >= max
}

// LockIn appends an entry.
func (l *LockIn) LockIn(entry Entry, max uint64) error {
	if l.IsFull(max) {
		return reverts.ErrLockInFull
	}
	l.Entries = append(l.Entries, Entry{
		Value:          new(big.Int).Set(entry.Value),
		StartHeight:    entry.StartHeight,
		MaturityHeight: entry.MaturityHeight,
	})
	return nil
}

// Total returns the summed value of all entries.
func (l *LockIn) Total() *big.Int {
	total := new(big.Int)
	for _, e := range l.Entries {
		total.Add(total, e.Value)
	}
	return total
}

// Cancel removes value from the most recent entries first. Emptied entries are dropped.
func (l *LockIn) Cancel(value *big.Int) error {
	if l.Total().Cmp(value) < 0 {
		return reverts.ErrInsufficientUnbonding
	}
	remaining := new(big.Int).Set(value)
	for i := len(l.Entries) - 1; i >= 0 && remaining.Sign() > 0; i-- {
		entry := &l.Entries[i]
		if entry.Value.Cmp(remaining) <= 0 {
			remaining.Sub(remaining, entry.Value)
			entry.Value = new(big.Int)
		} else {
			entry.Value = new(big.Int).Sub(entry.Value, remaining)
			remaining.SetInt64(0)
		}
	}
	l.dropEmpty()
	return nil
}

// Take removes up to value from the entries started at or after since and still pending at
// height, most recent first. It returns the value removed.
func (l *LockIn) Take(value *big.Int, since, height uint64) *big.Int {
	taken := new(big.Int)
	for i := len(l.Entries) - 1; i >= 0 && taken.Cmp(value) < 0; i-- {
		entry := &l.Entries[i]
		if entry.StartHeight < since || entry.MaturityHeight <= height {
			continue
		}
		cut := new(big.Int).Sub(value, taken)
		if cut.Cmp(entry.Value) > 0 {
			cut.Set(entry.Value)
		}
		entry.Value = new(big.Int).Sub(entry.Value, cut)
		taken.Add(taken, cut)
	}
	l.dropEmpty()
	return taken
}

func (l *LockIn) dropEmpty() {
	kept := l.Entries[:0]
	for _, e := range l.Entries {
		if e.Value.Sign() > 0 {
			kept = append(kept, e)
		}
	}
	l.Entries = kept
}

// Release pops every entry matured at height and returns their summed value.
func (l *LockIn) Release(height uint64) *big.Int {
	released := new(big.Int)
	kept := l.Entries[:0]
	for _, e := range l.Entries {
		if e.MaturityHeight <= height {
			released.Add(released, e.Value)
			continue
		}
		kept = append(kept, e)
	}
	l.Entries = kept
	return released
}

// Maturities returns the distinct maturity heights, ascending.
func (l *LockIn) Maturities() []uint64 {
	heights := make([]uint64, 0, len(l.Entries))
	for _, e := range l.Entries {
		heights = append(heights, e.MaturityHeight)
	}
	return distinct(heights)
}
