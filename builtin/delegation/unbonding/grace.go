// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package unbonding

import (
	"math/big"

	"github.com/vechain/delegation/builtin/delegation/reverts"
	"github.com/vechain/delegation/thor"
)

// GraceEntry is redelegated value that stays slashable at its source until maturity.
type GraceEntry struct {
	Destination    thor.Address
	Value          *big.Int
	StartHeight    uint64
	MaturityHeight uint64
}

// Grace is the redelegation queue of one (source delegatee, delegator) pair.
type Grace struct {
	Entries []GraceEntry
}

func (g *Grace) IsEmpty() bool {
	return len(g.Entries) == 0
}

func (g *Grace) IsFull(max uint64) bool {
	return uint64(len(g.Entries)) >= max
}

func (g *Grace) Add(entry GraceEntry, max uint64) error {
	if g.IsFull(max) {
		return reverts.ErrGraceFull
	}
	entry.Value = new(big.Int).Set(entry.Value)
	g.Entries = append(g.Entries, entry)
	return nil
}

// Release drops every entry matured at height and returns their summed value.
// No value moves on grace maturity.
func (g *Grace) Release(height uint64) *big.Int {
	released := new(big.Int)
	kept := g.Entries[:0]
	for _, e := range g.Entries {
		if e.MaturityHeight <= height {
			released.Add(released, e.Value)
			continue
		}
		kept = append(kept, e)
	}
	g.Entries = kept
	return released
}

func (g *Grace) Total() *big.Int {
	total := new(big.Int)
	for _, e := range g.Entries {
		total.Add(total, e.Value)
	}
	return total
}

func (g *Grace) Maturities() []uint64 {
	heights := make([]uint64, 0, len(g.Entries))
	for _, e := range g.Entries {
		heights = append(heights, e.MaturityHeight)
	}
	return distinct(heights)
}
