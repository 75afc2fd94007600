// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/thor"
)

const (
	EventDelegated          = "Delegated"
	EventUndelegated        = "Undelegated"
	EventRedelegated        = "Redelegated"
	EventUnbondingCancelled = "UnbondingCancelled"
	EventRewardsCollected   = "RewardsCollected"
	EventRewardClaimed      = "RewardClaimed"
	EventUnbondingReleased  = "UnbondingReleased"
	EventSlashed            = "Slashed"
	EventJailed             = "Jailed"
	EventUnjailed           = "Unjailed"
	EventTombstoned         = "Tombstoned"
)

// Event records one effect of a successful engine call. Delegator is zero for delegatee wide
// events and Amount is zero when no value moved.
type Event struct {
	Name      string
	Height    uint64
	Delegatee thor.Address
	Delegator thor.Address
	Amount    asset.Value
	Detail    string
}

func (e *Engine) emit(ev *Event) {
	e.events = append(e.events, ev)
}

// Events drains the events emitted since the last call.
func (e *Engine) Events() []*Event {
	evs := e.events
	e.events = nil
	return evs
}
