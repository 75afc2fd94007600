// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/unbonding"
	"github.com/vechain/delegation/thor"
)

// Check recomputes what the delegation pool of dt must hold, the bonded total plus every pending
// lock-in, and returns it next to the actual pool balance.
func (e *Engine) Check(dtAddr thor.Address) (expected, actual asset.Value, err error) {
	dt, err := e.delegatee(dtAddr)
	if err != nil {
		return asset.Value{}, asset.Value{}, err
	}
	expected = dt.TotalDelegated
	for _, ref := range dt.QueueRefs(unbonding.KindLockIn) {
		lockIn, err := e.lockIn(dtAddr, ref.Delegator)
		if err != nil {
			return asset.Value{}, asset.Value{}, err
		}
		expected = expected.Add(asset.NewValue(dt.DelegationCurrency, lockIn.Total()))
	}
	actual, err = e.ledger.Balance(dt.DelegationPool, dt.DelegationCurrency)
	if err != nil {
		return asset.Value{}, asset.Value{}, errors.Wrap(err, "failed to get delegation pool balance")
	}
	return expected, actual, nil
}
