// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import "github.com/vechain/delegation/metrics"

var (
	metricOperationCount   = metrics.LazyLoadCounterVec("operation_count", []string{"op", "result"})
	metricUnbondingRefs    = metrics.LazyLoadGauge("unbonding_refs")
	metricReleasedEntries  = metrics.LazyLoadHistogram("released_entries", metrics.BucketEntries)
	metricDelegatorSetSize = metrics.LazyLoadHistogram("delegator_set_size", metrics.BucketEntries)
)
