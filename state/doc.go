// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state is the world snapshot the ledger runs against.
//
// Every built-in module owns an account address and keeps its records as raw RLP values in
// slots of that account. A State journals every write on top of the committed kv store, can be
// checkpointed and reverted, and is flushed atomically by Stage / Commit. Callers that want to
// discard a failed transition simply drop the State.
package state
