// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "math"

// MaxHeight is used as "forever", e.g. the jail release height of a tombstoned delegatee.
const MaxHeight = uint64(math.MaxUint64)

// DeriveAddress derives a deterministic address from a namespace tag and a base address.
// Pool and sub-account addresses of delegatees and delegators are all derived this way,
// so they never collide with each other nor with externally owned addresses.
func DeriveAddress(tag string, base Address, extra ...[]byte) Address {
	parts := make([][]byte, 0, 2+len(extra))
	parts = append(parts, []byte(tag), base.Bytes())
	parts = append(parts, extra...)
	h := Blake2b(parts...)
	return BytesToAddress(h[12:])
}

// NameToSlot converts a storage variable name into its slot.
func NameToSlot(name string) Bytes32 {
	return BytesToBytes32([]byte(name))
}
