// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/solidity"
	"github.com/vechain/delegation/thor"
)

// LinkedList is a storage backed doubly linked list of heights kept in ascending order.
// Zero marks the end of the list, so zero itself cannot be stored.
type LinkedList struct {
	head  *solidity.Uint256
	tail  *solidity.Uint256
	count *solidity.Uint256
	next  *solidity.Mapping[solidity.Uint64Key, uint64]
	prev  *solidity.Mapping[solidity.Uint64Key, uint64]
}

func NewLinkedList(sctx *solidity.Context, headPos, tailPos, countPos thor.Bytes32) *LinkedList {
	return &LinkedList{
		head:  solidity.NewUint256(sctx, headPos),
		tail:  solidity.NewUint256(sctx, tailPos),
		count: solidity.NewUint256(sctx, countPos),
		next:  solidity.NewMapping[solidity.Uint64Key, uint64](sctx, headPos),
		prev:  solidity.NewMapping[solidity.Uint64Key, uint64](sctx, tailPos),
	}
}

func getHeight(u *solidity.Uint256) (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func setHeight(u *solidity.Uint256, h uint64) {
	u.Set(new(big.Int).SetUint64(h))
}

func setLink(m *solidity.Mapping[solidity.Uint64Key, uint64], from, to uint64) error {
	if to == 0 {
		m.Delete(solidity.Uint64Key(from))
		return nil
	}
	return m.Set(solidity.Uint64Key(from), to)
}

// Head returns the lowest height, zero when the list is empty.
func (l *LinkedList) Head() (uint64, error) {
	return getHeight(l.head)
}

// Next returns the successor of h, zero at the end of the list.
func (l *LinkedList) Next(h uint64) (uint64, error) {
	return l.next.Get(solidity.Uint64Key(h))
}

func (l *LinkedList) Len() (uint64, error) {
	return getHeight(l.count)
}

// Contains reports whether h is linked.
func (l *LinkedList) Contains(h uint64) (bool, error) {
	if h == 0 {
		return false, nil
	}
	head, err := l.Head()
	if err != nil {
		return false, err
	}
	if head == h {
		return true, nil
	}
	prev, err := l.prev.Get(solidity.Uint64Key(h))
	if err != nil {
		return false, err
	}
	return prev != 0, nil
}

// Insert links h at its ordered position. Heights are searched from the tail, so appending a
// height above every other one is O(1). Inserting a linked height is a no-op.
func (l *LinkedList) Insert(h uint64) error {
	if h == 0 {
		return errors.New("zero height cannot be linked")
	}
	found, err := l.Contains(h)
	if err != nil || found {
		return err
	}

	// find the last node below h
	after, err := getHeight(l.tail)
	if err != nil {
		return err
	}
	for after > h {
		if after, err = l.prev.Get(solidity.Uint64Key(after)); err != nil {
			return err
		}
	}

	var before uint64
	if after == 0 {
		if before, err = l.Head(); err != nil {
			return err
		}
		setHeight(l.head, h)
	} else {
		if before, err = l.Next(after); err != nil {
			return err
		}
		if err := setLink(l.next, after, h); err != nil {
			return err
		}
		if err := setLink(l.prev, h, after); err != nil {
			return err
		}
	}
	if before == 0 {
		setHeight(l.tail, h)
	} else {
		if err := setLink(l.next, h, before); err != nil {
			return err
		}
		if err := setLink(l.prev, before, h); err != nil {
			return err
		}
	}
	return l.count.Add(big.NewInt(1))
}

// Remove unlinks h. Removing a height that is not linked is a no-op.
func (l *LinkedList) Remove(h uint64) error {
	found, err := l.Contains(h)
	if err != nil || !found {
		return err
	}
	prev, err := l.prev.Get(solidity.Uint64Key(h))
	if err != nil {
		return err
	}
	next, err := l.Next(h)
	if err != nil {
		return err
	}

	if prev == 0 {
		setHeight(l.head, next)
	} else if err := setLink(l.next, prev, next); err != nil {
		return err
	}
	if next == 0 {
		setHeight(l.tail, prev)
	} else if err := setLink(l.prev, next, prev); err != nil {
		return err
	}
	if err := setLink(l.next, h, 0); err != nil {
		return err
	}
	if err := setLink(l.prev, h, 0); err != nil {
		return err
	}
	return l.count.Sub(big.NewInt(1))
}

// Iter walks the heights in ascending order until callback returns false or an error.
func (l *LinkedList) Iter(callback func(uint64) (bool, error)) error {
	ptr, err := l.Head()
	if err != nil {
		return err
	}
	for ptr != 0 {
		more, err := callback(ptr)
		if err != nil || !more {
			return err
		}
		if ptr, err = l.Next(ptr); err != nil {
			return err
		}
	}
	return nil
}
