// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/delegation/kv"
	"github.com/vechain/delegation/thor"
)

type change struct {
	key   []byte
	value rlp.RawValue
	sk    storageKey
}

// Stage abstracts the final value of every slot touched since the last commit.
type Stage struct {
	store   kv.Store
	cache   *lru.Cache
	changes []change
}

func newStage(store kv.Store, cache *lru.Cache, m map[storageKey]rlp.RawValue) *Stage {
	changes := make([]change, 0, len(m))
	for k, v := range m {
		changes = append(changes, change{key: k.bytes(), value: v, sk: k})
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].key, changes[j].key) < 0
	})
	return &Stage{store: store, cache: cache, changes: changes}
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest of the change set. Identical transitions applied to identical
// snapshots yield identical hashes.
func (s *Stage) Hash() thor.Bytes32 {
	return thor.Blake2bFn(func(w io.Writer) {
		for _, c := range s.changes {
			w.Write(c.key)
			w.Write(thor.Blake2b(c.value).Bytes())
		}
	})
}

// Commit writes changes into the store in one bulk.
func (s *Stage) Commit() error {
	bulk := s.store.Bulk()
	for _, c := range s.changes {
		var err error
		if len(c.value) == 0 {
			err = bulk.Delete(c.key)
		} else {
			err = bulk.Put(c.key, c.value)
		}
		if err != nil {
			return err
		}
	}
	if err := bulk.Write(); err != nil {
		return err
	}
	for _, c := range s.changes {
		s.cache.Add(c.sk, c.value)
	}
	return nil
}
