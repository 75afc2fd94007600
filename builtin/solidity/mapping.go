// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/delegation/thor"
)

// Codec converts mapping values to and from their stored bytes.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

type rlpCodec[V any] struct{}

func (rlpCodec[V]) Encode(value V) ([]byte, error) {
	return rlp.EncodeToBytes(value)
}

func (rlpCodec[V]) Decode(raw []byte) (value V, err error) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	err = rlp.DecodeBytes(raw, &value)
	return
}

// Mapping stores values at blake2b(key, basePos) of the context account.
type Mapping[K Key, V any] struct {
	context *Context
	basePos thor.Bytes32
	codec   Codec[V]
}

// NewMapping creates a mapping whose values are plain rlp.
func NewMapping[K Key, V any](context *Context, pos thor.Bytes32) *Mapping[K, V] {
	return NewMappingWithCodec[K, V](context, pos, rlpCodec[V]{})
}

// NewMappingWithCodec creates a mapping whose values go through the given codec.
func NewMappingWithCodec[K Key, V any](context *Context, pos thor.Bytes32, codec Codec[V]) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos, codec: codec}
}

func (m *Mapping[K, V]) position(key K) thor.Bytes32 {
	return thor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Lookup returns the value stored under key. found is false for an empty slot,
// in which case value is the zero V.
func (m *Mapping[K, V]) Lookup(key K) (value V, found bool, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		found = true
		var err error
		value, err = m.codec.Decode(raw)
		return err
	})
	return
}

// Get returns the value stored under key. For pointer values an empty slot yields a fresh
// zero struct rather than nil.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	value, found, err := m.Lookup(key)
	if err != nil || found {
		return value, err
	}
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	return value, nil
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return m.codec.Encode(value)
	})
}

// Delete clears the slot.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
