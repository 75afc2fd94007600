// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package repository

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

const (
	// VersionLegacy records are flat rlp lists without an envelope.
	VersionLegacy = 0
	// VersionCurrent records are wrapped as [version, body].
	VersionCurrent = 1
)

type envelope struct {
	Version uint64
	Body    rlp.RawValue
}

// codec persists one record family. Current records are enveloped, legacy ones are decoded and
// upgraded on read so callers only ever see the canonical struct.
type codec[T any] struct {
	name       string
	toBody     func(*T) any
	fromBody   func([]byte) (*T, error)
	toLegacy   func(*T) any
	fromLegacy func([]byte) (*T, error)
}

func (c *codec[T]) Encode(v *T) ([]byte, error) {
	body, err := rlp.EncodeToBytes(c.toBody(v))
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", c.name)
	}
	return rlp.EncodeToBytes(&envelope{Version: VersionCurrent, Body: body})
}

// EncodeLegacy writes v in the legacy layout.
func (c *codec[T]) EncodeLegacy(v *T) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(c.toLegacy(v))
	if err != nil {
		return nil, errors.Wrapf(err, "encode legacy %s", c.name)
	}
	return raw, nil
}

func (c *codec[T]) Decode(raw []byte) (*T, error) {
	version, body, ok := splitEnvelope(raw)
	if !ok {
		v, err := c.fromLegacy(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "decode legacy %s", c.name)
		}
		return v, nil
	}
	switch version {
	case VersionCurrent:
		v, err := c.fromBody(body)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", c.name)
		}
		return v, nil
	default:
		return nil, errors.Errorf("decode %s: unsupported version %d", c.name, version)
	}
}

// splitEnvelope recognizes [uint, list]. No legacy layout has that shape.
func splitEnvelope(raw []byte) (version uint64, body []byte, ok bool) {
	content, rest, err := rlp.SplitList(raw)
	if err != nil || len(rest) != 0 {
		return 0, nil, false
	}
	kind, ver, content, err := rlp.Split(content)
	if err != nil || kind == rlp.List || len(ver) > 8 {
		return 0, nil, false
	}
	kind, _, tail, err := rlp.Split(content)
	if err != nil || kind != rlp.List || len(tail) != 0 {
		return 0, nil, false
	}
	for _, b := range ver {
		version = version<<8 | uint64(b)
	}
	return version, content, true
}
