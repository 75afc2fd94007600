// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	out := new(bytes.Buffer)
	var lvl slog.LevelVar
	lvl.Set(LevelInfo)
	l := NewLogger(NewTerminalHandlerWithLevel(out, &lvl, false))

	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.With("pkg", "delegation").Info("delegated", "amount", big.NewInt(1234567))
	line := out.String()
	assert.True(t, strings.HasPrefix(line, "INFO "))
	assert.Contains(t, line, "delegated")
	assert.Contains(t, line, "pkg=delegation")
	assert.Contains(t, line, "amount=1,234,567")
}

func TestJSONHandler(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(JSONHandler(out))
	l.Warn("slashed", "fraction", "0.1", "value", big.NewInt(10))

	var m map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &m))
	assert.Equal(t, "warn", m["lvl"])
	assert.Equal(t, "slashed", m["msg"])
	assert.Equal(t, "10", m["value"])
}

func TestWithContextFollowsRoot(t *testing.T) {
	logger := WithContext("pkg", "test")

	out := new(bytes.Buffer)
	prev := Root()
	defer SetDefault(prev)

	var lvl slog.LevelVar
	lvl.Set(LevelInfo)
	SetDefault(NewLogger(LogfmtHandlerWithLevel(out, &lvl)))
	logger.Debug("hidden")
	assert.Empty(t, out.String())
	logger.Info("hello", "k", 1, "share", big.NewInt(42))
	assert.Contains(t, out.String(), "lvl=info")
	assert.Contains(t, out.String(), "pkg=test")
	assert.Contains(t, out.String(), "k=1")
	assert.Contains(t, out.String(), "share=42")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
}

func TestAppendNumbers(t *testing.T) {
	assert.Equal(t, "99999", string(appendInt64(nil, 99999)))
	assert.Equal(t, "-1,000,000", string(appendInt64(nil, -1000000)))
	assert.Equal(t, "123,456", string(appendUint64(nil, 123456, false)))
	n, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.Equal(t, "123,456,789,012,345,678,901,234,567,890", string(appendBigInt(nil, n)))
}
