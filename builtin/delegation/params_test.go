// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/reverts"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	cfg := p.Config()
	assert.Equal(t, p.DelegationCurrency, cfg.DelegationCurrency)

	cfg.RewardCurrencies[0] = asset.NewCurrency("X", 0)
	assert.Equal(t, asset.NewCurrency("VTHO", 18), p.RewardCurrencies[0], "config does not alias params")
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
delegation-currency: GOLD:2
reward-currencies: [SILVER:0, COPPER:1]
unbonding-period: 100
max-unbond-lock-in-entries: 2
`), 0o600))

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, asset.NewCurrency("GOLD", 2), p.DelegationCurrency)
	assert.Equal(t, []asset.Currency{asset.NewCurrency("SILVER", 0), asset.NewCurrency("COPPER", 1)}, p.RewardCurrencies)
	assert.Equal(t, uint64(100), p.UnbondingPeriod)
	assert.Equal(t, uint64(2), p.MaxUnbondLockInEntries)
	assert.Equal(t, DefaultParams().MaxRebondGraceEntries, p.MaxRebondGraceEntries)

	require.NoError(t, os.WriteFile(path, []byte("max-rebond-grace-entries: 0\n"), 0o600))
	_, err = LoadParams(path)
	assert.ErrorIs(t, err, reverts.ErrInvalidConfig)

	require.NoError(t, os.WriteFile(path, []byte("delegation-currency: \":1\"\n"), 0o600))
	_, err = LoadParams(path)
	assert.Error(t, err)

	_, err = LoadParams(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
