// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation/delegatee"
)

// Params are the defaults for delegatees created lazily on their first bond.
type Params struct {
	DelegationCurrency     asset.Currency   `yaml:"delegation-currency"`
	RewardCurrencies       []asset.Currency `yaml:"reward-currencies"`
	UnbondingPeriod        uint64           `yaml:"unbonding-period"`
	MaxUnbondLockInEntries uint64           `yaml:"max-unbond-lock-in-entries"`
	MaxRebondGraceEntries  uint64           `yaml:"max-rebond-grace-entries"`
}

func DefaultParams() Params {
	return Params{
		DelegationCurrency:     asset.NewCurrency("VET", 18),
		RewardCurrencies:       []asset.Currency{asset.NewCurrency("VTHO", 18)},
		UnbondingPeriod:        8640, // one day of 10s blocks
		MaxUnbondLockInEntries: 7,
		MaxRebondGraceEntries:  7,
	}
}

// Config returns the delegatee config the params describe.
func (p Params) Config() delegatee.Config {
	return delegatee.Config{
		DelegationCurrency:     p.DelegationCurrency,
		RewardCurrencies:       slices.Clone(p.RewardCurrencies),
		UnbondingPeriod:        p.UnbondingPeriod,
		MaxUnbondLockInEntries: p.MaxUnbondLockInEntries,
		MaxRebondGraceEntries:  p.MaxRebondGraceEntries,
	}
}

func (p Params) Validate() error {
	cfg := p.Config()
	return cfg.Validate()
}

// LoadParams reads params from a yaml file. Fields absent from the file keep their defaults.
func LoadParams(path string) (Params, error) {
	params := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, errors.Wrap(err, "read params")
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return Params{}, errors.Wrap(err, "parse params")
	}
	if err := params.Validate(); err != nil {
		return Params{}, errors.WithMessage(err, "params")
	}
	return params, nil
}
