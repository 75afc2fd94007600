// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/delegation/thor"
)

func height(ctx *cli.Context) uint64 {
	return ctx.GlobalUint64(heightFlag.Name)
}

func mintAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}
	addr, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	currency, err := lookupCurrency(s.params, ctx.String(currencyFlag.Name))
	if err != nil {
		return err
	}
	value, err := parseAmount(ctx.Args().Get(1), currency)
	if err != nil {
		return err
	}
	if err := s.bank.Mint(addr, value); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "minted %v to %v\n", value, addr)
	return nil
}

func rewardAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}
	dtAddr, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	dt, err := s.engine.GetDelegatee(dtAddr)
	if err != nil {
		return errors.Wrapf(err, "delegatee %v", dtAddr)
	}
	ticker := ctx.String(currencyFlag.Name)
	if ticker == "" && len(dt.RewardCurrencies) > 0 {
		ticker = dt.RewardCurrencies[0].Ticker
	}
	currency, err := lookupCurrency(s.params, ticker)
	if err != nil {
		return err
	}
	value, err := parseAmount(ctx.Args().Get(1), currency)
	if err != nil {
		return err
	}
	if err := s.bank.Mint(dt.RewardPool, value); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "deposited %v to the reward pool of %v\n", value, dtAddr)
	return nil
}

func delegateAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 3); err != nil {
		return err
	}
	dt, dr, err := parsePair(ctx)
	if err != nil {
		return err
	}
	value, err := parseAmount(ctx.Args().Get(2), s.params.DelegationCurrency)
	if err != nil {
		return err
	}
	shares, err := s.engine.Delegate(dt, dr, value, height(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "delegated %v for %v shares\n", value, shares)
	return nil
}

func undelegateAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 3); err != nil {
		return err
	}
	dt, dr, err := parsePair(ctx)
	if err != nil {
		return err
	}
	share, err := parseShare(ctx.Args().Get(2))
	if err != nil {
		return err
	}
	value, releaseHeight, err := s.engine.Undelegate(dt, dr, share, height(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "undelegated %v, released at %d\n", value, releaseHeight)
	return nil
}

func redelegateAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 4); err != nil {
		return err
	}
	addrs, err := parseAddresses(ctx, 3)
	if err != nil {
		return err
	}
	src, dst, dr := addrs[0], addrs[1], addrs[2]
	share, err := parseShare(ctx.Args().Get(3))
	if err != nil {
		return err
	}
	value, err := s.engine.Redelegate(src, dst, dr, share, height(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "redelegated %v from %v to %v\n", value, src, dst)
	return nil
}

func cancelAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 3); err != nil {
		return err
	}
	dt, dr, err := parsePair(ctx)
	if err != nil {
		return err
	}
	value, err := parseAmount(ctx.Args().Get(2), s.params.DelegationCurrency)
	if err != nil {
		return err
	}
	shares, err := s.engine.CancelUndelegate(dt, dr, value, height(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "rebonded %v for %v shares\n", value, shares)
	return nil
}

func collectAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	dt, err := parseAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	record, err := s.engine.CollectRewards(dt, height(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "collected %s over %v shares\n", formatValues(record.Rewards), record.TotalShares)
	return nil
}

func claimAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}
	dt, dr, err := parsePair(ctx)
	if err != nil {
		return err
	}
	paid, err := s.engine.ClaimReward(dt, dr, height(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "claimed %s\n", formatValues(paid))
	return nil
}

func releaseAction(ctx *cli.Context, s *session) error {
	released, err := s.engine.ReleaseUnbondings(height(ctx))
	if err != nil {
		return err
	}
	for _, r := range released {
		fmt.Fprintf(ctx.App.Writer, "%-8v %v %v %v\n", r.Kind, r.Delegatee, r.Delegator, r.Value)
	}
	fmt.Fprintf(ctx.App.Writer, "released %d entries\n", len(released))
	return nil
}

func slashAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}
	dt, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	fraction, err := parseFraction(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	slashed, err := s.engine.Slash(dt, fraction, height(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "slashed %v\n", slashed)
	return nil
}

func jailAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}
	dt, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	until, err := strconv.ParseUint(ctx.Args().Get(1), 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid height")
	}
	return s.engine.Jail(dt, until, height(ctx))
}

func unjailAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	dt, err := parseAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	return s.engine.Unjail(dt, height(ctx))
}

func tombstoneAction(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	dt, err := parseAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	return s.engine.Tombstone(dt, height(ctx))
}

// parseAddresses reads the first n arguments as addresses.
func parseAddresses(ctx *cli.Context, n int) ([]thor.Address, error) {
	addrs := make([]thor.Address, 0, n)
	for i := range n {
		addr, err := parseAddress(ctx.Args().Get(i))
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// parsePair reads the leading delegatee and delegator arguments.
func parsePair(ctx *cli.Context) (dt, dr thor.Address, err error) {
	addrs, err := parseAddresses(ctx, 2)
	if err != nil {
		return dt, dr, err
	}
	return addrs[0], addrs[1], nil
}
