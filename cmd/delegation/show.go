// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/delegation/logdb"
	"github.com/vechain/delegation/thor"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func showAction(ctx *cli.Context, s *session) error {
	if ctx.NArg() < 1 || ctx.NArg() > 2 {
		return errors.New("show expects <delegatee> [delegator]")
	}
	dtAddr, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	w := ctx.App.Writer

	if ctx.NArg() == 1 {
		dt, err := s.engine.GetDelegatee(dtAddr)
		if err != nil {
			return errors.Wrapf(err, "delegatee %v", dtAddr)
		}
		record, err := s.engine.LatestRewardsRecord(dtAddr)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "delegatee:")
		dumper.Fdump(w, dt)
		fmt.Fprintln(w, "latest rewards record:")
		dumper.Fdump(w, record)
		return nil
	}

	drAddr, err := parseAddress(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	dr, err := s.engine.GetDelegator(drAddr)
	if err != nil {
		return errors.Wrapf(err, "delegator %v", drAddr)
	}
	b, err := s.engine.GetBond(dtAddr, drAddr)
	if err != nil {
		return errors.Wrapf(err, "bond %v/%v", dtAddr, drAddr)
	}
	value, err := s.engine.ValueOf(dtAddr, drAddr)
	if err != nil {
		return err
	}
	lockIn, err := s.engine.GetUnbondLockIn(dtAddr, drAddr)
	if err != nil {
		return err
	}
	grace, err := s.engine.GetRebondGrace(dtAddr, drAddr)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "delegator:")
	dumper.Fdump(w, dr)
	fmt.Fprintf(w, "bond: %v shares worth %v, last claimed at %d\n", b.Share(), value, b.LastClaimedHeight())
	fmt.Fprintln(w, "unbond lock-in:")
	dumper.Fdump(w, lockIn)
	fmt.Fprintln(w, "rebond grace:")
	dumper.Fdump(w, grace)
	return nil
}

func eventsAction(ctx *cli.Context, s *session) error {
	filter := &logdb.EventFilter{
		Options: &logdb.Options{
			Offset: ctx.Uint64(offsetFlag.Name),
			Limit:  ctx.Uint64(limitFlag.Name),
		},
	}
	if ctx.Bool(descFlag.Name) {
		filter.Order = logdb.DESC
	}
	if ctx.IsSet(fromFlag.Name) || ctx.IsSet(toFlag.Name) {
		filter.Range = &logdb.Range{From: ctx.Uint64(fromFlag.Name), To: ctx.Uint64(toFlag.Name)}
	}

	var (
		criteria logdb.EventCriteria
		matched  bool
	)
	if name := ctx.String(nameFlag.Name); name != "" {
		criteria.Name = &name
		matched = true
	}
	for _, f := range []struct {
		flag string
		dst  **thor.Address
	}{
		{delegateeFlag.Name, &criteria.Delegatee},
		{delegatorFlag.Name, &criteria.Delegator},
	} {
		if v := ctx.String(f.flag); v != "" {
			addr, err := parseAddress(v)
			if err != nil {
				return err
			}
			*f.dst = &addr
			matched = true
		}
	}
	if matched {
		filter.CriteriaSet = []*logdb.EventCriteria{&criteria}
	}

	events, err := s.logDB.FilterEvents(context.Background(), filter)
	if err != nil {
		return err
	}
	for _, ev := range events {
		line := fmt.Sprintf("%8d/%-3d %-18s %v", ev.Height, ev.Index, ev.Name, ev.Delegatee)
		if !ev.Delegator.IsZero() {
			line += " " + ev.Delegator.String()
		}
		if !ev.Amount.IsZero() {
			line += " " + ev.Amount.String()
		}
		if ev.Detail != "" {
			line += " " + ev.Detail
		}
		fmt.Fprintln(ctx.App.Writer, line)
	}
	return nil
}
