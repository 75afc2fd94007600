// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/delegation/log"
	"github.com/vechain/delegation/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "delegation"
	app.Usage = "Operate a delegation ledger"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Flags = []cli.Flag{
		dataDirFlag,
		configFlag,
		verbosityFlag,
		jsonLogsFlag,
		cacheFlag,
		heightFlag,
		metricsFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		initLogger(ctx)
		if ctx.GlobalBool(metricsFlag.Name) {
			metrics.InitializePrometheusMetrics()
		}
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		if ctx.GlobalBool(metricsFlag.Name) {
			return metrics.Dump(ctx.App.Writer)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "mint",
			Usage:     "credit an account with newly issued value",
			ArgsUsage: "<address> <amount>",
			Flags:     []cli.Flag{currencyFlag},
			Action:    withSession(mintAction, true),
		},
		{
			Name:      "reward",
			Usage:     "deposit rewards into the reward pool of a delegatee",
			ArgsUsage: "<delegatee> <amount>",
			Flags:     []cli.Flag{currencyFlag},
			Action:    withSession(rewardAction, true),
		},
		{
			Name:      "delegate",
			Usage:     "bond value of a delegator to a delegatee",
			ArgsUsage: "<delegatee> <delegator> <amount>",
			Action:    withSession(delegateAction, true),
		},
		{
			Name:      "undelegate",
			Usage:     "unbond shares into the lock-in queue",
			ArgsUsage: "<delegatee> <delegator> <shares>",
			Action:    withSession(undelegateAction, true),
		},
		{
			Name:      "redelegate",
			Usage:     "move shares from one delegatee to another",
			ArgsUsage: "<src> <dst> <delegator> <shares>",
			Action:    withSession(redelegateAction, true),
		},
		{
			Name:      "cancel",
			Usage:     "rebond value from the newest lock-in entries",
			ArgsUsage: "<delegatee> <delegator> <amount>",
			Action:    withSession(cancelAction, true),
		},
		{
			Name:      "collect",
			Usage:     "snapshot rewards deposited since the last collection",
			ArgsUsage: "<delegatee>",
			Action:    withSession(collectAction, true),
		},
		{
			Name:      "claim",
			Usage:     "pay out the rewards owed to a delegator",
			ArgsUsage: "<delegatee> <delegator>",
			Action:    withSession(claimAction, true),
		},
		{
			Name:   "release",
			Usage:  "release every unbonding entry matured at the height",
			Action: withSession(releaseAction, true),
		},
		{
			Name:      "slash",
			Usage:     "slash a fraction of the stake of a delegatee",
			ArgsUsage: "<delegatee> <fraction>",
			Action:    withSession(slashAction, true),
		},
		{
			Name:      "jail",
			Usage:     "jail a delegatee until the given height",
			ArgsUsage: "<delegatee> <until>",
			Action:    withSession(jailAction, true),
		},
		{
			Name:      "unjail",
			Usage:     "lift an expired jail",
			ArgsUsage: "<delegatee>",
			Action:    withSession(unjailAction, true),
		},
		{
			Name:      "tombstone",
			Usage:     "permanently disable a delegatee",
			ArgsUsage: "<delegatee>",
			Action:    withSession(tombstoneAction, true),
		},
		{
			Name:      "show",
			Usage:     "dump the records of a delegatee or of a delegator bond",
			ArgsUsage: "<delegatee> [delegator]",
			Action:    withSession(showAction, false),
		},
		{
			Name:  "events",
			Usage: "query the event journal",
			Flags: []cli.Flag{
				delegateeFlag,
				delegatorFlag,
				nameFlag,
				fromFlag,
				toFlag,
				descFlag,
				offsetFlag,
				limitFlag,
			},
			Action: withSession(eventsAction, false),
		},
		{
			Name:   "check",
			Usage:  "verify the delegation pool balance of every delegatee",
			Action: withSession(checkAction, false),
		},
	}
	return app
}
