// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger and event databases",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML file overriding the default ledger parameters",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the ledger database cache",
		Value: 256,
	}
	heightFlag = cli.Uint64Flag{
		Name:  "height",
		Usage: "height the transition is applied at",
	}
	metricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "collect prometheus metrics and print them when the command ends",
	}

	currencyFlag = cli.StringFlag{
		Name:  "currency",
		Usage: "ticker of the minted currency, defaults to the delegation currency",
	}

	delegateeFlag = cli.StringFlag{
		Name:  "delegatee",
		Usage: "only events of this delegatee",
	}
	delegatorFlag = cli.StringFlag{
		Name:  "delegator",
		Usage: "only events of this delegator",
	}
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "only events with this name",
	}
	fromFlag = cli.Uint64Flag{
		Name:  "from",
		Usage: "first height of the range",
	}
	toFlag = cli.Uint64Flag{
		Name:  "to",
		Usage: "last height of the range, unbounded when below from",
	}
	descFlag = cli.BoolFlag{
		Name:  "desc",
		Usage: "newest events first",
	}
	offsetFlag = cli.Uint64Flag{
		Name:  "offset",
		Usage: "number of events to skip",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100,
		Usage: "maximum number of events to print",
	}
)
