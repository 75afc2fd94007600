// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"cosmossdk.io/math"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation"
	"github.com/vechain/delegation/log"
	"github.com/vechain/delegation/logdb"
	"github.com/vechain/delegation/lvldb"
	"github.com/vechain/delegation/thor"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".delegation")
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.GlobalInt(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "ledger.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 64
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openLogDB(dataDir string) (*logdb.LogDB, error) {
	dir := filepath.Join(dataDir, "events.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", dir)
	}
	return db, nil
}

func loadParams(ctx *cli.Context) (delegation.Params, error) {
	path := ctx.GlobalString(configFlag.Name)
	if path == "" {
		return delegation.DefaultParams(), nil
	}
	return delegation.LoadParams(path)
}

func parseAddress(s string) (thor.Address, error) {
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.Wrapf(err, "invalid address %q", s)
	}
	return *addr, nil
}

// parseAmount reads a decimal amount in whole units of the currency, e.g. "1.5" VET.
func parseAmount(s string, currency asset.Currency) (asset.Value, error) {
	dec, err := math.LegacyNewDecFromStr(s)
	if err != nil {
		return asset.Value{}, errors.Wrapf(err, "invalid amount %q", s)
	}
	if dec.IsNegative() {
		return asset.Value{}, errors.Errorf("negative amount %q", s)
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(currency.Decimals)), nil)
	scaled := dec.MulInt(math.NewIntFromBigInt(unit))
	if !scaled.IsInteger() {
		return asset.Value{}, errors.Errorf("amount %q has more than %d decimals", s, currency.Decimals)
	}
	return asset.NewValue(currency, scaled.TruncateInt().BigInt()), nil
}

func parseShare(s string) (*big.Int, error) {
	share, ok := new(big.Int).SetString(s, 10)
	if !ok || share.Sign() < 0 {
		return nil, errors.Errorf("invalid share %q", s)
	}
	return share, nil
}

func parseFraction(s string) (math.LegacyDec, error) {
	dec, err := math.LegacyNewDecFromStr(s)
	if err != nil {
		return math.LegacyDec{}, errors.Wrapf(err, "invalid fraction %q", s)
	}
	return dec, nil
}

// lookupCurrency resolves a ticker against the configured currencies.
func lookupCurrency(params delegation.Params, ticker string) (asset.Currency, error) {
	if ticker == "" {
		return params.DelegationCurrency, nil
	}
	candidates := append([]asset.Currency{params.DelegationCurrency}, params.RewardCurrencies...)
	for _, c := range candidates {
		if strings.EqualFold(c.Ticker, ticker) {
			return c, nil
		}
	}
	return asset.Currency{}, errors.Errorf("unknown currency %q", ticker)
}

func formatValues(values []asset.Value) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.String())
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

func requireArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return errors.Errorf("%s expects %d arguments, got %d", ctx.Command.Name, n, ctx.NArg())
	}
	return nil
}
