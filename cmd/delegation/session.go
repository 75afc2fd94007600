// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation"
	"github.com/vechain/delegation/logdb"
	"github.com/vechain/delegation/lvldb"
	"github.com/vechain/delegation/state"
)

// session is the ledger opened for one command.
type session struct {
	params delegation.Params
	mainDB *lvldb.LevelDB
	logDB  *logdb.LogDB
	state  *state.State
	bank   *asset.Bank
	engine *delegation.Engine
}

func openSession(ctx *cli.Context) (s *session, err error) {
	params, err := loadParams(ctx)
	if err != nil {
		return nil, err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, err
	}
	mainDB, err := openMainDB(ctx, dataDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if s == nil {
			mainDB.Close()
		}
	}()
	logDB, err := openLogDB(dataDir)
	if err != nil {
		return nil, err
	}

	st := state.New(mainDB)
	bank := asset.New(asset.Address, st)
	return &session{
		params: params,
		mainDB: mainDB,
		logDB:  logDB,
		state:  st,
		bank:   bank,
		engine: delegation.New(delegation.Address, st, bank, params),
	}, nil
}

func (s *session) close() {
	if err := s.logDB.Close(); err != nil {
		logger.Warn("failed to close event database", "err", err)
	}
	if err := s.mainDB.Close(); err != nil {
		logger.Warn("failed to close ledger database", "err", err)
	}
}

// commit persists the pending state changes together with the events they emitted. Events are
// staged before the state is written and made visible after it, so a failed state commit journals
// nothing.
func (s *session) commit() error {
	events := s.engine.Events()
	w := s.logDB.NewWriter()
	if err := w.Write(events); err != nil {
		_ = w.Rollback()
		return errors.Wrap(err, "journal events")
	}
	hash, err := s.state.Commit()
	if err != nil {
		_ = w.Rollback()
		return err
	}
	if err := w.Commit(); err != nil {
		logger.Error("ledger committed without its events", "hash", hash, "events", len(events), "err", err)
		return errors.Wrap(err, "journal events")
	}
	logger.Debug("committed", "hash", hash, "events", len(events))
	return nil
}

// withSession opens the ledger around fn. Writes are committed only when fn succeeds.
func withSession(fn func(*cli.Context, *session) error, write bool) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		if err := fn(ctx, s); err != nil {
			return err
		}
		if write {
			return s.commit()
		}
		return nil
	}
}
