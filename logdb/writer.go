// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/delegation"
)

// Writer stages events in one sqlite transaction. Nothing is visible to readers until Commit.
type Writer struct {
	db          *LogDB
	tx          *sql.Tx
	next        map[uint64]uint32
	uncommitted int
}

func (w *Writer) begin() error {
	if w.tx != nil {
		return nil
	}
	tx, err := w.db.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	w.tx = tx
	return nil
}

// Write stages events.
func (w *Writer) Write(events []*delegation.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := w.begin(); err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Height > math.MaxUint32 {
			return errors.Errorf("height %d out of journal range", ev.Height)
		}
		index, ok := w.next[ev.Height]
		if !ok {
			var err error
			if index, err = w.nextIndex(uint32(ev.Height)); err != nil {
				return err
			}
		}
		w.next[ev.Height] = index + 1

		e := newEvent(index, ev)
		var currency []byte
		if !e.Amount.Currency.IsZero() {
			var err error
			if currency, err = e.Amount.Currency.MarshalText(); err != nil {
				return err
			}
		}
		if _, err := w.tx.Stmt(w.db.stmtCache.MustPrepare(insertEventQuery)).Exec(
			int64(newSequence(uint32(e.Height), e.Index)),
			e.Name,
			e.Delegatee.Bytes(),
			e.Delegator.Bytes(),
			string(currency),
			e.Amount.Raw.Bytes(),
			e.Detail,
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
		w.uncommitted++
	}
	return nil
}

// nextIndex returns the index following the last event journaled at height.
func (w *Writer) nextIndex(height uint32) (uint32, error) {
	var last sql.NullInt64
	if err := w.tx.Stmt(w.db.stmtCache.MustPrepare(lastSeqQuery)).QueryRow(
		int64(newSequence(height, 0)),
		int64(newSequence(height, math.MaxInt32)),
	).Scan(&last); err != nil {
		return 0, err
	}
	if !last.Valid {
		return 0, nil
	}
	return sequence(last.Int64).Index() + 1, nil
}

// Commit makes the staged events visible.
func (w *Writer) Commit() error {
	if w.tx == nil {
		return nil
	}
	tx := w.tx
	w.reset()
	return tx.Commit()
}

// Rollback drops the staged events.
func (w *Writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	tx := w.tx
	w.reset()
	return tx.Rollback()
}

// UncommittedCount returns the number of staged events.
func (w *Writer) UncommittedCount() int {
	return w.uncommitted
}

func (w *Writer) reset() {
	w.tx = nil
	w.uncommitted = 0
	clear(w.next)
}
