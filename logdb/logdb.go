// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb journals delegation events in a sqlite database.
package logdb

import (
	"context"
	"database/sql"
	"math"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/delegation/builtin/asset"
	"github.com/vechain/delegation/builtin/delegation"
	"github.com/vechain/delegation/thor"
)

const (
	insertEventQuery = "INSERT OR REPLACE INTO event(seq, name, delegatee, delegator, currency, amount, detail) VALUES(?,?,?,?,?,?,?)"
	lastSeqQuery     = "SELECT MAX(seq) FROM event WHERE seq >= ? AND seq <= ?"
	truncateQuery    = "DELETE FROM event WHERE seq >= ?"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	dsn := path + "?_journal=wal"
	if path == ":memory:" {
		dsn = path
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// in-memory databases live per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	// statements are prepared before any transaction holds the connection
	cache := newStmtCache(db)
	for _, q := range []string{insertEventQuery, lastSeqQuery} {
		if _, err := cache.Prepare(q); err != nil {
			return nil, err
		}
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     cache,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the linked sqlite library.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Insert appends events in one transaction. Events of a height already journaled are
// indexed after the existing ones.
func (db *LogDB) Insert(events []*delegation.Event) error {
	w := db.NewWriter()
	if err := w.Write(events); err != nil {
		_ = w.Rollback()
		return err
	}
	return w.Commit()
}

// Truncate deletes events at and after the given height.
func (db *LogDB) Truncate(height uint64) error {
	if height > math.MaxUint32 {
		return nil
	}
	return db.execInTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(truncateQuery, int64(newSequence(uint32(height), 0)))
		return err
	})
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, int64(newSequence(clampHeight(filter.Range.From), 0)))
		stmt += " AND seq >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, int64(newSequence(clampHeight(filter.Range.To), math.MaxInt32)))
			stmt += " AND seq <= ?"
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Name != nil {
			args = append(args, *criteria.Name)
			stmt += " AND name = ?"
		}
		if criteria.Delegatee != nil {
			args = append(args, criteria.Delegatee.Bytes())
			stmt += " AND delegatee = ?"
		}
		if criteria.Delegator != nil {
			args = append(args, criteria.Delegator.Bytes())
			stmt += " AND delegator = ?"
		}
		stmt += ")"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       int64
			name      string
			delegatee []byte
			delegator []byte
			currency  string
			amount    []byte
			detail    string
		)
		if err := rows.Scan(
			&seq,
			&name,
			&delegatee,
			&delegator,
			&currency,
			&amount,
			&detail,
		); err != nil {
			return nil, err
		}
		var c asset.Currency
		if currency != "" {
			if err := c.UnmarshalText([]byte(currency)); err != nil {
				return nil, errors.Wrapf(err, "event %d", seq)
			}
		}
		events = append(events, &Event{
			Height:    uint64(sequence(seq).Height()),
			Index:     sequence(seq).Index(),
			Name:      name,
			Delegatee: thor.BytesToAddress(delegatee),
			Delegator: thor.BytesToAddress(delegator),
			Amount:    asset.NewValue(c, new(big.Int).SetBytes(amount)),
			Detail:    detail,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// NewWriter creates a writer staging events in a transaction until Commit.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db, next: make(map[uint64]uint32)}
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func clampHeight(h uint64) uint32 {
	if h > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(h)
}
