// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// the event table. seq packs height and the index of the event within that height.
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	name TEXT NOT NULL,
	delegatee BLOB(20) NOT NULL,
	delegator BLOB(20),
	currency TEXT,
	amount BLOB,
	detail TEXT
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(delegatee);
CREATE INDEX IF NOT EXISTS event_i1 ON event(delegator);
CREATE INDEX IF NOT EXISTS event_i2 ON event(name);
`
