// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores the transaction journal.

# Connecting

Open picks the driver from the configured database type. SQLite
(modernc.org/sqlite, pure Go) is the default; PostgreSQL uses lib/pq:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times - uses IF NOT EXISTS.

# Journal

tx_log holds one row per write transaction sent through the front-end:
its kind (add_option or cast_vote), sender, hash and outcome. The chain is
the only source of truth; the journal is never read back to decide
anything.

	j := db.NewJournal(conn)
	j.Record(ctx, models.TxRecord{Kind: models.TxKindCastVote, ...})
	recent, err := j.Recent(ctx, 10)

A nil *Journal records nothing and returns no entries, so views work
without a database.
*/
package db
