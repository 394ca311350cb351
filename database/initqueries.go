// /home/krylon/go/src/github.com/blicero/skylight/database/initqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-15 23:30:42 krylon>

package database

// The seq columns preserve insertion order. Uniqueness of IDs across both
// tables is enforced by the store, not by the schema.
var initQueries = []string{
	`
CREATE TABLE notification (
    seq         INTEGER PRIMARY KEY,
    nid         TEXT NOT NULL,
    title       TEXT NOT NULL DEFAULT '',
    message     TEXT NOT NULL DEFAULT '',
    priority    TEXT NOT NULL DEFAULT 'normal',
    icon        TEXT NOT NULL DEFAULT 'alert',
    created     TEXT NOT NULL,
    expires     TEXT NOT NULL DEFAULT ''
)
`,
	"CREATE INDEX notification_nid_idx ON notification (nid)",
	`
CREATE TABLE recurring (
    seq           INTEGER PRIMARY KEY,
    rid           TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    message       TEXT NOT NULL DEFAULT '',
    priority      TEXT NOT NULL DEFAULT 'normal',
    icon          TEXT NOT NULL DEFAULT 'alert',
    weekday       INTEGER,
    day_of_month  INTEGER,
    hour          INTEGER,
    show_before   REAL NOT NULL DEFAULT 0,
    CHECK (weekday IS NULL OR weekday BETWEEN 0 AND 6),
    CHECK (day_of_month IS NULL OR day_of_month BETWEEN 1 AND 31)
)
`,
	"CREATE INDEX recurring_rid_idx ON recurring (rid)",
}
