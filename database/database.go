// /home/krylon/go/src/github.com/blicero/skylight/database/database.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 19:02:26 krylon>

// Package database provides a SQLite-backed storage for the notification
// Document. The Document is saved as a whole in a single transaction.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/blicero/krylib"
	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/database/query"
	"github.com/blicero/skylight/logdomain"
	"github.com/blicero/skylight/objects"

	_ "github.com/mattn/go-sqlite3" // Import the database driver
)

var (
	openLock sync.Mutex
	idCnt    int64
)

// ErrTxInProgress indicates that an attempt to initiate a transaction failed
// because there is already one in progress.
var ErrTxInProgress = errors.New("A Transaction is already in progress")

// ErrNoTxInProgress indicates that an attempt was made to finish a
// transaction when none was active.
var ErrNoTxInProgress = errors.New("There is no transaction in progress")

// Database wraps a database connection and associated state.
type Database struct {
	id            int64
	db            *sql.DB
	tx            *sql.Tx
	log           *log.Logger
	path          string
	queries       map[query.ID]*sql.Stmt
	hasTx         bool
	transactionID int64
}

// Open opens a Database. If the database specified by the path does not exist,
// yet, it is created and initialized.
func Open(path string) (*Database, error) {
	var (
		err      error
		dbExists bool
		db       = &Database{
			path:    path,
			queries: make(map[query.ID]*sql.Stmt),
		}
	)

	openLock.Lock()
	defer openLock.Unlock()
	idCnt++
	db.id = idCnt

	if db.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	} else if common.Debug {
		db.log.Printf("[DEBUG] Open database %s\n", path)
	}

	var connstring = fmt.Sprintf("%s?_locking=NORMAL&_journal=WAL&_fk=true&recursive_triggers=true",
		path)

	if dbExists, err = krylib.Fexists(path); err != nil {
		db.log.Printf("[ERROR] Failed to check if %s already exists: %s\n",
			path,
			err.Error())
		return nil, err
	} else if db.db, err = sql.Open("sqlite3", connstring); err != nil {
		db.log.Printf("[ERROR] Failed to open %s: %s\n",
			path,
			err.Error())
		return nil, err
	}

	if !dbExists {
		if err = db.initialize(); err != nil {
			var e2 error
			if e2 = db.db.Close(); e2 != nil {
				db.log.Printf("[CRITICAL] Failed to close database: %s\n",
					e2.Error())
				return nil, e2
			}
			return nil, err
		}
	}

	return db, nil
} // func Open(path string) (*Database, error)

func (db *Database) initialize() error {
	var (
		err error
		tx  *sql.Tx
	)

	if tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	for _, q := range initQueries {
		db.log.Printf("[TRACE] Execute init query:\n%s\n",
			q)
		if _, err = tx.Exec(q); err != nil {
			db.log.Printf("[ERROR] Cannot execute init query: %s\n%s\n",
				err.Error(),
				q)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Printf("[CANTHAPPEN] Cannot rollback transaction: %s\n",
					rbErr.Error())
				return rbErr
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		db.log.Printf("[CANTHAPPEN] Failed to commit init transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) initialize() error

// Close closes the database.
// If there is a pending transaction, it is rolled back.
func (db *Database) Close() error {
	// I wonder if would make more snese to panic() if something goes wrong

	var err error

	if db.tx != nil {
		if err = db.tx.Rollback(); err != nil {
			db.log.Printf("[CRITICAL] Cannot roll back pending transaction: %s\n",
				err.Error())
			return err
		}
		db.tx = nil
	}

	for key, stmt := range db.queries {
		if err = stmt.Close(); err != nil {
			db.log.Printf("[CRITICAL] Cannot close statement handle %s: %s\n",
				key,
				err.Error())
			return err
		}
		delete(db.queries, key)
	}

	if err = db.db.Close(); err != nil {
		db.log.Printf("[CRITICAL] Cannot close database: %s\n",
			err.Error())
	}

	db.db = nil
	return nil
} // func (db *Database) Close() error

func (db *Database) getQuery(id query.ID) (*sql.Stmt, error) {
	var (
		stmt  *sql.Stmt
		found bool
		err   error
	)

	if stmt, found = db.queries[id]; found {
		return stmt, nil
	} else if _, found = dbQueries[id]; !found {
		return nil, fmt.Errorf("Unknown Query %d",
			id)
	}

	db.log.Printf("[TRACE] Prepare query %s\n", id)

	if stmt, err = db.db.Prepare(dbQueries[id]); err != nil {
		db.log.Printf("[ERROR] Cannot parse query %s: %s\n%s\n",
			id,
			err.Error(),
			dbQueries[id])
		return nil, err
	}

	db.queries[id] = stmt
	return stmt, nil
} // func (db *Database) getQuery(query.ID) (*sql.Stmt, error)

// Begin begins an explicit database transaction.
// Only one transaction can be in progress at once, attempting to start one,
// while another transaction is already in progress will yield ErrTxInProgress.
func (db *Database) Begin() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Begin Transaction\n",
		db.id)

	if db.tx != nil {
		return ErrTxInProgress
	} else if db.tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	db.hasTx = true
	db.transactionID++

	return nil
} // func (db *Database) Begin() error

// Rollback terminates a pending transaction, undoing any changes to the
// database made during that transaction.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Rollback() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Roll back Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Rollback(); err != nil {
		return fmt.Errorf("Cannot roll back database transaction: %s",
			err.Error())
	}

	db.tx = nil
	db.hasTx = false

	return nil
} // func (db *Database) Rollback() error

// Commit ends the active transaction, making any changes made during that
// transaction permanent and visible to other connections.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Commit() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Commit Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Commit(); err != nil {
		return fmt.Errorf("Cannot commit transaction: %s",
			err.Error())
	}

	db.tx = nil
	db.hasTx = false
	return nil
} // func (db *Database) Commit() error

func (db *Database) stmt(id query.ID) (*sql.Stmt, error) {
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(id); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			id,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	return stmt, nil
} // func (db *Database) stmt(id query.ID) (*sql.Stmt, error)

// Load reads the complete Document from the database.
func (db *Database) Load() (*objects.Document, error) {
	var (
		err  error
		doc  = objects.NewDocument()
		stmt *sql.Stmt
		rows *sql.Rows
	)

	if stmt, err = db.stmt(query.NotificationGetAll); err != nil {
		return nil, err
	} else if rows, err = stmt.Query(); err != nil {
		db.log.Printf("[ERROR] Cannot query notifications: %s\n",
			err.Error())
		return nil, err
	}

	for rows.Next() {
		var n objects.Notification

		if err = rows.Scan(&n.ID, &n.Title, &n.Message, &n.Priority, &n.Icon, &n.Created, &n.Expires); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n", err.Error())
			rows.Close() // nolint: errcheck
			return nil, err
		}

		doc.Notifications = append(doc.Notifications, n)
	}

	rows.Close() // nolint: errcheck

	if stmt, err = db.stmt(query.RecurringGetAll); err != nil {
		return nil, err
	} else if rows, err = stmt.Query(); err != nil {
		db.log.Printf("[ERROR] Cannot query recurring rules: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	for rows.Next() {
		var (
			r                objects.RecurringRule
			wday, mday, hour sql.NullInt64
		)

		if err = rows.Scan(&r.ID, &r.Title, &r.Message, &r.Priority, &r.Icon, &wday, &mday, &hour, &r.Rule.ShowBeforeHours); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n", err.Error())
			return nil, err
		}

		r.Rule.Weekday = nullInt(wday)
		r.Rule.DayOfMonth = nullInt(mday)
		r.Rule.Hour = nullInt(hour)

		doc.Recurring = append(doc.Recurring, r)
	}

	return doc, rows.Err()
} // func (db *Database) Load() (*objects.Document, error)

// Save replaces the database content with the given Document.
func (db *Database) Save(doc *objects.Document) (err error) {
	var (
		stmt     *sql.Stmt
		txStatus bool
	)

	if err = db.Begin(); err != nil {
		return err
	}

	defer func() {
		var e2 error
		if txStatus {
			e2 = db.Commit()
		} else {
			e2 = db.Rollback()
		}

		if e2 != nil {
			db.log.Printf("[ERROR] Cannot finish transaction: %s\n",
				e2.Error())
			if err == nil {
				err = e2
			}
		}
	}()

	for _, id := range []query.ID{query.NotificationClear, query.RecurringClear} {
		if stmt, err = db.stmt(id); err != nil {
			return err
		} else if _, err = stmt.Exec(); err != nil {
			db.log.Printf("[ERROR] Cannot execute %s: %s\n",
				id,
				err.Error())
			return err
		}
	}

	if stmt, err = db.stmt(query.NotificationAdd); err != nil {
		return err
	}

	for _, n := range doc.Notifications {
		if _, err = stmt.Exec(n.ID, n.Title, n.Message, string(n.Priority), n.Icon, n.Created, n.Expires); err != nil {
			db.log.Printf("[ERROR] Cannot add Notification %s (%q): %s\n",
				n.ID,
				n.Title,
				err.Error())
			return err
		}
	}

	if stmt, err = db.stmt(query.RecurringAdd); err != nil {
		return err
	}

	for _, r := range doc.Recurring {
		if _, err = stmt.Exec(
			r.ID,
			r.Title,
			r.Message,
			string(r.Priority),
			r.Icon,
			intNull(r.Rule.Weekday),
			intNull(r.Rule.DayOfMonth),
			intNull(r.Rule.Hour),
			r.Rule.ShowBeforeHours,
		); err != nil {
			db.log.Printf("[ERROR] Cannot add recurring rule %s (%q): %s\n",
				r.ID,
				r.Title,
				err.Error())
			return err
		}
	}

	txStatus = true
	return err
} // func (db *Database) Save(doc *objects.Document) error

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}

	var i = int(n.Int64)
	return &i
} // func nullInt(n sql.NullInt64) *int

func intNull(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(*i), Valid: true}
} // func intNull(i *int) sql.NullInt64
