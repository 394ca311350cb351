// /home/krylon/go/src/github.com/blicero/skylight/database/query/query.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-15 21:41:00 krylon>

// Package query provides symbolic constants for identifying SQL queries.
package query

//go:generate stringer -type=ID

// ID identifies a query.
type ID uint8

// Queries on the notification and recurring tables.
const (
	NotificationAdd ID = iota
	NotificationGetAll
	NotificationClear
	RecurringAdd
	RecurringGetAll
	RecurringClear
)
