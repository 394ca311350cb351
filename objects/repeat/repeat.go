// /home/krylon/go/src/github.com/blicero/skylight/objects/repeat/repeat.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-13 18:25:02 krylon>

//go:generate stringer -type=Repeat

// Package repeat contains symbolic constants
// to specify at what intervals a recurring
// rule fires.
package repeat

// Repeat describes how a recurring rule gets triggered repeatedly and regularly.
type Repeat uint8

// None means the rule carries neither a weekday nor a day of month and never fires.
// Weekly means it fires once a week, on a given weekday.
// Monthly means it fires once a month, on a given day of the month.
const (
	None Repeat = iota
	Weekly
	Monthly
)
