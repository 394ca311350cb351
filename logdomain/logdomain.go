// /home/krylon/go/src/github.com/blicero/skylight/logdomain/logdomain.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-16 19:22:08 krylon>

// Package logdomain provides constants for log sources.
package logdomain

//go:generate stringer -type=ID

// ID represents an area of concern.
type ID uint8

// These constants identify the various logical areas of the application.
const (
	Backend ID = iota
	Broadcast
	Calendar
	Client
	Config
	Database
	Devices
	Recipe
	Store
)

// AllDomains returns a slice of all the known log sources.
func AllDomains() []ID {
	return []ID{
		Backend,
		Broadcast,
		Calendar,
		Client,
		Config,
		Database,
		Devices,
		Recipe,
		Store,
	}
} // func AllDomains() []ID
