// /home/krylon/go/src/github.com/blicero/skylight/objects/response.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 12:11:13 krylon>

package objects

//go:generate ffjson response.go

// PushTypeNotifications is the type tag of the Push carrying the active list.
const PushTypeNotifications = "notifications"

// ErrorResponse is what the backend sends to a client if a request fails.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeleteResponse confirms a delete request. The ID is echoed back whether
// or not anything was deleted.
type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

// Push is sent to real-time subscribers.
type Push struct {
	Type string  `json:"type"`
	Data []Alert `json:"data"`
}

// Health summarizes the state of the hub.
type Health struct {
	Status             string   `json:"status"`
	Services           []string `json:"services"`
	DevicesConfigured  int      `json:"devices_configured"`
	RecipeUpdated      int64    `json:"recipe_updated"`
	CalendarEvents     int      `json:"calendar_events"`
	NotificationsCount int      `json:"notifications_count"`
	RecurringCount     int      `json:"recurring_count"`
}
