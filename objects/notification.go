// /home/krylon/go/src/github.com/blicero/skylight/objects/notification.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 17:40:02 krylon>

// Package objects provides the data types used by the application.
package objects

import "time"

//go:generate ffjson notification.go

// Priority orders Notifications in the active list.
type Priority string

// Known priorities, from most to least important.
const (
	PriorityUrgent Priority = "urgent"
	PriorityNormal Priority = "normal"
	PriorityInfo   Priority = "info"
)

// Default values for fields the client did not supply.
const (
	DefaultNotificationTitle = "Notification"
	DefaultReminderTitle     = "Reminder"
	DefaultIcon              = "alert"
	DefaultPriority          = PriorityNormal
)

// Rank returns the sort key of the Priority. Unknown priorities rank
// like normal ones.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityInfo:
		return 2
	default:
		return 1
	}
} // func (p Priority) Rank() int

// Alert is the common interface for items that show up in the list of
// active notifications.
type Alert interface {
	Rank() int
	Payload() (string, string)
}

// Notification is a one-time message, optionally with an expiration time.
type Notification struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
	Icon     string   `json:"icon"`
	Created  string   `json:"created"`
	Expires  string   `json:"expires,omitempty"`
}

// Rank returns the sort key for the Notification's Priority.
func (n *Notification) Rank() int {
	return n.Priority.Rank()
} // func (n *Notification) Rank() int

// Payload returns the Notification's Title and Message.
func (n *Notification) Payload() (string, string) {
	return n.Title, n.Message
} // func (n *Notification) Payload() (string, string)

// Expired returns true if the Notification's expiration time lies before now.
// A Notification without an expiration time never expires. If the expiration
// time cannot be parsed, the Notification counts as expired and the parse
// error is returned along with it.
func (n *Notification) Expired(now time.Time) (bool, error) {
	if n.Expires == "" {
		return false, nil
	}

	var exp, err = ParseStamp(n.Expires, now.Location())

	if err != nil {
		return true, err
	}

	return exp.Before(now), nil
} // func (n *Notification) Expired(now time.Time) (bool, error)

// TriggeredReminder is a RecurringRule that is currently inside its
// display window. It is never stored.
type TriggeredReminder struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Priority   Priority  `json:"priority"`
	Icon       string    `json:"icon"`
	Recurring  bool      `json:"recurring"`
	TargetTime string    `json:"target_time"`
	Target     time.Time `json:"-"`
}

// Rank returns the sort key for the reminder's Priority.
func (t *TriggeredReminder) Rank() int {
	return t.Priority.Rank()
} // func (t *TriggeredReminder) Rank() int

// Payload returns the reminder's Title and Message.
func (t *TriggeredReminder) Payload() (string, string) {
	return t.Title, t.Message
} // func (t *TriggeredReminder) Payload() (string, string)
