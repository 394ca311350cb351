// /home/krylon/go/src/github.com/blicero/skylight/objects/input.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-17 16:40:18 krylon>

package objects

//go:generate ffjson input.go

// NotificationInput is what a client sends to create a Notification.
// Fields left out get default values.
type NotificationInput struct {
	ID           *string   `json:"id,omitempty"`
	Title        *string   `json:"title,omitempty"`
	Message      *string   `json:"message,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	Icon         *string   `json:"icon,omitempty"`
	ExpiresHours *float64  `json:"expires_hours,omitempty"`
	Expires      *string   `json:"expires,omitempty"`
}

// RecurringInput is what a client sends to create a RecurringRule.
type RecurringInput struct {
	ID       *string   `json:"id,omitempty"`
	Title    *string   `json:"title,omitempty"`
	Message  *string   `json:"message,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Icon     *string   `json:"icon,omitempty"`
	Rule     RuleSpec  `json:"rule"`
}

// Str returns a pointer to s, for filling in the optional fields of
// the input types.
func Str(s string) *string {
	return &s
} // func Str(s string) *string

// Int returns a pointer to i.
func Int(i int) *int {
	return &i
} // func Int(i int) *int
