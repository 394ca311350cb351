// /home/krylon/go/src/github.com/blicero/skylight/objects/document.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-17 16:02:31 krylon>

package objects

//go:generate ffjson document.go

// Document is the persisted state of the notification store.
type Document struct {
	Notifications []Notification  `json:"notifications"`
	Recurring     []RecurringRule `json:"recurring"`
}

// NewDocument returns an empty Document. Both collections are non-nil, so
// they serialize as empty lists.
func NewDocument() *Document {
	return &Document{
		Notifications: make([]Notification, 0),
		Recurring:     make([]RecurringRule, 0),
	}
} // func NewDocument() *Document

// Clone returns a deep copy of the Document.
func (d *Document) Clone() *Document {
	var c = &Document{
		Notifications: make([]Notification, len(d.Notifications)),
		Recurring:     make([]RecurringRule, len(d.Recurring)),
	}

	copy(c.Notifications, d.Notifications)

	for idx, r := range d.Recurring {
		r.Rule = r.Rule.clone()
		c.Recurring[idx] = r
	}

	return c
} // func (d *Document) Clone() *Document

// HasID returns true if either collection holds an entry with the given ID.
func (d *Document) HasID(id string) bool {
	for idx := range d.Notifications {
		if d.Notifications[idx].ID == id {
			return true
		}
	}

	for idx := range d.Recurring {
		if d.Recurring[idx].ID == id {
			return true
		}
	}

	return false
} // func (d *Document) HasID(id string) bool

// Remove deletes every entry with the given ID from both collections and
// returns the number of entries removed.
func (d *Document) Remove(id string) int {
	var (
		cnt    int
		notes  = d.Notifications[:0]
		recurs = d.Recurring[:0]
	)

	for _, n := range d.Notifications {
		if n.ID == id {
			cnt++
			continue
		}
		notes = append(notes, n)
	}

	for _, r := range d.Recurring {
		if r.ID == id {
			cnt++
			continue
		}
		recurs = append(recurs, r)
	}

	d.Notifications = notes
	d.Recurring = recurs

	return cnt
} // func (d *Document) Remove(id string) int

func (s RuleSpec) clone() RuleSpec {
	var c = RuleSpec{ShowBeforeHours: s.ShowBeforeHours}

	if s.Weekday != nil {
		var v = *s.Weekday
		c.Weekday = &v
	}

	if s.DayOfMonth != nil {
		var v = *s.DayOfMonth
		c.DayOfMonth = &v
	}

	if s.Hour != nil {
		var v = *s.Hour
		c.Hour = &v
	}

	return c
} // func (s RuleSpec) clone() RuleSpec
