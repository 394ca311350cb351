// /home/krylon/go/src/github.com/blicero/skylight/store/store.go
// -*- mode: go; coding: utf-8; -*-
// Created on 16. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 20:47:19 krylon>

// Package store keeps one-time Notifications and RecurringRules.
// All access is serialized, every change is written to the Backend before
// it becomes visible.
package store

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/logdomain"
	"github.com/blicero/skylight/objects"
)

// ErrPersist indicates that a change could not be written to the Backend.
// The change has not been applied.
var ErrPersist = errors.New("cannot persist notifications")

// ErrInvalid indicates malformed input from a client.
var ErrInvalid = errors.New("invalid input")

// Store holds the notification Document.
type Store struct {
	lock    sync.Mutex
	log     *log.Logger
	backend Backend
	doc     *objects.Document
	genID   func() string
}

// Open creates a Store on top of the given Backend. If the Backend's content
// cannot be loaded, the Store starts out empty.
func Open(b Backend) (*Store, error) {
	var (
		err error
		s   = &Store{
			backend: b,
			genID:   common.GetShortID,
		}
	)

	if s.log, err = common.GetLogger(logdomain.Store); err != nil {
		return nil, err
	} else if s.doc, err = b.Load(); err != nil {
		s.log.Printf("[WARN] Cannot load notifications, starting with an empty list: %s\n",
			err.Error())
		s.doc = objects.NewDocument()
	}

	s.log.Printf("[DEBUG] Loaded %d notifications and %d recurring rules\n",
		len(s.doc.Notifications),
		len(s.doc.Recurring))

	return s, nil
} // func Open(b Backend) (*Store, error)

// Close closes the Backend.
func (s *Store) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.backend.Close()
} // func (s *Store) Close() error

// mutate applies fn to a copy of the Document and saves the result. Only
// once the Backend accepted it, the copy replaces the current Document.
func (s *Store) mutate(fn func(doc *objects.Document) error) error {
	var err error

	s.lock.Lock()
	defer s.lock.Unlock()

	var next = s.doc.Clone()

	if err = fn(next); err != nil {
		return err
	} else if err = s.backend.Save(next); err != nil {
		s.log.Printf("[ERROR] Cannot save notifications: %s\n",
			err.Error())
		return fmt.Errorf("%w: %s", ErrPersist, err.Error())
	}

	s.doc = next
	return nil
} // func (s *Store) mutate(fn func(doc *objects.Document) error) error

// freshID returns an ID that is not used in doc, yet.
func (s *Store) freshID(doc *objects.Document) string {
	var id = s.genID()

	for doc.HasID(id) {
		id = s.genID()
	}

	return id
} // func (s *Store) freshID(doc *objects.Document) string

// AddNotification creates a new Notification from the client's input.
// If both an explicit expiration time and a relative one in hours are
// given, the explicit time wins.
func (s *Store) AddNotification(in *objects.NotificationInput, now time.Time) (*objects.Notification, error) {
	var (
		err error
		n   = objects.Notification{
			Title:    objects.DefaultNotificationTitle,
			Priority: objects.DefaultPriority,
			Icon:     objects.DefaultIcon,
			Created:  objects.FormatStamp(now),
		}
	)

	applyCommon(&n.Title, &n.Message, &n.Priority, &n.Icon,
		in.Title, in.Message, in.Priority, in.Icon)

	if in.Expires != nil && *in.Expires != "" {
		var exp time.Time
		if exp, err = objects.ParseStamp(*in.Expires, now.Location()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, err.Error())
		}
		n.Expires = objects.FormatStamp(exp)
	} else if in.ExpiresHours != nil && *in.ExpiresHours != 0 {
		if *in.ExpiresHours < 0 {
			return nil, fmt.Errorf("%w: expires_hours must not be negative", ErrInvalid)
		}
		n.Expires = objects.FormatStamp(now.Add(time.Duration(*in.ExpiresHours * float64(time.Hour))))
	}

	if err = s.mutate(func(doc *objects.Document) error {
		if in.ID != nil && *in.ID != "" {
			if doc.HasID(*in.ID) {
				return fmt.Errorf("%w: id %q is already in use", ErrInvalid, *in.ID)
			}
			n.ID = *in.ID
		} else {
			n.ID = s.freshID(doc)
		}

		doc.Notifications = append(doc.Notifications, n)
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Printf("[INFO] Added Notification %s (%q)\n",
		n.ID,
		n.Title)

	return &n, nil
} // func (s *Store) AddNotification(in *objects.NotificationInput, now time.Time) (*objects.Notification, error)

// AddRecurring creates a new RecurringRule from the client's input.
func (s *Store) AddRecurring(in *objects.RecurringInput) (*objects.RecurringRule, error) {
	var (
		err error
		r   = objects.RecurringRule{
			Title:    objects.DefaultReminderTitle,
			Priority: objects.DefaultPriority,
			Icon:     objects.DefaultIcon,
			Rule:     in.Rule,
		}
	)

	if err = r.Rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err.Error())
	} else if r.Rule.Hour == nil {
		r.Rule.Hour = objects.Int(objects.DefaultHour)
	}

	applyCommon(&r.Title, &r.Message, &r.Priority, &r.Icon,
		in.Title, in.Message, in.Priority, in.Icon)

	if err = s.mutate(func(doc *objects.Document) error {
		if in.ID != nil && *in.ID != "" {
			if doc.HasID(*in.ID) {
				return fmt.Errorf("%w: id %q is already in use", ErrInvalid, *in.ID)
			}
			r.ID = *in.ID
		} else {
			r.ID = s.freshID(doc)
		}

		doc.Recurring = append(doc.Recurring, r)
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Printf("[INFO] Added recurring rule %s (%q): %s\n",
		r.ID,
		r.Title,
		&r.Rule)

	return &r, nil
} // func (s *Store) AddRecurring(in *objects.RecurringInput) (*objects.RecurringRule, error)

// Delete removes all Notifications and RecurringRules with the given ID.
// Deleting an ID that does not exist is not an error.
func (s *Store) Delete(id string) (*objects.DeleteResponse, error) {
	var (
		err error
		cnt int
	)

	if err = s.mutate(func(doc *objects.Document) error {
		cnt = doc.Remove(id)
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Printf("[INFO] Delete %s removed %d entries\n",
		id,
		cnt)

	return &objects.DeleteResponse{Deleted: id}, nil
} // func (s *Store) Delete(id string) (*objects.DeleteResponse, error)

// Active returns the Notifications that have not expired, followed by the
// recurring rules that are inside their display window, ordered by
// priority. Entries of equal priority keep their relative order.
func (s *Store) Active(now time.Time) []objects.Alert {
	s.lock.Lock()
	defer s.lock.Unlock()

	var active = make([]objects.Alert, 0, len(s.doc.Notifications)+len(s.doc.Recurring))

	for idx := range s.doc.Notifications {
		var (
			n        = s.doc.Notifications[idx]
			exp, err = n.Expired(now)
		)

		if err != nil {
			s.log.Printf("[WARN] Notification %s has an invalid expiration time, treating it as expired: %s\n",
				n.ID,
				err.Error())
		}

		if !exp {
			active = append(active, &n)
		}
	}

	for idx := range s.doc.Recurring {
		if trig, ok := s.doc.Recurring[idx].Evaluate(now); ok {
			active = append(active, trig)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Rank() < active[j].Rank()
	})

	return active
} // func (s *Store) Active(now time.Time) []objects.Alert

// Document returns a copy of the complete Document.
func (s *Store) Document() *objects.Document {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.doc.Clone()
} // func (s *Store) Document() *objects.Document

// Counts returns the number of one-time Notifications and of RecurringRules.
func (s *Store) Counts() (int, int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.doc.Notifications), len(s.doc.Recurring)
} // func (s *Store) Counts() (int, int)

func applyCommon(title, msg *string, prio *objects.Priority, icon *string, inTitle, inMsg *string, inPrio *objects.Priority, inIcon *string) {
	if inTitle != nil {
		*title = *inTitle
	}

	if inMsg != nil {
		*msg = *inMsg
	}

	if inPrio != nil && *inPrio != "" {
		*prio = *inPrio
	}

	if inIcon != nil && *inIcon != "" {
		*icon = *inIcon
	}
} // func applyCommon(...)
