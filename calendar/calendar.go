// /home/krylon/go/src/github.com/blicero/skylight/calendar/calendar.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 14:02:19 krylon>

// Package calendar fetches ICS feeds and lists upcoming events.
// Recurring events are not expanded, only their first occurrence is listed.
package calendar

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/config"
	"github.com/blicero/skylight/logdomain"
	"github.com/blicero/skylight/objects"
)

const fetchTimeout = 30 * time.Second

// event is a CalendarEvent with parsed times, for sorting and filtering.
type event struct {
	objects.CalendarEvent
	start time.Time
	end   time.Time
}

// Service keeps the events of all configured feeds.
type Service struct {
	log     *log.Logger
	client  *http.Client
	lock    sync.RWMutex
	feeds   []config.Feed
	horizon time.Duration
	events  map[string][]event
	updated time.Time
}

// New creates a Service for the given feeds. Events starting more than
// horizonDays in the future are ignored.
func New(feeds []config.Feed, horizonDays int) (*Service, error) {
	var (
		err error
		s   = &Service{
			client:  &http.Client{Timeout: fetchTimeout},
			feeds:   append([]config.Feed(nil), feeds...),
			horizon: time.Duration(horizonDays) * 24 * time.Hour,
			events:  make(map[string][]event),
		}
	)

	if s.log, err = common.GetLogger(logdomain.Calendar); err != nil {
		return nil, err
	}

	return s, nil
} // func New(feeds []config.Feed, horizonDays int) (*Service, error)

// SetFeeds replaces the list of feeds. Events of feeds that are no longer
// configured are discarded.
func (s *Service) SetFeeds(feeds []config.Feed) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var names = make(map[string]bool, len(feeds))
	for _, f := range feeds {
		names[f.Name] = true
	}

	for name := range s.events {
		if !names[name] {
			delete(s.events, name)
		}
	}

	s.feeds = append([]config.Feed(nil), feeds...)
} // func (s *Service) SetFeeds(feeds []config.Feed)

// Refresh fetches all feeds. A feed that cannot be fetched keeps the
// events from its last successful fetch. The returned error, if any,
// mentions every feed that failed.
func (s *Service) Refresh(ctx context.Context, now time.Time) error {
	s.lock.RLock()
	var feeds = append([]config.Feed(nil), s.feeds...)
	s.lock.RUnlock()

	var failed = make([]string, 0)

	for _, f := range feeds {
		var evts, err = s.fetch(ctx, f, now)
		if err != nil {
			s.log.Printf("[ERROR] Cannot refresh calendar %s (%s): %s\n",
				f.Name,
				f.URL,
				err.Error())
			failed = append(failed, fmt.Sprintf("%s: %s", f.Name, err.Error()))
			continue
		}

		s.log.Printf("[DEBUG] Calendar %s has %d upcoming events\n",
			f.Name,
			len(evts))

		s.lock.Lock()
		s.events[f.Name] = evts
		s.lock.Unlock()
	}

	s.lock.Lock()
	s.updated = now
	s.lock.Unlock()

	if len(failed) > 0 {
		return fmt.Errorf("cannot refresh calendars: %s", strings.Join(failed, "; "))
	}

	return nil
} // func (s *Service) Refresh(ctx context.Context, now time.Time) error

func (s *Service) fetch(ctx context.Context, f config.Feed, now time.Time) ([]event, error) {
	var (
		err error
		req *http.Request
		res *http.Response
	)

	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil); err != nil {
		return nil, err
	} else if res, err = s.client.Do(req); err != nil {
		return nil, err
	}

	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", f.URL, res.Status)
	}

	return parseFeed(res.Body, f.Name, now, s.horizon)
} // func (s *Service) fetch(ctx context.Context, f config.Feed, now time.Time) ([]event, error)

// Events returns the upcoming events of all calendars as of now, ordered
// by their start.
func (s *Service) Events(now time.Time) []objects.CalendarEvent {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var all = make([]event, 0)

	for _, evts := range s.events {
		for _, e := range evts {
			if e.end.After(now) {
				all = append(all, e)
			}
		}
	}

	sortEvents(all)

	var res = make([]objects.CalendarEvent, len(all))
	for i, e := range all {
		res[i] = e.CalendarEvent
	}

	return res
} // func (s *Service) Events(now time.Time) []objects.CalendarEvent

// Updated returns the time of the last refresh.
func (s *Service) Updated() time.Time {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.updated
} // func (s *Service) Updated() time.Time

func sortEvents(evts []event) {
	sort.SliceStable(evts, func(i, j int) bool {
		if !evts[i].start.Equal(evts[j].start) {
			return evts[i].start.Before(evts[j].start)
		}
		return evts[i].Summary < evts[j].Summary
	})
} // func sortEvents(evts []event)

// parseFeed extracts the events that have not ended by now and start
// before now + horizon.
func parseFeed(r io.Reader, name string, now time.Time, horizon time.Duration) ([]event, error) {
	var (
		err   error
		cal   *ics.Calendar
		limit = now.Add(horizon)
		res   = make([]event, 0)
	)

	if cal, err = ics.ParseCalendar(r); err != nil {
		return nil, fmt.Errorf("cannot parse calendar %s: %w", name, err)
	}

	for _, ve := range cal.Events() {
		var e, ok = convert(ve, name, now.Location())
		if !ok {
			continue
		} else if !e.end.After(now) || !e.start.Before(limit) {
			continue
		}

		res = append(res, e)
	}

	sortEvents(res)
	return res, nil
} // func parseFeed(r io.Reader, name string, now time.Time, horizon time.Duration) ([]event, error)

// isDate returns true if the property holds a date rather than a date-time.
func isDate(p *ics.IANAProperty) bool {
	if vals, ok := p.ICalParameters["VALUE"]; ok && len(vals) == 1 && strings.EqualFold(vals[0], "DATE") {
		return true
	}

	return !strings.Contains(p.Value, "T")
} // func isDate(p *ics.IANAProperty) bool

func propText(ve *ics.VEvent, prop ics.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}

	return ""
} // func propText(ve *ics.VEvent, prop ics.ComponentProperty) string

func convert(ve *ics.VEvent, calName string, loc *time.Location) (event, bool) {
	var (
		err        error
		e          event
		startProp  = ve.GetProperty(ics.ComponentPropertyDtStart)
		start, end time.Time
	)

	if startProp == nil {
		return e, false
	}

	e.AllDay = isDate(startProp)

	if e.AllDay {
		if start, err = ve.GetAllDayStartAt(); err != nil {
			return e, false
		}
		// Dates are floating, they start at midnight wherever we are.
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

		if end, err = ve.GetAllDayEndAt(); err != nil {
			end = start.AddDate(0, 0, 1)
		} else {
			end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
		}

		e.Start = start.Format(common.TimestampFormatDate)
		e.End = end.Format(common.TimestampFormatDate)
	} else {
		if start, err = ve.GetStartAt(); err != nil {
			return e, false
		} else if end, err = ve.GetEndAt(); err != nil {
			end = start
		}

		start, end = start.In(loc), end.In(loc)
		e.Start = objects.FormatStamp(start)
		e.End = objects.FormatStamp(end)
	}

	e.start, e.end = start, end
	e.Calendar = calName
	e.UID = ve.Id()
	e.Summary = propText(ve, ics.ComponentPropertySummary)
	e.Location = propText(ve, ics.ComponentPropertyLocation)
	e.Description = propText(ve, ics.ComponentPropertyDescription)

	return e, true
} // func convert(ve *ics.VEvent, calName string, loc *time.Location) (event, bool)
